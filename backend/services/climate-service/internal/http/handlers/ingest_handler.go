package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/forecast"
	"climawatch/backend/services/climate-service/internal/service"
)

// ingestRequest accepts the canonical shape {sensor_id, temperature, humidity, timestamp}
// and the ESP32 shape {path: "/sala", data: {temperatura, humedad}} or
// {path: "/sala/temperatura", data: 21.5}.
type ingestRequest struct {
	SensorID    int64           `json:"sensor_id"`
	Temperature *float64        `json:"temperature"`
	Humidity    *float64        `json:"humidity"`
	Timestamp   string          `json:"timestamp"`
	Path        string          `json:"path"`
	Data        json.RawMessage `json:"data"`
}

type esp32Values struct {
	Temperatura *float64 `json:"temperatura"`
	Humedad     *float64 `json:"humedad"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

var errBadPayload = errors.New("invalid reading payload")

// IngestHandler receives readings from sensors.
type IngestHandler struct {
	svc    *service.IngestService
	loc    *time.Location
	logger *zap.Logger
}

// NewIngestHandler returns handler. Naive timestamps are read in loc.
func NewIngestHandler(svc *service.IngestService, loc *time.Location, logger *zap.Logger) *IngestHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &IngestHandler{svc: svc, loc: loc, logger: logger}
}

// ServeHTTP handles POST /api/readings.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	input, err := h.toInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reading, err := h.svc.Ingest(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.logger, err, "store reading")
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

func (h *IngestHandler) toInput(req ingestRequest) (service.IngestInput, error) {
	input := service.IngestInput{
		SensorID:    req.SensorID,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
	}
	if ts := strings.TrimSpace(req.Timestamp); ts != "" {
		parsed, err := forecast.ParseTimestamp(ts, h.loc)
		if err != nil {
			return input, err
		}
		input.Timestamp = parsed
	}

	path := strings.Trim(strings.TrimSpace(req.Path), "/")
	if path == "" {
		return input, nil
	}
	parts := strings.Split(path, "/")
	input.Room = parts[0]

	switch len(parts) {
	case 1:
		if len(req.Data) == 0 {
			return input, nil
		}
		var values esp32Values
		if err := json.Unmarshal(req.Data, &values); err != nil {
			return input, errBadPayload
		}
		input.Temperature = firstSet(values.Temperatura, values.Temperature, input.Temperature)
		input.Humidity = firstSet(values.Humedad, values.Humidity, input.Humidity)
	case 2:
		var value float64
		if err := json.Unmarshal(req.Data, &value); err != nil {
			return input, errBadPayload
		}
		switch parts[1] {
		case "temperatura", "temperature":
			input.Temperature = &value
		case "humedad", "humidity":
			input.Humidity = &value
		default:
			return input, errors.New("unknown metric " + parts[1])
		}
	default:
		return input, errBadPayload
	}
	return input, nil
}

func firstSet(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
