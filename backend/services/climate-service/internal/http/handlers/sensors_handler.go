package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/models"
	"climawatch/backend/services/climate-service/internal/service"
)

// SensorsHandlers serves sensor metadata.
type SensorsHandlers struct {
	svc    *service.ClimateService
	logger *zap.Logger
}

// NewSensorsHandlers returns handlers.
func NewSensorsHandlers(svc *service.ClimateService, logger *zap.Logger) *SensorsHandlers {
	return &SensorsHandlers{svc: svc, logger: logger}
}

// List handles GET /api/sensors.
func (h *SensorsHandlers) List(w http.ResponseWriter, r *http.Request) {
	sensors, err := h.svc.Sensors(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "list sensors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sensors": sensors})
}

type createSensorRequest struct {
	Name   string            `json:"name"`
	Type   models.SensorType `json:"type"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Active *bool             `json:"active"`
}

// Create handles POST /api/sensors.
func (h *SensorsHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createSensorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sensor := &models.Sensor{
		Name:   req.Name,
		Type:   req.Type,
		Lat:    req.Lat,
		Lon:    req.Lon,
		Active: req.Active == nil || *req.Active,
	}
	if err := h.svc.RegisterSensor(r.Context(), sensor); err != nil {
		writeServiceError(w, h.logger, err, "register sensor")
		return
	}
	writeJSON(w, http.StatusCreated, sensor)
}
