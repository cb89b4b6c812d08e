package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/analytics"
	"climawatch/backend/services/climate-service/internal/forecast"
	"climawatch/backend/services/climate-service/internal/service"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors to client statuses and hides everything else.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	switch {
	case errors.Is(err, service.ErrSensorNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSensorExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, service.ErrInvalidSensor),
		errors.Is(err, service.ErrInvalidSteps),
		errors.Is(err, service.ErrEmptyReading),
		errors.Is(err, analytics.ErrUnknownQuantity),
		errors.Is(err, forecast.ErrInvalidTimestamp):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, forecast.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("failed to "+action, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(dst)
}

// queryInt returns the named parameter or 0 when absent.
func queryInt(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

// resolveWindow reads hours, start and end from the query string.
func resolveWindow(svc *service.ClimateService, r *http.Request) (service.Window, error) {
	hours, err := queryInt(r, "hours")
	if err != nil {
		return service.Window{}, errors.Join(service.ErrInvalidWindow, err)
	}
	q := r.URL.Query()
	return svc.ResolveWindow(hours, q.Get("start"), q.Get("end"))
}
