package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/analytics"
	"climawatch/backend/services/climate-service/internal/forecast"
	"climawatch/backend/services/climate-service/internal/service"
)

// HistoryHandlers serves the historical window and what is derived from it.
type HistoryHandlers struct {
	svc    *service.ClimateService
	logger *zap.Logger
}

// NewHistoryHandlers returns handlers.
func NewHistoryHandlers(svc *service.ClimateService, logger *zap.Logger) *HistoryHandlers {
	return &HistoryHandlers{svc: svc, logger: logger}
}

// History handles GET /api/history.
func (h *HistoryHandlers) History(w http.ResponseWriter, r *http.Request) {
	window, err := resolveWindow(h.svc, r)
	if err != nil {
		writeServiceError(w, h.logger, err, "resolve window")
		return
	}
	sensorID, err := queryInt(r, "sensor_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := h.svc.History(r.Context(), window, sensorID)
	if err != nil {
		writeServiceError(w, h.logger, err, "load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window":   window,
		"readings": readings,
	})
}

// Analytics handles GET /api/analytics.
func (h *HistoryHandlers) Analytics(w http.ResponseWriter, r *http.Request) {
	window, q, ok := h.windowAndQuantity(w, r)
	if !ok {
		return
	}
	rep, err := h.svc.Analytics(r.Context(), window, q)
	if err != nil {
		writeServiceError(w, h.logger, err, "compute analytics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"window": window,
		"report": rep,
	})
}

// Forecast handles GET /api/forecast.
func (h *HistoryHandlers) Forecast(w http.ResponseWriter, r *http.Request) {
	window, q, ok := h.windowAndQuantity(w, r)
	if !ok {
		return
	}
	result, err := h.svc.Forecast(r.Context(), window, q)
	if err != nil {
		writeServiceError(w, h.logger, err, "compute forecast")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type fitRequest struct {
	Samples []struct {
		Timestamp string   `json:"timestamp"`
		Value     *float64 `json:"value"`
	} `json:"samples"`
	Steps int `json:"steps"`
}

// Fit handles POST /api/forecast/fit.
func (h *HistoryHandlers) Fit(w http.ResponseWriter, r *http.Request) {
	var req fitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	raw := make([]forecast.RawSample, 0, len(req.Samples))
	for _, s := range req.Samples {
		raw = append(raw, forecast.RawSample{Timestamp: s.Timestamp, Value: s.Value})
	}
	result, err := h.svc.FitSamples(raw, req.Steps)
	if err != nil {
		writeServiceError(w, h.logger, err, "fit samples")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HistoryHandlers) windowAndQuantity(w http.ResponseWriter, r *http.Request) (service.Window, analytics.Quantity, bool) {
	q, err := analytics.ParseQuantity(r.URL.Query().Get("quantity"))
	if err != nil {
		writeServiceError(w, h.logger, err, "parse quantity")
		return service.Window{}, "", false
	}
	window, err := resolveWindow(h.svc, r)
	if err != nil {
		writeServiceError(w, h.logger, err, "resolve window")
		return service.Window{}, "", false
	}
	return window, q, true
}
