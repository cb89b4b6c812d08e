package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/analytics"
	"climawatch/backend/services/climate-service/internal/report"
	"climawatch/backend/services/climate-service/internal/service"
)

// Report kinds.
const (
	ReportReadings = "readings"
	ReportSummary  = "summary"
)

// ReportHandler exports the window as CSV.
type ReportHandler struct {
	svc    *service.ClimateService
	logger *zap.Logger
}

// NewReportHandler returns handler.
func NewReportHandler(svc *service.ClimateService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// ServeHTTP handles GET /api/report?kind=readings|summary.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = ReportReadings
	}
	if kind != ReportReadings && kind != ReportSummary {
		writeError(w, http.StatusBadRequest, "kind must be readings or summary")
		return
	}
	q, err := analytics.ParseQuantity(r.URL.Query().Get("quantity"))
	if err != nil {
		writeServiceError(w, h.logger, err, "parse quantity")
		return
	}
	window, err := resolveWindow(h.svc, r)
	if err != nil {
		writeServiceError(w, h.logger, err, "resolve window")
		return
	}

	var buf bytes.Buffer
	loc := h.svc.Location()
	switch kind {
	case ReportSummary:
		rep, err := h.svc.Analytics(r.Context(), window, q)
		if err != nil {
			writeServiceError(w, h.logger, err, "compute analytics")
			return
		}
		err = report.WriteSummary(&buf, rep, loc)
		if err != nil {
			writeServiceError(w, h.logger, err, "render report")
			return
		}
	default:
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
		sensors, err := h.svc.Sensors(r.Context())
		if err != nil {
			writeServiceError(w, h.logger, err, "list sensors")
			return
		}
		if err := report.WriteReadings(&buf, readings, sensors, loc); err != nil {
			writeServiceError(w, h.logger, err, "render report")
			return
		}
	}

	name := report.FileName(kind, q, time.Now().In(loc))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
