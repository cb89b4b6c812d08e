package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// NewHealthHandler returns GET /health handler. Any failing check turns the answer into 503.
func NewHealthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		details := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				details[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			details[name] = "ok"
		}

		body := map[string]interface{}{"status": "ok", "checks": details}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		writeJSON(w, status, body)
	}
}
