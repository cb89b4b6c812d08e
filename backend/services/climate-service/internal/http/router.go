package httpserver

import (
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/http/handlers"
	"climawatch/backend/services/climate-service/internal/http/middleware"
)

// Routes defines HTTP endpoints.
type Routes struct {
	Health  http.Handler
	Sensors *handlers.SensorsHandlers
	Ingest  http.Handler
	History *handlers.HistoryHandlers
	Report  http.Handler
	Stream  http.Handler
	WS      http.Handler

	IngestLimiter *middleware.RateLimiter
}

// NewRouter sets up HTTP routing. Streaming endpoints skip the access log so the
// underlying writer keeps its hijack and flush support.
func NewRouter(routes Routes, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	logged := func(h http.Handler) http.Handler {
		return middleware.Chain(h, middleware.AccessLog(logger))
	}

	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Sensors != nil {
		mux.Handle("/api/sensors", logged(methods(map[string]http.Handler{
			http.MethodGet:  http.HandlerFunc(routes.Sensors.List),
			http.MethodPost: http.HandlerFunc(routes.Sensors.Create),
		})))
	}
	if routes.Ingest != nil {
		ingest := routes.Ingest
		if routes.IngestLimiter != nil {
			ingest = middleware.Chain(ingest, middleware.RateLimit(routes.IngestLimiter))
		}
		mux.Handle("/api/readings", logged(method(http.MethodPost, ingest)))
	}
	if routes.History != nil {
		mux.Handle("/api/history", logged(method(http.MethodGet, http.HandlerFunc(routes.History.History))))
		mux.Handle("/api/analytics", logged(method(http.MethodGet, http.HandlerFunc(routes.History.Analytics))))
		mux.Handle("/api/forecast", logged(method(http.MethodGet, http.HandlerFunc(routes.History.Forecast))))
		mux.Handle("/api/forecast/fit", logged(method(http.MethodPost, http.HandlerFunc(routes.History.Fit))))
	}
	if routes.Report != nil {
		mux.Handle("/api/report", logged(method(http.MethodGet, routes.Report)))
	}
	if routes.Stream != nil {
		mux.Handle("/stream-data", method(http.MethodGet, routes.Stream))
	}
	if routes.WS != nil {
		mux.Handle("/ws", method(http.MethodGet, routes.WS))
	}
	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return methods(map[string]http.Handler{expected: handler})
}

func methods(byMethod map[string]http.Handler) http.Handler {
	allowed := make([]string, 0, len(byMethod))
	for m := range byMethod {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	allow := strings.Join(allowed, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := byMethod[r.Method]
		if !ok {
			w.Header().Set("Allow", allow)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
