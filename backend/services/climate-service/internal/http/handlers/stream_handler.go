package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/models"
)

// LiveFeed is the live state the stream replays and follows.
type LiveFeed interface {
	Current(ctx context.Context) ([]models.LiveUpdate, error)
	Listen(ctx context.Context) (<-chan []byte, error)
}

// StreamHandler pushes live updates as server-sent events.
type StreamHandler struct {
	feed      LiveFeed
	keepAlive time.Duration
	logger    *zap.Logger
}

// NewStreamHandler returns handler.
func NewStreamHandler(feed LiveFeed, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{feed: feed, keepAlive: 15 * time.Second, logger: logger}
}

// ServeHTTP handles GET /stream-data until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	ctx := r.Context()
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	updates, err := h.feed.Listen(ctx)
	if err != nil {
		h.logger.Error("failed to subscribe to live feed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "live feed unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	snapshot, err := h.feed.Current(ctx)
	if err != nil {
		h.logger.Warn("failed to load live snapshot", zap.Error(err))
	}
	for _, update := range snapshot {
		data, err := json.Marshal(update)
		if err != nil {
			continue
		}
		if !writeEvent(w, rc, data) {
			return
		}
	}
	if err := rc.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-updates:
			if !ok || !writeEvent(w, rc, msg) {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, data []byte) bool {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return false
	}
	return rc.Flush() == nil
}
