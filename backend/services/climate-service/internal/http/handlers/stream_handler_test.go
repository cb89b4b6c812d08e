package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/models"
)

type fakeFeed struct {
	snapshot  []models.LiveUpdate
	updates   chan []byte
	listenErr error
}

func (f *fakeFeed) Current(context.Context) ([]models.LiveUpdate, error) {
	return f.snapshot, nil
}

func (f *fakeFeed) Listen(context.Context) (<-chan []byte, error) {
	if f.listenErr != nil {
		return nil, f.listenErr
	}
	return f.updates, nil
}

func TestStreamReplaysSnapshotThenRelays(t *testing.T) {
	feed := &fakeFeed{
		snapshot: []models.LiveUpdate{{SensorID: 1, SensorName: "sala"}},
		updates:  make(chan []byte, 1),
	}
	h := NewStreamHandler(feed, zap.NewNop())
	h.keepAlive = 5 * time.Millisecond

	feed.updates <- []byte(`{"sensor_id":2}`)
	go func() {
		time.Sleep(30 * time.Millisecond)
		close(feed.updates)
	}()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream-data", nil))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, `data: {"sensor_id":1,"sensor_name":"sala"`), body)
	assert.Contains(t, body, "data: {\"sensor_id\":2}\n\n")
	assert.Contains(t, body, ": keep-alive\n\n")
}

func TestStreamEndsWhenClientLeaves(t *testing.T) {
	feed := &fakeFeed{updates: make(chan []byte)}
	h := NewStreamHandler(feed, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/stream-data", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		h.ServeHTTP(httptest.NewRecorder(), req)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end")
	}
}

func TestStreamUnavailable(t *testing.T) {
	h := NewStreamHandler(&fakeFeed{listenErr: errors.New("redis down")}, zap.NewNop())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream-data", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
