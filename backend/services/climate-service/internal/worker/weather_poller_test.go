package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/models"
	"climawatch/backend/services/climate-service/internal/service"
	"climawatch/backend/services/climate-service/internal/weather"
)

type stubSource struct {
	calls atomic.Int32
	fail  map[float64]bool
}

func (s *stubSource) Current(_ context.Context, lat, _ float64) (weather.Observation, error) {
	s.calls.Add(1)
	if s.fail[lat] {
		return weather.Observation{}, weather.ErrUnexpectedStatus
	}
	return weather.Observation{Temperature: 14.5, Humidity: 80}, nil
}

type stubSensors []models.Sensor

func (s stubSensors) List(_ context.Context, activeOnly bool) ([]models.Sensor, error) {
	out := make([]models.Sensor, 0, len(s))
	for _, sensor := range s {
		if activeOnly && !sensor.Active {
			continue
		}
		out = append(out, sensor)
	}
	return out, nil
}

type recordingIngester struct {
	inputs []service.IngestInput
}

func (r *recordingIngester) Ingest(_ context.Context, input service.IngestInput) (*models.Reading, error) {
	r.inputs = append(r.inputs, input)
	return &models.Reading{SensorID: input.SensorID}, nil
}

func pollerSensors() stubSensors {
	return stubSensors{
		{ID: 1, Name: "sala", Type: models.SensorTypeESP32, Active: true},
		{ID: 2, Name: "local", Type: models.SensorTypeOpenWeather, Lat: models.Float(-1.27), Lon: models.Float(-78.63), Active: true},
		{ID: 3, Name: "nowhere", Type: models.SensorTypeOpenWeather, Active: true},
		{ID: 4, Name: "old", Type: models.SensorTypeOpenWeather, Lat: models.Float(1), Lon: models.Float(1), Active: false},
		{ID: 5, Name: "broken", Type: models.SensorTypeOpenWeather, Lat: models.Float(9), Lon: models.Float(9), Active: true},
	}
}

func TestPollOnceIngestsEligibleSensors(t *testing.T) {
	source := &stubSource{fail: map[float64]bool{9: true}}
	ingest := &recordingIngester{}
	p, err := NewWeatherPoller(source, pollerSensors(), ingest, "@every 15m", time.Second, true, zap.NewNop())
	require.NoError(t, err)

	stored := p.PollOnce(context.Background())
	assert.Equal(t, 1, stored)
	assert.Equal(t, int32(2), source.calls.Load())
	require.Len(t, ingest.inputs, 1)
	assert.Equal(t, int64(2), ingest.inputs[0].SensorID)
	assert.Equal(t, 14.5, *ingest.inputs[0].Temperature)
	assert.Equal(t, 80.0, *ingest.inputs[0].Humidity)
}

func TestNewWeatherPollerRejectsBadSchedule(t *testing.T) {
	_, err := NewWeatherPoller(&stubSource{}, stubSensors{}, &recordingIngester{}, "every so often", 0, true, zap.NewNop())
	assert.Error(t, err)
}

func TestRunDisabledReturnsImmediately(t *testing.T) {
	source := &stubSource{}
	p, err := NewWeatherPoller(source, pollerSensors(), &recordingIngester{}, "@every 15m", 0, false, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background()))
	assert.Zero(t, source.calls.Load())
}

func TestRunPollsAtStartAndStopsOnCancel(t *testing.T) {
	source := &stubSource{}
	ingest := &recordingIngester{}
	p, err := NewWeatherPoller(source, pollerSensors(), ingest, "@every 1h", 0, true, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return source.calls.Load() >= 2 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}
