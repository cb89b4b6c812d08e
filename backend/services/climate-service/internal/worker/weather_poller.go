package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/models"
	"climawatch/backend/services/climate-service/internal/service"
	"climawatch/backend/services/climate-service/internal/weather"
)

// WeatherSource returns current outdoor conditions.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (weather.Observation, error)
}

// SensorLister lists registered sensors.
type SensorLister interface {
	List(ctx context.Context, activeOnly bool) ([]models.Sensor, error)
}

// Ingester stores a reading.
type Ingester interface {
	Ingest(ctx context.Context, input service.IngestInput) (*models.Reading, error)
}

// WeatherPoller records outdoor conditions for every active openweather sensor on a schedule.
type WeatherPoller struct {
	source   WeatherSource
	sensors  SensorLister
	ingest   Ingester
	schedule string
	timeout  time.Duration
	enabled  bool
	logger   *zap.Logger
}

// NewWeatherPoller builds poller. It stays idle when enabled is false.
func NewWeatherPoller(source WeatherSource, sensors SensorLister, ingest Ingester, schedule string, timeout time.Duration, enabled bool, logger *zap.Logger) (*WeatherPoller, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid weather schedule %q: %w", schedule, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WeatherPoller{
		source:   source,
		sensors:  sensors,
		ingest:   ingest,
		schedule: schedule,
		timeout:  timeout,
		enabled:  enabled,
		logger:   logger,
	}, nil
}

// Run polls once, then on every schedule tick until ctx is done.
func (p *WeatherPoller) Run(ctx context.Context) error {
	if !p.enabled {
		p.logger.Info("weather poller disabled: no api key")
		return nil
	}

	p.PollOnce(ctx)

	c := cron.New()
	if _, err := c.AddFunc(p.schedule, func() { p.PollOnce(ctx) }); err != nil {
		return err
	}
	c.Start()
	p.logger.Info("weather poller started", zap.String("schedule", p.schedule))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// PollOnce fetches and stores conditions for each eligible sensor. It returns the number
// of readings stored. Failures are logged per sensor.
func (p *WeatherPoller) PollOnce(ctx context.Context) int {
	sensors, err := p.sensors.List(ctx, true)
	if err != nil {
		p.logger.Error("failed to list sensors for weather poll", zap.Error(err))
		return 0
	}

	stored := 0
	for _, sensor := range sensors {
		if sensor.Type != models.SensorTypeOpenWeather || !sensor.HasLocation() {
			continue
		}
		if p.pollSensor(ctx, sensor) {
			stored++
		}
	}
	return stored
}

func (p *WeatherPoller) pollSensor(ctx context.Context, sensor models.Sensor) bool {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	obs, err := p.source.Current(fetchCtx, *sensor.Lat, *sensor.Lon)
	if err != nil {
		p.logger.Warn("weather fetch failed", zap.Int64("sensor_id", sensor.ID), zap.Error(err))
		return false
	}

	_, err = p.ingest.Ingest(ctx, service.IngestInput{
		SensorID:    sensor.ID,
		Temperature: models.Float(obs.Temperature),
		Humidity:    models.Float(obs.Humidity),
	})
	if err != nil {
		p.logger.Error("failed to store weather reading", zap.Int64("sensor_id", sensor.ID), zap.Error(err))
		return false
	}
	return true
}
