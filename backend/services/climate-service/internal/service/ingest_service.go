package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/models"
	"climawatch/backend/services/climate-service/internal/repository"
)

// LivePublisher pushes accepted readings to live viewers.
type LivePublisher interface {
	Publish(ctx context.Context, update models.LiveUpdate) error
}

// IngestInput is a reading as delivered by a sensor or the weather poller. Either SensorID
// or Room identifies the sensor.
type IngestInput struct {
	SensorID    int64
	Room        string
	Temperature *float64
	Humidity    *float64
	Timestamp   time.Time
}

// IngestService validates, stores and publishes readings.
type IngestService struct {
	sensors  SensorStore
	readings ReadingStore
	live     LivePublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewIngestService builds service. live may be nil.
func NewIngestService(sensors SensorStore, readings ReadingStore, live LivePublisher, logger *zap.Logger) *IngestService {
	return &IngestService{
		sensors:  sensors,
		readings: readings,
		live:     live,
		logger:   logger,
		now:      time.Now,
	}
}

// Ingest persists one reading and publishes it to the live feed.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*models.Reading, error) {
	if input.Temperature == nil && input.Humidity == nil {
		return nil, ErrEmptyReading
	}

	sensor, err := s.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	if input.Timestamp.IsZero() {
		input.Timestamp = s.now()
	}
	reading := &models.Reading{
		SensorID:    sensor.ID,
		Timestamp:   input.Timestamp.UTC(),
		Temperature: input.Temperature,
		Humidity:    input.Humidity,
	}
	if err := s.readings.Insert(ctx, reading); err != nil {
		return nil, fmt.Errorf("insert reading: %w", err)
	}

	if s.live != nil {
		update := models.LiveUpdate{
			SensorID:   sensor.ID,
			SensorName: sensor.Name,
			Data:       *reading,
			ServerTime: s.now().UTC(),
		}
		if err := s.live.Publish(ctx, update); err != nil {
			s.logger.Warn("failed to publish live update", zap.Int64("sensor_id", sensor.ID), zap.Error(err))
		}
	}
	return reading, nil
}

func (s *IngestService) resolve(ctx context.Context, input IngestInput) (*models.Sensor, error) {
	var (
		sensor *models.Sensor
		err    error
	)
	switch room := strings.Trim(strings.TrimSpace(input.Room), "/"); {
	case input.SensorID > 0:
		sensor, err = s.sensors.Get(ctx, input.SensorID)
	case room != "":
		sensor, err = s.sensors.GetByName(ctx, room)
	default:
		return nil, fmt.Errorf("%w: no sensor id or room", ErrSensorNotFound)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSensorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve sensor: %w", err)
	}
	return sensor, nil
}
