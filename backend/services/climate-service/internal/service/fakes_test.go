package service

import (
	"context"
	"errors"
	"time"

	"climawatch/backend/services/climate-service/internal/models"
	"climawatch/backend/services/climate-service/internal/repository"
)

type fakeSensors struct {
	sensors []models.Sensor
	listErr error
}

func (f *fakeSensors) List(_ context.Context, activeOnly bool) ([]models.Sensor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Sensor, 0, len(f.sensors))
	for _, s := range f.sensors {
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSensors) Get(_ context.Context, id int64) (*models.Sensor, error) {
	for _, s := range f.sensors {
		if s.ID == id {
			sensor := s
			return &sensor, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSensors) GetByName(_ context.Context, name string) (*models.Sensor, error) {
	for _, s := range f.sensors {
		if s.Name == name {
			sensor := s
			return &sensor, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSensors) Create(_ context.Context, sensor *models.Sensor) error {
	for _, s := range f.sensors {
		if s.Name == sensor.Name {
			return repository.ErrConflict
		}
	}
	sensor.ID = int64(len(f.sensors) + 1)
	f.sensors = append(f.sensors, *sensor)
	return nil
}

type fakeReadings struct {
	readings  []models.Reading
	insertErr error
}

func (f *fakeReadings) Insert(_ context.Context, reading *models.Reading) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	reading.ID = int64(len(f.readings) + 1)
	f.readings = append(f.readings, *reading)
	return nil
}

func (f *fakeReadings) Between(_ context.Context, from, to time.Time, sensorID int64) ([]models.Reading, error) {
	out := make([]models.Reading, 0)
	for _, r := range f.readings {
		if r.Timestamp.Before(from) || r.Timestamp.After(to) {
			continue
		}
		if sensorID != 0 && r.SensorID != sensorID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeLive struct {
	updates []models.LiveUpdate
	err     error
}

func (f *fakeLive) Publish(_ context.Context, update models.LiveUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, update)
	return nil
}

var errBoom = errors.New("boom")
