package repository

import (
	"context"
	"database/sql"
	"errors"

	"climawatch/backend/services/climate-service/internal/models"
)

// SensorRepository manages sensor metadata.
type SensorRepository struct {
	db *sql.DB
}

// NewSensorRepository returns repository.
func NewSensorRepository(db *sql.DB) *SensorRepository {
	return &SensorRepository{db: db}
}

const sensorColumns = `id, name, type, lat, lon, active, created_at`

// List returns sensors ordered by id.
func (r *SensorRepository) List(ctx context.Context, activeOnly bool) ([]models.Sensor, error) {
	query := `SELECT ` + sensorColumns + ` FROM sensors`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sensors := make([]models.Sensor, 0)
	for rows.Next() {
		sensor, err := scanSensor(rows)
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, *sensor)
	}
	return sensors, rows.Err()
}

// Get returns a sensor by id.
func (r *SensorRepository) Get(ctx context.Context, id int64) (*models.Sensor, error) {
	const query = `SELECT ` + sensorColumns + ` FROM sensors WHERE id = $1`
	return r.one(ctx, query, id)
}

// GetByName returns a sensor by its unique name.
func (r *SensorRepository) GetByName(ctx context.Context, name string) (*models.Sensor, error) {
	const query = `SELECT ` + sensorColumns + ` FROM sensors WHERE name = $1`
	return r.one(ctx, query, name)
}

// Create inserts a sensor and fills its id and creation time. A taken name yields
// ErrConflict.
func (r *SensorRepository) Create(ctx context.Context, sensor *models.Sensor) error {
	const query = `
		INSERT INTO sensors (name, type, lat, lon, active, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		sensor.Name,
		string(sensor.Type),
		nullFloat(sensor.Lat),
		nullFloat(sensor.Lon),
		sensor.Active,
	).Scan(&sensor.ID, &sensor.CreatedAt)
	return mapConflict(err)
}

func (r *SensorRepository) one(ctx context.Context, query string, arg interface{}) (*models.Sensor, error) {
	sensor, err := scanSensor(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sensor, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSensor(s scanner) (*models.Sensor, error) {
	var (
		sensor   models.Sensor
		kind     string
		lat, lon sql.NullFloat64
	)
	if err := s.Scan(&sensor.ID, &sensor.Name, &kind, &lat, &lon, &sensor.Active, &sensor.CreatedAt); err != nil {
		return nil, err
	}
	sensor.Type = models.SensorType(kind)
	sensor.Lat = floatPtr(lat)
	sensor.Lon = floatPtr(lon)
	return &sensor, nil
}
