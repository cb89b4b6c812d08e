package repository

import (
	"context"
	"database/sql"
	"time"

	"climawatch/backend/services/climate-service/internal/models"
)

// ReadingRepository persists sensor readings.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository returns repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Insert stores a reading and fills its id.
func (r *ReadingRepository) Insert(ctx context.Context, reading *models.Reading) error {
	const query = `
		INSERT INTO sensor_readings (sensor_id, "timestamp", temperature, humidity)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		reading.SensorID,
		reading.Timestamp.UTC(),
		nullFloat(reading.Temperature),
		nullFloat(reading.Humidity),
	).Scan(&reading.ID)
}

// Between returns readings with from <= timestamp <= to ordered by timestamp. A zero
// sensorID selects every sensor.
func (r *ReadingRepository) Between(ctx context.Context, from, to time.Time, sensorID int64) ([]models.Reading, error) {
	const query = `
		SELECT id, sensor_id, "timestamp", temperature, humidity
		FROM sensor_readings
		WHERE "timestamp" >= $1 AND "timestamp" <= $2
		  AND ($3::bigint = 0 OR sensor_id = $3::bigint)
		ORDER BY "timestamp", id
	`
	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC(), sensorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make([]models.Reading, 0)
	for rows.Next() {
		var (
			reading   models.Reading
			temp, hum sql.NullFloat64
		)
		if err := rows.Scan(&reading.ID, &reading.SensorID, &reading.Timestamp, &temp, &hum); err != nil {
			return nil, err
		}
		reading.Temperature = floatPtr(temp)
		reading.Humidity = floatPtr(hum)
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
