package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict is returned when an insert violates a unique constraint.
	ErrConflict = errors.New("repository: already exists")
)

const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS sensors (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	type       TEXT NOT NULL,
	lat        DOUBLE PRECISION,
	lon        DOUBLE PRECISION,
	active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sensor_readings (
	id          BIGSERIAL PRIMARY KEY,
	sensor_id   BIGINT NOT NULL REFERENCES sensors(id) ON DELETE CASCADE,
	"timestamp" TIMESTAMPTZ NOT NULL,
	temperature DOUBLE PRECISION,
	humidity    DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS sensor_readings_timestamp_idx ON sensor_readings ("timestamp");
CREATE INDEX IF NOT EXISTS sensor_readings_sensor_ts_idx ON sensor_readings (sensor_id, "timestamp");
`

// EnsureSchema creates the tables used by the repositories when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
