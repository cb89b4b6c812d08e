package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapConflict(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "sensors_name_key"})
	assert.ErrorIs(t, mapConflict(unique), ErrConflict)

	fk := &pgconn.PgError{Code: "23503"}
	assert.Same(t, fk, mapConflict(fk))

	other := errors.New("connection reset")
	assert.Equal(t, other, mapConflict(other))
	assert.NoError(t, mapConflict(nil))
}

func TestNullableFloats(t *testing.T) {
	assert.Equal(t, sql.NullFloat64{}, nullFloat(nil))

	v := 21.5
	n := nullFloat(&v)
	assert.Equal(t, sql.NullFloat64{Float64: 21.5, Valid: true}, n)

	back := floatPtr(n)
	require.NotNil(t, back)
	assert.Equal(t, 21.5, *back)
	assert.NotSame(t, &n.Float64, back)
	assert.Nil(t, floatPtr(sql.NullFloat64{}))
}
