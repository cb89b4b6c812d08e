package redisstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCurrentSkipsLegacyEntries(t *testing.T) {
	updates := decodeCurrent(map[string]string{
		"2":      `{"sensor_id":2,"sensor_name":"cuarto","data":{"sensor_id":2,"timestamp":"2026-03-14T08:00:00Z","temperature":19.5,"humidity":null}}`,
		"1":      `{"sensor_name":"sala","data":{"sensor_id":1,"timestamp":"2026-03-14T08:00:00Z","temperature":21,"humidity":55}}`,
		"sala":   `{"temperatura":20}`,
		"3":      `not json`,
		"bad-id": `{}`,
	})

	require.Len(t, updates, 2)
	assert.Equal(t, int64(1), updates[0].SensorID)
	assert.Equal(t, "sala", updates[0].SensorName)
	require.NotNil(t, updates[0].Data.Humidity)
	assert.Equal(t, 55.0, *updates[0].Data.Humidity)
	assert.Equal(t, int64(2), updates[1].SensorID)
	assert.Nil(t, updates[1].Data.Humidity)
}
