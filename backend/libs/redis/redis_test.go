package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisClientValidatesInput(t *testing.T) {
	_, err := NewRedisClient("  ", "", 0)
	assert.ErrorContains(t, err, "addr is empty")

	_, err = NewRedisClient("localhost:6379", "", -1)
	assert.ErrorContains(t, err, "must not be negative")
}
