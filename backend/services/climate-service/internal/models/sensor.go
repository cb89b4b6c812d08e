package models

import "time"

// SensorType distinguishes how a sensor delivers readings.
type SensorType string

const (
	SensorTypeESP32       SensorType = "esp32"
	SensorTypeOpenWeather SensorType = "openweather"
)

// Valid reports whether t is a known sensor type.
func (t SensorType) Valid() bool {
	return t == SensorTypeESP32 || t == SensorTypeOpenWeather
}

// Sensor is a registered source of readings.
type Sensor struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Type      SensorType `db:"type" json:"type"`
	Lat       *float64   `db:"lat" json:"lat,omitempty"`
	Lon       *float64   `db:"lon" json:"lon,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// HasLocation reports whether both coordinates are set.
func (s Sensor) HasLocation() bool {
	return s.Lat != nil && s.Lon != nil
}
