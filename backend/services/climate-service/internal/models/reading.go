package models

import "time"

// Reading is one row of the historical window. Temperature and Humidity are nil when the
// sensor did not report that quantity.
type Reading struct {
	ID          int64     `db:"id" json:"id,omitempty"`
	SensorID    int64     `db:"sensor_id" json:"sensor_id"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
	Temperature *float64  `db:"temperature" json:"temperature"`
	Humidity    *float64  `db:"humidity" json:"humidity"`
}

// LiveUpdate is the envelope pushed to live viewers and cached as the current state.
type LiveUpdate struct {
	SensorID   int64     `json:"sensor_id"`
	SensorName string    `json:"sensor_name"`
	Data       Reading   `json:"data"`
	ServerTime time.Time `json:"server_time"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
