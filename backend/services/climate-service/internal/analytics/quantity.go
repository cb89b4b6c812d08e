package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"climawatch/backend/services/climate-service/internal/models"
)

// ErrUnknownQuantity is returned by ParseQuantity for unsupported names.
var ErrUnknownQuantity = errors.New("analytics: unknown quantity")

// Quantity selects which optional reading field is analysed.
type Quantity string

const (
	Temperature Quantity = "temperature"
	Humidity    Quantity = "humidity"
)

// ParseQuantity accepts the canonical names plus the short and Spanish spellings that
// older dashboards send. An empty string selects Temperature.
func ParseQuantity(raw string) (Quantity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "temperature", "temp", "temperatura":
		return Temperature, nil
	case "humidity", "hum", "humedad":
		return Humidity, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownQuantity, raw)
	}
}

// Value returns the selected field of r. ok is false when the field is absent or not a
// finite number.
func (q Quantity) Value(r models.Reading) (float64, bool) {
	var v *float64
	switch q {
	case Temperature:
		v = r.Temperature
	case Humidity:
		v = r.Humidity
	}
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

// Unit returns the display unit for q.
func (q Quantity) Unit() string {
	if q == Humidity {
		return "%"
	}
	return "°C"
}
