// Package analytics computes per-sensor statistics and connectivity gaps over a window of
// readings. Everything here is a pure function of its arguments.
package analytics

import (
	"math"
	"slices"
	"time"

	"climawatch/backend/services/climate-service/internal/models"
)

// DefaultOutageThreshold is the inactivity gap after which a sensor counts as offline.
const DefaultOutageThreshold = 20 * time.Minute

// UnknownSensorName labels readings whose sensor is missing from the metadata.
const UnknownSensorName = "Unknown"

// SensorStatistics summarises one sensor over the window. Count includes readings without a
// value for the analysed quantity; ValueCount only those that entered the statistics.
type SensorStatistics struct {
	SensorID   int64             `json:"sensor_id"`
	Name       string            `json:"name"`
	Type       models.SensorType `json:"type"`
	Count      int               `json:"count"`
	ValueCount int               `json:"value_count"`
	Min        float64           `json:"min"`
	Max        float64           `json:"max"`
	Mean       float64           `json:"mean"`
	StdDev     float64           `json:"stddev"`
}

// OutageEvent is a gap between two consecutive readings of one sensor.
type OutageEvent struct {
	SensorID        int64     `json:"sensor_id"`
	SensorName      string    `json:"sensor_name"`
	GapStart        time.Time `json:"gap_start"`
	GapEnd          time.Time `json:"gap_end"`
	DurationMinutes int64     `json:"duration_minutes"`
}

// Report is the analytics result for one window and quantity.
type Report struct {
	Quantity      Quantity           `json:"quantity"`
	Unit          string             `json:"unit"`
	Threshold     time.Duration      `json:"-"`
	ThresholdMin  float64            `json:"threshold_minutes"`
	PerSensor     []SensorStatistics `json:"per_sensor"`
	Outages       []OutageEvent      `json:"outages"`
	TotalSamples  int                `json:"total_samples"`
	OutageCount   int                `json:"outage_count"`
	UptimePercent float64            `json:"uptime_percent"`
}

// ComputeWindow builds the report for readings. Sensors are reported in the order given,
// followed by any sensor that only appears in readings. Outages are chronological per
// sensor and grouped in that same sensor order.
func ComputeWindow(readings []models.Reading, sensors []models.Sensor, q Quantity, threshold time.Duration) Report {
	if threshold <= 0 {
		threshold = DefaultOutageThreshold
	}

	bySensor := make(map[int64][]models.Reading)
	for _, r := range readings {
		bySensor[r.SensorID] = append(bySensor[r.SensorID], r)
	}

	report := Report{
		Quantity:     q,
		Unit:         q.Unit(),
		Threshold:    threshold,
		ThresholdMin: threshold.Minutes(),
		PerSensor:    []SensorStatistics{},
		Outages:      []OutageEvent{},
		TotalSamples: len(readings),
	}

	for _, sensor := range OrderSensors(readings, sensors) {
		subset := bySensor[sensor.ID]
		slices.SortStableFunc(subset, func(a, b models.Reading) int {
			return a.Timestamp.Compare(b.Timestamp)
		})

		stats := describe(subset, q)
		stats.SensorID = sensor.ID
		stats.Name = sensor.Name
		stats.Type = sensor.Type
		report.PerSensor = append(report.PerSensor, stats)
		report.Outages = append(report.Outages, detectOutages(subset, sensor, threshold)...)
	}

	report.OutageCount = len(report.Outages)
	report.UptimePercent = Uptime(report.OutageCount)
	return report
}

// Uptime is a placeholder availability heuristic: half a percent per outage, bounded to
// [0, 100].
func Uptime(outages int) float64 {
	if outages <= 0 {
		return 100
	}
	return math.Max(0, 100-0.5*float64(outages))
}

// OrderSensors returns known sensors first and appends unknown ids by first appearance,
// named UnknownSensorName. Duplicate metadata entries are collapsed.
func OrderSensors(readings []models.Reading, sensors []models.Sensor) []models.Sensor {
	seen := make(map[int64]bool, len(sensors))
	ordered := make([]models.Sensor, 0, len(sensors))
	for _, s := range sensors {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		ordered = append(ordered, s)
	}
	for _, r := range readings {
		if seen[r.SensorID] {
			continue
		}
		seen[r.SensorID] = true
		ordered = append(ordered, models.Sensor{ID: r.SensorID, Name: UnknownSensorName})
	}
	return ordered
}

// describe expects readings of a single sensor.
func describe(readings []models.Reading, q Quantity) SensorStatistics {
	stats := SensorStatistics{Count: len(readings)}

	values := make([]float64, 0, len(readings))
	for _, r := range readings {
		if v, ok := q.Value(r); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return stats
	}

	minV, maxV, sum := values[0], values[0], 0.0
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
		sum += v
	}
	n := float64(len(values))

	stats.ValueCount = len(values)
	stats.Min = minV
	stats.Max = maxV
	if minV == maxV {
		// sum/n can drift by an ulp for a constant series
		stats.Mean = minV
		return stats
	}

	mean := sum / n
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	stats.Mean = mean
	stats.StdDev = math.Sqrt(sq / n)
	return stats
}

// detectOutages expects readings sorted by timestamp.
func detectOutages(readings []models.Reading, sensor models.Sensor, threshold time.Duration) []OutageEvent {
	var events []OutageEvent
	for i := 1; i < len(readings); i++ {
		prev, curr := readings[i-1].Timestamp, readings[i].Timestamp
		gap := curr.Sub(prev)
		if gap <= threshold {
			continue
		}
		events = append(events, OutageEvent{
			SensorID:        sensor.ID,
			SensorName:      sensor.Name,
			GapStart:        prev,
			GapEnd:          curr,
			DurationMinutes: int64(gap / time.Minute),
		})
	}
	return events
}
