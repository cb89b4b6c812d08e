// Package report renders readings and analytics as CSV downloads.
package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"climawatch/backend/services/climate-service/internal/analytics"
	"climawatch/backend/services/climate-service/internal/models"
)

// TimeLayout is the layout of timestamps in exported files.
const TimeLayout = "2006-01-02 15:04:05"

var readingsHeader = []string{"timestamp", "sensor_id", "sensor", "temperature", "humidity"}

var summaryHeader = []string{
	"section", "sensor_id", "sensor", "count", "value_count", "min", "max", "mean", "stddev",
	"gap_start", "gap_end", "duration_minutes",
}

// WriteReadings writes one row per reading with timestamps shown in loc.
func WriteReadings(w io.Writer, readings []models.Reading, sensors []models.Sensor, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	names := make(map[int64]string, len(sensors))
	for _, s := range sensors {
		names[s.ID] = s.Name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(readingsHeader); err != nil {
		return err
	}
	for _, r := range readings {
		name, ok := names[r.SensorID]
		if !ok {
			name = analytics.UnknownSensorName
		}
		row := []string{
			r.Timestamp.In(loc).Format(TimeLayout),
			strconv.FormatInt(r.SensorID, 10),
			name,
			formatValue(r.Temperature),
			formatValue(r.Humidity),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the per-sensor statistics followed by the outages of a report.
func WriteSummary(w io.Writer, rep analytics.Report, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	for _, s := range rep.PerSensor {
		row := []string{
			"sensor",
			strconv.FormatInt(s.SensorID, 10),
			s.Name,
			strconv.Itoa(s.Count),
			strconv.Itoa(s.ValueCount),
			"", "", "", "",
			"", "", "",
		}
		if s.ValueCount > 0 {
			row[5] = fixed(s.Min, 1)
			row[6] = fixed(s.Max, 1)
			row[7] = fixed(s.Mean, 1)
			row[8] = fixed(s.StdDev, 2)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	for _, o := range rep.Outages {
		row := []string{
			"outage",
			strconv.FormatInt(o.SensorID, 10),
			o.SensorName,
			"", "", "", "", "", "",
			o.GapStart.In(loc).Format(TimeLayout),
			o.GapEnd.In(loc).Format(TimeLayout),
			strconv.FormatInt(o.DurationMinutes, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName returns a download name such as "climawatch-summary-temperature-20260314-0800.csv".
func FileName(kind string, q analytics.Quantity, at time.Time) string {
	parts := []string{"climawatch", kind, string(q), at.Format("20060102-1504")}
	return slug.Make(strings.Join(parts, " ")) + ".csv"
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return fixed(*v, 1)
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
