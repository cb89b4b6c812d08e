package forecast

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned for timestamps in none of the accepted layouts.
var ErrInvalidTimestamp = errors.New("forecast: invalid timestamp")

// Layouts without a zone are read in the caller's location. The second form is the
// document id format used by the history store.
var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// RawSample carries a sample whose timestamp has not been parsed yet.
type RawSample struct {
	Timestamp string   `json:"timestamp"`
	Value     *float64 `json:"value"`
}

// ParseTimestamp parses RFC 3339 or one of the zone-less local layouts. A nil loc means UTC.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	if loc == nil {
		loc = time.UTC
	}

	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts, nil
	}
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// SamplesFromRaw converts raw samples, dropping the ones with a malformed timestamp or no
// value. skipped counts the dropped entries.
func SamplesFromRaw(raw []RawSample, loc *time.Location) (samples []Sample, skipped int) {
	samples = make([]Sample, 0, len(raw))
	for _, r := range raw {
		if r.Value == nil {
			skipped++
			continue
		}
		ts, err := ParseTimestamp(r.Timestamp, loc)
		if err != nil {
			skipped++
			continue
		}
		samples = append(samples, Sample{Timestamp: ts, Value: *r.Value})
	}
	return samples, skipped
}
