// Package forecast fits straight-line trends to sensor series and projects them forward.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"
)

var (
	// ErrInsufficientData means fewer than two usable samples were supplied. It is the
	// "no model" outcome and is not fatal to callers.
	ErrInsufficientData = errors.New("forecast: insufficient data")
	// ErrDegenerateSeries means every sample shares one timestamp, so no slope exists.
	ErrDegenerateSeries = fmt.Errorf("%w: samples share a single timestamp", ErrInsufficientData)
)

// Sample is one scalar observation of a single series.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Coefficients is a serialisable view of a fitted model.
type Coefficients struct {
	Slope         float64   `json:"slope_per_minute"`
	Intercept     float64   `json:"intercept"`
	ReferenceTime time.Time `json:"reference_time"`
	Samples       int       `json:"samples"`
}

// TrendModel is an ordinary least squares line over minutes since the earliest sample.
type TrendModel struct {
	slope     float64
	intercept float64
	reference time.Time
	samples   int
}

// BuildTrendModel fits a model to samples. Samples with non-finite values or zero
// timestamps are ignored, and the rest are fitted in chronological order regardless of
// the order given.
func BuildTrendModel(samples []Sample) (*TrendModel, error) {
	usable := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.Timestamp.IsZero() || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
			continue
		}
		usable = append(usable, s)
	}
	if len(usable) < 2 {
		return nil, ErrInsufficientData
	}

	slices.SortStableFunc(usable, func(a, b Sample) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	origin := usable[0].Timestamp
	n := float64(len(usable))

	var sumX, sumY, sumXX, sumXY float64
	for _, s := range usable {
		x := minutesBetween(origin, s.Timestamp)
		sumX += x
		sumY += s.Value
		sumXX += x * x
		sumXY += x * s.Value
	}

	den := n*sumXX - sumX*sumX
	if den == 0 {
		return nil, ErrDegenerateSeries
	}

	slope := (n*sumXY - sumX*sumY) / den
	intercept := (sumY - slope*sumX) / n
	if !isFinite(slope) || !isFinite(intercept) {
		return nil, ErrInsufficientData
	}

	return &TrendModel{
		slope:     slope,
		intercept: intercept,
		reference: origin,
		samples:   len(usable),
	}, nil
}

// Predict evaluates the trend line at the given instant.
func (m *TrendModel) Predict(at time.Time) float64 {
	return m.slope*minutesBetween(m.reference, at) + m.intercept
}

// Slope returns the change in value per minute.
func (m *TrendModel) Slope() float64 {
	return m.slope
}

// Intercept returns the fitted value at the reference time.
func (m *TrendModel) Intercept() float64 {
	return m.intercept
}

// ReferenceTime returns the timestamp of the earliest fitted sample.
func (m *TrendModel) ReferenceTime() time.Time {
	return m.reference
}

// SampleCount returns how many samples went into the fit.
func (m *TrendModel) SampleCount() int {
	return m.samples
}

// Coefficients returns the fitted line in serialisable form.
func (m *TrendModel) Coefficients() Coefficients {
	return Coefficients{
		Slope:         m.slope,
		Intercept:     m.intercept,
		ReferenceTime: m.reference,
		Samples:       m.samples,
	}
}

func minutesBetween(from, to time.Time) float64 {
	return float64(to.Sub(from)) / float64(time.Minute)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
