package forecast

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

func linearSeries(n int, slope, intercept float64) []Sample {
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, Sample{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Value:     slope*float64(i) + intercept,
		})
	}
	return samples
}

func TestBuildTrendModelRecoversLine(t *testing.T) {
	model, err := BuildTrendModel(linearSeries(12, 2, 3))
	require.NoError(t, err)

	assert.InDelta(t, 2.0, model.Slope(), 1e-9)
	assert.InDelta(t, 3.0, model.Intercept(), 1e-9)
	assert.Equal(t, base, model.ReferenceTime())
	assert.Equal(t, 12, model.SampleCount())
	assert.InDelta(t, 2*60+3.0, model.Predict(base.Add(time.Hour)), 1e-9)
}

func TestBuildTrendModelInsufficientData(t *testing.T) {
	cases := map[string][]Sample{
		"nil":    nil,
		"empty":  {},
		"single": {{Timestamp: base, Value: 21.5}},
		"one usable": {
			{Timestamp: base, Value: math.NaN()},
			{Timestamp: base.Add(time.Minute), Value: 20},
			{Timestamp: base.Add(2 * time.Minute), Value: math.Inf(1)},
		},
		"zero timestamp": {
			{Value: 20},
			{Timestamp: base, Value: 21},
		},
	}

	for name, samples := range cases {
		t.Run(name, func(t *testing.T) {
			model, err := BuildTrendModel(samples)
			assert.Nil(t, model)
			assert.ErrorIs(t, err, ErrInsufficientData)
		})
	}
}

func TestBuildTrendModelDegenerateTimestamps(t *testing.T) {
	model, err := BuildTrendModel([]Sample{
		{Timestamp: base, Value: 20},
		{Timestamp: base, Value: 22},
		{Timestamp: base, Value: 24},
	})

	assert.Nil(t, model)
	assert.ErrorIs(t, err, ErrDegenerateSeries)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestTwoPointModelPassesThroughBoth(t *testing.T) {
	a := Sample{Timestamp: base, Value: 18.4}
	b := Sample{Timestamp: base.Add(37*time.Minute + 30*time.Second), Value: 23.1}

	model, err := BuildTrendModel([]Sample{b, a})
	require.NoError(t, err)

	assert.InDelta(t, a.Value, model.Predict(a.Timestamp), 1e-9)
	assert.InDelta(t, b.Value, model.Predict(b.Timestamp), 1e-9)
}

func TestPredictIsLinearInTime(t *testing.T) {
	samples := []Sample{
		{Timestamp: base, Value: 19.2},
		{Timestamp: base.Add(15 * time.Minute), Value: 19.9},
		{Timestamp: base.Add(31 * time.Minute), Value: 19.6},
		{Timestamp: base.Add(44 * time.Minute), Value: 20.8},
		{Timestamp: base.Add(90 * time.Minute), Value: 21.3},
	}
	model, err := BuildTrendModel(samples)
	require.NoError(t, err)

	a := base.Add(6 * time.Hour)
	b := base.Add(-2*time.Hour + 17*time.Second)
	want := model.Slope() * a.Sub(b).Minutes()
	assert.InDelta(t, want, model.Predict(a)-model.Predict(b), 1e-9)
}

func TestBuildTrendModelIgnoresInputOrder(t *testing.T) {
	sorted := []Sample{
		{Timestamp: base, Value: 21.0},
		{Timestamp: base.Add(10 * time.Minute), Value: 21.4},
		{Timestamp: base.Add(20 * time.Minute), Value: 21.1},
		{Timestamp: base.Add(35 * time.Minute), Value: 22.0},
		{Timestamp: base.Add(50 * time.Minute), Value: 22.6},
	}
	shuffled := make([]Sample, len(sorted))
	copy(shuffled, sorted)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	before := make([]Sample, len(shuffled))
	copy(before, shuffled)

	want, err := BuildTrendModel(sorted)
	require.NoError(t, err)
	got, err := BuildTrendModel(shuffled)
	require.NoError(t, err)

	assert.InDelta(t, want.Slope(), got.Slope(), 1e-9)
	assert.InDelta(t, want.Intercept(), got.Intercept(), 1e-9)
	assert.Equal(t, base, got.ReferenceTime())
	assert.Equal(t, before, shuffled, "input slice must not be reordered")
}

func TestProject(t *testing.T) {
	model, err := BuildTrendModel(linearSeries(3, 0.5, 10))
	require.NoError(t, err)

	from := base.Add(time.Hour)
	points := model.Project(from, time.Hour, 4)
	require.Len(t, points, 4)
	for i, p := range points {
		at := from.Add(time.Duration(i+1) * time.Hour)
		assert.Equal(t, at, p.Timestamp)
		assert.InDelta(t, 0.5*at.Sub(base).Minutes()+10, p.Value, 1e-9)
	}

	assert.Empty(t, model.Project(from, time.Hour, 0))
	assert.Empty(t, model.Project(from, 0, 4))
}

func TestCoefficients(t *testing.T) {
	model, err := BuildTrendModel(linearSeries(4, -1, 5))
	require.NoError(t, err)

	c := model.Coefficients()
	assert.InDelta(t, -1.0, c.Slope, 1e-9)
	assert.InDelta(t, 5.0, c.Intercept, 1e-9)
	assert.Equal(t, base, c.ReferenceTime)
	assert.Equal(t, 4, c.Samples)
}
