package analytics

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climawatch/backend/services/climate-service/internal/models"
)

var t0 = time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)

var (
	sala   = models.Sensor{ID: 1, Name: "sala", Type: models.SensorTypeESP32}
	cuarto = models.Sensor{ID: 2, Name: "cuarto", Type: models.SensorTypeESP32}
	local  = models.Sensor{ID: 3, Name: "local", Type: models.SensorTypeOpenWeather}
)

func reading(sensorID int64, offset time.Duration, temp, hum *float64) models.Reading {
	return models.Reading{SensorID: sensorID, Timestamp: t0.Add(offset), Temperature: temp, Humidity: hum}
}

func TestComputeWindowEmpty(t *testing.T) {
	report := ComputeWindow(nil, nil, Temperature, DefaultOutageThreshold)

	assert.Equal(t, 0, report.TotalSamples)
	assert.Equal(t, 0, report.OutageCount)
	assert.Empty(t, report.Outages)
	assert.Empty(t, report.PerSensor)
	assert.Equal(t, 100.0, report.UptimePercent)
}

func TestComputeWindowSensorWithoutReadingsIsZeroState(t *testing.T) {
	report := ComputeWindow(nil, []models.Sensor{sala}, Humidity, DefaultOutageThreshold)

	require.Len(t, report.PerSensor, 1)
	assert.Equal(t, SensorStatistics{SensorID: 1, Name: "sala", Type: models.SensorTypeESP32}, report.PerSensor[0])
}

func TestComputeWindowSingleOutage(t *testing.T) {
	readings := []models.Reading{
		reading(1, 0, models.Float(20), nil),
		reading(1, 5*time.Minute, models.Float(21), nil),
		reading(1, 30*time.Minute, models.Float(22), nil),
	}

	report := ComputeWindow(readings, []models.Sensor{sala}, Temperature, 20*time.Minute)

	require.Len(t, report.Outages, 1)
	outage := report.Outages[0]
	assert.Equal(t, int64(1), outage.SensorID)
	assert.Equal(t, "sala", outage.SensorName)
	assert.Equal(t, t0.Add(5*time.Minute), outage.GapStart)
	assert.Equal(t, t0.Add(30*time.Minute), outage.GapEnd)
	assert.Equal(t, int64(25), outage.DurationMinutes)
	assert.Equal(t, 1, report.OutageCount)
	assert.Equal(t, 99.5, report.UptimePercent)
}

func TestComputeWindowNoGapMeansFullUptime(t *testing.T) {
	var readings []models.Reading
	for i := 0; i < 10; i++ {
		readings = append(readings, reading(1, time.Duration(i)*15*time.Minute, models.Float(20), nil))
	}
	// exactly at the threshold is not an outage
	readings = append(readings, reading(1, 9*15*time.Minute+20*time.Minute, models.Float(20), nil))

	report := ComputeWindow(readings, []models.Sensor{sala}, Temperature, 20*time.Minute)

	assert.Empty(t, report.Outages)
	assert.Equal(t, 100.0, report.UptimePercent)
}

func TestComputeWindowStatistics(t *testing.T) {
	readings := []models.Reading{
		reading(1, 0, models.Float(1), nil),
		reading(1, time.Minute, models.Float(2), nil),
		reading(1, 2*time.Minute, models.Float(3), nil),
		reading(2, 0, models.Float(0.1), nil),
		reading(2, time.Minute, models.Float(0.1), nil),
		reading(2, 2*time.Minute, models.Float(0.1), nil),
	}

	report := ComputeWindow(readings, []models.Sensor{sala, cuarto}, Temperature, DefaultOutageThreshold)
	require.Len(t, report.PerSensor, 2)

	s := report.PerSensor[0]
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 3.0, s.Max)
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), s.StdDev, 1e-12)

	c := report.PerSensor[1]
	assert.Equal(t, 0.1, c.Mean)
	assert.Equal(t, 0.0, c.StdDev)
}

func TestComputeWindowNullValuesKeepSensorAlive(t *testing.T) {
	readings := []models.Reading{
		reading(1, 0, models.Float(20), models.Float(50)),
		reading(1, 15*time.Minute, nil, models.Float(52)),
		reading(1, 30*time.Minute, models.Float(math.NaN()), nil),
		reading(1, 45*time.Minute, models.Float(22), nil),
	}

	report := ComputeWindow(readings, []models.Sensor{sala}, Temperature, 20*time.Minute)

	assert.Empty(t, report.Outages, "readings without a value still prove connectivity")
	require.Len(t, report.PerSensor, 1)
	assert.Equal(t, 4, report.PerSensor[0].Count)
	assert.Equal(t, 2, report.PerSensor[0].ValueCount)
	assert.Equal(t, 21.0, report.PerSensor[0].Mean)

	humidity := ComputeWindow(readings, []models.Sensor{sala}, Humidity, 20*time.Minute)
	assert.Equal(t, 2, humidity.PerSensor[0].ValueCount)
	assert.Equal(t, 51.0, humidity.PerSensor[0].Mean)
}

func TestComputeWindowCountsSumToTotal(t *testing.T) {
	readings := []models.Reading{
		reading(1, 0, models.Float(20), nil),
		reading(2, 0, nil, nil),
		reading(3, 0, models.Float(15), nil),
		reading(9, 0, models.Float(18), nil),
		reading(9, 40*time.Minute, models.Float(18), nil),
	}

	report := ComputeWindow(readings, []models.Sensor{sala, cuarto, local}, Temperature, DefaultOutageThreshold)

	total := 0
	for _, s := range report.PerSensor {
		total += s.Count
	}
	assert.Equal(t, report.TotalSamples, total)
	require.Len(t, report.PerSensor, 4)
	assert.Equal(t, UnknownSensorName, report.PerSensor[3].Name)
	require.Len(t, report.Outages, 1)
	assert.Equal(t, int64(9), report.Outages[0].SensorID)
}

func TestComputeWindowOutagesFollowSensorOrder(t *testing.T) {
	readings := []models.Reading{
		reading(2, 0, models.Float(20), nil),
		reading(2, time.Hour, models.Float(20), nil),
		reading(1, 2*time.Hour, models.Float(20), nil),
		reading(1, 3*time.Hour, models.Float(20), nil),
		reading(1, 0, models.Float(20), nil),
	}

	report := ComputeWindow(readings, []models.Sensor{sala, cuarto}, Temperature, DefaultOutageThreshold)

	require.Len(t, report.Outages, 3)
	assert.Equal(t, int64(1), report.Outages[0].SensorID)
	assert.Equal(t, t0, report.Outages[0].GapStart)
	assert.Equal(t, int64(1), report.Outages[1].SensorID)
	assert.Equal(t, t0.Add(2*time.Hour), report.Outages[1].GapStart)
	assert.Equal(t, int64(2), report.Outages[2].SensorID)
}

func TestComputeWindowShuffledInputMatchesSorted(t *testing.T) {
	offsets := []time.Duration{0, 5, 12, 40, 41, 55, 90, 91, 130}
	var sorted []models.Reading
	for i, off := range offsets {
		sorted = append(sorted, reading(1, off*time.Minute, models.Float(18+float64(i)*0.7), nil))
		sorted = append(sorted, reading(2, off*time.Minute*2, nil, models.Float(40+float64(i))))
	}

	shuffled := make([]models.Reading, len(sorted))
	copy(shuffled, sorted)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	sensors := []models.Sensor{sala, cuarto}
	for _, q := range []Quantity{Temperature, Humidity} {
		want := ComputeWindow(sorted, sensors, q, 20*time.Minute)
		got := ComputeWindow(shuffled, sensors, q, 20*time.Minute)

		assert.Equal(t, want.Outages, got.Outages)
		require.Len(t, got.PerSensor, len(want.PerSensor))
		for i := range want.PerSensor {
			assert.Equal(t, want.PerSensor[i].Count, got.PerSensor[i].Count)
			assert.Equal(t, want.PerSensor[i].Min, got.PerSensor[i].Min)
			assert.Equal(t, want.PerSensor[i].Max, got.PerSensor[i].Max)
			assert.InDelta(t, want.PerSensor[i].Mean, got.PerSensor[i].Mean, 1e-9)
			assert.InDelta(t, want.PerSensor[i].StdDev, got.PerSensor[i].StdDev, 1e-9)
		}
		assert.NotEmpty(t, got.Outages)
	}
}

func TestComputeWindowDefaultsThreshold(t *testing.T) {
	readings := []models.Reading{
		reading(1, 0, models.Float(20), nil),
		reading(1, 19*time.Minute, models.Float(20), nil),
		reading(1, 40*time.Minute, models.Float(20), nil),
	}

	report := ComputeWindow(readings, []models.Sensor{sala}, Temperature, 0)

	assert.Equal(t, DefaultOutageThreshold, report.Threshold)
	assert.Len(t, report.Outages, 1)
}

func TestUptimeIsClamped(t *testing.T) {
	assert.Equal(t, 100.0, Uptime(0))
	assert.Equal(t, 95.0, Uptime(10))
	assert.Equal(t, 0.0, Uptime(200))
	assert.Equal(t, 0.0, Uptime(350))
}
