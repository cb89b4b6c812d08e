package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"climawatch/backend/services/climate-service/internal/analytics"
	"climawatch/backend/services/climate-service/internal/forecast"
	"climawatch/backend/services/climate-service/internal/models"
	"climawatch/backend/services/climate-service/internal/repository"
)

var (
	// ErrSensorNotFound is returned when a reading names an unregistered sensor.
	ErrSensorNotFound = errors.New("sensor not found")
	// ErrEmptyReading is returned when a reading carries neither temperature nor humidity.
	ErrEmptyReading = errors.New("reading has no values")
	// ErrInvalidWindow is returned for malformed or inverted time windows.
	ErrInvalidWindow = errors.New("invalid time window")
	// ErrInvalidSensor is returned when a sensor registration is incomplete.
	ErrInvalidSensor = errors.New("invalid sensor")
	// ErrSensorExists is returned when the sensor name is taken.
	ErrSensorExists = errors.New("sensor already exists")
	// ErrInvalidSteps is returned when a projection asks for more points than allowed.
	ErrInvalidSteps = errors.New("invalid forecast steps")
)

// SensorStore is the sensor metadata the services read and write.
type SensorStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.Sensor, error)
	Get(ctx context.Context, id int64) (*models.Sensor, error)
	GetByName(ctx context.Context, name string) (*models.Sensor, error)
	Create(ctx context.Context, sensor *models.Sensor) error
}

// ReadingStore is the reading history the services read and write.
type ReadingStore interface {
	Insert(ctx context.Context, reading *models.Reading) error
	Between(ctx context.Context, from, to time.Time, sensorID int64) ([]models.Reading, error)
}

// Options tune the analysis defaults.
type Options struct {
	DefaultWindow   time.Duration
	OutageThreshold time.Duration
	ForecastSteps   int
	ForecastStep    time.Duration
	Location        *time.Location

	MaxWindow        time.Duration
	MaxForecastSteps int
}

const (
	defaultMaxWindow        = 366 * 24 * time.Hour
	defaultMaxForecastSteps = 168
)

// Window is a closed time range.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SensorForecast is the projection for one sensor. When Available is false Reason says why.
type SensorForecast struct {
	Sensor       models.Sensor          `json:"sensor"`
	Available    bool                   `json:"available"`
	Reason       string                 `json:"reason,omitempty"`
	Coefficients *forecast.Coefficients `json:"coefficients,omitempty"`
	Points       []forecast.Point       `json:"points"`
}

// ForecastResult groups per-sensor projections.
type ForecastResult struct {
	Quantity analytics.Quantity `json:"quantity"`
	Unit     string             `json:"unit"`
	Window   Window             `json:"window"`
	Sensors  []SensorForecast   `json:"sensors"`
}

// FitResult is the outcome of fitting caller-supplied samples.
type FitResult struct {
	Coefficients forecast.Coefficients `json:"coefficients"`
	Points       []forecast.Point      `json:"points"`
	Skipped      int                   `json:"skipped"`
}

// ClimateService reads history and derives analytics and forecasts from it.
type ClimateService struct {
	sensors  SensorStore
	readings ReadingStore
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
}

// NewClimateService returns service instance.
func NewClimateService(sensors SensorStore, readings ReadingStore, opts Options, logger *zap.Logger) *ClimateService {
	if opts.DefaultWindow <= 0 {
		opts.DefaultWindow = 6 * time.Hour
	}
	if opts.OutageThreshold <= 0 {
		opts.OutageThreshold = analytics.DefaultOutageThreshold
	}
	if opts.ForecastStep <= 0 {
		opts.ForecastStep = time.Hour
	}
	if opts.ForecastSteps <= 0 {
		opts.ForecastSteps = 4
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.MaxWindow <= 0 {
		opts.MaxWindow = defaultMaxWindow
	}
	if opts.MaxForecastSteps <= 0 {
		opts.MaxForecastSteps = defaultMaxForecastSteps
	}
	if opts.ForecastSteps > opts.MaxForecastSteps {
		opts.ForecastSteps = opts.MaxForecastSteps
	}
	return &ClimateService{
		sensors:  sensors,
		readings: readings,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Location is the zone used to read naive timestamps.
func (s *ClimateService) Location() *time.Location {
	return s.opts.Location
}

// ResolveWindow builds a window from explicit bounds, or the last hours when no bounds are
// given. A non-positive hours value means the default window; spans longer than the
// configured maximum are rejected.
func (s *ClimateService) ResolveWindow(hours int64, start, end string) (Window, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	now := s.now().UTC()

	if start == "" && end == "" {
		span := s.opts.DefaultWindow
		if hours > 0 {
			if hours > int64(s.opts.MaxWindow/time.Hour) {
				return Window{}, fmt.Errorf("%w: hours must not exceed %d", ErrInvalidWindow, int64(s.opts.MaxWindow/time.Hour))
			}
			span = time.Duration(hours) * time.Hour
		}
		window := Window{From: now.Add(-span), To: now}
		if window.To.Before(window.From) {
			return Window{}, fmt.Errorf("%w: end before start", ErrInvalidWindow)
		}
		return window, nil
	}

	window := Window{To: now}
	if start == "" {
		return Window{}, fmt.Errorf("%w: start is required with end", ErrInvalidWindow)
	}
	from, err := forecast.ParseTimestamp(start, s.opts.Location)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	window.From = from.UTC()
	if end != "" {
		to, err := forecast.ParseTimestamp(end, s.opts.Location)
		if err != nil {
			return Window{}, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
		}
		window.To = to.UTC()
	}
	if window.To.Before(window.From) {
		return Window{}, fmt.Errorf("%w: end before start", ErrInvalidWindow)
	}
	return window, nil
}

// Sensors returns every registered sensor.
func (s *ClimateService) Sensors(ctx context.Context) ([]models.Sensor, error) {
	return s.sensors.List(ctx, false)
}

// RegisterSensor validates and stores a new sensor.
func (s *ClimateService) RegisterSensor(ctx context.Context, sensor *models.Sensor) error {
	sensor.Name = strings.TrimSpace(sensor.Name)
	if sensor.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSensor)
	}
	if sensor.Type == "" {
		sensor.Type = models.SensorTypeESP32
	}
	if !sensor.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidSensor, sensor.Type)
	}
	if sensor.Type == models.SensorTypeOpenWeather && !sensor.HasLocation() {
		return fmt.Errorf("%w: openweather sensors need lat and lon", ErrInvalidSensor)
	}
	if err := s.sensors.Create(ctx, sensor); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%w: %s", ErrSensorExists, sensor.Name)
		}
		return err
	}
	s.logger.Info("sensor registered", zap.Int64("sensor_id", sensor.ID), zap.String("name", sensor.Name))
	return nil
}

// History returns readings inside the window, optionally for one sensor.
func (s *ClimateService) History(ctx context.Context, window Window, sensorID int64) ([]models.Reading, error) {
	return s.readings.Between(ctx, window.From, window.To, sensorID)
}

// Analytics summarises the window for the given quantity.
func (s *ClimateService) Analytics(ctx context.Context, window Window, q analytics.Quantity) (analytics.Report, error) {
	readings, sensors, err := s.load(ctx, window)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.ComputeWindow(readings, sensors, q, s.opts.OutageThreshold), nil
}

// Forecast fits one trend per sensor and projects it forward from the window end.
// Sensors without enough data are reported as unavailable.
func (s *ClimateService) Forecast(ctx context.Context, window Window, q analytics.Quantity) (ForecastResult, error) {
	readings, sensors, err := s.load(ctx, window)
	if err != nil {
		return ForecastResult{}, err
	}

	bySensor := make(map[int64][]forecast.Sample)
	for _, r := range readings {
		v, ok := q.Value(r)
		if !ok {
			continue
		}
		bySensor[r.SensorID] = append(bySensor[r.SensorID], forecast.Sample{Timestamp: r.Timestamp, Value: v})
	}

	result := ForecastResult{
		Quantity: q,
		Unit:     q.Unit(),
		Window:   window,
		Sensors:  []SensorForecast{},
	}
	for _, sensor := range analytics.OrderSensors(readings, sensors) {
		entry := SensorForecast{Sensor: sensor, Points: []forecast.Point{}}
		model, err := forecast.BuildTrendModel(bySensor[sensor.ID])
		switch {
		case errors.Is(err, forecast.ErrInsufficientData):
			entry.Reason = err.Error()
		case err != nil:
			return ForecastResult{}, err
		default:
			coef := model.Coefficients()
			entry.Available = true
			entry.Coefficients = &coef
			entry.Points = model.Project(window.To, s.opts.ForecastStep, s.opts.ForecastSteps)
		}
		result.Sensors = append(result.Sensors, entry)
	}
	return result, nil
}

// FitSamples fits caller-supplied samples. Entries with unreadable timestamps or no value
// are skipped and counted. A non-positive steps value uses the configured default.
func (s *ClimateService) FitSamples(raw []forecast.RawSample, steps int) (FitResult, error) {
	if steps > s.opts.MaxForecastSteps {
		return FitResult{}, fmt.Errorf("%w: steps must not exceed %d", ErrInvalidSteps, s.opts.MaxForecastSteps)
	}
	samples, skipped := forecast.SamplesFromRaw(raw, s.opts.Location)
	model, err := forecast.BuildTrendModel(samples)
	if err != nil {
		return FitResult{Skipped: skipped}, err
	}
	if steps <= 0 {
		steps = s.opts.ForecastSteps
	}

	var last time.Time
	for _, sample := range samples {
		if sample.Timestamp.After(last) {
			last = sample.Timestamp
		}
	}
	return FitResult{
		Coefficients: model.Coefficients(),
		Points:       model.Project(last, s.opts.ForecastStep, steps),
		Skipped:      skipped,
	}, nil
}

func (s *ClimateService) load(ctx context.Context, window Window) ([]models.Reading, []models.Sensor, error) {
	sensors, err := s.sensors.List(ctx, false)
	if err != nil {
		return nil, nil, fmt.Errorf("list sensors: %w", err)
	}
	readings, err := s.readings.Between(ctx, window.From, window.To, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("load readings: %w", err)
	}
	return readings, sensors, nil
}
