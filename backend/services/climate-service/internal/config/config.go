package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "climawatch/backend/libs/config"
)

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Port string `yaml:"port" env:"CLIMATE_HTTP_PORT"`
}

// DatabaseConfig holds Postgres settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"CLIMATE_POSTGRES_DSN"`
}

// RedisConfig holds live state store settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"CLIMATE_REDIS_ADDR"`
	Password string `yaml:"password" env:"CLIMATE_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"CLIMATE_REDIS_DB"`
}

// AnalysisConfig tunes analytics and forecasting.
type AnalysisConfig struct {
	OutageThresholdMinutes int    `yaml:"outage_threshold_minutes" env:"CLIMATE_OUTAGE_THRESHOLD_MINUTES"`
	DefaultWindowHours     int    `yaml:"default_window_hours" env:"CLIMATE_DEFAULT_WINDOW_HOURS"`
	ForecastSteps          int    `yaml:"forecast_steps" env:"CLIMATE_FORECAST_STEPS"`
	ForecastStepMinutes    int    `yaml:"forecast_step_minutes" env:"CLIMATE_FORECAST_STEP_MINUTES"`
	MaxForecastSteps       int    `yaml:"max_forecast_steps" env:"CLIMATE_MAX_FORECAST_STEPS"`
	MaxWindowHours         int    `yaml:"max_window_hours" env:"CLIMATE_MAX_WINDOW_HOURS"`
	Timezone               string `yaml:"timezone" env:"CLIMATE_TIMEZONE"`
}

// IngestConfig limits sensor traffic per client.
type IngestConfig struct {
	Rate  float64 `yaml:"rate" env:"CLIMATE_INGEST_RATE"`
	Burst int     `yaml:"burst" env:"CLIMATE_INGEST_BURST"`
}

// WeatherConfig configures the outdoor conditions poller.
type WeatherConfig struct {
	APIKey         string `yaml:"api_key" env:"OPENWEATHER_API_KEY"`
	BaseURL        string `yaml:"base_url" env:"CLIMATE_WEATHER_BASE_URL"`
	Schedule       string `yaml:"schedule" env:"CLIMATE_WEATHER_SCHEDULE"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"CLIMATE_WEATHER_TIMEOUT_SECONDS"`
}

// LiveConfig configures websocket viewers.
type LiveConfig struct {
	PingSeconds         int `yaml:"ping_seconds" env:"CLIMATE_WS_PING_SECONDS"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds" env:"CLIMATE_WS_WRITE_TIMEOUT_SECONDS"`
}

// Config defines climate service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Weather  WeatherConfig  `yaml:"weather"`
	Live     LiveConfig     `yaml:"live"`

	location *time.Location
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		HTTP:  HTTPConfig{Port: "8090"},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Analysis: AnalysisConfig{
			OutageThresholdMinutes: 20,
			DefaultWindowHours:     6,
			ForecastSteps:          4,
			ForecastStepMinutes:    60,
			MaxForecastSteps:       168,
			MaxWindowHours:         24 * 366,
			Timezone:               "America/Guayaquil",
		},
		Ingest: IngestConfig{Rate: 5, Burst: 10},
		Weather: WeatherConfig{
			Schedule:       "@every 15m",
			TimeoutSeconds: 5,
		},
		Live: LiveConfig{PingSeconds: 30, WriteTimeoutSeconds: 10},
	}
}

// Load configuration using shared helper.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and resolves the timezone.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database dsn required")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("config: redis addr required")
	}
	if c.Analysis.OutageThresholdMinutes <= 0 {
		return errors.New("config: outage threshold must be positive")
	}
	if c.Analysis.MaxForecastSteps <= 0 || c.Analysis.ForecastSteps > c.Analysis.MaxForecastSteps {
		return errors.New("config: forecast steps must be positive and within max_forecast_steps")
	}
	if c.Analysis.MaxWindowHours <= 0 || c.Analysis.DefaultWindowHours > c.Analysis.MaxWindowHours {
		return errors.New("config: max window must be positive and cover the default window")
	}
	loc, err := time.LoadLocation(c.Analysis.Timezone)
	if err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Analysis.Timezone, err)
	}
	c.location = loc
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8090"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// OutageThreshold is the gap that counts as an outage.
func (c *Config) OutageThreshold() time.Duration {
	return time.Duration(c.Analysis.OutageThresholdMinutes) * time.Minute
}

// DefaultWindow is the history span used when a request gives none.
func (c *Config) DefaultWindow() time.Duration {
	return time.Duration(c.Analysis.DefaultWindowHours) * time.Hour
}

// MaxWindow is the longest history span a request may ask for.
func (c *Config) MaxWindow() time.Duration {
	return time.Duration(c.Analysis.MaxWindowHours) * time.Hour
}

// ForecastStep is the spacing of projected points.
func (c *Config) ForecastStep() time.Duration {
	return time.Duration(c.Analysis.ForecastStepMinutes) * time.Minute
}

// Location is the zone for naive timestamps and exported files. UTC before Validate.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// WeatherEnabled reports whether an OpenWeather key is configured.
func (c *Config) WeatherEnabled() bool {
	return strings.TrimSpace(c.Weather.APIKey) != ""
}

// WeatherTimeout bounds one provider call.
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.Weather.TimeoutSeconds) * time.Second
}

// PingInterval is how often websocket viewers are pinged.
func (c *Config) PingInterval() time.Duration {
	return time.Duration(c.Live.PingSeconds) * time.Second
}

// WriteTimeout bounds a single websocket write.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Live.WriteTimeoutSeconds) * time.Second
}
