package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libdb "climawatch/backend/libs/db"
	libredis "climawatch/backend/libs/redis"
	"climawatch/backend/services/climate-service/internal/config"
	httpserver "climawatch/backend/services/climate-service/internal/http"
	"climawatch/backend/services/climate-service/internal/http/handlers"
	"climawatch/backend/services/climate-service/internal/http/middleware"
	"climawatch/backend/services/climate-service/internal/redisstore"
	"climawatch/backend/services/climate-service/internal/repository"
	"climawatch/backend/services/climate-service/internal/service"
	"climawatch/backend/services/climate-service/internal/weather"
	"climawatch/backend/services/climate-service/internal/worker"
	"climawatch/backend/services/climate-service/internal/ws"
)

// App wires climate-service dependencies.
type App struct {
	server      *httpserver.Server
	poller      *worker.WeatherPoller
	relay       *ws.Relay
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := repository.EnsureSchema(context.Background(), sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	redisClient, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	sensorRepo := repository.NewSensorRepository(sqlDB)
	readingRepo := repository.NewReadingRepository(sqlDB)
	liveStore := redisstore.NewLiveStore(redisClient)

	climateService := service.NewClimateService(sensorRepo, readingRepo, service.Options{
		DefaultWindow:   cfg.DefaultWindow(),
		OutageThreshold: cfg.OutageThreshold(),
		ForecastSteps:   cfg.Analysis.ForecastSteps,
		ForecastStep:    cfg.ForecastStep(),
		Location:        cfg.Location(),

		MaxWindow:        cfg.MaxWindow(),
		MaxForecastSteps: cfg.Analysis.MaxForecastSteps,
	}, logger)
	ingestService := service.NewIngestService(sensorRepo, readingRepo, liveStore, logger)

	weatherClient := weather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, weather.NewDefaultHTTPClient(cfg.WeatherTimeout()))
	poller, err := worker.NewWeatherPoller(weatherClient, sensorRepo, ingestService,
		cfg.Weather.Schedule, cfg.WeatherTimeout(), cfg.WeatherEnabled(), logger.Named("weather"))
	if err != nil {
		sqlDB.Close()
		redisClient.Close()
		return nil, err
	}

	manager := ws.NewManager(cfg.PingInterval())
	wsServer := ws.NewServer(manager, liveStore, cfg.WriteTimeout(), logger.Named("ws"))
	relay := ws.NewRelay(liveStore, manager, logger.Named("ws"))

	routes := httpserver.Routes{
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"postgres": sqlDB.PingContext,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		}),
		Sensors:       handlers.NewSensorsHandlers(climateService, logger),
		Ingest:        handlers.NewIngestHandler(ingestService, cfg.Location(), logger),
		IngestLimiter: middleware.NewRateLimiter(cfg.Ingest.Rate, cfg.Ingest.Burst),
		History:       handlers.NewHistoryHandlers(climateService, logger),
		Report:        handlers.NewReportHandler(climateService, logger),
		Stream:        handlers.NewStreamHandler(liveStore, logger),
		WS:            http.HandlerFunc(wsServer.HandleWS),
	}

	router := httpserver.NewRouter(routes, logger)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		poller:      poller,
		relay:       relay,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run serves HTTP and runs the background workers until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := a.relay.Run(ctx); err != nil {
			a.logger.Error("live relay stopped", zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := a.poller.Run(ctx); err != nil {
			a.logger.Error("weather poller stopped", zap.Error(err))
		}
	}()

	err := a.server.Run(ctx)
	cancel()
	wg.Wait()
	return err
}

// Close releases resources.
func (a *App) Close() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
}
