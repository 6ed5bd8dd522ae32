package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	infragin "github.com/jonesrussell/north-cloud/triage/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/triage/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/triage/infrastructure/profiling"
	"github.com/jonesrussell/north-cloud/triage/internal/api"
	"github.com/jonesrussell/north-cloud/triage/internal/config"
	"github.com/jonesrussell/north-cloud/triage/internal/pipeline"
	"github.com/jonesrussell/north-cloud/triage/internal/ratelimit"
	"github.com/jonesrussell/north-cloud/triage/internal/telemetry"
)

const sweepInterval = time.Minute

// App is the assembled HTTP service.
type App struct {
	cfg       *config.Config
	logger    infralogger.Logger
	db        *DatabaseComponents
	redis     *redis.Client
	models    *Models
	telemetry *telemetry.Provider
	pipeline  *pipeline.Pipeline
	limiter   *ratelimit.PerUser
	server    *infragin.Server
}

// NewApp connects every dependency and builds the server. Close releases
// whatever was opened, including on a partial failure.
func NewApp(ctx context.Context, cfg *config.Config, logger infralogger.Logger) (*App, error) {
	app := &App{
		cfg:       cfg,
		logger:    logger,
		telemetry: telemetry.NewProvider(nil),
	}

	db, err := SetupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	app.redis = SetupRedis(ctx, cfg, logger)

	app.models, err = SetupModels(cfg, app.redis, app.telemetry, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.pipeline = SetupPipeline(cfg, app.models, db.Repo, app.telemetry, logger)

	var limiter api.Limiter
	if cfg.RateLimit.Enabled {
		app.limiter = ratelimit.NewPerUser(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		app.limiter.SetIdleTTL(cfg.RateLimit.IdleTTL)
		limiter = app.limiter
	}

	handler := api.NewHandler(api.Config{
		JWTSecret:     cfg.Auth.JWTSecret,
		AdminPassword: cfg.Auth.AdminPassword,
		TokenTTL:      cfg.Auth.TokenTTL,
	}, api.Deps{
		Pipeline:  app.pipeline,
		Store:     db.Repo,
		Limiter:   limiter,
		Telemetry: app.telemetry,
		Logger:    logger,
	})

	app.server = app.buildServer(handler)
	return app, nil
}

func (a *App) buildServer(handler *api.Handler) *infragin.Server {
	builder := infragin.NewServerBuilder(a.cfg.Service.Name, a.cfg.Service.Port).
		WithLogger(a.logger).
		WithDebug(a.cfg.Service.Debug).
		WithVersion(a.cfg.Service.Version).
		WithCORSOrigins(a.cfg.CORS.AllowedOrigins).
		WithHealthCheck("database", infragin.PingChecker("database", true, a.db.Repo.Ping)).
		WithRoutes(func(router *gin.Engine) {
			api.SetupRoutes(router, handler)
		})

	if a.redis != nil {
		builder = builder.WithHealthCheck("redis", infragin.PingChecker("redis", false, func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}))
	}
	if a.models.ML != nil {
		builder = builder.WithHealthCheck("ml", infragin.PingChecker("ml sidecar", false, a.models.ML.Ping))
	}

	return builder.Build()
}

// Run serves until ctx is cancelled or a shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.limiter != nil {
		go a.limiter.RunSweeper(ctx, sweepInterval)
	}
	profiling.Start(ctx, a.cfg.Service.PprofAddr, a.logger)

	a.logger.Info("Starting triage service",
		infralogger.Int("port", a.cfg.Service.Port),
		infralogger.String("version", a.cfg.Service.Version),
	)
	return a.server.RunWithGracefulShutdown(ctx)
}

// Close releases the database and redis connections.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
