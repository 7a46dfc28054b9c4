// Package control wires configuration, storage, caching and the rules engine
// into a runnable dispatch engine.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/loadline/dispatch/internal/core/config"
	"github.com/loadline/dispatch/internal/dispatch"
	"github.com/loadline/dispatch/internal/health"
	redisclient "github.com/loadline/dispatch/internal/infra/redis"
	"github.com/loadline/dispatch/internal/infra/storage"
	"github.com/loadline/dispatch/internal/infra/storage/memory"
	"github.com/loadline/dispatch/internal/infra/storage/postgres"
	"github.com/loadline/dispatch/internal/recovery"
	"github.com/loadline/dispatch/internal/validation"
)

// Engine is the main application struct that owns the dispatch service and
// its backing dependencies.
type Engine struct {
	cfg          *config.AppConfig
	service      *dispatch.Service
	store        storage.Store
	errlog       *recovery.Log
	db           *postgres.DB
	redisClient  *redisclient.Client
	healthServer *health.Server
	log          *slog.Logger
}

// NewEngine creates an Engine with all dependencies initialized.
func NewEngine(cfg *config.AppConfig) (*Engine, error) {

	// 1. Initialize Storage
	var store storage.Store
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations. Goose needs the raw *sql.DB that sqlx wraps.
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		store = storage.Store{
			Loads:    postgres.NewLoadRepo(db),
			Drivers:  postgres.NewDriverRepo(db),
			Vehicles: postgres.NewVehicleRepo(db),
		}
		slog.Info("Using PostgreSQL storage")
	} else {
		store = memory.NewMemoryStorage().Store()
		slog.Info("Using Memory storage")
	}

	// 2. Initialize Redis (optional)
	var redisClient *redisclient.Client
	var emitter dispatch.Emitter
	var locations dispatch.LocationCache
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, events and location cache disabled", "error", err)
		} else {
			emitter = redisClient
			locations = redisClient
		}
	}

	// 3. Initialize Rules Engine and Recovery
	errlog := recovery.NewLog(cfg.Dispatch.ErrorLogSize)
	classifier := recovery.NewClassifier(errlog)
	executor := recovery.NewExecutor(classifier, slog.Default()).
		WithPolicy(cfg.Dispatch.MaxRetries, cfg.Dispatch.RetryBaseDelay, cfg.Dispatch.RetryMaxDelay)

	checker := validation.NewChecker(store).
		WithWarnWindow(time.Duration(cfg.Dispatch.ComplianceWarnDays) * 24 * time.Hour)
	validator := validation.NewLoadValidator(store, checker)

	service := dispatch.NewService(store, validator, executor, emitter, locations, slog.Default())

	// 4. Initialize Health Monitor
	var dbPinger, cachePinger health.Pinger
	if db != nil {
		dbPinger = db
	}
	if redisClient != nil {
		cachePinger = redisClient
	}
	healthMon := health.NewMonitor(dbPinger, cachePinger, errlog)
	healthServer := health.NewServer(healthMon, cfg.Server.Port)

	return &Engine{
		cfg:          cfg,
		service:      service,
		store:        store,
		errlog:       errlog,
		db:           db,
		redisClient:  redisClient,
		healthServer: healthServer,
		log:          slog.Default(),
	}, nil
}

// Service returns the dispatch service.
func (e *Engine) Service() *dispatch.Service {
	return e.service
}

// Store returns the backing store.
func (e *Engine) Store() storage.Store {
	return e.store
}

// ErrorLog returns the rolling classified-error log.
func (e *Engine) ErrorLog() *recovery.Log {
	return e.errlog
}

// Start starts the engine's background components.
func (e *Engine) Start(ctx context.Context) error {
	// Start Health Server
	go func() {
		if err := e.healthServer.Start(); err != nil {
			e.log.Error("Health server failed", "error", err)
		}
	}()

	// Start DB Metrics Collector
	if e.db != nil {
		e.db.StartMetricsCollector(ctx)
	}

	e.log.Info("Dispatch engine started", "port", e.cfg.Server.Port)
	return nil
}

// Stop stops the engine.
func (e *Engine) Stop(ctx context.Context) error {
	e.log.Info("Stopping dispatch engine...")

	if e.redisClient != nil {
		if err := e.redisClient.Close(); err != nil {
			e.log.Warn("Failed to close Redis", "error", err)
		}
	}

	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.log.Warn("Failed to close database", "error", err)
		}
	}

	return e.healthServer.Stop(ctx)
}
