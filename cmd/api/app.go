package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/reciclamais/waste-service/internal/config"
	"github.com/reciclamais/waste-service/internal/events"
	"github.com/reciclamais/waste-service/internal/observability"
	"github.com/reciclamais/waste-service/internal/persistence"
	"github.com/reciclamais/waste-service/internal/repository"
	"github.com/reciclamais/waste-service/internal/service"
)

// container holds the process-wide dependencies shared by every command.
type container struct {
	cfg        *config.Config
	logger     *zap.Logger
	pg         *persistence.Postgres
	redis      *persistence.Redis
	metrics    *observability.Metrics
	dispatcher events.Dispatcher

	users   repository.UserRepository
	wastes  repository.WasteRepository
	revoked repository.TokenRepository

	auth      *service.AuthService
	waste     *service.WasteService
	dashboard *service.DashboardService
	activity  *service.ActivityService
}

func boot(ctx context.Context) (*container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	c := &container{
		cfg:        cfg,
		logger:     logger,
		pg:         pg,
		redis:      persistence.NewRedis(cfg.Redis, logger),
		metrics:    observability.NewMetrics(),
		dispatcher: events.NewInMemoryDispatcher(logger),
	}

	if pg.Enabled() {
		c.users = repository.NewUserRepository(pg.PoolHandle())
		c.wastes = repository.NewWasteRepository(pg.PoolHandle())
	} else {
		c.users = repository.NewMemoryUserRepository()
		c.wastes = repository.NewMemoryWasteRepository()
	}
	if c.redis.Enabled() {
		c.revoked = repository.NewRedisTokenRepository(c.redis.Client)
	} else {
		c.revoked = repository.NewMemoryTokenRepository()
	}

	c.auth = service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   c.users,
		TokenRepo:  c.revoked,
		Dispatcher: c.dispatcher,
		Logger:     logger,
	})
	c.waste = service.NewWasteService(service.WasteDependencies{
		WasteRepo:  c.wastes,
		UserRepo:   c.users,
		Dispatcher: c.dispatcher,
		Logger:     logger,
	})
	c.dashboard = service.NewDashboardService(c.waste, c.metrics, logger)
	c.activity = service.NewActivityService(c.dispatcher, c.metrics, logger)
	return c, nil
}

func (c *container) migrate(ctx context.Context) error {
	return persistence.RunMigrations(ctx, c.pg.PoolHandle(), c.cfg.Postgres.MigrationsDir, c.logger)
}

func (c *container) close() {
	c.redis.Close()
	c.pg.Close()
	_ = c.logger.Sync()
}
