package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/reciclamais/waste-service/internal/api/http"
	"github.com/reciclamais/waste-service/internal/api/http/handlers"
	"github.com/reciclamais/waste-service/internal/auth"
	"github.com/reciclamais/waste-service/internal/observability"
	"github.com/reciclamais/waste-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	c, err := boot(ctx)
	if err != nil {
		return err
	}
	defer c.close()
	logger := c.logger

	if c.cfg.Postgres.RunMigrations {
		if err := c.migrate(ctx); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}
	if err := c.auth.Bootstrap(ctx, c.cfg.Bootstrap); err != nil {
		logger.Error("failed to bootstrap accounts", zap.Error(err))
		return err
	}

	worker.StartActivityWorker(c.activity)

	var metrics *observability.Metrics
	if c.cfg.Metrics.Enabled {
		metrics = c.metrics
	}

	app := fiber.New(fiber.Config{
		AppName:               c.cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, c.cfg.App)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:             handlers.NewHealthHandler(c.cfg.App.Name, c.cfg.App.Version, c.pg, c.redis),
		Users:              handlers.NewUsersHandler(c.auth),
		Waste:              handlers.NewWasteHandler(c.waste),
		Dashboard:          handlers.NewDashboardHandler(c.dashboard, "Recicla Mais"),
		AuthMiddleware:     auth.NewAuthMiddleware(c.auth.TokenManager(), c.users, c.revoked),
		Metrics:            metrics,
		MetricsPath:        c.cfg.Metrics.Path,
		LoginRatePerMinute: c.cfg.Auth.LoginRatePerMinute,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", c.cfg.App.Addr()))
		listenErr <- app.Listen(c.cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		logger.Error("fiber listen", zap.Error(err))
		return err
	case sig := <-waitForShutdown():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	return app.ShutdownWithTimeout(shutdownTimeout)
}

func waitForShutdown() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
