package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/reciclamais/waste-service/internal/api/http/handlers"
	"github.com/reciclamais/waste-service/internal/auth"
	"github.com/reciclamais/waste-service/internal/domain"
	"github.com/reciclamais/waste-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health             *handlers.HealthHandler
	Users              *handlers.UsersHandler
	Waste              *handlers.WasteHandler
	Dashboard          *handlers.DashboardHandler
	AuthMiddleware     *auth.AuthMiddleware
	Metrics            *observability.Metrics
	MetricsPath        string
	LoginRatePerMinute int
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", loginLimiter(cfg.LoginRatePerMinute), cfg.Users.Login)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Post("/logout", cfg.Users.Logout)
	protected.Get("/me", cfg.Users.Me)
	protected.Post("/password/change", cfg.Users.ChangePassword)

	waste := app.Group("/waste", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	waste.Post("/", cfg.Waste.Create)
	waste.Get("/", cfg.Waste.ListMine)
	waste.Post("/demo", cfg.Waste.GenerateDemo)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/waste", cfg.Waste.ListAll)

	dashboard := app.Group("/dashboard")
	dashboard.Get("/", cfg.Dashboard.Get)
	dashboard.Get("/forecast", cfg.Dashboard.Forecast)
	dashboard.Get("/report.pdf", cfg.Dashboard.Report)
}
