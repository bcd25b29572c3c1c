package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/reciclamais/waste-service/internal/api/dto"
	"github.com/reciclamais/waste-service/internal/report"
	"github.com/reciclamais/waste-service/internal/service"
	apperrors "github.com/reciclamais/waste-service/pkg/util/errorutil"
)

// DashboardHandler serves the dashboard view model and its PDF rendering.
type DashboardHandler struct {
	service *service.DashboardService
	title   string
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService, title string) *DashboardHandler {
	return &DashboardHandler{service: dashboardService, title: title}
}

// Get GET /dashboard?from=&to=.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	period, err := periodFromQuery(c)
	if err != nil {
		return err
	}
	dashboard, err := h.service.Build(c.UserContext(), period)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(dashboard)})
}

// Forecast GET /dashboard/forecast.
func (h *DashboardHandler) Forecast(c *fiber.Ctx) error {
	forecast, err := h.service.Forecast(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewForecastResponse(forecast)})
}

// Report GET /dashboard/report.pdf.
func (h *DashboardHandler) Report(c *fiber.Ctx) error {
	period, err := periodFromQuery(c)
	if err != nil {
		return err
	}
	dashboard, err := h.service.Build(c.UserContext(), period)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.DashboardPDF(&buf, h.title, dashboard); err != nil {
		return apperrors.NewInternalError(err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="dashboard.pdf"`)
	return c.Send(buf.Bytes())
}
