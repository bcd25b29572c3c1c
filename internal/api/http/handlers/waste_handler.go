package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/reciclamais/waste-service/internal/api/dto"
	"github.com/reciclamais/waste-service/internal/auth"
	"github.com/reciclamais/waste-service/internal/service"
	apperrors "github.com/reciclamais/waste-service/pkg/util/errorutil"
	"github.com/reciclamais/waste-service/pkg/util/validation"
)

// WasteHandler manages waste record endpoints.
type WasteHandler struct {
	service *service.WasteService
}

// NewWasteHandler constructs handler.
func NewWasteHandler(wasteService *service.WasteService) *WasteHandler {
	return &WasteHandler{service: wasteService}
}

// Create POST /waste.
func (h *WasteHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateWasteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validation.Struct(req, "invalid waste record"); err != nil {
		return err
	}
	waste, err := req.ToDomain()
	if err != nil {
		return err
	}

	if err := h.service.Save(c.UserContext(), waste, principal.User.Email); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewWasteResponse(*waste)})
}

// ListMine GET /waste?from=&to=.
func (h *WasteHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	return h.list(c, principal.User.Email)
}

// ListAll GET /admin/waste?from=&to=.
func (h *WasteHandler) ListAll(c *fiber.Ctx) error {
	return h.list(c, "")
}

func (h *WasteHandler) list(c *fiber.Ctx, ownerEmail string) error {
	period, err := periodFromQuery(c)
	if err != nil {
		return err
	}
	records, err := h.service.Search(c.UserContext(), service.WasteQuery{OwnerEmail: ownerEmail, Period: period})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewWasteList(records)})
}

// GenerateDemo POST /waste/demo.
func (h *WasteHandler) GenerateDemo(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	records, err := h.service.GenerateDemoData(c.UserContext(), principal.User.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewWasteList(records)})
}

func periodFromQuery(c *fiber.Ctx) (service.Period, error) {
	from, err := parseDay(c.Query("from"), "from")
	if err != nil {
		return service.Period{}, err
	}
	to, err := parseDay(c.Query("to"), "to")
	if err != nil {
		return service.Period{}, err
	}
	return service.Period{From: from, To: to}, nil
}

func parseDay(val, field string) (*time.Time, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date", map[string]any{field: "datetime=2006-01-02"})
	}
	return &t, nil
}
