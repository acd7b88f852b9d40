package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-tracker/internal/auth"
	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/service"
	apperrors "github.com/spec-kit/repair-tracker/pkg/util"
)

// SettingsHandler manages master-data endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get GET /settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settings})
}

// Models GET /settings/models.
func (h *SettingsHandler) Models(c *fiber.Ctx) error {
	models, err := h.settings.ModelsFor(c.Context(), c.Query("category"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": models})
}

// Merge PATCH /settings.
func (h *SettingsHandler) Merge(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var partial map[string]any
	if err := c.BodyParser(&partial); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.settings.Merge(c.Context(), actor, partial); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UpdateSLA PUT /settings/sla.
func (h *SettingsHandler) UpdateSLA(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var hours map[domain.RepairStatus]int
	if err := c.BodyParser(&hours); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.settings.UpdateSLA(c.Context(), actor, hours); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
