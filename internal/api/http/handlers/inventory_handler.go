package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-tracker/internal/api/dto"
	"github.com/spec-kit/repair-tracker/internal/auth"
	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/service"
	apperrors "github.com/spec-kit/repair-tracker/pkg/util"
)

// InventoryHandler manages spare-part endpoints.
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// CreatePart POST /parts.
func (h *InventoryHandler) CreatePart(c *fiber.Ctx) error {
	var req dto.PartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	part := &domain.InventoryPart{
		Name:                    req.Name,
		Category:                req.Category,
		Quantity:                req.Quantity,
		MinQuantity:             req.MinQuantity,
		CompatibleAssetCategory: req.CompatibleAssetCategory,
		CompatibleModels:        req.CompatibleModels,
	}
	if err := h.inventory.CreatePart(c.Context(), part); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": partResponse(part)})
}

// ListParts GET /parts. Pass low_stock=true to filter to reorder candidates.
func (h *InventoryHandler) ListParts(c *fiber.Ctx) error {
	var (
		parts []domain.InventoryPart
		err   error
	)
	if c.QueryBool("low_stock") {
		parts, err = h.inventory.LowStockParts(c.Context())
	} else {
		parts, err = h.inventory.ListParts(c.Context())
	}
	if err != nil {
		return err
	}
	items := make([]dto.PartResponse, 0, len(parts))
	for i := range parts {
		items = append(items, partResponse(&parts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdatePart PUT /parts/:id.
func (h *InventoryHandler) UpdatePart(c *fiber.Ctx) error {
	var req dto.PartRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	part := &domain.InventoryPart{
		ID:                      c.Params("id"),
		Name:                    req.Name,
		Category:                req.Category,
		Quantity:                req.Quantity,
		MinQuantity:             req.MinQuantity,
		CompatibleAssetCategory: req.CompatibleAssetCategory,
		CompatibleModels:        req.CompatibleModels,
	}
	if err := h.inventory.UpdatePart(c.Context(), part); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": partResponse(part)})
}

// AdjustQuantity PATCH /parts/:id/quantity.
func (h *InventoryHandler) AdjustQuantity(c *fiber.Ctx) error {
	var req dto.AdjustQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Delta == 0 {
		return apperrors.NewValidationError("delta must be non-zero", nil)
	}
	quantity, err := h.inventory.AdjustQuantity(c.Context(), c.Params("id"), req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"quantity": quantity}})
}

// DeletePart DELETE /parts/:id.
func (h *InventoryHandler) DeletePart(c *fiber.Ctx) error {
	if err := h.inventory.DeletePart(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// EligibleParts GET /repairs/:id/parts.
func (h *InventoryHandler) EligibleParts(c *fiber.Ctx) error {
	parts, err := h.inventory.EligibleParts(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.PartResponse, 0, len(parts))
	for i := range parts {
		items = append(items, partResponse(&parts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// TogglePartUsage POST /repairs/:id/parts.
func (h *InventoryHandler) TogglePartUsage(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var req dto.TogglePartUsageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PartID == "" {
		return apperrors.NewValidationError("part_id required", nil)
	}
	ticket, err := h.inventory.TogglePartUsage(c.Context(), actor, c.Params("id"), req.PartID, req.Used)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"replaced_parts": ticket.ReplacedParts}})
}

func partResponse(part *domain.InventoryPart) dto.PartResponse {
	return dto.PartResponse{
		ID:                      part.ID,
		Name:                    part.Name,
		Category:                part.Category,
		Quantity:                part.Quantity,
		MinQuantity:             part.MinQuantity,
		CompatibleAssetCategory: part.CompatibleAssetCategory,
		CompatibleModels:        part.CompatibleModels,
		LowStock:                part.LowStock(),
	}
}
