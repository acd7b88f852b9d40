package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-tracker/internal/api/dto"
	"github.com/spec-kit/repair-tracker/internal/auth"
	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/service"
	apperrors "github.com/spec-kit/repair-tracker/pkg/util"
)

// RepairsHandler manages repair ticket endpoints.
type RepairsHandler struct {
	lifecycle *service.LifecycleService
	settings  *service.SettingsService
	now       func() time.Time
}

// NewRepairsHandler constructs handler.
func NewRepairsHandler(lifecycle *service.LifecycleService, settings *service.SettingsService) *RepairsHandler {
	return &RepairsHandler{lifecycle: lifecycle, settings: settings, now: time.Now}
}

// Intake POST /repairs.
func (h *RepairsHandler) Intake(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var req dto.IntakeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Tag == "" || req.Category == "" {
		return apperrors.NewValidationError("tag and category required", nil)
	}
	ticket, err := h.lifecycle.Intake(c.Context(), actor, service.IntakeInput{
		Tag:           req.Tag,
		Category:      req.Category,
		Model:         req.Model,
		Serial:        req.Serial,
		Supplier:      req.Supplier,
		Customer:      req.Customer,
		FaultDeclared: req.FaultDeclared,
		PriorityClaim: req.PriorityClaim,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.repairDetail(ticket)})
}

// List GET /repairs.
func (h *RepairsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.lifecycle.List(c.Context())
	if err != nil {
		return err
	}
	settings := h.slaSettings(c)
	now := h.now()
	items := make([]dto.RepairSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, repairSummary(&tickets[i], settings, now))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /repairs/:id.
func (h *RepairsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.lifecycle.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.repairDetail(ticket)})
}

// Statuses GET /repairs/statuses.
func (h *RepairsHandler) Statuses(c *fiber.Ctx) error {
	statuses := domain.AllStatuses()
	items := make([]dto.StatusInfo, 0, len(statuses))
	for _, status := range statuses {
		info := dto.StatusInfo{Status: status, Tag: status.Tag(), Terminal: status.Terminal()}
		if next, ok := status.Next(); ok {
			info.Next = next
		}
		items = append(items, info)
	}
	return c.JSON(fiber.Map{"data": items})
}

// Transition POST /repairs/:id/transition.
func (h *RepairsHandler) Transition(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.lifecycle.Transition(c.Context(), actor, c.Params("id"), domain.RepairStatus(req.Status), service.TransitionPayload{})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.repairDetail(ticket)})
}

// Advance POST /repairs/:id/advance.
func (h *RepairsHandler) Advance(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	ticket, err := h.lifecycle.Advance(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.repairDetail(ticket)})
}

// SetPriority PATCH /repairs/:id/priority.
func (h *RepairsHandler) SetPriority(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var req dto.PriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.lifecycle.SetPriority(c.Context(), actor, c.Params("id"), req.PriorityClaim)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.repairDetail(ticket)})
}

// EditNotes PATCH /repairs/:id/notes.
func (h *RepairsHandler) EditNotes(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var req dto.NotesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.lifecycle.EditNotes(c.Context(), actor, c.Params("id"), req.TechNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.repairDetail(ticket)})
}

// Reassign POST /repairs/:id/reassign.
func (h *RepairsHandler) Reassign(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.lifecycle.Reassign(c.Context(), actor, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.repairDetail(ticket)})
}

// SendToRMA POST /repairs/:id/rma.
func (h *RepairsHandler) SendToRMA(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var req dto.RmaRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.lifecycle.SendToRMA(c.Context(), actor, c.Params("id"), service.RmaPayload{
		ServiceName: req.ServiceName,
		Tracking:    req.Tracking,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.repairDetail(ticket)})
}

// CompleteStaging POST /repairs/:id/staging.
func (h *RepairsHandler) CompleteStaging(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	var req dto.StagingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.lifecycle.CompleteStaging(c.Context(), actor, c.Params("id"), req.OS)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.repairDetail(ticket)})
}

// AddPhoto POST /repairs/:id/photos.
func (h *RepairsHandler) AddPhoto(c *fiber.Ctx) error {
	var req dto.PhotoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.lifecycle.AddPhoto(c.Context(), c.Params("id"), req.URI); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ResetAll DELETE /repairs.
func (h *RepairsHandler) ResetAll(c *fiber.Ctx) error {
	actor := auth.ProfileFromContext(c)
	if err := h.lifecycle.ResetAll(c.Context(), actor); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *RepairsHandler) slaSettings(c *fiber.Ctx) domain.Settings {
	if h.settings == nil {
		return domain.Settings{}
	}
	settings, err := h.settings.Get(c.Context())
	if err != nil {
		return domain.Settings{}
	}
	return settings
}

func (h *RepairsHandler) repairDetail(ticket *domain.RepairTicket) dto.RepairDetail {
	return dto.RepairDetail{
		ID:                ticket.ID,
		Tag:               ticket.Tag,
		Category:          ticket.Category,
		Model:             ticket.Model,
		Serial:            ticket.Serial,
		Supplier:          ticket.Supplier,
		Customer:          ticket.Customer,
		FaultDeclared:     ticket.FaultDeclared,
		Status:            ticket.Status,
		StatusTag:         ticket.Status.Tag(),
		PriorityClaim:     ticket.PriorityClaim,
		AssignedTo:        ticket.AssignedTo,
		TechNotes:         ticket.TechNotes,
		ReplacedParts:     ticket.ReplacedParts,
		Photos:            ticket.Photos,
		RmaInfo:           ticket.RmaInfo,
		Staging:           ticket.Staging,
		History:           ticket.History,
		AssignmentHistory: ticket.AssignmentHistory,
		DateIn:            ticket.DateIn,
		DateStart:         ticket.DateStart,
		DatePartsMissing:  ticket.DatePartsMissing,
		DateResume:        ticket.DateResume,
		DateRmaReturn:     ticket.DateRmaReturn,
		DateOut:           ticket.DateOut,
		LastUpdate:        ticket.LastUpdate,
		TotalLabMs:        ticket.TotalLabTime(h.now()).Milliseconds(),
	}
}

func repairSummary(ticket *domain.RepairTicket, settings domain.Settings, now time.Time) dto.RepairSummary {
	return dto.RepairSummary{
		ID:            ticket.ID,
		Tag:           ticket.Tag,
		Category:      ticket.Category,
		Model:         ticket.Model,
		Serial:        ticket.Serial,
		Status:        ticket.Status,
		StatusTag:     ticket.Status.Tag(),
		PriorityClaim: ticket.PriorityClaim,
		AssignedTo:    ticket.AssignedTo,
		SLABreached:   service.IsBreached(ticket, settings, now),
		DateIn:        ticket.DateIn,
		LastUpdate:    ticket.LastUpdate,
	}
}
