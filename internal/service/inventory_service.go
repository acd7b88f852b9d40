package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/events"
	"github.com/spec-kit/repair-tracker/internal/repository"
	apperrors "github.com/spec-kit/repair-tracker/pkg/util"
)

// InventoryService keeps part stock counts in lockstep with the replaced
// parts recorded on repair tickets.
type InventoryService struct {
	parts      repository.InventoryRepository
	lifecycle  *LifecycleService
	dispatcher events.Dispatcher
}

// InventoryDependencies bundles collaborators for the inventory service.
// Ticket reads and writes go through the lifecycle service so part usage
// lands on the timeline like every other edit.
type InventoryDependencies struct {
	PartRepo   repository.InventoryRepository
	Lifecycle  *LifecycleService
	Dispatcher events.Dispatcher
}

// NewInventoryService constructs the service.
func NewInventoryService(deps InventoryDependencies) *InventoryService {
	return &InventoryService{
		parts:      deps.PartRepo,
		lifecycle:  deps.Lifecycle,
		dispatcher: deps.Dispatcher,
	}
}

// CreatePart registers a new spare part.
func (s *InventoryService) CreatePart(ctx context.Context, part *domain.InventoryPart) error {
	if strings.TrimSpace(part.Name) == "" {
		return apperrors.NewValidationError("part name required", nil)
	}
	if part.Quantity < 0 {
		part.Quantity = 0
	}
	if err := s.parts.Create(ctx, part); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListParts returns the inventory.
func (s *InventoryService) ListParts(ctx context.Context) ([]domain.InventoryPart, error) {
	parts, err := s.parts.List(ctx)
	if err != nil {
		return []domain.InventoryPart{}, nil
	}
	return parts, nil
}

// LowStockParts returns parts at or below their reorder threshold.
func (s *InventoryService) LowStockParts(ctx context.Context) ([]domain.InventoryPart, error) {
	parts, err := s.ListParts(ctx)
	if err != nil {
		return nil, err
	}
	low := []domain.InventoryPart{}
	for _, part := range parts {
		if part.LowStock() {
			low = append(low, part)
		}
	}
	return low, nil
}

// AdjustQuantity applies a manual stock delta. The quantity is clamped at a
// floor of zero; the call never fails on an oversized negative delta.
func (s *InventoryService) AdjustQuantity(ctx context.Context, partID string, delta int) (int, error) {
	quantity, err := s.parts.AdjustQuantity(ctx, partID, delta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewNotFound("part", map[string]any{"part_id": partID})
		}
		return 0, apperrors.MapError(err)
	}
	return quantity, nil
}

// UpdatePart rewrites part master data.
func (s *InventoryService) UpdatePart(ctx context.Context, part *domain.InventoryPart) error {
	if err := s.parts.Update(ctx, part); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("part", map[string]any{"part_id": part.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// DeletePart removes a part from the inventory.
func (s *InventoryService) DeletePart(ctx context.Context, partID string) error {
	if err := s.parts.Delete(ctx, partID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("part", map[string]any{"part_id": partID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// EligibleParts filters the inventory down to parts compatible with the
// ticket's device category and model.
func (s *InventoryService) EligibleParts(ctx context.Context, ticketID string) ([]domain.InventoryPart, error) {
	ticket, err := s.lifecycle.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	parts, err := s.ListParts(ctx)
	if err != nil {
		return nil, err
	}
	eligible := []domain.InventoryPart{}
	for _, part := range parts {
		if part.CompatibleWith(ticket.Category, ticket.Model) {
			eligible = append(eligible, part)
		}
	}
	return eligible, nil
}

// TogglePartUsage marks a part as used (or not) on a ticket. The ticket's
// replacedParts list and the part quantity move together: marking used
// removes one unit from stock, unmarking restores it. The inventory write
// lands first; the ticket write is the commit signal. A crash between the
// two leaves the count off by one until someone reconciles by hand.
func (s *InventoryService) TogglePartUsage(ctx context.Context, actor *domain.UserProfile, ticketID, partID string, used bool) (*domain.RepairTicket, error) {
	part, err := s.parts.GetByID(ctx, partID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("part", map[string]any{"part_id": partID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.lifecycle.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	// Already in the requested state: skip the stock adjustment too, so the
	// two records cannot drift apart.
	if ticket.HasReplacedPart(part.Name) == used {
		return ticket, nil
	}

	newList := make([]string, 0, len(ticket.ReplacedParts)+1)
	for _, name := range ticket.ReplacedParts {
		if name != part.Name {
			newList = append(newList, name)
		}
	}
	if used {
		newList = append(newList, part.Name)
	}

	delta := 1
	if used {
		delta = -1
	}
	newQuantity, err := s.AdjustQuantity(ctx, partID, delta)
	if err != nil {
		return nil, err
	}

	updated, err := s.lifecycle.Transition(ctx, actor, ticketID, ticket.Status, TransitionPayload{
		ReplacedParts: &newList,
	})
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		s.lifecycle.publish(ctx, actor, events.Event{
			Type:     events.EventPartUsageToggled,
			RepairID: ticketID,
			Payload: events.PartUsageToggledPayload{
				PartName:    part.Name,
				Used:        used,
				NewQuantity: newQuantity,
				LowStock:    newQuantity <= part.MinQuantity,
			},
		})
	}
	return updated, nil
}
