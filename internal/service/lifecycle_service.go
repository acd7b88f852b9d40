package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/events"
	"github.com/spec-kit/repair-tracker/internal/observability"
	"github.com/spec-kit/repair-tracker/internal/repository"
	apperrors "github.com/spec-kit/repair-tracker/pkg/util"
)

// LifecycleService is the repair state machine: it validates and applies
// status transitions, stamps lifecycle timestamps, appends history and runs
// transition side effects. Role checks live on the wrapper operations;
// Transition itself trusts its caller.
type LifecycleService struct {
	repairs    repository.RepairRepository
	settings   repository.SettingsRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	now        func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle engine.
type LifecycleDependencies struct {
	RepairRepo   repository.RepairRepository
	SettingsRepo repository.SettingsRepository
	Dispatcher   events.Dispatcher
	Metrics      *observability.Metrics
	// Clock overrides time.Now, used by tests.
	Clock func() time.Time
}

// NewLifecycleService constructs the engine.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{
		repairs:    deps.RepairRepo,
		settings:   deps.SettingsRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		now:        now,
	}
}

// IntakeInput describes a device entering the lab.
type IntakeInput struct {
	Tag           string
	Category      string
	Model         string
	Serial        string
	Supplier      string
	Customer      string
	FaultDeclared string
	PriorityClaim bool
}

// RmaPayload attaches the external service lab shipment to an In RMA transition.
type RmaPayload struct {
	ServiceName string
	Tracking    string
	Notes       string
}

// StagingPayload carries the chosen OS for staging completion.
type StagingPayload struct {
	OS string
}

// ReassignPayload moves the ticket to another technician.
type ReassignPayload struct {
	AssignedTo string
}

// NotesPayload replaces the free-text technician notes.
type NotesPayload struct {
	TechNotes string
}

// PriorityPayload toggles the urgency flag.
type PriorityPayload struct {
	PriorityClaim bool
}

// TransitionPayload is the tagged union of transition side-effect payloads.
// Nil members are ignored; the engine validates shape per member instead of
// merging an open field bag.
type TransitionPayload struct {
	RMA           *RmaPayload
	Staging       *StagingPayload
	Reassign      *ReassignPayload
	Notes         *NotesPayload
	Priority      *PriorityPayload
	ReplacedParts *[]string
}

// Intake registers a new device. Status is forced to Ingresso and the history
// is seeded with a single entry. When an assignment rule matches the device
// category the ticket is pre-assigned to the configured technician.
func (s *LifecycleService) Intake(ctx context.Context, actor *domain.UserProfile, input IntakeInput) (*domain.RepairTicket, error) {
	now := s.now()
	ticket := &domain.RepairTicket{
		Tag:           strings.TrimSpace(input.Tag),
		Category:      input.Category,
		Model:         input.Model,
		Serial:        strings.TrimSpace(input.Serial),
		Supplier:      input.Supplier,
		Customer:      input.Customer,
		FaultDeclared: strings.TrimSpace(input.FaultDeclared),
		Status:        domain.StatusIngresso,
		PriorityClaim: input.PriorityClaim,
		History:       domain.History{{Status: domain.StatusIngresso, Date: now}},
	}

	if s.settings != nil {
		settings, err := s.settings.Get(ctx)
		if err == nil {
			if tech, ok := settings.AssignRules[input.Category]; ok && tech != "" {
				ticket.AssignedTo = &tech
			}
		}
	}

	if err := s.repairs.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, actor, events.Event{
		Type:     events.EventRepairIntake,
		RepairID: ticket.ID,
		Payload: events.RepairIntakePayload{
			Tag:      ticket.Tag,
			Category: ticket.Category,
			Model:    ticket.Model,
		},
	})
	return ticket, nil
}

// Get fetches one ticket.
func (s *LifecycleService) Get(ctx context.Context, id string) (*domain.RepairTicket, error) {
	ticket, err := s.repairs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("repair", map[string]any{"repair_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// List returns all tickets, newest intake first. The read degrades to an
// empty list on persistence failure, mirroring the offline posture of the
// reference client; write paths never degrade.
func (s *LifecycleService) List(ctx context.Context) ([]domain.RepairTicket, error) {
	tickets, err := s.repairs.List(ctx)
	if err != nil {
		return []domain.RepairTicket{}, nil
	}
	return tickets, nil
}

// Transition validates and applies a status change. Effects, in order: stamp
// lastUpdate, stamp status-specific lifecycle dates, append a history entry
// (always, even when newStatus equals the current status), apply the typed
// payload, auto-assign the acting user when work starts on an unassigned
// ticket, then persist everything as one field-merge write.
//
// Entering In Lavorazione overwrites both dateStart and dateResume on every
// pass, repeated re-entries included. That matches the shipped behavior of
// the original tracker; first-start semantics can be derived from the first
// In Lavorazione history entry instead.
func (s *LifecycleService) Transition(ctx context.Context, actor *domain.UserProfile, ticketID string, newStatus domain.RepairStatus, payload TransitionPayload) (*domain.RepairTicket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewInvalidStatus(string(newStatus))
	}

	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	oldStatus := ticket.Status
	update := repository.RepairUpdate{
		Status:        &newStatus,
		LastUpdate:    &now,
		AppendHistory: []domain.HistoryEntry{{Status: newStatus, Date: now}},
	}

	switch newStatus {
	case domain.StatusAttesaParti:
		update.DatePartsMissing = &now
	case domain.StatusInLavorazione:
		update.DateResume = &now
		update.DateStart = &now
	case domain.StatusRientroRMA:
		update.DateRmaReturn = &now
	case domain.StatusRiparato, domain.StatusSpedito:
		update.DateOut = &now
	}

	if payload.Notes != nil {
		update.TechNotes = &payload.Notes.TechNotes
	}
	if payload.Priority != nil {
		update.PriorityClaim = &payload.Priority.PriorityClaim
	}
	if payload.ReplacedParts != nil {
		update.ReplacedParts = payload.ReplacedParts
	}
	if payload.RMA != nil {
		update.RmaInfo = &domain.RmaInfo{
			ServiceName: payload.RMA.ServiceName,
			Tracking:    payload.RMA.Tracking,
			Notes:       payload.RMA.Notes,
			DateSent:    now,
		}
	}
	if payload.Staging != nil {
		update.Staging = &domain.StagingInfo{
			OS:        payload.Staging.OS,
			Date:      now,
			Completed: true,
		}
		notes := appendLine(ticket.TechNotes, "Staging OS: "+payload.Staging.OS)
		update.TechNotes = &notes
	}
	if payload.Reassign != nil {
		update.AssignedTo = &payload.Reassign.AssignedTo
		update.AppendAssignments = []domain.AssignmentRecord{{
			AssignedTo: payload.Reassign.AssignedTo,
			Date:       now,
			ChangedBy:  actor.DisplayIdentity(),
		}}
	}

	// Starting work on an unassigned ticket assigns it to the acting user.
	if newStatus == domain.StatusInLavorazione && actor != nil && ticket.AssignedTo == nil && update.AssignedTo == nil {
		identity := actor.DisplayIdentity()
		update.AssignedTo = &identity
		update.AppendAssignments = []domain.AssignmentRecord{{
			AssignedTo: identity,
			Date:       now,
			ChangedBy:  identity,
		}}
	}

	if err := s.repairs.MergeUpdate(ctx, ticketID, update); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("repair", map[string]any{"repair_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	s.metrics.RecordTransition(string(newStatus))

	if oldStatus != newStatus {
		s.publish(ctx, actor, events.Event{
			Type:     events.EventStatusChanged,
			RepairID: ticketID,
			Payload:  events.StatusChangedPayload{OldStatus: oldStatus, NewStatus: newStatus},
		})
	}
	if update.AssignedTo != nil {
		s.publish(ctx, actor, events.Event{
			Type:     events.EventRepairAssigned,
			RepairID: ticketID,
			Payload:  events.RepairAssignedPayload{AssignedTo: *update.AssignedTo},
		})
	}
	if payload.Priority != nil {
		s.publish(ctx, actor, events.Event{
			Type:     events.EventPriorityChanged,
			RepairID: ticketID,
			Payload:  events.PriorityChangedPayload{PriorityClaim: payload.Priority.PriorityClaim},
		})
	}
	if payload.RMA != nil {
		s.publish(ctx, actor, events.Event{
			Type:     events.EventRmaSent,
			RepairID: ticketID,
			Payload:  events.RmaSentPayload{ServiceName: payload.RMA.ServiceName, Tracking: payload.RMA.Tracking},
		})
	}
	if payload.Staging != nil {
		s.publish(ctx, actor, events.Event{
			Type:     events.EventStagingCompleted,
			RepairID: ticketID,
			Payload:  events.StagingCompletedPayload{OS: payload.Staging.OS},
		})
	}

	return s.Get(ctx, ticketID)
}

// Advance moves the ticket to its default next status on the board.
func (s *LifecycleService) Advance(ctx context.Context, actor *domain.UserProfile, ticketID string) (*domain.RepairTicket, error) {
	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	next, ok := ticket.Status.Next()
	if !ok {
		return nil, apperrors.NewConflict("repair already in terminal status", map[string]any{"status": ticket.Status})
	}
	return s.Transition(ctx, actor, ticketID, next, TransitionPayload{})
}

// SetPriority toggles the urgency flag without advancing the state machine:
// it issues a same-status transition, which still appends a history entry.
func (s *LifecycleService) SetPriority(ctx context.Context, actor *domain.UserProfile, ticketID string, claim bool) (*domain.RepairTicket, error) {
	if actor == nil || !actor.Role.CanSetPriority() {
		return nil, apperrors.NewForbidden("role cannot set priority")
	}
	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, actor, ticketID, ticket.Status, TransitionPayload{
		Priority: &PriorityPayload{PriorityClaim: claim},
	})
}

// EditNotes replaces the technician notes via the same-status write path.
func (s *LifecycleService) EditNotes(ctx context.Context, actor *domain.UserProfile, ticketID, notes string) (*domain.RepairTicket, error) {
	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, actor, ticketID, ticket.Status, TransitionPayload{
		Notes: &NotesPayload{TechNotes: notes},
	})
}

// Reassign hands the ticket to another technician and records the change in
// the assignment audit trail.
func (s *LifecycleService) Reassign(ctx context.Context, actor *domain.UserProfile, ticketID, assignee string) (*domain.RepairTicket, error) {
	if actor == nil || !actor.Role.CanReassign() {
		return nil, apperrors.NewForbidden("role cannot reassign repairs")
	}
	if strings.TrimSpace(assignee) == "" {
		return nil, apperrors.NewValidationError("assignee required", nil)
	}
	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, actor, ticketID, ticket.Status, TransitionPayload{
		Reassign: &ReassignPayload{AssignedTo: assignee},
	})
}

// SendToRMA ships the device to an external service lab.
func (s *LifecycleService) SendToRMA(ctx context.Context, actor *domain.UserProfile, ticketID string, payload RmaPayload) (*domain.RepairTicket, error) {
	if strings.TrimSpace(payload.ServiceName) == "" {
		return nil, apperrors.NewValidationError("rma service name required", nil)
	}
	return s.Transition(ctx, actor, ticketID, domain.StatusInRMA, TransitionPayload{RMA: &payload})
}

// CompleteStaging finishes the optional OS-staging step, moving the ticket
// straight to Riparato and noting the installed OS.
func (s *LifecycleService) CompleteStaging(ctx context.Context, actor *domain.UserProfile, ticketID, os string) (*domain.RepairTicket, error) {
	if strings.TrimSpace(os) == "" {
		return nil, apperrors.NewValidationError("staging os required", nil)
	}
	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.StatusInLavorazione && ticket.Status != domain.StatusStaging {
		return nil, apperrors.NewConflict("staging only completes from In Lavorazione or Staging", map[string]any{"status": ticket.Status})
	}
	return s.Transition(ctx, actor, ticketID, domain.StatusRiparato, TransitionPayload{
		Staging: &StagingPayload{OS: os},
	})
}

// AddPhoto appends an opaque photo URI to the ticket.
func (s *LifecycleService) AddPhoto(ctx context.Context, ticketID, uri string) error {
	if strings.TrimSpace(uri) == "" {
		return apperrors.NewValidationError("photo uri required", nil)
	}
	err := s.repairs.MergeUpdate(ctx, ticketID, repository.RepairUpdate{AppendPhotos: []string{uri}})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("repair", map[string]any{"repair_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ResetAll wipes the ticket collection. Manager only.
func (s *LifecycleService) ResetAll(ctx context.Context, actor *domain.UserProfile) error {
	if actor == nil || !actor.Role.CanResetDatabase() {
		return apperrors.NewForbidden("role cannot reset the database")
	}
	if err := s.repairs.DeleteAll(ctx); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *LifecycleService) publish(ctx context.Context, actor *domain.UserProfile, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if actor != nil {
		event.Actor = events.Actor{
			UID:      actor.UID,
			Identity: actor.DisplayIdentity(),
			Role:     actor.Role,
		}
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func appendLine(existing, line string) string {
	if strings.TrimSpace(existing) == "" {
		return line
	}
	return existing + "\n" + line
}
