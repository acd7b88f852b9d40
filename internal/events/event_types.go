package events

import (
	"time"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRepairIntake     EventType = "repair_intake"
	EventStatusChanged    EventType = "repair_status_changed"
	EventPriorityChanged  EventType = "repair_priority_changed"
	EventRepairAssigned   EventType = "repair_assigned"
	EventPartUsageToggled EventType = "repair_part_usage_toggled"
	EventRmaSent          EventType = "repair_rma_sent"
	EventStagingCompleted EventType = "repair_staging_completed"
)

// Actor identifies the team member behind an event.
type Actor struct {
	UID      string      `json:"uid"`
	Identity string      `json:"identity"`
	Role     domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RepairID  string      `json:"repair_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RepairIntakePayload payload.
type RepairIntakePayload struct {
	Tag      string `json:"tag"`
	Category string `json:"category"`
	Model    string `json:"model"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	OldStatus domain.RepairStatus `json:"old_status"`
	NewStatus domain.RepairStatus `json:"new_status"`
}

// PriorityChangedPayload payload.
type PriorityChangedPayload struct {
	PriorityClaim bool `json:"priority_claim"`
}

// RepairAssignedPayload payload.
type RepairAssignedPayload struct {
	AssignedTo string `json:"assigned_to"`
}

// PartUsageToggledPayload payload.
type PartUsageToggledPayload struct {
	PartName    string `json:"part_name"`
	Used        bool   `json:"used"`
	NewQuantity int    `json:"new_quantity"`
	LowStock    bool   `json:"low_stock"`
}

// RmaSentPayload payload.
type RmaSentPayload struct {
	ServiceName string `json:"service_name"`
	Tracking    string `json:"tracking"`
}

// StagingCompletedPayload payload.
type StagingCompletedPayload struct {
	OS string `json:"os"`
}
