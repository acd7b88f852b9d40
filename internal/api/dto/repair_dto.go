package dto

import (
	"time"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

// IntakeRequest payload.
type IntakeRequest struct {
	Tag           string `json:"tag"`
	Category      string `json:"category"`
	Model         string `json:"model"`
	Serial        string `json:"serial"`
	Supplier      string `json:"supplier"`
	Customer      string `json:"customer"`
	FaultDeclared string `json:"fault_declared"`
	PriorityClaim bool   `json:"priority_claim"`
}

// TransitionRequest moves a ticket to an explicit status.
type TransitionRequest struct {
	Status string `json:"status"`
}

// PriorityRequest payload.
type PriorityRequest struct {
	PriorityClaim bool `json:"priority_claim"`
}

// NotesRequest payload.
type NotesRequest struct {
	TechNotes string `json:"tech_notes"`
}

// ReassignRequest payload.
type ReassignRequest struct {
	AssignedTo string `json:"assigned_to"`
}

// RmaRequest payload.
type RmaRequest struct {
	ServiceName string `json:"service_name"`
	Tracking    string `json:"tracking"`
	Notes       string `json:"notes"`
}

// StagingRequest payload.
type StagingRequest struct {
	OS string `json:"os"`
}

// PhotoRequest payload.
type PhotoRequest struct {
	URI string `json:"uri"`
}

// RepairSummary is the board/list view of a ticket.
type RepairSummary struct {
	ID            string              `json:"id"`
	Tag           string              `json:"tag"`
	Category      string              `json:"category"`
	Model         string              `json:"model"`
	Serial        string              `json:"serial"`
	Status        domain.RepairStatus `json:"status"`
	StatusTag     string              `json:"status_tag"`
	PriorityClaim bool                `json:"priority_claim"`
	AssignedTo    *string             `json:"assigned_to"`
	SLABreached   bool                `json:"sla_breached"`
	DateIn        time.Time           `json:"date_in"`
	LastUpdate    time.Time           `json:"last_update"`
}

// RepairDetail provides the full ticket.
type RepairDetail struct {
	ID            string              `json:"id"`
	Tag           string              `json:"tag"`
	Category      string              `json:"category"`
	Model         string              `json:"model"`
	Serial        string              `json:"serial"`
	Supplier      string              `json:"supplier"`
	Customer      string              `json:"customer"`
	FaultDeclared string              `json:"fault_declared"`
	Status        domain.RepairStatus `json:"status"`
	StatusTag     string              `json:"status_tag"`
	PriorityClaim bool                `json:"priority_claim"`
	AssignedTo    *string             `json:"assigned_to"`
	TechNotes     string              `json:"tech_notes"`
	ReplacedParts []string            `json:"replaced_parts"`
	Photos        []string            `json:"photos"`
	RmaInfo       *domain.RmaInfo     `json:"rma_info"`
	Staging       *domain.StagingInfo `json:"staging"`

	History           []domain.HistoryEntry     `json:"history"`
	AssignmentHistory []domain.AssignmentRecord `json:"assignment_history"`

	DateIn           time.Time  `json:"date_in"`
	DateStart        *time.Time `json:"date_start"`
	DatePartsMissing *time.Time `json:"date_parts_missing"`
	DateResume       *time.Time `json:"date_resume"`
	DateRmaReturn    *time.Time `json:"date_rma_return"`
	DateOut          *time.Time `json:"date_out"`
	LastUpdate       time.Time  `json:"last_update"`

	TotalLabMs int64 `json:"total_lab_ms"`
}

// StatusInfo describes one board column.
type StatusInfo struct {
	Status   domain.RepairStatus `json:"status"`
	Tag      string              `json:"tag"`
	Next     domain.RepairStatus `json:"next,omitempty"`
	Terminal bool                `json:"terminal"`
}
