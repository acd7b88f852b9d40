package domain

import "time"

// RepairStatus enumerates lifecycle states for repair tickets.
type RepairStatus string

const (
	StatusIngresso      RepairStatus = "Ingresso"
	StatusDiagnosi      RepairStatus = "Diagnosi"
	StatusInLavorazione RepairStatus = "In Lavorazione"
	StatusStaging       RepairStatus = "Staging"
	StatusAttesaParti   RepairStatus = "Attesa Parti"
	StatusInRMA         RepairStatus = "In RMA"
	StatusRientroRMA    RepairStatus = "Rientro RMA"
	StatusRiparato      RepairStatus = "Riparato"
	StatusSpedito       RepairStatus = "Spedito"
)

type statusMeta struct {
	next RepairStatus
	tag  string
}

// statusFlow is the static workshop board: every status carries its default
// next step and a display tag. Spedito is terminal and has no next status.
// Re-entrant loops (Attesa Parti -> In Lavorazione, In RMA -> Rientro RMA ->
// In Lavorazione) are encoded through the next edges.
var statusFlow = map[RepairStatus]statusMeta{
	StatusIngresso:      {next: StatusDiagnosi, tag: "blue"},
	StatusDiagnosi:      {next: StatusInLavorazione, tag: "purple"},
	StatusInLavorazione: {next: StatusAttesaParti, tag: "amber"},
	StatusStaging:       {next: StatusRiparato, tag: "cyan"},
	StatusAttesaParti:   {next: StatusInLavorazione, tag: "orange"},
	StatusInRMA:         {next: StatusRientroRMA, tag: "pink"},
	StatusRientroRMA:    {next: StatusInLavorazione, tag: "indigo"},
	StatusRiparato:      {next: StatusSpedito, tag: "emerald"},
	StatusSpedito:       {tag: "gray"},
}

// statusOrder is the canonical intake-to-close presentation order.
var statusOrder = []RepairStatus{
	StatusIngresso,
	StatusDiagnosi,
	StatusInLavorazione,
	StatusStaging,
	StatusAttesaParti,
	StatusInRMA,
	StatusRientroRMA,
	StatusRiparato,
	StatusSpedito,
}

// Valid reports whether the status is part of the workshop board.
func (s RepairStatus) Valid() bool {
	_, ok := statusFlow[s]
	return ok
}

// Next returns the default next status, ok=false for terminal statuses.
func (s RepairStatus) Next() (RepairStatus, bool) {
	meta, ok := statusFlow[s]
	if !ok || meta.next == "" {
		return "", false
	}
	return meta.next, true
}

// Tag returns the display tag associated with the status.
func (s RepairStatus) Tag() string {
	return statusFlow[s].tag
}

// Terminal reports whether the status closes the workflow.
func (s RepairStatus) Terminal() bool {
	return s == StatusSpedito
}

// AllStatuses lists board statuses in canonical order.
func AllStatuses() []RepairStatus {
	out := make([]RepairStatus, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// HistoryEntry is one status-change event on a ticket timeline.
type HistoryEntry struct {
	Status RepairStatus `json:"status"`
	Date   time.Time    `json:"date"`
}

// History is the append-only ordered status timeline of a ticket. It is the
// sole source of truth for dwell-time accounting; entries are never mutated
// or reordered.
type History []HistoryEntry

// DurationIn sums the wall-clock time the ticket spent in the given status.
// Each matching entry contributes the interval up to the next entry in the
// sequence, or up to now for the last entry. A ticket visiting the same
// status multiple times accumulates all visits; consecutive entries sharing
// a status still sum to the same total since intervals are bounded by the
// following entry regardless of its status.
func (h History) DurationIn(status RepairStatus, now time.Time) time.Duration {
	var total time.Duration
	for i, entry := range h {
		if entry.Status != status {
			continue
		}
		end := now
		if i+1 < len(h) {
			end = h[i+1].Date
		}
		total += end.Sub(entry.Date)
	}
	return total
}

// LatestEntryFor returns the most recent entry with the given status,
// ok=false when the status never appears.
func (h History) LatestEntryFor(status RepairStatus) (HistoryEntry, bool) {
	for i := len(h) - 1; i >= 0; i-- {
		if h[i].Status == status {
			return h[i], true
		}
	}
	return HistoryEntry{}, false
}

// AssignmentRecord is one entry of the assignment audit trail.
type AssignmentRecord struct {
	AssignedTo string    `json:"assigned_to"`
	Date       time.Time `json:"date"`
	ChangedBy  string    `json:"changed_by"`
}

// RmaInfo captures the external service lab shipment for the RMA sub-flow.
type RmaInfo struct {
	ServiceName string    `json:"service_name"`
	Tracking    string    `json:"tracking"`
	Notes       string    `json:"notes"`
	DateSent    time.Time `json:"date_sent"`
}

// StagingInfo records the optional OS-staging step.
type StagingInfo struct {
	OS        string    `json:"os"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
}

// RepairTicket is the aggregate for a single device repair.
type RepairTicket struct {
	ID            string
	Tag           string
	Category      string
	Model         string
	Serial        string
	Supplier      string
	Customer      string
	FaultDeclared string

	Status        RepairStatus
	PriorityClaim bool
	AssignedTo    *string
	TechNotes     string
	ReplacedParts []string
	Photos        []string
	RmaInfo       *RmaInfo
	Staging       *StagingInfo

	History           History
	AssignmentHistory []AssignmentRecord

	DateIn           time.Time
	DateStart        *time.Time
	DatePartsMissing *time.Time
	DateResume       *time.Time
	DateRmaReturn    *time.Time
	DateOut          *time.Time
	LastUpdate       time.Time
}

// TotalLabTime is the end-to-end time in the lab: dateOut (or now while the
// ticket is open) minus dateIn. Returns 0 when dateIn is unset.
func (t *RepairTicket) TotalLabTime(now time.Time) time.Duration {
	if t.DateIn.IsZero() {
		return 0
	}
	end := now
	if t.DateOut != nil {
		end = *t.DateOut
	}
	return end.Sub(t.DateIn)
}

// HasReplacedPart reports whether the named part is recorded as used.
func (t *RepairTicket) HasReplacedPart(name string) bool {
	for _, p := range t.ReplacedParts {
		if p == name {
			return true
		}
	}
	return false
}
