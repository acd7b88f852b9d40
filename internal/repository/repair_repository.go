package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

// RepairUpdate is a field-level merge payload: nil fields are left untouched
// by the write. History and assignment entries are appended with jsonb
// concatenation so concurrent appends from two writers both land; plain
// fields are last-write-wins.
type RepairUpdate struct {
	Status           *domain.RepairStatus
	PriorityClaim    *bool
	AssignedTo       *string
	TechNotes        *string
	ReplacedParts    *[]string
	RmaInfo          *domain.RmaInfo
	Staging          *domain.StagingInfo
	DateStart        *time.Time
	DatePartsMissing *time.Time
	DateResume       *time.Time
	DateRmaReturn    *time.Time
	DateOut          *time.Time
	LastUpdate       *time.Time

	AppendHistory     []domain.HistoryEntry
	AppendAssignments []domain.AssignmentRecord
	AppendPhotos      []string
}

// RepairRepository encapsulates repair ticket persistence.
type RepairRepository interface {
	Create(ctx context.Context, ticket *domain.RepairTicket) error
	GetByID(ctx context.Context, id string) (*domain.RepairTicket, error)
	List(ctx context.Context) ([]domain.RepairTicket, error)
	MergeUpdate(ctx context.Context, id string, update RepairUpdate) error
	DeleteAll(ctx context.Context) error
}

type repairRepository struct {
	pool *pgxpool.Pool
}

// NewRepairRepository instantiates the repository.
func NewRepairRepository(pool *pgxpool.Pool) RepairRepository {
	return &repairRepository{pool: pool}
}

const repairColumns = `id, tag, category, model, serial, supplier, customer, fault_declared,
       status, priority_claim, assigned_to, tech_notes, replaced_parts, photos,
       rma_info, staging, history, assignment_history,
       date_in, date_start, date_parts_missing, date_resume, date_rma_return, date_out, last_update`

func (r *repairRepository) Create(ctx context.Context, ticket *domain.RepairTicket) error {
	history, err := json.Marshal(ticket.History)
	if err != nil {
		return err
	}
	replaced, err := json.Marshal(emptyIfNil(ticket.ReplacedParts))
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO repairs (tag, category, model, serial, supplier, customer, fault_declared,
                             status, priority_claim, assigned_to, tech_notes, replaced_parts, history, date_in, last_update)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW(),NOW())
        RETURNING id, date_in, last_update`
	return r.pool.QueryRow(ctx, query,
		ticket.Tag,
		ticket.Category,
		ticket.Model,
		ticket.Serial,
		ticket.Supplier,
		ticket.Customer,
		ticket.FaultDeclared,
		ticket.Status,
		ticket.PriorityClaim,
		ticket.AssignedTo,
		ticket.TechNotes,
		replaced,
		history,
	).Scan(&ticket.ID, &ticket.DateIn, &ticket.LastUpdate)
}

func (r *repairRepository) GetByID(ctx context.Context, id string) (*domain.RepairTicket, error) {
	query := `SELECT ` + repairColumns + ` FROM repairs WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanRepair(row)
}

func (r *repairRepository) List(ctx context.Context) ([]domain.RepairTicket, error) {
	query := `SELECT ` + repairColumns + ` FROM repairs ORDER BY date_in DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RepairTicket
	for rows.Next() {
		ticket, err := scanRepair(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *repairRepository) MergeUpdate(ctx context.Context, id string, update RepairUpdate) error {
	sets := []string{}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	appendJSON := func(column string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		args = append(args, encoded)
		sets = append(sets, fmt.Sprintf("%s=%s || $%d::jsonb", column, column, len(args)))
		return nil
	}

	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.PriorityClaim != nil {
		add("priority_claim", *update.PriorityClaim)
	}
	if update.AssignedTo != nil {
		add("assigned_to", *update.AssignedTo)
	}
	if update.TechNotes != nil {
		add("tech_notes", *update.TechNotes)
	}
	if update.ReplacedParts != nil {
		encoded, err := json.Marshal(emptyIfNil(*update.ReplacedParts))
		if err != nil {
			return err
		}
		add("replaced_parts", encoded)
	}
	if update.RmaInfo != nil {
		encoded, err := json.Marshal(update.RmaInfo)
		if err != nil {
			return err
		}
		add("rma_info", encoded)
	}
	if update.Staging != nil {
		encoded, err := json.Marshal(update.Staging)
		if err != nil {
			return err
		}
		add("staging", encoded)
	}
	if update.DateStart != nil {
		add("date_start", *update.DateStart)
	}
	if update.DatePartsMissing != nil {
		add("date_parts_missing", *update.DatePartsMissing)
	}
	if update.DateResume != nil {
		add("date_resume", *update.DateResume)
	}
	if update.DateRmaReturn != nil {
		add("date_rma_return", *update.DateRmaReturn)
	}
	if update.DateOut != nil {
		add("date_out", *update.DateOut)
	}
	if update.LastUpdate != nil {
		add("last_update", *update.LastUpdate)
	}
	if len(update.AppendHistory) > 0 {
		if err := appendJSON("history", update.AppendHistory); err != nil {
			return err
		}
	}
	if len(update.AppendAssignments) > 0 {
		if err := appendJSON("assignment_history", update.AppendAssignments); err != nil {
			return err
		}
	}
	if len(update.AppendPhotos) > 0 {
		if err := appendJSON("photos", update.AppendPhotos); err != nil {
			return err
		}
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE repairs SET %s WHERE id=$%d", strings.Join(sets, ", "), len(args))
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repairRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM repairs`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepair(row rowScanner) (*domain.RepairTicket, error) {
	var (
		ticket      domain.RepairTicket
		replacedRaw []byte
		photosRaw   []byte
		rmaRaw      []byte
		stagingRaw  []byte
		historyRaw  []byte
		assignRaw   []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Tag,
		&ticket.Category,
		&ticket.Model,
		&ticket.Serial,
		&ticket.Supplier,
		&ticket.Customer,
		&ticket.FaultDeclared,
		&ticket.Status,
		&ticket.PriorityClaim,
		&ticket.AssignedTo,
		&ticket.TechNotes,
		&replacedRaw,
		&photosRaw,
		&rmaRaw,
		&stagingRaw,
		&historyRaw,
		&assignRaw,
		&ticket.DateIn,
		&ticket.DateStart,
		&ticket.DatePartsMissing,
		&ticket.DateResume,
		&ticket.DateRmaReturn,
		&ticket.DateOut,
		&ticket.LastUpdate,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(replacedRaw, &ticket.ReplacedParts); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(photosRaw, &ticket.Photos); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(historyRaw, &ticket.History); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(assignRaw, &ticket.AssignmentHistory); err != nil {
		return nil, err
	}
	if len(rmaRaw) > 0 {
		ticket.RmaInfo = &domain.RmaInfo{}
		if err := json.Unmarshal(rmaRaw, ticket.RmaInfo); err != nil {
			return nil, err
		}
	}
	if len(stagingRaw) > 0 {
		ticket.Staging = &domain.StagingInfo{}
		if err := json.Unmarshal(stagingRaw, ticket.Staging); err != nil {
			return nil, err
		}
	}
	return &ticket, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
