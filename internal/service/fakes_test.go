package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/repository"
)

// fakeClock is a manually advanced clock shared by service and fakes.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

type fakeRepairRepo struct {
	seq     int
	tickets map[string]*domain.RepairTicket
	now     func() time.Time
}

func newFakeRepairRepo(now func() time.Time) *fakeRepairRepo {
	return &fakeRepairRepo{tickets: map[string]*domain.RepairTicket{}, now: now}
}

func (f *fakeRepairRepo) Create(_ context.Context, ticket *domain.RepairTicket) error {
	f.seq++
	ticket.ID = fmt.Sprintf("repair-%d", f.seq)
	ticket.DateIn = f.now()
	ticket.LastUpdate = f.now()
	stored := cloneTicket(ticket)
	f.tickets[ticket.ID] = stored
	return nil
}

func (f *fakeRepairRepo) GetByID(_ context.Context, id string) (*domain.RepairTicket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneTicket(ticket), nil
}

func (f *fakeRepairRepo) List(_ context.Context) ([]domain.RepairTicket, error) {
	out := make([]domain.RepairTicket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		out = append(out, *cloneTicket(ticket))
	}
	return out, nil
}

func (f *fakeRepairRepo) MergeUpdate(_ context.Context, id string, update repository.RepairUpdate) error {
	ticket, ok := f.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if update.Status != nil {
		ticket.Status = *update.Status
	}
	if update.PriorityClaim != nil {
		ticket.PriorityClaim = *update.PriorityClaim
	}
	if update.AssignedTo != nil {
		assignee := *update.AssignedTo
		ticket.AssignedTo = &assignee
	}
	if update.TechNotes != nil {
		ticket.TechNotes = *update.TechNotes
	}
	if update.ReplacedParts != nil {
		ticket.ReplacedParts = append([]string{}, (*update.ReplacedParts)...)
	}
	if update.RmaInfo != nil {
		rma := *update.RmaInfo
		ticket.RmaInfo = &rma
	}
	if update.Staging != nil {
		staging := *update.Staging
		ticket.Staging = &staging
	}
	if update.DateStart != nil {
		d := *update.DateStart
		ticket.DateStart = &d
	}
	if update.DatePartsMissing != nil {
		d := *update.DatePartsMissing
		ticket.DatePartsMissing = &d
	}
	if update.DateResume != nil {
		d := *update.DateResume
		ticket.DateResume = &d
	}
	if update.DateRmaReturn != nil {
		d := *update.DateRmaReturn
		ticket.DateRmaReturn = &d
	}
	if update.DateOut != nil {
		d := *update.DateOut
		ticket.DateOut = &d
	}
	if update.LastUpdate != nil {
		ticket.LastUpdate = *update.LastUpdate
	}
	ticket.History = append(ticket.History, update.AppendHistory...)
	ticket.AssignmentHistory = append(ticket.AssignmentHistory, update.AppendAssignments...)
	ticket.Photos = append(ticket.Photos, update.AppendPhotos...)
	return nil
}

func (f *fakeRepairRepo) DeleteAll(_ context.Context) error {
	f.tickets = map[string]*domain.RepairTicket{}
	return nil
}

func cloneTicket(ticket *domain.RepairTicket) *domain.RepairTicket {
	out := *ticket
	out.ReplacedParts = append([]string{}, ticket.ReplacedParts...)
	out.Photos = append([]string{}, ticket.Photos...)
	out.History = append(domain.History{}, ticket.History...)
	out.AssignmentHistory = append([]domain.AssignmentRecord{}, ticket.AssignmentHistory...)
	return &out
}

type fakeSettingsRepo struct {
	settings domain.Settings
	merges   []map[string]any
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: domain.DefaultSettings()}
}

func (f *fakeSettingsRepo) Get(context.Context) (domain.Settings, error) {
	return f.settings, nil
}

func (f *fakeSettingsRepo) Merge(_ context.Context, partial map[string]any) error {
	f.merges = append(f.merges, partial)
	return nil
}

func (f *fakeSettingsRepo) Replace(_ context.Context, settings domain.Settings) error {
	f.settings = settings
	return nil
}

type fakePartRepo struct {
	seq   int
	parts map[string]*domain.InventoryPart
}

func newFakePartRepo() *fakePartRepo {
	return &fakePartRepo{parts: map[string]*domain.InventoryPart{}}
}

func (f *fakePartRepo) Create(_ context.Context, part *domain.InventoryPart) error {
	f.seq++
	part.ID = fmt.Sprintf("part-%d", f.seq)
	stored := *part
	f.parts[part.ID] = &stored
	return nil
}

func (f *fakePartRepo) GetByID(_ context.Context, id string) (*domain.InventoryPart, error) {
	part, ok := f.parts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *part
	return &out, nil
}

func (f *fakePartRepo) GetByName(_ context.Context, name string) (*domain.InventoryPart, error) {
	for _, part := range f.parts {
		if part.Name == name {
			out := *part
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePartRepo) List(context.Context) ([]domain.InventoryPart, error) {
	out := make([]domain.InventoryPart, 0, len(f.parts))
	for _, part := range f.parts {
		out = append(out, *part)
	}
	return out, nil
}

func (f *fakePartRepo) AdjustQuantity(_ context.Context, id string, delta int) (int, error) {
	part, ok := f.parts[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	part.Quantity += delta
	if part.Quantity < 0 {
		part.Quantity = 0
	}
	return part.Quantity, nil
}

func (f *fakePartRepo) Update(_ context.Context, part *domain.InventoryPart) error {
	if _, ok := f.parts[part.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *part
	f.parts[part.ID] = &stored
	return nil
}

func (f *fakePartRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.parts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.parts, id)
	return nil
}

type fakeUserRepo struct {
	seq      int
	profiles map[string]*domain.UserProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: map[string]*domain.UserProfile{}}
}

func (f *fakeUserRepo) Create(_ context.Context, profile *domain.UserProfile) error {
	f.seq++
	profile.UID = fmt.Sprintf("user-%d", f.seq)
	profile.CreatedAt = time.Now()
	stored := *profile
	f.profiles[profile.UID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByUID(_ context.Context, uid string) (*domain.UserProfile, error) {
	profile, ok := f.profiles[uid]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *profile
	return &out, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.UserProfile, error) {
	for _, profile := range f.profiles {
		if profile.Email == email {
			out := *profile
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(context.Context) ([]domain.UserProfile, error) {
	out := make([]domain.UserProfile, 0, len(f.profiles))
	for _, profile := range f.profiles {
		out = append(out, *profile)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, uid string, role domain.Role) error {
	profile, ok := f.profiles[uid]
	if !ok {
		return pgx.ErrNoRows
	}
	profile.Role = role
	return nil
}
