package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-tracker/internal/domain"
	"github.com/spec-kit/repair-tracker/internal/repository"
)

const kpiCacheKey = "repair-tracker:kpi:snapshot"

// AnalyticsService derives SLA breach flags and KPI rollups from ticket
// history. The dashboard snapshot is cached briefly in Redis since the
// rollup walks every ticket.
type AnalyticsService struct {
	repairs  repository.RepairRepository
	settings repository.SettingsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// AnalyticsDependencies bundles collaborators for the analytics service.
type AnalyticsDependencies struct {
	RepairRepo   repository.RepairRepository
	SettingsRepo repository.SettingsRepository
	Cache        *redis.Client
	CacheTTL     time.Duration
	Logger       *zap.Logger
	Clock        func() time.Time
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		repairs:  deps.RepairRepo,
		settings: deps.SettingsRepo,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		logger:   logger,
		now:      now,
	}
}

// IsBreached reports whether the ticket's current unbroken dwell exceeds the
// configured threshold for its status. Unlike cumulative dwell accounting,
// only the latest visit counts: the dwell starts at the most recent history
// entry matching the current status, falling back to lastUpdate, then the
// epoch. A missing or non-positive threshold never breaches; the comparison
// is strictly greater-than.
func IsBreached(ticket *domain.RepairTicket, settings domain.Settings, now time.Time) bool {
	hours := settings.SLAHoursFor(ticket.Status)
	if hours <= 0 {
		return false
	}
	limit := time.Duration(hours) * time.Hour

	start := time.Time{}
	if !ticket.LastUpdate.IsZero() {
		start = ticket.LastUpdate
	}
	if entry, ok := ticket.History.LatestEntryFor(ticket.Status); ok {
		start = entry.Date
	}

	return now.Sub(start) > limit
}

// BreachedTickets lists tickets currently past their SLA threshold.
func (s *AnalyticsService) BreachedTickets(ctx context.Context) ([]domain.RepairTicket, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	tickets, err := s.repairs.List(ctx)
	if err != nil {
		return []domain.RepairTicket{}, nil
	}
	now := s.now()
	breached := []domain.RepairTicket{}
	for i := range tickets {
		if IsBreached(&tickets[i], settings, now) {
			breached = append(breached, tickets[i])
		}
	}
	return breached, nil
}

// MetricPair compares the current month's average against the previous one.
// Averages are milliseconds of dwell per ticket; DeltaPct treats an empty
// previous month as 1ms to keep the percentage defined.
type MetricPair struct {
	CurrentMs  float64 `json:"current_ms"`
	PreviousMs float64 `json:"previous_ms"`
	DeltaPct   float64 `json:"delta_pct"`
}

// IntakeBucket is one day of the rolling intake histogram.
type IntakeBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// KPIReport is the aggregated dashboard view.
type KPIReport struct {
	TotalLab           MetricPair                  `json:"total_lab"`
	Diagnosis          MetricPair                  `json:"diagnosis"`
	Working            MetricPair                  `json:"working"`
	PartsWait          MetricPair                  `json:"parts_wait"`
	StatusDistribution map[domain.RepairStatus]int `json:"status_distribution"`
	IntakeLast7Days    []IntakeBucket              `json:"intake_last_7_days"`
	UrgentCount        int                         `json:"urgent_count"`
	GeneratedAt        time.Time                   `json:"generated_at"`
}

// ComputeKPIs rolls up every ticket: month-over-month average dwell per
// tracked status plus total lab time, the current status distribution and a
// 7-day intake histogram.
func (s *AnalyticsService) ComputeKPIs(ctx context.Context) (*KPIReport, error) {
	tickets, err := s.repairs.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	report := BuildKPIReport(tickets, now)
	return report, nil
}

// BuildKPIReport computes the rollup for a fixed ticket set and reference
// time. Exposed separately so the math is testable without a store.
func BuildKPIReport(tickets []domain.RepairTicket, now time.Time) *KPIReport {
	curYear, curMonth := now.Year(), now.Month()
	prevYear, prevMonth := previousMonth(curYear, curMonth)

	var thisMonth, prevMonthTickets []domain.RepairTicket
	for _, t := range tickets {
		if t.DateIn.IsZero() {
			continue
		}
		y, m := t.DateIn.Year(), t.DateIn.Month()
		switch {
		case y == curYear && m == curMonth:
			thisMonth = append(thisMonth, t)
		case y == prevYear && m == prevMonth:
			prevMonthTickets = append(prevMonthTickets, t)
		}
	}

	pair := func(fn func(*domain.RepairTicket) time.Duration) MetricPair {
		current := averageMs(thisMonth, fn)
		previous := averageMs(prevMonthTickets, fn)
		return MetricPair{
			CurrentMs:  current,
			PreviousMs: previous,
			DeltaPct:   deltaPct(current, previous),
		}
	}

	report := &KPIReport{
		TotalLab: pair(func(t *domain.RepairTicket) time.Duration {
			return t.TotalLabTime(now)
		}),
		Diagnosis: pair(func(t *domain.RepairTicket) time.Duration {
			return t.History.DurationIn(domain.StatusDiagnosi, now)
		}),
		Working: pair(func(t *domain.RepairTicket) time.Duration {
			return t.History.DurationIn(domain.StatusInLavorazione, now)
		}),
		PartsWait: pair(func(t *domain.RepairTicket) time.Duration {
			return t.History.DurationIn(domain.StatusAttesaParti, now)
		}),
		StatusDistribution: map[domain.RepairStatus]int{},
		GeneratedAt:        now,
	}

	for _, t := range tickets {
		report.StatusDistribution[t.Status]++
		if t.PriorityClaim {
			report.UrgentCount++
		}
	}

	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		count := 0
		for _, t := range tickets {
			if !t.DateIn.IsZero() && t.DateIn.Format("2006-01-02") == key {
				count++
			}
		}
		report.IntakeLast7Days = append(report.IntakeLast7Days, IntakeBucket{Date: key, Count: count})
	}

	return report
}

// DashboardSnapshot serves the KPI report through the Redis cache when one
// is configured, recomputing on miss.
func (s *AnalyticsService) DashboardSnapshot(ctx context.Context) (*KPIReport, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		raw, err := s.cache.Get(ctx, kpiCacheKey).Bytes()
		if err == nil {
			var cached KPIReport
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	report, err := s.ComputeKPIs(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		encoded, err := json.Marshal(report)
		if err == nil {
			if err := s.cache.Set(ctx, kpiCacheKey, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("kpi cache write failed", zap.Error(err))
			}
		}
	}
	return report, nil
}

func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

func averageMs(tickets []domain.RepairTicket, fn func(*domain.RepairTicket) time.Duration) float64 {
	if len(tickets) == 0 {
		return 0
	}
	var sum float64
	for i := range tickets {
		sum += float64(fn(&tickets[i]).Milliseconds())
	}
	return sum / float64(len(tickets))
}

func deltaPct(current, previous float64) float64 {
	base := previous
	if base == 0 {
		base = 1
	}
	return (current - previous) / base * 100
}
