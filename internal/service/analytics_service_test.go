package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/repair-tracker/internal/domain"
)

func TestIsBreachedStrictComparison(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ticket := &domain.RepairTicket{
		Status:  domain.StatusDiagnosi,
		History: domain.History{{Status: domain.StatusDiagnosi, Date: start}},
	}
	sla := domain.Settings{SLAHours: map[domain.RepairStatus]int{domain.StatusDiagnosi: 48}}

	exactly := start.Add(48 * time.Hour)
	if IsBreached(ticket, sla, exactly) {
		t.Error("dwell exactly at the limit must not breach")
	}
	if !IsBreached(ticket, sla, exactly.Add(time.Second)) {
		t.Error("dwell past the limit must breach")
	}
}

func TestIsBreachedWithoutThreshold(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ticket := &domain.RepairTicket{
		Status:  domain.StatusIngresso,
		History: domain.History{{Status: domain.StatusIngresso, Date: start}},
	}
	if IsBreached(ticket, domain.Settings{}, start.Add(1000*time.Hour)) {
		t.Error("status without threshold must never breach")
	}
	zero := domain.Settings{SLAHours: map[domain.RepairStatus]int{domain.StatusIngresso: 0}}
	if IsBreached(ticket, zero, start.Add(1000*time.Hour)) {
		t.Error("zero threshold must never breach")
	}
}

func TestIsBreachedCountsLatestVisitOnly(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ticket := &domain.RepairTicket{
		Status: domain.StatusInLavorazione,
		History: domain.History{
			{Status: domain.StatusInLavorazione, Date: start},
			{Status: domain.StatusAttesaParti, Date: start.Add(200 * time.Hour)},
			{Status: domain.StatusInLavorazione, Date: start.Add(300 * time.Hour)},
		},
	}
	sla := domain.Settings{SLAHours: map[domain.RepairStatus]int{domain.StatusInLavorazione: 120}}

	// 301h elapsed overall, but only 1h since the latest re-entry.
	if IsBreached(ticket, sla, start.Add(301*time.Hour)) {
		t.Error("breach clock must restart on re-entry")
	}
	if !IsBreached(ticket, sla, start.Add(421*time.Hour).Add(time.Second)) {
		t.Error("latest visit past the limit must breach")
	}
}

func TestIsBreachedFallsBackToLastUpdate(t *testing.T) {
	lastUpdate := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	ticket := &domain.RepairTicket{
		Status:     domain.StatusDiagnosi,
		LastUpdate: lastUpdate,
	}
	sla := domain.Settings{SLAHours: map[domain.RepairStatus]int{domain.StatusDiagnosi: 48}}
	if IsBreached(ticket, sla, lastUpdate.Add(47*time.Hour)) {
		t.Error("within limit from lastUpdate")
	}
	if !IsBreached(ticket, sla, lastUpdate.Add(49*time.Hour)) {
		t.Error("past limit from lastUpdate must breach")
	}
}

func TestBuildKPIReportMonthPartition(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	curIn := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	curOut := curIn.Add(10 * time.Hour)
	prevIn := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)
	prevOut := prevIn.Add(20 * time.Hour)

	tickets := []domain.RepairTicket{
		{Status: domain.StatusSpedito, DateIn: curIn, DateOut: &curOut},
		{Status: domain.StatusSpedito, DateIn: prevIn, DateOut: &prevOut},
	}
	report := BuildKPIReport(tickets, now)

	wantCur := float64((10 * time.Hour).Milliseconds())
	wantPrev := float64((20 * time.Hour).Milliseconds())
	if report.TotalLab.CurrentMs != wantCur {
		t.Errorf("current avg = %v, want %v", report.TotalLab.CurrentMs, wantCur)
	}
	if report.TotalLab.PreviousMs != wantPrev {
		t.Errorf("previous avg = %v, want %v", report.TotalLab.PreviousMs, wantPrev)
	}
	if report.TotalLab.DeltaPct != -50 {
		t.Errorf("delta = %v, want -50", report.TotalLab.DeltaPct)
	}
}

func TestBuildKPIReportDeltaWithEmptyPreviousMonth(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	in := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)
	out := in.Add(2 * time.Hour)
	report := BuildKPIReport([]domain.RepairTicket{
		{Status: domain.StatusSpedito, DateIn: in, DateOut: &out},
	}, now)

	// Previous month is empty; the divisor guard treats it as 1ms.
	wantCur := float64((2 * time.Hour).Milliseconds())
	if report.TotalLab.CurrentMs != wantCur {
		t.Errorf("current avg = %v, want %v", report.TotalLab.CurrentMs, wantCur)
	}
	if report.TotalLab.PreviousMs != 0 {
		t.Errorf("previous avg = %v, want 0", report.TotalLab.PreviousMs)
	}
	if report.TotalLab.DeltaPct != wantCur*100 {
		t.Errorf("delta = %v, want %v", report.TotalLab.DeltaPct, wantCur*100)
	}
}

func TestBuildKPIReportJanuaryWrap(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	decIn := time.Date(2023, 12, 10, 8, 0, 0, 0, time.UTC)
	decOut := decIn.Add(5 * time.Hour)
	report := BuildKPIReport([]domain.RepairTicket{
		{Status: domain.StatusSpedito, DateIn: decIn, DateOut: &decOut},
	}, now)

	want := float64((5 * time.Hour).Milliseconds())
	if report.TotalLab.PreviousMs != want {
		t.Errorf("previous avg = %v, want December counted as previous month", report.TotalLab.PreviousMs)
	}
}

func TestBuildKPIReportDistributionAndIntake(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	tickets := []domain.RepairTicket{
		{Status: domain.StatusDiagnosi, DateIn: now.AddDate(0, 0, -1), PriorityClaim: true},
		{Status: domain.StatusDiagnosi, DateIn: now.AddDate(0, 0, -1)},
		{Status: domain.StatusInLavorazione, DateIn: now.AddDate(0, 0, -10)},
	}
	report := BuildKPIReport(tickets, now)

	if report.StatusDistribution[domain.StatusDiagnosi] != 2 {
		t.Errorf("Diagnosi count = %d, want 2", report.StatusDistribution[domain.StatusDiagnosi])
	}
	if report.UrgentCount != 1 {
		t.Errorf("urgent count = %d, want 1", report.UrgentCount)
	}
	if len(report.IntakeLast7Days) != 7 {
		t.Fatalf("histogram length = %d, want 7", len(report.IntakeLast7Days))
	}
	yesterday := report.IntakeLast7Days[5]
	if yesterday.Date != now.AddDate(0, 0, -1).Format("2006-01-02") || yesterday.Count != 2 {
		t.Errorf("yesterday bucket = %+v", yesterday)
	}
	today := report.IntakeLast7Days[6]
	if today.Count != 0 {
		t.Errorf("today bucket = %+v", today)
	}
}

func TestBreachedTickets(t *testing.T) {
	clock := newFakeClock()
	repairs := newFakeRepairRepo(clock.Now)
	settings := newFakeSettingsRepo()
	svc := NewAnalyticsService(AnalyticsDependencies{
		RepairRepo:   repairs,
		SettingsRepo: settings,
		Clock:        clock.Now,
	})

	lifecycle := NewLifecycleService(LifecycleDependencies{
		RepairRepo:   repairs,
		SettingsRepo: settings,
		Clock:        clock.Now,
	})
	stale := intakeTicket(t, lifecycle)
	if _, err := lifecycle.Transition(context.Background(), operator(), stale.ID, domain.StatusDiagnosi, TransitionPayload{}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	clock.Advance(49 * time.Hour)
	fresh := intakeTicket(t, lifecycle)

	breached, err := svc.BreachedTickets(context.Background())
	if err != nil {
		t.Fatalf("BreachedTickets: %v", err)
	}
	if len(breached) != 1 || breached[0].ID != stale.ID {
		t.Errorf("breached = %+v, want only %s", breached, stale.ID)
	}
	_ = fresh
}
