package domain

import (
	"testing"
	"time"
)

var base = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func TestDurationInAccumulatesRevisits(t *testing.T) {
	history := History{
		{Status: StatusDiagnosi, Date: at(0)},
		{Status: StatusInLavorazione, Date: at(21)},
		{Status: StatusAttesaParti, Date: at(27)},
		{Status: StatusInLavorazione, Date: at(69)},
		{Status: StatusRiparato, Date: at(94)},
	}
	now := at(100)

	cases := []struct {
		status RepairStatus
		want   time.Duration
	}{
		{StatusDiagnosi, 21 * time.Hour},
		{StatusInLavorazione, 31 * time.Hour},
		{StatusAttesaParti, 42 * time.Hour},
		{StatusRiparato, 6 * time.Hour},
		{StatusSpedito, 0},
	}
	for _, tc := range cases {
		if got := history.DurationIn(tc.status, now); got != tc.want {
			t.Errorf("DurationIn(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestDurationInConsecutiveSameStatus(t *testing.T) {
	// Same-status entries land on the timeline when priority or notes are
	// edited without moving the board. The dwell total must not change.
	history := History{
		{Status: StatusDiagnosi, Date: at(0)},
		{Status: StatusDiagnosi, Date: at(5)},
		{Status: StatusDiagnosi, Date: at(9)},
		{Status: StatusInLavorazione, Date: at(21)},
	}
	if got := history.DurationIn(StatusDiagnosi, at(30)); got != 21*time.Hour {
		t.Errorf("DurationIn(Diagnosi) = %v, want 21h", got)
	}
}

func TestDurationInOpenLastEntry(t *testing.T) {
	history := History{{Status: StatusIngresso, Date: at(0)}}
	if got := history.DurationIn(StatusIngresso, at(3)); got != 3*time.Hour {
		t.Errorf("DurationIn(Ingresso) = %v, want 3h", got)
	}
}

func TestLatestEntryFor(t *testing.T) {
	history := History{
		{Status: StatusInLavorazione, Date: at(1)},
		{Status: StatusAttesaParti, Date: at(2)},
		{Status: StatusInLavorazione, Date: at(5)},
	}
	entry, ok := history.LatestEntryFor(StatusInLavorazione)
	if !ok {
		t.Fatal("expected entry")
	}
	if !entry.Date.Equal(at(5)) {
		t.Errorf("latest entry date = %v, want %v", entry.Date, at(5))
	}
	if _, ok := history.LatestEntryFor(StatusSpedito); ok {
		t.Error("expected no Spedito entry")
	}
}

func TestTotalLabTime(t *testing.T) {
	open := RepairTicket{DateIn: at(0)}
	if got := open.TotalLabTime(at(10)); got != 10*time.Hour {
		t.Errorf("open ticket lab time = %v, want 10h", got)
	}

	out := at(8)
	closed := RepairTicket{DateIn: at(0), DateOut: &out}
	if got := closed.TotalLabTime(at(10)); got != 8*time.Hour {
		t.Errorf("closed ticket lab time = %v, want 8h", got)
	}

	var blank RepairTicket
	if got := blank.TotalLabTime(at(10)); got != 0 {
		t.Errorf("blank ticket lab time = %v, want 0", got)
	}
}

func TestStatusFlow(t *testing.T) {
	next, ok := StatusIngresso.Next()
	if !ok || next != StatusDiagnosi {
		t.Errorf("Ingresso next = %v, want Diagnosi", next)
	}
	next, ok = StatusAttesaParti.Next()
	if !ok || next != StatusInLavorazione {
		t.Errorf("Attesa Parti next = %v, want In Lavorazione", next)
	}
	if _, ok := StatusSpedito.Next(); ok {
		t.Error("Spedito must be terminal")
	}
	if !StatusSpedito.Terminal() {
		t.Error("Terminal(Spedito) = false")
	}
	if StatusRiparato.Terminal() {
		t.Error("Terminal(Riparato) = true")
	}
	if RepairStatus("Sconosciuto").Valid() {
		t.Error("unknown status reported valid")
	}
	if len(AllStatuses()) != 9 {
		t.Errorf("AllStatuses() = %d entries, want 9", len(AllStatuses()))
	}
}

func TestHasReplacedPart(t *testing.T) {
	ticket := RepairTicket{ReplacedParts: []string{"Battery 52Wh"}}
	if !ticket.HasReplacedPart("Battery 52Wh") {
		t.Error("expected part recorded")
	}
	if ticket.HasReplacedPart("Display 14\"") {
		t.Error("unexpected part recorded")
	}
}
