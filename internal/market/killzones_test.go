package market

import (
	"testing"
	"time"

	"candlekit/internal/domain"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestKillzonesActiveAndNextWindow(t *testing.T) {
	loc := newYork(t)
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, loc)

	report, err := Killzones(now, KillzoneQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Profile != DefaultKillzoneProfile {
		t.Fatalf("expected default profile, got %s", report.Profile)
	}
	if len(report.Windows) != 6 {
		t.Fatalf("expected 6 windows over two days, got %d", len(report.Windows))
	}
	if len(report.Active) != 1 || report.Active[0] != "New York Kill Zone" {
		t.Fatalf("expected the New York window to be active at 09:30, got %v", report.Active)
	}
	if report.Next == nil || report.Next.Name != "Asia Kill Zone" {
		t.Fatalf("expected Asia as the next window, got %+v", report.Next)
	}
	if report.Next.StartsIn != "10h 30m" {
		t.Fatalf("expected Asia to open in 10h 30m, got %s", report.Next.StartsIn)
	}
}

func TestKillzonesConvertsToDisplayZone(t *testing.T) {
	loc := newYork(t)
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, loc)

	report, err := Killzones(now, KillzoneQuery{DisplayZone: "UTC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ny *KillzoneWindow
	for i := range report.Windows {
		if report.Windows[i].Key == "newyork" && report.Windows[i].Active {
			ny = &report.Windows[i]
		}
	}
	if ny == nil {
		t.Fatal("expected an active New York window")
	}
	// 08:00 New York is 13:00 UTC before daylight saving starts.
	want := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	if !ny.Start.Equal(want) || ny.Start.Location() != time.UTC {
		t.Fatalf("expected window start %v, got %v", want, ny.Start)
	}
}

func TestKillzonesAsiaWindowCrossesMidnight(t *testing.T) {
	loc := newYork(t)
	now := time.Date(2026, 3, 2, 21, 0, 0, 0, loc)

	report, err := Killzones(now, KillzoneQuery{Timezone: "America/New_York", ReferenceZone: "America/New_York"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Active) != 1 || report.Active[0] != "Asia Kill Zone" {
		t.Fatalf("expected the Asia window to be active at 21:00, got %v", report.Active)
	}

	first := report.Windows[0]
	for _, w := range report.Windows {
		if w.Key == "asia" && w.Active {
			first = w
		}
	}
	if !first.End.After(first.Start) || first.End.Day() == first.Start.Day() {
		t.Fatalf("expected the Asia window to roll over midnight, got %v to %v", first.Start, first.End)
	}
}

func TestKillzonesOutsideAnyWindow(t *testing.T) {
	loc := newYork(t)
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, loc)

	report, err := Killzones(now, KillzoneQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Active) != 0 {
		t.Fatalf("expected no active window at 06:00, got %v", report.Active)
	}
	if report.Next == nil || report.Next.Name != "New York Kill Zone" || report.Next.StartsIn != "2h 0m" {
		t.Fatalf("expected New York to open in 2h 0m, got %+v", report.Next)
	}
}

func TestKillzonesValidation(t *testing.T) {
	now := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)

	if _, err := Killzones(now, KillzoneQuery{Profile: "lunch_break"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown profile, got %v", err)
	}
	if _, err := Killzones(now, KillzoneQuery{DisplayZone: "Mars/Olympus"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for unknown timezone, got %v", err)
	}
	if _, err := Killzones(now, KillzoneQuery{Date: "03-02-2026"}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for malformed date, got %v", err)
	}
}
