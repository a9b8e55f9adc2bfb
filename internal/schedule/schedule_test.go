package schedule

import (
	"testing"
	"time"

	"github.com/mbeiro/StudioAppBack/internal/models"
	"go.uber.org/zap"
)

func newTestEngine(now time.Time) *Engine {
	return NewEngine(FixedClock{Instant: now}, zap.NewNop())
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestOccurrencesProjectsWeekdaysInOrder(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 1))
	sched := models.ClassSchedule{Days: []string{"wednesday", "monday"}, Time: "18:00"}

	// June 2024 starts on a Saturday; first Monday is the 3rd.
	occurrences := engine.Occurrences(sched, day(2024, time.June, 1), day(2024, time.June, 30))

	if got := len(occurrences); got != 8 {
		t.Fatalf("expected 8 occurrences, got %d", got)
	}
	for i, occ := range occurrences {
		weekday := occ.Date.Weekday()
		if weekday != time.Monday && weekday != time.Wednesday {
			t.Fatalf("occurrence %d on %s, expected Monday or Wednesday", i, weekday)
		}
		if occ.Time != "18:00" {
			t.Fatalf("occurrence %d has time %q, expected 18:00", i, occ.Time)
		}
		if occ.Date.Before(day(2024, time.June, 1)) || occ.Date.After(day(2024, time.June, 30)) {
			t.Fatalf("occurrence %d date %s outside the requested range", i, occ.Date)
		}
		if i > 0 && occurrences[i].StartAt.Before(occurrences[i-1].StartAt) {
			t.Fatalf("occurrences out of order at index %d", i)
		}
	}
	if occurrences[0].Date != day(2024, time.June, 3) {
		t.Fatalf("expected first occurrence on June 3, got %s", occurrences[0].Date)
	}
}

func TestOccurrencesMonthStartingOnMonday(t *testing.T) {
	engine := newTestEngine(day(2024, time.July, 1))
	sched := models.ClassSchedule{Days: []string{"monday", "wednesday"}, Time: "18:00"}

	// July 2024 starts on a Monday.
	occurrences := engine.MonthOf(sched, day(2024, time.July, 10))

	mondays, wednesdays := 0, 0
	for _, occ := range occurrences {
		switch occ.Date.Weekday() {
		case time.Monday:
			mondays++
		case time.Wednesday:
			wednesdays++
		default:
			t.Fatalf("unexpected weekday %s", occ.Date.Weekday())
		}
		if occ.StartAt.Hour() != 18 || occ.StartAt.Minute() != 0 {
			t.Fatalf("expected 18:00 start, got %s", occ.StartAt)
		}
	}
	if mondays != 5 || wednesdays != 5 {
		t.Fatalf("expected 5 Mondays and 5 Wednesdays in July 2024, got %d and %d", mondays, wednesdays)
	}
	if occurrences[0].Date != day(2024, time.July, 1) {
		t.Fatalf("range start falling on a scheduled weekday must be included, got %s", occurrences[0].Date)
	}
}

func TestOccurrencesInclusiveRangeEnd(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 1))
	sched := models.ClassSchedule{Days: []string{"sunday"}, Time: "10:00"}

	// June 30 2024 is a Sunday.
	occurrences := engine.Occurrences(sched, day(2024, time.June, 24), day(2024, time.June, 30))
	if len(occurrences) != 1 {
		t.Fatalf("expected 1 occurrence, got %d", len(occurrences))
	}
	if occurrences[0].Date != day(2024, time.June, 30) {
		t.Fatalf("expected occurrence on the inclusive range end, got %s", occurrences[0].Date)
	}
}

func TestOccurrencesEmptyDays(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 1))

	occurrences := engine.Occurrences(models.ClassSchedule{}, day(2024, time.January, 1), day(2024, time.December, 31))
	if len(occurrences) != 0 {
		t.Fatalf("expected no occurrences for an empty weekday set, got %d", len(occurrences))
	}
}

func TestOccurrencesInvertedRange(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 1))
	sched := models.ClassSchedule{Days: []string{"monday"}}

	occurrences := engine.Occurrences(sched, day(2024, time.June, 30), day(2024, time.June, 1))
	if len(occurrences) != 0 {
		t.Fatalf("expected no occurrences when start is after end, got %d", len(occurrences))
	}
}

func TestOccurrencesSkipsUnknownWeekday(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 1))
	sched := models.ClassSchedule{Days: []string{"funday", "friday"}, Time: "07:30"}

	occurrences := engine.Occurrences(sched, day(2024, time.June, 3), day(2024, time.June, 9))
	if len(occurrences) != 1 {
		t.Fatalf("expected the valid weekday to survive a bad one, got %d occurrences", len(occurrences))
	}
	if occurrences[0].Date.Weekday() != time.Friday {
		t.Fatalf("expected Friday, got %s", occurrences[0].Date.Weekday())
	}
}

func TestOccurrencesDefaultsMissingTime(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 1))

	for _, scheduleTime := range []string{"", "   ", "25:99", "evening"} {
		sched := models.ClassSchedule{Days: []string{"tuesday"}, Time: scheduleTime}
		occurrences := engine.Occurrences(sched, day(2024, time.June, 3), day(2024, time.June, 9))
		if len(occurrences) != 1 {
			t.Fatalf("time %q: expected 1 occurrence, got %d", scheduleTime, len(occurrences))
		}
		if occurrences[0].Time != DefaultStartTime {
			t.Fatalf("time %q: expected default %s, got %s", scheduleTime, DefaultStartTime, occurrences[0].Time)
		}
	}
}

func TestOccurrencesDedupesRepeatedWeekday(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 1))
	sched := models.ClassSchedule{Days: []string{"monday", "Monday", " MONDAY "}}

	occurrences := engine.Occurrences(sched, day(2024, time.June, 3), day(2024, time.June, 9))
	if len(occurrences) != 1 {
		t.Fatalf("expected one occurrence per week for a repeated weekday, got %d", len(occurrences))
	}
}

func TestOccurrencesIsPure(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 1))
	sched := models.ClassSchedule{Days: []string{"monday", "thursday"}, Time: "09:15"}

	first := engine.Occurrences(sched, day(2024, time.June, 1), day(2024, time.June, 30))
	second := engine.Occurrences(sched, day(2024, time.June, 1), day(2024, time.June, 30))
	if len(first) != len(second) {
		t.Fatalf("expected identical projections, got %d and %d occurrences", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("projection differs at index %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestWeekOfCoversMondayToSunday(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 1))
	sched := models.ClassSchedule{Days: []string{"monday", "sunday"}}

	// June 6 2024 is a Thursday; its week is June 3 to June 9.
	occurrences := engine.WeekOf(sched, day(2024, time.June, 6))
	if len(occurrences) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occurrences))
	}
	if occurrences[0].Date != day(2024, time.June, 3) || occurrences[1].Date != day(2024, time.June, 9) {
		t.Fatalf("expected June 3 and June 9, got %s and %s", occurrences[0].Date, occurrences[1].Date)
	}
}

func TestUpcomingFiltersPastStartTimes(t *testing.T) {
	// Monday June 3 2024, 19:00: tonight's 18:00 session has already started.
	now := time.Date(2024, time.June, 3, 19, 0, 0, 0, time.UTC)
	engine := newTestEngine(now)
	sched := models.ClassSchedule{Days: []string{"monday"}, Time: "18:00"}

	upcoming := engine.Upcoming(sched, 3)
	if len(upcoming) != 3 {
		t.Fatalf("expected 3 upcoming occurrences, got %d", len(upcoming))
	}
	if upcoming[0].Date != day(2024, time.June, 10) {
		t.Fatalf("expected next Monday June 10 first, got %s", upcoming[0].Date)
	}
	for i, occ := range upcoming {
		if !occ.StartAt.After(now) {
			t.Fatalf("upcoming occurrence %d starts at %s, not after now", i, occ.StartAt)
		}
	}
}

func TestUpcomingIncludesLaterToday(t *testing.T) {
	now := time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)
	engine := newTestEngine(now)
	sched := models.ClassSchedule{Days: []string{"monday"}, Time: "18:00"}

	upcoming := engine.Upcoming(sched, 1)
	if len(upcoming) != 1 {
		t.Fatalf("expected 1 upcoming occurrence, got %d", len(upcoming))
	}
	if upcoming[0].Date != day(2024, time.June, 3) {
		t.Fatalf("expected tonight's session, got %s", upcoming[0].Date)
	}
}

func TestPayPeriodEndingOnFutureWeekday(t *testing.T) {
	// Wednesday June 5 2024; next Friday is June 7.
	engine := newTestEngine(day(2024, time.June, 5))

	start, end, err := engine.PayPeriodEnding("friday")
	if err != nil {
		t.Fatalf("PayPeriodEnding: %v", err)
	}
	if end != day(2024, time.June, 7) {
		t.Fatalf("expected period end June 7, got %s", end)
	}
	if start != day(2024, time.June, 1) {
		t.Fatalf("expected period start June 1, got %s", start)
	}
}

func TestPayPeriodEndingToday(t *testing.T) {
	// Friday June 7 2024 closes its own window.
	engine := newTestEngine(day(2024, time.June, 7))

	start, end, err := engine.PayPeriodEnding("friday")
	if err != nil {
		t.Fatalf("PayPeriodEnding: %v", err)
	}
	if end != day(2024, time.June, 7) || start != day(2024, time.June, 1) {
		t.Fatalf("expected June 1 to June 7, got %s to %s", start, end)
	}
}

func TestPayPeriodEndingRejectsUnknownWeekday(t *testing.T) {
	engine := newTestEngine(day(2024, time.June, 5))

	if _, _, err := engine.PayPeriodEnding("payday"); err == nil {
		t.Fatal("expected an error for an unknown payout weekday")
	}
}
