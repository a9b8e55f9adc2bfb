package schedule

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mbeiro/StudioAppBack/internal/models"
	"go.uber.org/zap"
)

// DefaultStartTime is assumed when a class schedule carries no start time.
const DefaultStartTime = "18:00"

var ErrUnknownWeekday = errors.New("unknown weekday")

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Occurrence is one projected calendar instance of a recurring class. Date is
// the day at midnight, Time the "HH:MM" start, StartAt the combined instant.
type Occurrence struct {
	Date    time.Time `json:"date"`
	Time    string    `json:"time"`
	StartAt time.Time `json:"start_at"`
}

// Engine projects weekly recurrence patterns onto concrete dates. It holds no
// mutable state; identical inputs always yield identical output.
type Engine struct {
	clock  Clock
	logger *zap.Logger
}

func NewEngine(clock Clock, logger *zap.Logger) *Engine {
	return &Engine{clock: clock, logger: logger}
}

// Occurrences returns every session occurrence of the schedule inside
// [rangeStart, rangeEnd], both bounds inclusive, ascending by date. The
// time-of-day of the bounds is ignored. An empty weekday set or an inverted
// range yields an empty slice. Unrecognized weekday names are skipped so one
// bad value never sinks the whole projection.
func (e *Engine) Occurrences(sched models.ClassSchedule, rangeStart, rangeEnd time.Time) []Occurrence {
	start := truncateToDay(rangeStart)
	end := truncateToDay(rangeEnd)
	if start.After(end) || len(sched.Days) == 0 {
		return []Occurrence{}
	}

	timeOfDay := startTime(sched)
	hour, minute := mustClockTime(timeOfDay)

	occurrences := make([]Occurrence, 0)
	seen := make(map[time.Weekday]struct{}, len(sched.Days))
	for _, name := range sched.Days {
		weekday, err := ParseWeekday(name)
		if err != nil {
			e.logger.Warn("skipping unrecognized schedule weekday", zap.String("weekday", name))
			continue
		}
		if _, dup := seen[weekday]; dup {
			continue
		}
		seen[weekday] = struct{}{}

		// First matching date on or after the range start; zero shift when
		// the start itself falls on the weekday.
		offset := (int(weekday) - int(start.Weekday()) + 7) % 7
		for day := start.AddDate(0, 0, offset); !day.After(end); day = day.AddDate(0, 0, 7) {
			occurrences = append(occurrences, Occurrence{
				Date: day,
				Time: timeOfDay,
				StartAt: time.Date(
					day.Year(), day.Month(), day.Day(),
					hour, minute, 0, 0, day.Location(),
				),
			})
		}
	}

	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].StartAt.Before(occurrences[j].StartAt)
	})
	return occurrences
}

// WeekOf projects the schedule over the Monday-to-Sunday week containing the
// anchor date.
func (e *Engine) WeekOf(sched models.ClassSchedule, anchor time.Time) []Occurrence {
	start := startOfWeek(anchor)
	return e.Occurrences(sched, start, start.AddDate(0, 0, 6))
}

// MonthOf projects the schedule over the calendar month containing the anchor
// date.
func (e *Engine) MonthOf(sched models.ClassSchedule, anchor time.Time) []Occurrence {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	last := first.AddDate(0, 1, -1)
	return e.Occurrences(sched, first, last)
}

// Upcoming returns the next n occurrences strictly after the current clock
// reading. Occurrences earlier today whose start time has already passed are
// excluded.
func (e *Engine) Upcoming(sched models.ClassSchedule, n int) []Occurrence {
	if n <= 0 || len(sched.Days) == 0 {
		return []Occurrence{}
	}

	now := e.clock.Now()
	// One matching weekday guarantees at least one occurrence per week, so
	// n+1 weeks always covers n future occurrences.
	horizon := now.AddDate(0, 0, 7*(n+1))

	upcoming := make([]Occurrence, 0, n)
	for _, occ := range e.Occurrences(sched, now, horizon) {
		if !occ.StartAt.After(now) {
			continue
		}
		upcoming = append(upcoming, occ)
		if len(upcoming) == n {
			break
		}
	}
	return upcoming
}

// PayPeriodEnding returns the 7-day window closing on the next occurrence of
// the payout weekday, relative to the current clock reading. A payout day
// falling on today closes the window today.
func (e *Engine) PayPeriodEnding(payoutDay string) (time.Time, time.Time, error) {
	weekday, err := ParseWeekday(payoutDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	today := truncateToDay(e.clock.Now())
	offset := (int(weekday) - int(today.Weekday()) + 7) % 7
	end := today.AddDate(0, 0, offset)
	return end.AddDate(0, 0, -6), end, nil
}

// ParseWeekday maps a case-insensitive English weekday name to time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	weekday, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return time.Sunday, ErrUnknownWeekday
	}
	return weekday, nil
}

func startTime(sched models.ClassSchedule) string {
	trimmed := strings.TrimSpace(sched.Time)
	if trimmed == "" {
		return DefaultStartTime
	}
	if _, _, ok := parseClockTime(trimmed); !ok {
		return DefaultStartTime
	}
	return trimmed
}

func mustClockTime(value string) (int, int) {
	hour, minute, ok := parseClockTime(value)
	if !ok {
		// startTime already normalized the value.
		return 18, 0
	}
	return hour, minute
}

func parseClockTime(value string) (int, int, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	day := truncateToDay(t)
	shift := (int(day.Weekday()) - int(time.Monday) + 7) % 7
	return day.AddDate(0, 0, -shift)
}
