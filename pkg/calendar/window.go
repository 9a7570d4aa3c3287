// Package calendar maps a week-aligned, one-year date window onto the
// 7-row activity grid. Rows are days of the week and columns are weeks, so
// every cell stands for exactly one calendar day.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DaysPerWeek is the fixed number of grid rows.
	DaysPerWeek = 7

	// DefaultLookbackDays is how far before today the window reaches.
	DefaultLookbackDays = 365

	// DateLayout is the canonical textual date format used across the CLI.
	DateLayout = "2006-01-02"
)

// ErrInvalidWeekdays is returned when the configured week end does not
// immediately precede the week start (the window would not hold whole weeks).
var ErrInvalidWeekdays = errors.New("week end must be the day before week start")

// Window is an inclusive, week-aligned date range. Start falls on the
// resolver's week-start weekday and End on its week-end weekday.
type Window struct {
	Start time.Time
	End   time.Time
}

// Days returns the inclusive number of days covered by the window.
func (w Window) Days() int {
	return daysBetween(w.Start, w.End) + 1
}

// Contains reports whether d (truncated to a day) lies within the window.
func (w Window) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

// EachDay calls fn for every day of the window in ascending order.
func (w Window) EachDay(fn func(time.Time)) {
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(DateLayout), w.End.Format(DateLayout))
}

// Resolver derives the date window from "today".
type Resolver struct {
	WeekStart    time.Weekday
	WeekEnd      time.Weekday
	LookbackDays int
}

// DefaultResolver returns a Sunday-to-Saturday resolver looking back one year.
func DefaultResolver() Resolver {
	return Resolver{
		WeekStart:    time.Sunday,
		WeekEnd:      time.Saturday,
		LookbackDays: DefaultLookbackDays,
	}
}

// NewResolver validates the weekday pair and lookback. A lookback of zero
// falls back to DefaultLookbackDays.
func NewResolver(weekStart, weekEnd time.Weekday, lookbackDays int) (Resolver, error) {
	if weekStart < time.Sunday || weekStart > time.Saturday || weekEnd < time.Sunday || weekEnd > time.Saturday {
		return Resolver{}, fmt.Errorf("weekday out of range: start=%d end=%d", weekStart, weekEnd)
	}
	if (weekStart+DaysPerWeek-1)%DaysPerWeek != weekEnd {
		return Resolver{}, fmt.Errorf("%w: start=%s end=%s", ErrInvalidWeekdays, weekStart, weekEnd)
	}
	if lookbackDays < 0 {
		return Resolver{}, fmt.Errorf("lookback days must not be negative, got %d", lookbackDays)
	}
	if lookbackDays == 0 {
		lookbackDays = DefaultLookbackDays
	}
	return Resolver{WeekStart: weekStart, WeekEnd: weekEnd, LookbackDays: lookbackDays}, nil
}

// Resolve computes the window for today: the anchor (today minus the
// lookback) is snapped back to the week start and today is snapped forward
// to the week end. Either snap is zero days when already aligned.
func (r Resolver) Resolve(today time.Time) Window {
	today = Day(today)
	anchor := today.AddDate(0, 0, -r.LookbackDays)

	back := (int(anchor.Weekday()) - int(r.WeekStart) + DaysPerWeek) % DaysPerWeek
	forward := (int(r.WeekEnd) - int(today.Weekday()) + DaysPerWeek) % DaysPerWeek

	return Window{
		Start: anchor.AddDate(0, 0, -back),
		End:   today.AddDate(0, 0, forward),
	}
}

// Day truncates t to midnight UTC of its calendar date (as seen in t's own
// location), so day arithmetic never crosses a DST boundary.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a Day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ParseWeekday accepts full or three-letter English weekday names, case-insensitive.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.TrimSpace(s)
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}

func daysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
