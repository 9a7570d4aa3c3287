// Package report collects the outcome of a run (window, gap dates, the
// emission schedule) for rendering.
package report

import (
	"time"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// Report is what the gaps, paint and apply commands print.
type Report struct {
	Identity string
	Provider string

	Window calendar.Window
	Grid   calendar.Grid

	// Gaps are window days without recorded activity, ascending.
	Gaps []time.Time
	// Schedule is the ascending list of dates derived from the drawing.
	Schedule []time.Time
	// Emitted counts the schedule entries recorded before any failure.
	Emitted int
	// Error is the run failure, if any.
	Error error
}

// MonthCount is the number of dates that fall in one calendar month.
type MonthCount struct {
	Month time.Time // first day of the month
	Count int
	Dates []time.Time
}

// Label formats the month as "Jan 2006".
func (m MonthCount) Label() string {
	return m.Month.Format("Jan 2006")
}

// HasErrors reports whether the run failed.
func (r *Report) HasErrors() bool {
	return r.Error != nil
}

// Complete reports whether every scheduled date was emitted.
func (r *Report) Complete() bool {
	return r.Error == nil && r.Emitted == len(r.Schedule)
}

// GapsByMonth groups the gap dates by month, ascending.
func (r *Report) GapsByMonth() []MonthCount {
	return byMonth(r.Gaps)
}

// ScheduleByMonth groups the scheduled dates by month, ascending.
func (r *Report) ScheduleByMonth() []MonthCount {
	return byMonth(r.Schedule)
}

// byMonth expects ascending dates.
func byMonth(dates []time.Time) []MonthCount {
	var out []MonthCount
	for _, d := range dates {
		month := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		if n := len(out); n > 0 && out[n-1].Month.Equal(month) {
			out[n-1].Count++
			out[n-1].Dates = append(out[n-1].Dates, d)
			continue
		}
		out = append(out, MonthCount{Month: month, Count: 1, Dates: []time.Time{d}})
	}
	return out
}
