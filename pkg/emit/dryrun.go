package emit

import (
	"context"
	"log/slog"
	"time"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// DryRunEmitter logs each date instead of recording anything.
type DryRunEmitter struct {
	logger *slog.Logger
	dates  []time.Time
}

// NewDryRunEmitter creates a dry-run emitter. A nil logger uses slog.Default().
func NewDryRunEmitter(logger *slog.Logger) *DryRunEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRunEmitter{logger: logger}
}

// Emit logs the date and remembers it.
func (d *DryRunEmitter) Emit(ctx context.Context, date time.Time) error {
	if err := ctx.Err(); err != nil {
		return &EmissionError{Date: date, Err: err}
	}
	date = calendar.Day(date)
	d.dates = append(d.dates, date)
	d.logger.Info("Dry run, skipping event", "date", date.Format(calendar.DateLayout))
	return nil
}

// Dates returns the dates seen so far, in call order.
func (d *DryRunEmitter) Dates() []time.Time {
	out := make([]time.Time, len(d.dates))
	copy(out, d.dates)
	return out
}
