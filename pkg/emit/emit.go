// Package emit turns scheduled dates into externally visible, timestamped
// events. Emitters are called once per date in ascending order and never
// retry; the caller stops at the first failure.
package emit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// ErrEmission is the sentinel wrapped by every EmissionError.
var ErrEmission = errors.New("emission failed")

// EmissionError reports the date whose event could not be recorded.
type EmissionError struct {
	Date time.Time
	Err  error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("failed to emit event for %s: %v", e.Date.Format(calendar.DateLayout), e.Err)
}

// Is matches ErrEmission.
func (e *EmissionError) Is(target error) bool { return target == ErrEmission }

func (e *EmissionError) Unwrap() error { return e.Err }

// Emitter records one event whose timestamp is pinned to date rather than
// to the wall clock.
type Emitter interface {
	Emit(ctx context.Context, date time.Time) error
}

// Func adapts a plain function to the Emitter interface.
type Func func(ctx context.Context, date time.Time) error

// Emit calls f.
func (f Func) Emit(ctx context.Context, date time.Time) error { return f(ctx, date) }
