package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// EmitPhase is the lifecycle phase of one scheduled date.
type EmitPhase string

const (
	// PhaseRunning is sent just before the emitter is called.
	PhaseRunning EmitPhase = "running"
	// PhaseComplete is sent after the emitter succeeded.
	PhaseComplete EmitPhase = "complete"
	// PhaseError is sent when the emitter failed; no later dates follow.
	PhaseError EmitPhase = "error"
)

// EmitProgress reports one step of an emission run.
type EmitProgress struct {
	Date  time.Time
	Index int // zero-based position in the schedule
	Total int
	Phase EmitPhase
	Error error
}

// ProgressFunc observes emission progress.
type ProgressFunc func(EmitProgress)

// EmitAll calls the emitter once per date, sequentially, and stops at the
// first failure. It returns how many dates were emitted.
func (s *PaintService) EmitAll(ctx context.Context, dates []time.Time, progress ProgressFunc) (int, error) {
	for i := 1; i < len(dates); i++ {
		if dates[i].Before(dates[i-1]) {
			return 0, fmt.Errorf("%w: %s follows %s", ErrUnordered,
				dates[i].Format(calendar.DateLayout), dates[i-1].Format(calendar.DateLayout))
		}
	}
	if progress == nil {
		progress = func(EmitProgress) {}
	}

	for i, d := range dates {
		p := EmitProgress{Date: d, Index: i, Total: len(dates), Phase: PhaseRunning}
		progress(p)

		if err := ctx.Err(); err != nil {
			p.Phase, p.Error = PhaseError, err
			progress(p)
			return i, err
		}
		if err := s.emitter.Emit(ctx, d); err != nil {
			p.Phase, p.Error = PhaseError, err
			progress(p)
			s.logger.Error("Emission failed, stopping", "date", d.Format(calendar.DateLayout), "emitted", i, "remaining", len(dates)-i)
			return i, err
		}

		p.Phase = PhaseComplete
		progress(p)
	}

	s.logger.Info("Emitted scheduled events", "count", len(dates))
	return len(dates), nil
}

// EmitHandle gives access to the outcome of StartEmission.
type EmitHandle struct {
	mu      sync.RWMutex
	emitted int
	err     error
	done    chan struct{}
}

// Result blocks until emission finishes.
func (h *EmitHandle) Result() (int, error) {
	<-h.done
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.emitted, h.err
}

// Done returns a channel closed when emission finishes.
func (h *EmitHandle) Done() <-chan struct{} {
	return h.done
}

// StartEmission runs EmitAll in the background and streams its progress.
// The channel is closed once the run ends; emission stays sequential.
func (s *PaintService) StartEmission(ctx context.Context, dates []time.Time) (<-chan EmitProgress, *EmitHandle) {
	progressCh := make(chan EmitProgress, 2*len(dates)+1)
	handle := &EmitHandle{done: make(chan struct{})}

	go func() {
		defer close(handle.done)
		defer close(progressCh)

		n, err := s.EmitAll(ctx, dates, func(p EmitProgress) {
			progressCh <- p
		})

		handle.mu.Lock()
		handle.emitted = n
		handle.err = err
		handle.mu.Unlock()
	}()

	return progressCh, handle
}
