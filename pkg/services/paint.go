// Package services orchestrates one contribution-art run: resolve the
// window, report activity gaps, collect a drawing, and emit one event per
// drawn cell in ascending date order.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/greg-hellings/contribart/pkg/activity"
	"github.com/greg-hellings/contribart/pkg/calendar"
	"github.com/greg-hellings/contribart/pkg/canvas"
	"github.com/greg-hellings/contribart/pkg/emit"
)

// ErrUnordered is returned when a schedule is not in non-decreasing date
// order. Nothing is emitted in that case.
var ErrUnordered = errors.New("schedule is not in ascending date order")

// Plan is the resolved window and the grid that covers it.
type Plan struct {
	Window calendar.Window
	Grid   calendar.Grid
}

// Drawer runs an interactive session and returns the frozen drawing, or an
// error wrapping canvas.ErrAborted when the user gives up.
type Drawer interface {
	Draw(ctx context.Context, plan Plan, initial *canvas.Matrix, gaps []time.Time) (*canvas.Matrix, error)
}

// Options wires a PaintService.
type Options struct {
	Resolver calendar.Resolver
	// Gaps may be nil, in which case no gap report is produced.
	Gaps    activity.GapFinder
	Emitter emit.Emitter
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// PaintService is the orchestrator.
type PaintService struct {
	resolver calendar.Resolver
	gaps     activity.GapFinder
	emitter  emit.Emitter
	now      func() time.Time
	logger   *slog.Logger
}

// NewPaintService constructs a PaintService. An emitter is required.
func NewPaintService(opts Options) (*PaintService, error) {
	if opts.Emitter == nil {
		return nil, errors.New("paint service requires an emitter")
	}
	if opts.Resolver == (calendar.Resolver{}) {
		opts.Resolver = calendar.DefaultResolver()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &PaintService{
		resolver: opts.Resolver,
		gaps:     opts.Gaps,
		emitter:  opts.Emitter,
		now:      opts.Now,
		logger:   opts.Logger,
	}, nil
}

// Plan resolves the window for today and sizes its grid.
func (s *PaintService) Plan() Plan {
	w := s.resolver.Resolve(s.now())
	return Plan{Window: w, Grid: calendar.Dimension(w)}
}

// ReportGaps queries the activity provider for days without contributions.
// The result is informational and never alters the drawing.
func (s *PaintService) ReportGaps(ctx context.Context, identity string, w calendar.Window) ([]time.Time, error) {
	if s.gaps == nil {
		s.logger.Debug("No activity provider configured, skipping gap report")
		return nil, nil
	}

	gaps, err := s.gaps.FindGaps(ctx, activity.Request{Identity: identity, Window: w})
	if err != nil {
		return nil, fmt.Errorf("failed to query activity gaps: %w", err)
	}

	s.logger.Info("Found days without activity", "identity", identity, "count", len(gaps), "window", w.String())
	return gaps, nil
}

// Schedule maps every filled cell of m to its date, ascending. m must have
// the shape of w's grid.
func Schedule(w calendar.Window, m *canvas.Matrix) ([]time.Time, error) {
	if want := calendar.Dimension(w); m.Grid() != want {
		return nil, fmt.Errorf("%w: drawing is %s, window needs %s", canvas.ErrShapeMismatch, m.Grid(), want)
	}

	cells := m.Filled()
	dates := make([]time.Time, 0, len(cells))
	for _, c := range cells {
		d, err := w.CheckedDateOf(c)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// RunOptions describes one interactive run.
type RunOptions struct {
	Identity string
	// Initial pre-fills the surface; nil starts blank.
	Initial *canvas.Matrix
	// DrawingPath, when set, receives the frozen drawing before emission.
	DrawingPath string
	// Progress, when set, observes every emission step.
	Progress ProgressFunc
}

// RunResult summarizes a completed run.
type RunResult struct {
	Plan    Plan
	Gaps    []time.Time
	Dates   []time.Time
	Emitted int
}

// Run executes the whole flow. The gap query happens before the session and
// aborts the run on failure; nothing is emitted until the drawing is frozen.
func (s *PaintService) Run(ctx context.Context, drawer Drawer, opts RunOptions) (*RunResult, error) {
	plan := s.Plan()
	s.logger.Info("Resolved window", "window", plan.Window.String(), "grid", plan.Grid.String())

	gaps, err := s.ReportGaps(ctx, opts.Identity, plan.Window)
	if err != nil {
		return nil, err
	}

	m, err := drawer.Draw(ctx, plan, opts.Initial, gaps)
	if err != nil {
		if errors.Is(err, canvas.ErrAborted) {
			s.logger.Info("Paint session aborted, nothing emitted")
		}
		return nil, err
	}

	if opts.DrawingPath != "" {
		if err := canvas.SaveDrawing(opts.DrawingPath, m); err != nil {
			return nil, err
		}
		s.logger.Info("Saved drawing", "path", opts.DrawingPath, "cells", m.Count())
	}

	result, err := s.apply(ctx, plan, m, opts.Progress)
	if result != nil {
		result.Gaps = gaps
	}
	return result, err
}

func (s *PaintService) apply(ctx context.Context, plan Plan, m *canvas.Matrix, progress ProgressFunc) (*RunResult, error) {
	dates, err := Schedule(plan.Window, m)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Plan: plan, Dates: dates}
	result.Emitted, err = s.EmitAll(ctx, dates, progress)
	return result, err
}
