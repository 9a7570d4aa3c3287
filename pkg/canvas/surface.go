package canvas

import (
	"errors"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

var (
	// ErrSurfaceClosed is returned for input delivered after Finish or Abort.
	ErrSurfaceClosed = errors.New("paint surface is closed")

	// ErrAborted signals that the session ended without finishing; the
	// drawing is discarded.
	ErrAborted = errors.New("paint session aborted")
)

// State is the lifecycle state of a Surface.
type State int

const (
	// StateIdle waits for a press.
	StateIdle State = iota
	// StatePainting is inside a gesture.
	StatePainting
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePainting:
		return "painting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Mode is what the current gesture does to cells it touches.
type Mode int

const (
	// ModeNone means no gesture is active.
	ModeNone Mode = iota
	// ModeDraw fills cells.
	ModeDraw
	// ModeErase clears cells.
	ModeErase
)

func (m Mode) String() string {
	switch m {
	case ModeDraw:
		return "draw"
	case ModeErase:
		return "erase"
	default:
		return "none"
	}
}

// ChangeFunc observes every cell mutation. Renderers hook it so the visible
// surface and the matrix never disagree.
type ChangeFunc func(c calendar.Cell, filled bool)

// Option configures a Surface.
type Option func(*Surface)

// WithInitial seeds the surface with a copy of m. A matrix of another shape
// is ignored.
func WithInitial(m *Matrix) Option {
	return func(s *Surface) {
		if m != nil && m.grid == s.matrix.grid {
			s.matrix = m.Clone()
		}
	}
}

// WithObserver registers fn to be called after each cell mutation.
func WithObserver(fn ChangeFunc) Option {
	return func(s *Surface) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

// Surface turns press/motion/release input into matrix edits. The first cell
// of a gesture locks its mode: pressing an empty cell draws for the whole
// gesture, pressing a filled one erases. Input is processed one event at a
// time; a Surface is not safe for concurrent use.
type Surface struct {
	matrix    *Matrix
	state     State
	mode      Mode
	observers []ChangeFunc
}

// NewSurface returns an idle surface with an empty matrix sized to g.
func NewSurface(g calendar.Grid, opts ...Option) *Surface {
	s := &Surface{matrix: NewMatrix(g), state: StateIdle, mode: ModeNone}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state.
func (s *Surface) State() State { return s.state }

// Mode returns the active gesture mode (ModeNone when idle).
func (s *Surface) Mode() Mode { return s.mode }

// Grid returns the surface dimensions.
func (s *Surface) Grid() calendar.Grid { return s.matrix.grid }

// Filled reports the current value of c.
func (s *Surface) Filled(c calendar.Cell) bool { return s.matrix.Get(c) }

// Count returns the number of filled cells.
func (s *Surface) Count() int { return s.matrix.Count() }

// Press starts a gesture at c. A press outside the grid is ignored and
// leaves the surface idle. Pressing while already painting starts a new
// gesture, as if the previous one had been released.
func (s *Surface) Press(c calendar.Cell) error {
	if s.state == StateClosed {
		return ErrSurfaceClosed
	}
	if !s.matrix.grid.Contains(c) {
		s.state, s.mode = StateIdle, ModeNone
		return nil
	}
	if s.matrix.Get(c) {
		s.state, s.mode = StatePainting, ModeErase
		s.apply(c, false)
	} else {
		s.state, s.mode = StatePainting, ModeDraw
		s.apply(c, true)
	}
	return nil
}

// Motion applies the locked mode to c. Cells already in the target state,
// cells outside the grid, and motion while idle are no-ops.
func (s *Surface) Motion(c calendar.Cell) error {
	if s.state == StateClosed {
		return ErrSurfaceClosed
	}
	if s.state != StatePainting || !s.matrix.grid.Contains(c) {
		return nil
	}
	switch {
	case s.mode == ModeDraw && !s.matrix.Get(c):
		s.apply(c, true)
	case s.mode == ModeErase && s.matrix.Get(c):
		s.apply(c, false)
	}
	return nil
}

// Release ends the current gesture.
func (s *Surface) Release() error {
	if s.state == StateClosed {
		return ErrSurfaceClosed
	}
	s.state, s.mode = StateIdle, ModeNone
	return nil
}

// Finish closes the surface and returns the frozen drawing. Calling it again
// returns ErrSurfaceClosed.
func (s *Surface) Finish() (*Matrix, error) {
	if s.state == StateClosed {
		return nil, ErrSurfaceClosed
	}
	s.state, s.mode = StateClosed, ModeNone
	return s.matrix.Clone(), nil
}

// Abort closes the surface without producing a drawing.
func (s *Surface) Abort() {
	s.state, s.mode = StateClosed, ModeNone
}

func (s *Surface) apply(c calendar.Cell, filled bool) {
	s.matrix.set(c, filled)
	for _, fn := range s.observers {
		fn(c, filled)
	}
}
