package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greg-hellings/contribart/pkg/canvas"
	"github.com/greg-hellings/contribart/pkg/services"
)

// Session runs the paint surface as a full-screen terminal program.
type Session struct {
	// Input and Output default to the controlling terminal.
	Input  io.Reader
	Output io.Writer
	// NoColor renders the grid with plain glyphs.
	NoColor bool
}

// NewSession returns a session on the controlling terminal.
func NewSession(noColor bool) *Session {
	return &Session{NoColor: noColor}
}

// Draw blocks until the user finishes or aborts. Canceling ctx aborts the
// session.
func (s *Session) Draw(ctx context.Context, plan services.Plan, initial *canvas.Matrix, gaps []time.Time) (*canvas.Matrix, error) {
	opts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
	if s.Input != nil {
		opts = append(opts, tea.WithInput(s.Input))
	}
	if s.Output != nil {
		opts = append(opts, tea.WithOutput(s.Output))
	}

	final, err := tea.NewProgram(NewModel(plan, initial, gaps, s.NoColor), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", canvas.ErrAborted, ctx.Err())
		}
		return nil, fmt.Errorf("paint session failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("paint session returned unexpected model %T", final)
	}
	return m.Result()
}
