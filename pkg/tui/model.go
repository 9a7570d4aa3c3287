// Package tui is the interactive paint surface: a bubbletea program that
// feeds mouse and keyboard input into a canvas.Surface and renders the grid
// as a contribution calendar.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/greg-hellings/contribart/pkg/calendar"
	"github.com/greg-hellings/contribart/pkg/canvas"
	"github.com/greg-hellings/contribart/pkg/services"
)

// Screen layout. Each cell is cellWidth columns wide; rows start after the
// title and month header lines, columns after the weekday gutter.
const (
	gutterWidth = 4
	cellWidth   = 2
	headerLines = 2
)

// Model is the bubbletea model of one paint session.
type Model struct {
	plan    services.Plan
	surface *canvas.Surface
	gaps    map[time.Time]bool
	cursor  calendar.Cell

	keys   keyMap
	help   help.Model
	styles styles

	result  *canvas.Matrix
	aborted bool
}

// NewModel builds a model for plan, pre-filled with initial when its shape
// matches. Gap dates are only shaded; they never change the drawing.
func NewModel(plan services.Plan, initial *canvas.Matrix, gaps []time.Time, noColor bool) Model {
	gapSet := make(map[time.Time]bool, len(gaps))
	for _, d := range gaps {
		gapSet[calendar.Day(d)] = true
	}
	return Model{
		plan:    plan,
		surface: canvas.NewSurface(plan.Grid, canvas.WithInitial(initial)),
		gaps:    gapSet,
		keys:    defaultKeyMap(),
		help:    help.New(),
		styles:  newStyles(noColor),
	}
}

// Result returns the frozen drawing, or canvas.ErrAborted if the session
// ended any other way than finishing.
func (m Model) Result() (*canvas.Matrix, error) {
	if m.result == nil {
		return nil, canvas.ErrAborted
	}
	return m.result, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.surface.Abort()
		m.aborted = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Finish):
		result, err := m.surface.Finish()
		if err != nil {
			return m, nil
		}
		m.result = result
		return m, tea.Quit
	case key.Matches(msg, m.keys.Paint):
		// A one-cell gesture at the cursor.
		if err := m.surface.Press(m.cursor); err == nil {
			_ = m.surface.Release()
		}
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(0, 1)
	}
	return m, nil
}

func (m *Model) moveCursor(dRow, dCol int) {
	next := calendar.Cell{Row: m.cursor.Row + dRow, Col: m.cursor.Col + dCol}
	if m.plan.Grid.Contains(next) {
		m.cursor = next
	}
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	c, inside := m.cellAt(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return m
		}
		if err := m.surface.Press(c); err == nil {
			m.cursor = c
		}
	case tea.MouseActionMotion:
		if !inside || m.surface.State() != canvas.StatePainting {
			return m
		}
		if err := m.surface.Motion(c); err == nil {
			m.cursor = c
		}
	case tea.MouseActionRelease:
		_ = m.surface.Release()
	}
	return m
}

// cellAt maps a terminal position to a grid cell.
func (m Model) cellAt(x, y int) (calendar.Cell, bool) {
	if x < gutterWidth || y < headerLines {
		return calendar.Cell{}, false
	}
	c := calendar.Cell{Row: y - headerLines, Col: (x - gutterWidth) / cellWidth}
	return c, m.plan.Grid.Contains(c)
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	s := m.styles

	b.WriteString(s.title.Render(fmt.Sprintf("Contribution art  %s", m.plan.Window)))
	b.WriteByte('\n')
	b.WriteString(s.label.Render(m.monthHeader()))
	b.WriteByte('\n')

	for row := 0; row < m.plan.Grid.Rows; row++ {
		weekday := m.plan.Window.Start.AddDate(0, 0, row).Weekday()
		b.WriteString(s.label.Render(fmt.Sprintf("%-*s", gutterWidth, weekday.String()[:3])))
		for col := 0; col < m.plan.Grid.Cols; col++ {
			b.WriteString(m.renderCell(calendar.Cell{Row: row, Col: col}))
		}
		b.WriteByte('\n')
	}

	b.WriteString(s.status.Render(m.statusLine()))
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderCell(c calendar.Cell) string {
	s := m.styles
	filled := m.surface.Filled(c)

	switch {
	case c == m.cursor:
		if filled {
			return s.cursor.Render(s.cursorGlyph) + " "
		}
		return s.cursor.Render(s.cursorEmptyGlyph) + " "
	case filled:
		return s.filled.Render(s.filledGlyph) + " "
	case m.gaps[m.plan.Window.DateOf(c)]:
		return s.gap.Render(s.gapGlyph) + " "
	default:
		return s.empty.Render(s.emptyGlyph) + " "
	}
}

// monthHeader places a month abbreviation above the first column of each
// month, skipping labels that would overlap the previous one.
func (m Model) monthHeader() string {
	line := []byte(strings.Repeat(" ", gutterWidth+m.plan.Grid.Cols*cellWidth))
	next := 0
	prev := time.Month(0)
	for col := 0; col < m.plan.Grid.Cols; col++ {
		month := m.plan.Window.DateOf(calendar.Cell{Col: col}).Month()
		if month == prev {
			continue
		}
		prev = month
		x := gutterWidth + col*cellWidth
		label := month.String()[:3]
		if x < next || x+len(label) > len(line) {
			continue
		}
		copy(line[x:], label)
		next = x + len(label) + 1
	}
	return strings.TrimRight(string(line), " ")
}

func (m Model) statusLine() string {
	date := m.plan.Window.DateOf(m.cursor).Format(calendar.DateLayout)
	return fmt.Sprintf("%s  cells: %d  gaps: %d  mode: %s",
		date, m.surface.Count(), len(m.gaps), m.surface.Mode())
}
