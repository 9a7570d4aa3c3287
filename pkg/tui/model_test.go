package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/greg-hellings/contribart/pkg/calendar"
	"github.com/greg-hellings/contribart/pkg/canvas"
	"github.com/greg-hellings/contribart/pkg/services"
)

func testPlan() services.Plan {
	w := calendar.DefaultResolver().Resolve(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	return services.Plan{Window: w, Grid: calendar.Dimension(w)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// screen returns the terminal position of the left half of cell c.
func screen(c calendar.Cell) (int, int) {
	return gutterWidth + c.Col*cellWidth, headerLines + c.Row
}

func mouse(action tea.MouseAction, c calendar.Cell) tea.MouseMsg {
	x, y := screen(c)
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: action}
}

func TestMouseGestureDraws(t *testing.T) {
	m := NewModel(testPlan(), nil, nil, true)

	m, _ = update(t, m, mouse(tea.MouseActionPress, calendar.Cell{Row: 1, Col: 2}))
	m, _ = update(t, m, mouse(tea.MouseActionMotion, calendar.Cell{Row: 2, Col: 2}))
	// the right half of a cell maps to the same cell
	x, y := screen(calendar.Cell{Row: 3, Col: 2})
	m, _ = update(t, m, tea.MouseMsg{X: x + 1, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease})

	if m.surface.State() != canvas.StateIdle {
		t.Fatalf("state = %s, want idle", m.surface.State())
	}
	if m.surface.Count() != 3 {
		t.Fatalf("filled %d cells, want 3", m.surface.Count())
	}
	for row := 1; row <= 3; row++ {
		if !m.surface.Filled(calendar.Cell{Row: row, Col: 2}) {
			t.Errorf("cell (%d,2) not filled", row)
		}
	}
	if m.cursor != (calendar.Cell{Row: 3, Col: 2}) {
		t.Errorf("cursor = %s", m.cursor)
	}
}

func TestMouseGestureErases(t *testing.T) {
	plan := testPlan()
	s := canvas.NewSurface(plan.Grid)
	for col := 0; col < 3; col++ {
		_ = s.Press(calendar.Cell{Row: 0, Col: col})
		_ = s.Release()
	}
	initial, _ := s.Finish()

	m := NewModel(plan, initial, nil, true)
	m, _ = update(t, m, mouse(tea.MouseActionPress, calendar.Cell{Row: 0, Col: 0}))
	m, _ = update(t, m, mouse(tea.MouseActionMotion, calendar.Cell{Row: 0, Col: 1}))
	m, _ = update(t, m, mouse(tea.MouseActionMotion, calendar.Cell{Row: 1, Col: 1})) // empty, stays empty
	m, _ = update(t, m, mouse(tea.MouseActionRelease, calendar.Cell{Row: 1, Col: 1}))

	if m.surface.Count() != 1 || !m.surface.Filled(calendar.Cell{Row: 0, Col: 2}) {
		t.Errorf("unexpected cells after erase gesture, count=%d", m.surface.Count())
	}
	if initial.Count() != 3 {
		t.Errorf("initial drawing was mutated")
	}
}

func TestMouseOutsideGridIgnored(t *testing.T) {
	m := NewModel(testPlan(), nil, nil, true)

	tests := []tea.MouseMsg{
		{X: 1, Y: headerLines, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
		{X: gutterWidth, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
		{X: gutterWidth, Y: headerLines + 7, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
		{X: gutterWidth + 53*cellWidth, Y: headerLines, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
		{X: gutterWidth, Y: headerLines, Button: tea.MouseButtonRight, Action: tea.MouseActionPress},
	}
	for _, msg := range tests {
		m, _ = update(t, m, msg)
		if m.surface.State() != canvas.StateIdle || m.surface.Count() != 0 {
			t.Fatalf("press at (%d,%d) changed the surface", msg.X, msg.Y)
		}
	}

	// motion outside the grid during a gesture is dropped
	m, _ = update(t, m, mouse(tea.MouseActionPress, calendar.Cell{Row: 6, Col: 52}))
	m, _ = update(t, m, tea.MouseMsg{X: gutterWidth + 60*cellWidth, Y: headerLines + 6, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})
	m, _ = update(t, m, tea.MouseMsg{Action: tea.MouseActionRelease})
	if m.surface.Count() != 1 {
		t.Errorf("count = %d, want 1", m.surface.Count())
	}
}

func TestKeyboardPainting(t *testing.T) {
	m := NewModel(testPlan(), nil, nil, true)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.cursor != (calendar.Cell{Row: 2, Col: 1}) || !m.surface.Filled(m.cursor) {
		t.Fatalf("expected (2,1) filled, cursor %s", m.cursor)
	}
	if m.surface.State() != canvas.StateIdle {
		t.Errorf("keyboard toggle left the gesture open")
	}

	m, _ = update(t, m, runes("x"))
	if m.surface.Filled(m.cursor) {
		t.Errorf("second toggle did not erase")
	}

	// the cursor stops at the edges
	for i := 0; i < 10; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	if m.cursor != (calendar.Cell{}) {
		t.Errorf("cursor = %s, want origin", m.cursor)
	}
}

func TestFinish(t *testing.T) {
	m := NewModel(testPlan(), nil, nil, true)
	m, _ = update(t, m, runes("x"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}

	result, err := m.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if result.Count() != 1 || !result.Get(calendar.Cell{}) {
		t.Errorf("result:\n%s", result)
	}
	if m.surface.State() != canvas.StateClosed {
		t.Errorf("surface not closed")
	}

	// input after finish does not change the frozen result
	m, _ = update(t, m, mouse(tea.MouseActionPress, calendar.Cell{Row: 4, Col: 4}))
	if result.Count() != 1 {
		t.Errorf("result changed after finish")
	}
}

func TestAbort(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		t.Run(msg.String(), func(t *testing.T) {
			m := NewModel(testPlan(), nil, nil, true)
			m, _ = update(t, m, runes("x"))
			m, cmd := update(t, m, msg)
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, err := m.Result(); !errors.Is(err, canvas.ErrAborted) {
				t.Errorf("expected ErrAborted, got %v", err)
			}
			if !m.aborted || m.surface.State() != canvas.StateClosed {
				t.Errorf("surface not aborted")
			}
		})
	}
}

func TestViewPlain(t *testing.T) {
	plan := testPlan()
	gap := plan.Window.DateOf(calendar.Cell{Row: 0, Col: 1})
	m := NewModel(plan, nil, []time.Time{gap}, true)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, runes("x"))

	view := m.View()
	lines := strings.Split(view, "\n")
	if !strings.Contains(lines[0], "2023-03-12") || !strings.Contains(lines[0], "2024-03-16") {
		t.Errorf("title line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "    Mar") || !strings.Contains(lines[1], "Apr") {
		t.Errorf("month header = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "Sun . _ ") {
		t.Errorf("first row = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "Mon . @ ") {
		t.Errorf("second row = %q", lines[3])
	}
	if !strings.HasPrefix(lines[8], "Sat ") {
		t.Errorf("last row = %q", lines[8])
	}
	if !strings.Contains(view, "cells: 1") || !strings.Contains(view, "gaps: 1") {
		t.Errorf("status line missing counts:\n%s", view)
	}
}

func TestGapsDoNotChangeDrawing(t *testing.T) {
	plan := testPlan()
	var gaps []time.Time
	plan.Window.EachDay(func(d time.Time) { gaps = append(gaps, d) })
	m := NewModel(plan, nil, gaps, false)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	result, err := m.Result()
	if err != nil || result.Count() != 0 {
		t.Fatalf("gaps leaked into the drawing: %v %v", result, err)
	}
}
