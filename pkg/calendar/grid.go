package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrOutOfRange marks a date or cell that falls outside the resolved window.
// Seeing it means the window/grid invariants were broken upstream.
var ErrOutOfRange = errors.New("outside calendar window")

// OutOfRangeError describes which date or cell missed the window.
type OutOfRangeError struct {
	Window Window
	Date   time.Time
	Cell   *Cell
}

func (e *OutOfRangeError) Error() string {
	if e.Cell != nil {
		return fmt.Sprintf("cell %s %v for window %s", e.Cell, ErrOutOfRange, e.Window)
	}
	return fmt.Sprintf("date %s %v %s", e.Date.Format(DateLayout), ErrOutOfRange, e.Window)
}

func (e *OutOfRangeError) Unwrap() error { return ErrOutOfRange }

// Grid holds the dimensions of the activity grid.
type Grid struct {
	Rows int
	Cols int
}

// Dimension sizes the grid for a window: 7 rows and one column per week.
// A week-aligned window always yields an exact column count.
func Dimension(w Window) Grid {
	days := w.Days()
	return Grid{
		Rows: DaysPerWeek,
		Cols: (days + DaysPerWeek - 1) / DaysPerWeek,
	}
}

// Cells returns the total number of cells.
func (g Grid) Cells() int {
	return g.Rows * g.Cols
}

// Contains reports whether c addresses a cell of the grid.
func (g Grid) Contains(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Rows, g.Cols)
}

// Cell addresses one grid position; Row is the day of the week offset from
// the week start and Col is the week index.
type Cell struct {
	Row int
	Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(row=%d, col=%d)", c.Row, c.Col)
}

// DateOf returns the day represented by c.
func (w Window) DateOf(c Cell) time.Time {
	return w.Start.AddDate(0, 0, c.Col*DaysPerWeek+c.Row)
}

// CellOf is the inverse of DateOf. Dates before the window start, or whose
// week lands past the last grid column, yield an *OutOfRangeError.
func (w Window) CellOf(d time.Time) (Cell, error) {
	d = Day(d)
	if d.Before(w.Start) {
		return Cell{}, &OutOfRangeError{Window: w, Date: d}
	}
	offset := daysBetween(w.Start, d)
	c := Cell{Row: offset % DaysPerWeek, Col: offset / DaysPerWeek}
	if c.Col >= Dimension(w).Cols {
		return Cell{}, &OutOfRangeError{Window: w, Date: d}
	}
	return c, nil
}

// CheckedDateOf is DateOf with a bounds check against the window's grid.
func (w Window) CheckedDateOf(c Cell) (time.Time, error) {
	if !Dimension(w).Contains(c) {
		cc := c
		return time.Time{}, &OutOfRangeError{Window: w, Cell: &cc}
	}
	return w.DateOf(c), nil
}
