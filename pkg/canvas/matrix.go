// Package canvas holds the drawing matrix and the paint surface state
// machine that is its only writer.
package canvas

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

const (
	filledRune = '#'
	emptyRune  = ' '
)

// ErrShapeMismatch is returned when a saved drawing does not fit the grid.
var ErrShapeMismatch = errors.New("drawing does not match grid")

// Matrix is a rows x cols boolean grid. Only a Surface mutates it; everything
// else reads.
type Matrix struct {
	grid  calendar.Grid
	cells []bool
}

// NewMatrix returns an all-empty matrix sized to g.
func NewMatrix(g calendar.Grid) *Matrix {
	return &Matrix{grid: g, cells: make([]bool, g.Rows*g.Cols)}
}

// Grid returns the matrix dimensions.
func (m *Matrix) Grid() calendar.Grid { return m.grid }

// Get reports whether c is filled. Cells outside the grid read as empty.
func (m *Matrix) Get(c calendar.Cell) bool {
	if !m.grid.Contains(c) {
		return false
	}
	return m.cells[m.index(c)]
}

func (m *Matrix) set(c calendar.Cell, v bool) {
	m.cells[m.index(c)] = v
}

func (m *Matrix) index(c calendar.Cell) int {
	return c.Row*m.grid.Cols + c.Col
}

// Count returns the number of filled cells.
func (m *Matrix) Count() int {
	n := 0
	for _, v := range m.cells {
		if v {
			n++
		}
	}
	return n
}

// Filled lists the filled cells by ascending column, then row. With rows as
// weekdays and columns as weeks this is ascending date order.
func (m *Matrix) Filled() []calendar.Cell {
	out := make([]calendar.Cell, 0, m.Count())
	for col := 0; col < m.grid.Cols; col++ {
		for row := 0; row < m.grid.Rows; row++ {
			c := calendar.Cell{Row: row, Col: col}
			if m.cells[m.index(c)] {
				out = append(out, c)
			}
		}
	}
	return out
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	cp := &Matrix{grid: m.grid, cells: make([]bool, len(m.cells))}
	copy(cp.cells, m.cells)
	return cp
}

// WriteText writes one line per row, '#' for filled and ' ' for empty.
func (m *Matrix) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for row := 0; row < m.grid.Rows; row++ {
		for col := 0; col < m.grid.Cols; col++ {
			r := emptyRune
			if m.cells[m.index(calendar.Cell{Row: row, Col: col})] {
				r = filledRune
			}
			if _, err := bw.WriteRune(r); err != nil {
				return fmt.Errorf("failed writing drawing row %d: %w", row, err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed writing drawing row %d: %w", row, err)
		}
	}
	return bw.Flush()
}

// String renders the matrix as WriteText would.
func (m *Matrix) String() string {
	var b strings.Builder
	_ = m.WriteText(&b)
	return b.String()
}

// ParseText reads a drawing written by WriteText. Trailing spaces may have
// been stripped by editors, so short lines are padded; anything longer than
// the grid, extra rows, or characters other than '#' and ' ' are rejected.
func ParseText(r io.Reader, g calendar.Grid) (*Matrix, error) {
	m := NewMatrix(g)
	sc := bufio.NewScanner(r)
	row := 0
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if row >= g.Rows {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, fmt.Errorf("%w: more than %d rows", ErrShapeMismatch, g.Rows)
		}
		runes := []rune(line)
		if len(strings.TrimRight(line, " ")) > g.Cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, grid has %d", ErrShapeMismatch, row, len(runes), g.Cols)
		}
		for col, ch := range runes {
			switch ch {
			case filledRune:
				m.set(calendar.Cell{Row: row, Col: col}, true)
			case emptyRune:
			default:
				return nil, fmt.Errorf("row %d col %d: unexpected character %q", row, col, ch)
			}
		}
		row++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read drawing: %w", err)
	}
	if row < g.Rows {
		return nil, fmt.Errorf("%w: %d rows, grid has %d", ErrShapeMismatch, row, g.Rows)
	}
	return m, nil
}

// SaveDrawing writes m to path, creating parent directories.
func SaveDrawing(path string, m *Matrix) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create drawing directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create drawing file: %w", err)
	}
	if err := m.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadDrawing reads a drawing file saved for grid g.
func LoadDrawing(path string, g calendar.Grid) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open drawing file: %w", err)
	}
	defer f.Close()
	return ParseText(f, g)
}
