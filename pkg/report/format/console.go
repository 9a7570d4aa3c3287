// Package format renders run reports for the terminal (go-pretty tables that
// adapt to the console width) and as JSON.
package format

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"github.com/greg-hellings/contribart/pkg/calendar"
	"github.com/greg-hellings/contribart/pkg/report"
)

// ConsoleFormatter renders a Report as per-month tables of gap days and
// scheduled dates followed by a summary.
type ConsoleFormatter struct {
	// MaxDatesColWidth constrains the column listing the days of a month.
	// If 0, a width is chosen from the terminal width.
	MaxDatesColWidth int

	// EnableColors toggles ANSI color output for counts and errors.
	EnableColors bool

	// ShowGaps and ShowSchedule select the tables to print.
	ShowGaps     bool
	ShowSchedule bool
}

// NewConsoleFormatter creates a formatter that prints both tables in color.
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{
		EnableColors: true,
		ShowGaps:     true,
		ShowSchedule: true,
	}
}

// Render writes the formatted report to writer.
func (f *ConsoleFormatter) Render(rpt *report.Report, writer io.Writer) error {
	if rpt == nil {
		return fmt.Errorf("nil report")
	}

	if f.ShowGaps && len(rpt.Gaps) > 0 {
		f.renderMonths(writer, "Days without activity", rpt.GapsByMonth(), text.FgYellow)
		if _, err := fmt.Fprintln(writer); err != nil {
			return fmt.Errorf("failed writing table spacer newline: %w", err)
		}
	}
	if f.ShowSchedule && len(rpt.Schedule) > 0 {
		f.renderMonths(writer, "Scheduled events", rpt.ScheduleByMonth(), text.FgGreen)
		if _, err := fmt.Fprintln(writer); err != nil {
			return fmt.Errorf("failed writing table spacer newline: %w", err)
		}
	}

	if _, err := fmt.Fprintf(writer, "Summary:\n"); err != nil {
		return fmt.Errorf("failed writing summary header: %w", err)
	}
	if rpt.Identity != "" {
		if _, err := fmt.Fprintf(writer, "  Identity: %s (%s)\n", rpt.Identity, rpt.Provider); err != nil {
			return fmt.Errorf("failed writing identity line: %w", err)
		}
	}
	if _, err := fmt.Fprintf(writer, "  Window: %s (%d days, grid %s)\n", rpt.Window, rpt.Window.Days(), rpt.Grid); err != nil {
		return fmt.Errorf("failed writing window line: %w", err)
	}
	if f.ShowGaps {
		if _, err := fmt.Fprintf(writer, "  Days without activity: %d\n", len(rpt.Gaps)); err != nil {
			return fmt.Errorf("failed writing gap count line: %w", err)
		}
	}
	if f.ShowSchedule {
		emitted := fmt.Sprintf("%d/%d", rpt.Emitted, len(rpt.Schedule))
		if !rpt.Complete() {
			emitted = f.color(emitted, text.FgRed)
		}
		if _, err := fmt.Fprintf(writer, "  Events emitted: %s\n", emitted); err != nil {
			return fmt.Errorf("failed writing emitted line: %w", err)
		}
	}

	if rpt.HasErrors() {
		if _, err := fmt.Fprintln(writer); err != nil {
			return fmt.Errorf("failed writing errors spacer newline: %w", err)
		}
		if _, err := fmt.Fprintf(writer, "Errors:\n  %s\n", f.color(rpt.Error.Error(), text.FgRed)); err != nil {
			return fmt.Errorf("failed writing error line: %w", err)
		}
	}

	return nil
}

func (f *ConsoleFormatter) renderMonths(writer io.Writer, title string, months []report.MonthCount, c text.Color) {
	tw := table.NewWriter()
	tw.SetOutputMirror(writer)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.DrawBorder = true
	tw.SetTitle(title)

	tw.AppendHeader(table.Row{"Month", "Days", "Dates"})
	if colConfigs := f.buildColumnConfig(writer); len(colConfigs) > 0 {
		tw.SetColumnConfigs(colConfigs)
	}

	total := 0
	for _, m := range months {
		days := make([]string, 0, len(m.Dates))
		for _, d := range m.Dates {
			days = append(days, fmt.Sprintf("%02d", d.Day()))
		}
		tw.AppendRow(table.Row{m.Label(), f.color(fmt.Sprint(m.Count), c), strings.Join(days, " ")})
		total += m.Count
	}
	tw.AppendFooter(table.Row{"Total", total, ""})

	tw.Render()
}

// buildColumnConfig sizes the dates column to fit the terminal.
func (f *ConsoleFormatter) buildColumnConfig(w io.Writer) []table.ColumnConfig {
	datesWidth := f.MaxDatesColWidth
	if datesWidth <= 0 {
		termWidth := detectTerminalWidth(w)
		if termWidth <= 0 {
			return nil
		}
		if termWidth < 40 {
			termWidth = 40
		}
		// month and count columns plus borders
		datesWidth = termWidth - 8 - 4 - 10
	}

	return []table.ColumnConfig{
		{
			Number:      3,
			WidthMax:    datesWidth,
			WidthMin:    minInt(8, datesWidth),
			Transformer: truncTransformer(datesWidth),
		},
	}
}

// detectTerminalWidth attempts to get terminal width if writer is a file (stdout/stderr).
func detectTerminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			return width
		}
	}
	return -1
}

// truncTransformer returns a text.Transformer to ellipsize overly wide cells.
func truncTransformer(max int) text.Transformer {
	return func(val interface{}) string {
		s := fmt.Sprint(val)
		if runeLen := utf8.RuneCountInString(s); runeLen > max {
			if max <= 1 {
				return "…"
			}
			return truncateRunes(s, max)
		}
		return s
	}
}

// truncateRunes truncates a string to (max) runes with ellipsis.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	var b strings.Builder
	count := 0
	for _, r := range s {
		if count >= max-1 {
			break
		}
		b.WriteRune(r)
		count++
	}
	b.WriteRune('…')
	return b.String()
}

func (f *ConsoleFormatter) color(s string, c text.Color) string {
	if !f.EnableColors {
		return s
	}
	return text.Colors{c}.Sprint(s)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RenderConsole renders the provided Report to the writer using the default console formatter.
func RenderConsole(rpt *report.Report, w io.Writer) error {
	return NewConsoleFormatter().Render(rpt, w)
}

// RenderDates prints one date per line, the plain form used when output is
// piped.
func RenderDates(w io.Writer, dates []time.Time) error {
	for _, d := range dates {
		if _, err := fmt.Fprintln(w, d.Format(calendar.DateLayout)); err != nil {
			return fmt.Errorf("failed writing date: %w", err)
		}
	}
	return nil
}
