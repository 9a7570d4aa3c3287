package format

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/greg-hellings/contribart/pkg/calendar"
	"github.com/greg-hellings/contribart/pkg/report"
)

type jsonReport struct {
	Identity    string   `json:"identity,omitempty"`
	Provider    string   `json:"provider,omitempty"`
	WindowStart string   `json:"windowStart"`
	WindowEnd   string   `json:"windowEnd"`
	Rows        int      `json:"rows"`
	Cols        int      `json:"cols"`
	Gaps        []string `json:"gaps"`
	Schedule    []string `json:"schedule,omitempty"`
	Emitted     int      `json:"emitted"`
	Error       string   `json:"error,omitempty"`
}

// RenderJSON writes rpt as an indented JSON document with dates as
// YYYY-MM-DD strings.
func RenderJSON(rpt *report.Report, w io.Writer) error {
	if rpt == nil {
		return fmt.Errorf("nil report")
	}

	out := jsonReport{
		Identity:    rpt.Identity,
		Provider:    rpt.Provider,
		WindowStart: rpt.Window.Start.Format(calendar.DateLayout),
		WindowEnd:   rpt.Window.End.Format(calendar.DateLayout),
		Rows:        rpt.Grid.Rows,
		Cols:        rpt.Grid.Cols,
		Gaps:        dateStrings(rpt.Gaps),
		Schedule:    dateStrings(rpt.Schedule),
		Emitted:     rpt.Emitted,
	}
	if rpt.Error != nil {
		out.Error = rpt.Error.Error()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

func dateStrings(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(calendar.DateLayout))
	}
	return out
}
