// Package activity reports which days of a calendar window have no recorded
// contributions on a hosting provider (GitHub, GitLab). The result is
// informational; it never feeds back into the drawing.
package activity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// ErrActivityQuery is the sentinel wrapped by every QueryError.
var ErrActivityQuery = errors.New("activity query failed")

// QueryError reports a failed or malformed provider response.
type QueryError struct {
	Provider string
	Identity string
	Status   int // HTTP status when known, 0 otherwise
	Err      error
}

func (e *QueryError) Error() string {
	msg := fmt.Sprintf("%s activity query for %q failed", e.Provider, e.Identity)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is matches ErrActivityQuery.
func (e *QueryError) Is(target error) bool { return target == ErrActivityQuery }

func (e *QueryError) Unwrap() error { return e.Err }

// Request identifies whose activity to inspect and over which window.
type Request struct {
	Identity string
	Window   calendar.Window
}

// GapFinder returns the ascending, de-duplicated days within the request
// window that have zero recorded activity.
type GapFinder interface {
	FindGaps(ctx context.Context, req Request) ([]time.Time, error)
}

// Config holds common configuration for gap finders
type Config struct {
	// Token is the personal access token sent as a bearer credential.
	Token string

	// BaseURL overrides the API endpoint for GitHub Enterprise or
	// self-hosted GitLab. Leave empty for github.com / gitlab.com.
	BaseURL string
}

// gapsFromActive lists every window day missing from active, ascending.
func gapsFromActive(w calendar.Window, active map[time.Time]bool) []time.Time {
	var gaps []time.Time
	w.EachDay(func(d time.Time) {
		if !active[d] {
			gaps = append(gaps, d)
		}
	})
	return gaps
}

// normalizeGaps clips to the window, de-duplicates, and sorts.
func normalizeGaps(w calendar.Window, days []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(days))
	out := make([]time.Time, 0, len(days))
	for _, d := range days {
		d = calendar.Day(d)
		if !w.Contains(d) {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

type timeoutFinder struct {
	inner   GapFinder
	timeout time.Duration
}

// WithTimeout bounds every FindGaps call on f by d. A non-positive d returns
// f unchanged.
func WithTimeout(f GapFinder, d time.Duration) GapFinder {
	if d <= 0 || f == nil {
		return f
	}
	return &timeoutFinder{inner: f, timeout: d}
}

func (t *timeoutFinder) FindGaps(ctx context.Context, req Request) ([]time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.FindGaps(ctx, req)
}
