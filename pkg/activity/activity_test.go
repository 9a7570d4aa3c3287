package activity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func testWindow(t *testing.T) calendar.Window {
	return calendar.DefaultResolver().Resolve(day(t, "2024-03-15"))
}

// fakeGraphQL serves the contribution calendar for the requested range,
// reporting zero contributions on the configured days.
type fakeGraphQL struct {
	mu       sync.Mutex
	zero     map[string]bool
	requests []map[string]any
	auth     []string
	status   int
	payload  string
}

func (f *fakeGraphQL) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path != "/api/graphql" {
		http.Error(w, "unexpected path "+r.URL.Path, http.StatusNotFound)
		return
	}
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.requests = append(f.requests, req.Variables)

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"message":"upstream failure"}`))
		return
	}
	if f.payload != "" {
		_, _ = w.Write([]byte(f.payload))
		return
	}

	from, _ := time.Parse(time.RFC3339, req.Variables["from"].(string))
	to, _ := time.Parse(time.RFC3339, req.Variables["to"].(string))

	var days []contributionDay
	for d := calendar.Day(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		ds := d.Format(calendar.DateLayout)
		count := 3
		if f.zero[ds] {
			count = 0
		}
		days = append(days, contributionDay{Date: ds, ContributionCount: count})
	}

	var resp contributionsResponse
	resp.Data.User = &struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				Weeks []struct {
					ContributionDays []contributionDay `json:"contributionDays"`
				} `json:"weeks"`
			} `json:"contributionCalendar"`
		} `json:"contributionsCollection"`
	}{}
	cal := &resp.Data.User.ContributionsCollection.ContributionCalendar
	for i := 0; i < len(days); i += 7 {
		end := i + 7
		if end > len(days) {
			end = len(days)
		}
		cal.Weeks = append(cal.Weeks, struct {
			ContributionDays []contributionDay `json:"contributionDays"`
		}{ContributionDays: days[i:end]})
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestGitHub(t *testing.T, f *fakeGraphQL) *GitHubGapFinder {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	g, err := NewGitHubGapFinder(Config{Token: "ghp_test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewGitHubGapFinder: %v", err)
	}
	return g
}

func TestGitHubFindGaps(t *testing.T) {
	f := &fakeGraphQL{zero: map[string]bool{
		"2023-03-12": true, // first day of the window
		"2023-07-04": true,
		"2024-03-16": true, // last day, lands in the second segment
		"2022-01-01": true, // outside the window, never requested
	}}
	g := newTestGitHub(t, f)

	gaps, err := g.FindGaps(context.Background(), Request{Identity: "octocat", Window: testWindow(t)})
	if err != nil {
		t.Fatalf("FindGaps: %v", err)
	}

	want := []string{"2023-03-12", "2023-07-04", "2024-03-16"}
	if len(gaps) != len(want) {
		t.Fatalf("gaps = %v, want %v", gaps, want)
	}
	for i, w := range want {
		if gaps[i].Format(calendar.DateLayout) != w {
			t.Errorf("gaps[%d] = %s, want %s", i, gaps[i].Format(calendar.DateLayout), w)
		}
	}

	if len(f.requests) != 2 {
		t.Fatalf("expected the 371 day window split into 2 queries, got %d", len(f.requests))
	}
	if got := f.requests[0]["from"]; got != "2023-03-12T00:00:00Z" {
		t.Errorf("first segment from = %v", got)
	}
	if got := f.requests[1]["to"]; got != "2024-03-16T23:59:59Z" {
		t.Errorf("last segment to = %v", got)
	}
	if got := f.requests[0]["login"]; got != "octocat" {
		t.Errorf("login = %v", got)
	}
	for _, a := range f.auth {
		if a != "Bearer ghp_test" {
			t.Errorf("Authorization = %q, want bearer token", a)
		}
	}
}

func TestGitHubFindGapsErrors(t *testing.T) {
	tests := []struct {
		name       string
		fake       *fakeGraphQL
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "http failure",
			fake:       &fakeGraphQL{status: http.StatusBadGateway},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:    "graphql errors",
			fake:    &fakeGraphQL{payload: `{"data":null,"errors":[{"message":"Bad credentials"}]}`},
			wantMsg: "Bad credentials",
		},
		{
			name:    "unknown user",
			fake:    &fakeGraphQL{payload: `{"data":{"user":null}}`},
			wantMsg: "unknown user",
		},
		{
			name:    "malformed date",
			fake:    &fakeGraphQL{payload: `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"weeks":[{"contributionDays":[{"date":"yesterday","contributionCount":0}]}]}}}}}`},
			wantMsg: "malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGitHub(t, tt.fake)
			_, err := g.FindGaps(context.Background(), Request{Identity: "octocat", Window: testWindow(t)})
			if !errors.Is(err, ErrActivityQuery) {
				t.Fatalf("expected ErrActivityQuery, got %v", err)
			}
			var qe *QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("expected *QueryError, got %T", err)
			}
			if tt.wantStatus != 0 && qe.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", qe.Status, tt.wantStatus)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestGitHubEmptyIdentity(t *testing.T) {
	g := newTestGitHub(t, &fakeGraphQL{})
	if _, err := g.FindGaps(context.Background(), Request{Window: testWindow(t)}); !errors.Is(err, ErrActivityQuery) {
		t.Fatalf("expected ErrActivityQuery, got %v", err)
	}
}

func TestSegments(t *testing.T) {
	w := testWindow(t)
	segs := segments(w, maxSegmentDays)
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if !segs[0].Start.Equal(w.Start) || !segs[1].End.Equal(w.End) {
		t.Errorf("segments do not cover window: %v", segs)
	}
	if segs[0].Days() != maxSegmentDays || segs[1].Days() != 6 {
		t.Errorf("segment sizes = %d, %d", segs[0].Days(), segs[1].Days())
	}
	if !segs[1].Start.Equal(segs[0].End.AddDate(0, 0, 1)) {
		t.Errorf("segments are not contiguous: %v", segs)
	}

	short := calendar.Window{Start: w.Start, End: w.Start.AddDate(0, 0, 13)}
	if got := segments(short, maxSegmentDays); len(got) != 1 || got[0] != short {
		t.Errorf("short window split unexpectedly: %v", got)
	}
}

type fakeEvents struct {
	pages [][]*gitlab.ContributionEvent
	err   error
	calls int
	uids  []any
	opts  []gitlab.ListContributionEventsOptions
}

func (f *fakeEvents) ListUserContributionEvents(uid any, opt *gitlab.ListContributionEventsOptions, _ ...gitlab.RequestOptionFunc) ([]*gitlab.ContributionEvent, *gitlab.Response, error) {
	f.uids = append(f.uids, uid)
	f.opts = append(f.opts, *opt)
	if f.err != nil {
		return nil, nil, f.err
	}
	page := f.calls
	f.calls++
	resp := &gitlab.Response{}
	if page+1 < len(f.pages) {
		next := opt.Page + 1
		if next == 1 {
			next = 2
		}
		resp.NextPage = next
	}
	return f.pages[page], resp, nil
}

func eventAt(ts time.Time) *gitlab.ContributionEvent {
	return &gitlab.ContributionEvent{CreatedAt: &ts}
}

func TestGitLabFindGaps(t *testing.T) {
	w := calendar.Window{Start: day(t, "2024-03-03"), End: day(t, "2024-03-16")}
	f := &fakeEvents{pages: [][]*gitlab.ContributionEvent{
		{
			eventAt(time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)),
			eventAt(time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC)),
			nil,
		},
		{
			eventAt(time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC)),
			{CreatedAt: nil},
		},
	}}

	g := NewGitLabGapFinderWithService(f)
	gaps, err := g.FindGaps(context.Background(), Request{Identity: "someone", Window: w})
	if err != nil {
		t.Fatalf("FindGaps: %v", err)
	}

	if f.calls != 2 {
		t.Fatalf("expected 2 pages fetched, got %d", f.calls)
	}
	if f.uids[0] != "someone" {
		t.Errorf("uid = %v", f.uids[0])
	}
	first := f.opts[0]
	if first.After == nil || time.Time(*first.After).Format(calendar.DateLayout) != "2024-03-02" {
		t.Errorf("After = %v, want 2024-03-02", first.After)
	}
	if first.Before == nil || time.Time(*first.Before).Format(calendar.DateLayout) != "2024-03-17" {
		t.Errorf("Before = %v, want 2024-03-17", first.Before)
	}
	if f.opts[1].Page != 2 {
		t.Errorf("second request page = %v, want 2", f.opts[1].Page)
	}

	if len(gaps) != 14-3 {
		t.Fatalf("got %d gaps, want 11: %v", len(gaps), gaps)
	}
	for _, g := range gaps {
		switch g.Format(calendar.DateLayout) {
		case "2024-03-03", "2024-03-04", "2024-03-10":
			t.Errorf("active day %s reported as gap", g.Format(calendar.DateLayout))
		}
	}
	for i := 1; i < len(gaps); i++ {
		if !gaps[i-1].Before(gaps[i]) {
			t.Fatalf("gaps not ascending at %d", i)
		}
	}
}

func TestGitLabFindGapsError(t *testing.T) {
	f := &fakeEvents{err: errors.New("404 User Not Found")}
	g := NewGitLabGapFinderWithService(f)
	_, err := g.FindGaps(context.Background(), Request{Identity: "ghost", Window: testWindow(t)})
	if !errors.Is(err, ErrActivityQuery) {
		t.Fatalf("expected ErrActivityQuery, got %v", err)
	}
	if !strings.Contains(err.Error(), "User Not Found") {
		t.Errorf("error lost cause: %v", err)
	}
}

func TestNewGapFinder(t *testing.T) {
	tests := []struct {
		provider string
		wantErr  bool
	}{
		{provider: "github"},
		{provider: " GitHub "},
		{provider: "gitlab"},
		{provider: "bitbucket", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			f, err := NewGapFinder(tt.provider, Config{Token: "tok"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil || f == nil {
				t.Fatalf("NewGapFinder(%q) = %v, %v", tt.provider, f, err)
			}
		})
	}

	if got := SupportedProviders(); len(got) != 2 {
		t.Errorf("SupportedProviders = %v", got)
	}
}

func TestNormalizeGaps(t *testing.T) {
	w := calendar.Window{Start: day(t, "2024-03-03"), End: day(t, "2024-03-09")}
	in := []time.Time{
		day(t, "2024-03-05"),
		time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC),
		day(t, "2024-03-03"),
		day(t, "2024-03-10"),
	}
	got := normalizeGaps(w, in)
	if len(got) != 2 || got[0].Format(calendar.DateLayout) != "2024-03-03" || got[1].Format(calendar.DateLayout) != "2024-03-05" {
		t.Fatalf("normalizeGaps = %v", got)
	}
}

type blockingFinder struct{}

func (blockingFinder) FindGaps(ctx context.Context, _ Request) ([]time.Time, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	f := WithTimeout(blockingFinder{}, 10*time.Millisecond)
	_, err := f.FindGaps(context.Background(), Request{Identity: "octocat", Window: testWindow(t)})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	inner := &fakeEvents{}
	g := NewGitLabGapFinderWithService(inner)
	if WithTimeout(g, 0) != GapFinder(g) {
		t.Error("zero timeout should return the finder unchanged")
	}
}
