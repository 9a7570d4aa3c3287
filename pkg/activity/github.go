package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// maxSegmentDays bounds one contributionsCollection query; GitHub rejects
// ranges spanning more than a year.
const maxSegmentDays = 365

const contributionsQuery = `
query ($login: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $login) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

// GitHubGapFinder queries the GitHub GraphQL contribution calendar.
type GitHubGapFinder struct {
	client      *github.Client
	graphqlPath string
	logger      *slog.Logger
}

// NewGitHubGapFinder creates a gap finder authenticated with config.Token.
// A custom BaseURL targets GitHub Enterprise, whose GraphQL endpoint sits
// next to the REST root (/api/graphql beside /api/v3/).
func NewGitHubGapFinder(config Config) (*GitHubGapFinder, error) {
	var client *github.Client

	if config.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: config.Token},
		)
		tc := oauth2.NewClient(context.Background(), ts)
		client = github.NewClient(tc)
	} else {
		client = github.NewClient(nil)
	}

	graphqlPath := "graphql"
	if config.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to set GitHub Enterprise URL: %w", err)
		}
		graphqlPath = "../graphql"
	}

	return &GitHubGapFinder{
		client:      client,
		graphqlPath: graphqlPath,
		logger:      slog.Default(),
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

type contributionDay struct {
	Date              string `json:"date"`
	ContributionCount int    `json:"contributionCount"`
}

type contributionsResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					Weeks []struct {
						ContributionDays []contributionDay `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// FindGaps returns the window days GitHub reports with a contribution count
// of zero. The window is queried in segments of at most one year.
func (g *GitHubGapFinder) FindGaps(ctx context.Context, req Request) ([]time.Time, error) {
	if strings.TrimSpace(req.Identity) == "" {
		return nil, &QueryError{Provider: "github", Err: errors.New("empty identity")}
	}

	var gaps []time.Time
	for _, seg := range segments(req.Window, maxSegmentDays) {
		g.logger.Debug("Querying GitHub contribution calendar",
			"identity", req.Identity,
			"from", seg.Start.Format(calendar.DateLayout),
			"to", seg.End.Format(calendar.DateLayout))

		days, err := g.querySegment(ctx, req.Identity, seg)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			if d.ContributionCount != 0 {
				continue
			}
			date, err := calendar.ParseDate(d.Date)
			if err != nil {
				return nil, &QueryError{Provider: "github", Identity: req.Identity, Err: fmt.Errorf("malformed contribution day: %w", err)}
			}
			gaps = append(gaps, date)
		}
	}

	return normalizeGaps(req.Window, gaps), nil
}

func (g *GitHubGapFinder) querySegment(ctx context.Context, identity string, seg calendar.Window) ([]contributionDay, error) {
	body := graphQLRequest{
		Query: contributionsQuery,
		Variables: map[string]any{
			"login": identity,
			"from":  seg.Start.Format(calendar.DateLayout) + "T00:00:00Z",
			"to":    seg.End.Format(calendar.DateLayout) + "T23:59:59Z",
		},
	}

	httpReq, err := g.client.NewRequest(http.MethodPost, g.graphqlPath, body)
	if err != nil {
		return nil, &QueryError{Provider: "github", Identity: identity, Err: err}
	}

	var out contributionsResponse
	resp, err := g.client.Do(ctx, httpReq, &out)
	if err != nil {
		qe := &QueryError{Provider: "github", Identity: identity, Err: err}
		if resp != nil && resp.Response != nil {
			qe.Status = resp.StatusCode
		}
		return nil, qe
	}

	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, &QueryError{Provider: "github", Identity: identity, Status: resp.StatusCode, Err: fmt.Errorf("graphql: %s", strings.Join(msgs, "; "))}
	}
	if out.Data.User == nil {
		return nil, &QueryError{Provider: "github", Identity: identity, Status: resp.StatusCode, Err: errors.New("unknown user")}
	}

	var days []contributionDay
	for _, week := range out.Data.User.ContributionsCollection.ContributionCalendar.Weeks {
		days = append(days, week.ContributionDays...)
	}
	return days, nil
}

// segments splits w into consecutive windows of at most maxDays days.
func segments(w calendar.Window, maxDays int) []calendar.Window {
	var out []calendar.Window
	for start := w.Start; !start.After(w.End); start = start.AddDate(0, 0, maxDays) {
		end := start.AddDate(0, 0, maxDays-1)
		if end.After(w.End) {
			end = w.End
		}
		out = append(out, calendar.Window{Start: start, End: end})
	}
	return out
}
