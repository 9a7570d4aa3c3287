package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// GitLabEventsService abstracts the single client-go call the GitLab gap
// finder needs, so tests can inject a fake without HTTP.
type GitLabEventsService interface {
	ListUserContributionEvents(uid any, opt *gitlab.ListContributionEventsOptions, options ...gitlab.RequestOptionFunc) ([]*gitlab.ContributionEvent, *gitlab.Response, error)
}

// GitLabGapFinder derives gap days from a user's contribution events: any
// window day without at least one event is a gap.
type GitLabGapFinder struct {
	events GitLabEventsService
	logger *slog.Logger
}

// NewGitLabGapFinder creates a gap finder for gitlab.com or, with BaseURL,
// a self-hosted instance.
func NewGitLabGapFinder(config Config) (*GitLabGapFinder, error) {
	opts := []gitlab.ClientOptionFunc{}
	if config.BaseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(config.BaseURL))
	}

	client, err := gitlab.NewClient(config.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	return NewGitLabGapFinderWithService(client.Users), nil
}

// NewGitLabGapFinderWithService wires an explicit events service.
func NewGitLabGapFinderWithService(svc GitLabEventsService) *GitLabGapFinder {
	return &GitLabGapFinder{events: svc, logger: slog.Default()}
}

// FindGaps pages through the user's events inside the window and returns
// the days that saw none.
func (g *GitLabGapFinder) FindGaps(ctx context.Context, req Request) ([]time.Time, error) {
	if strings.TrimSpace(req.Identity) == "" {
		return nil, &QueryError{Provider: "gitlab", Err: errors.New("empty identity")}
	}

	// After and Before are exclusive bounds.
	opts := &gitlab.ListContributionEventsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
		After:       gitlab.Ptr(gitlab.ISOTime(req.Window.Start.AddDate(0, 0, -1))),
		Before:      gitlab.Ptr(gitlab.ISOTime(req.Window.End.AddDate(0, 0, 1))),
	}

	active := make(map[time.Time]bool)
	pages := 0
	for {
		events, resp, err := g.events.ListUserContributionEvents(req.Identity, opts, gitlab.WithContext(ctx))
		if err != nil {
			qe := &QueryError{Provider: "gitlab", Identity: req.Identity, Err: err}
			if resp != nil && resp.Response != nil {
				qe.Status = resp.StatusCode
			}
			return nil, qe
		}
		pages++

		for _, ev := range events {
			if ev == nil || ev.CreatedAt == nil {
				continue
			}
			active[calendar.Day(ev.CreatedAt.UTC())] = true
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	g.logger.Debug("Fetched GitLab contribution events",
		"identity", req.Identity,
		"pages", pages,
		"activeDays", len(active))

	return gapsFromActive(req.Window, active), nil
}
