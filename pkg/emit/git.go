package emit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// gitDateLayout is the GIT_AUTHOR_DATE / GIT_COMMITTER_DATE form. It has no
// zone, so git reads it in the local timezone.
const gitDateLayout = "2006-01-02 15:04:05"

// Runner executes one command in dir with extra environment entries.
type Runner interface {
	Run(ctx context.Context, dir string, env []string, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, inheriting the process environment.
type ExecRunner struct{}

// Run executes the command and folds its combined output into the error.
func (ExecRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
		}
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
	}
	return nil
}

// GitOptions configures a GitEmitter.
type GitOptions struct {
	// RepoDir is an existing git working tree.
	RepoDir string
	// File is the tracked file, relative to RepoDir, that each event appends to.
	File string
	// Message is a format string with one %s for the date.
	Message string
	// Hour is the time of day the commit is pinned to.
	Hour time.Duration

	Runner Runner
	Logger *slog.Logger
}

// GitEmitter records each date as a commit whose author and committer dates
// are pinned to that date.
type GitEmitter struct {
	repoDir string
	file    string
	message string
	hour    time.Duration
	runner  Runner
	logger  *slog.Logger
}

// NewGitEmitter validates opts and fills in defaults.
func NewGitEmitter(opts GitOptions) (*GitEmitter, error) {
	if strings.TrimSpace(opts.RepoDir) == "" {
		return nil, errors.New("git emitter requires a repository directory")
	}
	if opts.File == "" {
		opts.File = "commits.txt"
	}
	if filepath.IsAbs(opts.File) {
		return nil, fmt.Errorf("git emitter file must be relative to the repository: %s", opts.File)
	}
	if opts.Message == "" {
		opts.Message = "Commit on %s"
	}
	if strings.Count(opts.Message, "%s") != 1 {
		return nil, fmt.Errorf("commit message must contain exactly one %%s: %q", opts.Message)
	}
	if opts.Hour < 0 || opts.Hour >= 24*time.Hour {
		return nil, fmt.Errorf("commit hour out of range: %s", opts.Hour)
	}
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &GitEmitter{
		repoDir: opts.RepoDir,
		file:    opts.File,
		message: opts.Message,
		hour:    opts.Hour,
		runner:  opts.Runner,
		logger:  opts.Logger,
	}, nil
}

// Emit appends a line to the tracked file, stages it, and commits with both
// git dates set to date at the configured hour.
func (g *GitEmitter) Emit(ctx context.Context, date time.Time) error {
	day := calendar.Day(date)
	label := day.Format(calendar.DateLayout)
	msg := fmt.Sprintf(g.message, label)

	if err := g.appendLine(msg); err != nil {
		return &EmissionError{Date: day, Err: err}
	}

	stamp := day.Add(g.hour).Format(gitDateLayout)
	env := []string{
		"GIT_AUTHOR_DATE=" + stamp,
		"GIT_COMMITTER_DATE=" + stamp,
	}

	if err := g.runner.Run(ctx, g.repoDir, nil, "git", "add", g.file); err != nil {
		return &EmissionError{Date: day, Err: err}
	}
	if err := g.runner.Run(ctx, g.repoDir, env, "git", "commit", "-m", msg); err != nil {
		return &EmissionError{Date: day, Err: err}
	}

	g.logger.Debug("Recorded commit", "date", label, "timestamp", stamp, "repo", g.repoDir)
	return nil
}

func (g *GitEmitter) appendLine(line string) error {
	path := filepath.Join(g.repoDir, g.file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
