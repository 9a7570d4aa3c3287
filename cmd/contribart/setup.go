package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/greg-hellings/contribart/pkg/activity"
	"github.com/greg-hellings/contribart/pkg/config"
	"github.com/greg-hellings/contribart/pkg/emit"
)

// lookupEnv resolves identity and tokens; tests replace it.
var lookupEnv config.LookupFunc = os.Getenv

// remoteFlags select whose activity is queried.
type remoteFlags struct {
	provider string
	identity string
	baseURL  string
}

func (f *remoteFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "provider", "", "Activity provider: github|gitlab (default from config, else github)")
	cmd.Flags().StringVar(&f.identity, "identity", "", "Account whose activity is inspected")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "API base URL for GitHub Enterprise or self-hosted GitLab")
}

// emitterFlags choose how scheduled dates are recorded.
type emitterFlags struct {
	dryRun bool
	repo   string
}

func (f *emitterFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Log scheduled dates without committing")
	cmd.Flags().StringVar(&f.repo, "repo", "", "Git working tree to commit into (enables git mode)")
}

// loadConfig reads --config, resolves the environment, then applies any
// command-line overrides.
func loadConfig(cmd *cobra.Command, remote *remoteFlags, em *emitterFlags) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if remote != nil {
		if cmd.Flags().Changed("provider") {
			cfg.Provider = remote.provider
			if err := cfg.ApplyDefaults(); err != nil {
				return nil, err
			}
		}
		if cmd.Flags().Changed("base-url") {
			cfg.BaseURL = remote.baseURL
		}
	}

	cfg.ApplyEnv(lookupEnv)

	if remote != nil && cmd.Flags().Changed("identity") {
		cfg.Identity = remote.identity
	}
	if em != nil {
		if em.repo != "" {
			cfg.Emitter.RepoDir = em.repo
			cfg.Emitter.Mode = config.EmitterGit
		}
		if em.dryRun {
			cfg.Emitter.Mode = config.EmitterDryRun
		}
	}

	slog.Debug("Configuration resolved",
		"provider", cfg.Provider,
		"identity", cfg.Identity,
		"token", config.RedactToken(cfg.Token),
		"emitter", cfg.Emitter.Mode,
		"weekStart", cfg.Calendar.WeekStart)

	return cfg, nil
}

// buildGapFinder creates the provider adapter after checking credentials.
func buildGapFinder(cfg *config.Config) (activity.GapFinder, error) {
	if err := cfg.RequireIdentity(); err != nil {
		return nil, err
	}
	return activity.NewGapFinder(cfg.Provider, activity.Config{
		Token:   cfg.Token,
		BaseURL: cfg.BaseURL,
	})
}

func buildEmitter(cfg *config.Config) (emit.Emitter, error) {
	if cfg.Emitter.Mode == config.EmitterDryRun {
		return emit.NewDryRunEmitter(slog.Default()), nil
	}
	return emit.NewGitEmitter(emit.GitOptions{
		RepoDir: cfg.Emitter.RepoDir,
		File:    cfg.Emitter.File,
		Message: cfg.Emitter.Message,
		Hour:    cfg.EmitHour(),
		Logger:  slog.Default(),
	})
}
