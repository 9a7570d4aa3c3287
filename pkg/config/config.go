package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/greg-hellings/contribart/pkg/calendar"
)

// Emitter modes.
const (
	EmitterGit    = "git"
	EmitterDryRun = "dry-run"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultProvider      = "github"
	DefaultEmitterFile   = "commits.txt"
	DefaultEmitterHour   = 12
	DefaultCommitMessage = "Commit on %s"
	DefaultDrawingPath   = "drawing.txt"
	DefaultWeekStart     = "sunday"
)

// Config represents the top-level configuration file structure
type Config struct {
	Provider string         `yaml:"provider" toml:"provider"`
	Identity string         `yaml:"identity" toml:"identity"`
	Token    string         `yaml:"token" toml:"token"`
	BaseURL  string         `yaml:"baseURL" toml:"baseURL"`
	Calendar CalendarConfig `yaml:"calendar" toml:"calendar"`
	Emitter  EmitterConfig  `yaml:"emitter" toml:"emitter"`
	Drawing  string         `yaml:"drawing" toml:"drawing"`
}

// CalendarConfig controls window resolution
type CalendarConfig struct {
	WeekStart    string `yaml:"weekStart" toml:"weekStart"`
	LookbackDays int    `yaml:"lookbackDays" toml:"lookbackDays"`
}

// EmitterConfig controls how scheduled dates become commits
type EmitterConfig struct {
	Mode    string `yaml:"mode" toml:"mode"`
	RepoDir string `yaml:"repoDir" toml:"repoDir"`
	File    string `yaml:"file" toml:"file"`
	Hour    *int   `yaml:"hour" toml:"hour"`
	Message string `yaml:"message" toml:"message"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.ApplyDefaults()
	return cfg
}

// LoadFromFile reads a YAML or TOML (by .toml extension) configuration file
// and returns the parsed Config with defaults applied.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	return &config, nil
}

// Load reads filename, or returns Default when filename is empty.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	return LoadFromFile(filename)
}

// ApplyDefaults fills unset fields and validates the ones that are set
func (c *Config) ApplyDefaults() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Calendar.WeekStart == "" {
		c.Calendar.WeekStart = DefaultWeekStart
	}
	if c.Calendar.LookbackDays == 0 {
		c.Calendar.LookbackDays = calendar.DefaultLookbackDays
	}
	if c.Emitter.Mode == "" {
		c.Emitter.Mode = EmitterDryRun
	}
	if c.Emitter.RepoDir == "" {
		c.Emitter.RepoDir = "."
	}
	if c.Emitter.File == "" {
		c.Emitter.File = DefaultEmitterFile
	}
	if c.Emitter.Hour == nil {
		h := DefaultEmitterHour
		c.Emitter.Hour = &h
	}
	if c.Emitter.Message == "" {
		c.Emitter.Message = DefaultCommitMessage
	}
	if c.Drawing == "" {
		c.Drawing = DefaultDrawingPath
	}

	return c.Validate()
}

// Validate checks field values without requiring credentials.
func (c *Config) Validate() error {
	switch c.Provider {
	case "github", "gitlab":
	default:
		return fmt.Errorf("unsupported provider %q (supported: github, gitlab)", c.Provider)
	}
	if _, err := calendar.ParseWeekday(c.Calendar.WeekStart); err != nil {
		return fmt.Errorf("calendar.weekStart: %w", err)
	}
	if c.Calendar.LookbackDays < 0 {
		return fmt.Errorf("calendar.lookbackDays must not be negative, got %d", c.Calendar.LookbackDays)
	}
	switch c.Emitter.Mode {
	case EmitterGit, EmitterDryRun:
	default:
		return fmt.Errorf("unsupported emitter mode %q (supported: git, dry-run)", c.Emitter.Mode)
	}
	if h := c.Emitter.Hour; h != nil && (*h < 0 || *h > 23) {
		return fmt.Errorf("emitter.hour must be between 0 and 23, got %d", *h)
	}
	if strings.Count(c.Emitter.Message, "%s") != 1 {
		return fmt.Errorf("emitter.message must contain exactly one %%s placeholder, got %q", c.Emitter.Message)
	}
	return nil
}

// RequireIdentity fails when identity or token are missing; used before any
// remote activity query.
func (c *Config) RequireIdentity() error {
	if strings.TrimSpace(c.Identity) == "" {
		return fmt.Errorf("no identity configured (set 'identity', --identity, or %s)", IdentityEnv)
	}
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("no %s token configured (set 'token' or %s)", c.Provider, TokenEnv(c.Provider))
	}
	return nil
}

// Resolver builds the calendar resolver described by the configuration.
// The week end is always the day before the week start.
func (c *Config) Resolver() (calendar.Resolver, error) {
	start, err := calendar.ParseWeekday(c.Calendar.WeekStart)
	if err != nil {
		return calendar.Resolver{}, err
	}
	end := (start + calendar.DaysPerWeek - 1) % calendar.DaysPerWeek
	return calendar.NewResolver(start, end, c.Calendar.LookbackDays)
}

// EmitHour returns the configured commit hour as a duration past midnight.
func (c *Config) EmitHour() time.Duration {
	h := DefaultEmitterHour
	if c.Emitter.Hour != nil {
		h = *c.Emitter.Hour
	}
	return time.Duration(h) * time.Hour
}
