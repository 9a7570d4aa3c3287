package activity

import (
	"fmt"
	"strings"
)

// ProviderType represents the type of activity provider
type ProviderType string

const (
	// ProviderGitHub reads the GitHub contribution calendar.
	ProviderGitHub ProviderType = "github"
	// ProviderGitLab reads GitLab contribution events.
	ProviderGitLab ProviderType = "gitlab"
)

// NewGapFinder creates a gap finder for the named provider. The provider is
// case-insensitive; unknown names are an error.
func NewGapFinder(provider string, config Config) (GapFinder, error) {
	switch ProviderType(strings.ToLower(strings.TrimSpace(provider))) {
	case ProviderGitHub:
		return NewGitHubGapFinder(config)
	case ProviderGitLab:
		return NewGitLabGapFinder(config)
	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: github, gitlab)", provider)
	}
}

// SupportedProviders returns a list of all supported provider types
func SupportedProviders() []string {
	return []string{
		string(ProviderGitHub),
		string(ProviderGitLab),
	}
}
