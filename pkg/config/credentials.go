package config

// Identity and token resolution. The environment is consulted here and only
// here; everything downstream receives the resolved Config value.

import (
	"fmt"
	"os"
	"strings"
)

// IdentityEnv names the identity override variable.
const IdentityEnv = "CONTRIBART_IDENTITY"

// Legacy variable names read after the CONTRIBART_* ones (GitHub only).
const (
	legacyIdentityEnv = "GITHUB_USERNAME"
	legacyTokenEnv    = "GITHUB_TOKEN"
)

// LookupFunc matches os.Getenv; tests pass a map-backed func.
type LookupFunc func(string) string

// TokenEnv returns the variable holding the token for provider, e.g.
// CONTRIBART_GITHUB_TOKEN.
func TokenEnv(provider string) string {
	return fmt.Sprintf("CONTRIBART_%s_TOKEN", strings.ToUpper(provider))
}

// ApplyEnv fills Identity and Token from the environment.
// Lookup order for each value:
//  1. CONTRIBART_IDENTITY / CONTRIBART_<PROVIDER>_TOKEN
//  2. the value already in the config file
//  3. GITHUB_USERNAME / GITHUB_TOKEN (github provider only)
func (c *Config) ApplyEnv(lookup LookupFunc) {
	if lookup == nil {
		lookup = os.Getenv
	}
	get := func(name string) string { return strings.TrimSpace(lookup(name)) }

	if v := get(IdentityEnv); v != "" {
		c.Identity = v
	}
	if v := get(TokenEnv(c.Provider)); v != "" {
		c.Token = v
	}

	if c.Provider != "github" {
		return
	}
	if c.Identity == "" {
		c.Identity = get(legacyIdentityEnv)
	}
	if c.Token == "" {
		c.Token = get(legacyTokenEnv)
	}
}

// RedactToken safely redacts a token for logging purposes.
func RedactToken(tok string) string {
	if tok == "" {
		return ""
	}
	if len(tok) <= 4 {
		return "***"
	}
	return tok[:4] + "***"
}
