package auth

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds OIDC token verification settings.
//
// When Enabled is false the middleware stamps every request with the
// configured fallback identity instead of verifying bearer tokens. That
// mode exists for local development and tests only.
type Config struct {
	Enabled bool `toml:"enabled"`

	// IssuerURL is the OIDC issuer used for discovery and key retrieval.
	IssuerURL string `toml:"issuer_url"`

	// ClientID is the expected token audience. Empty skips the audience
	// check, which is common for access tokens with an API audience.
	ClientID string `toml:"client_id"`

	// FallbackUsername and FallbackRoles describe the identity assumed
	// when verification is disabled.
	FallbackUsername string   `toml:"fallback_username"`
	FallbackRoles    []string `toml:"fallback_roles"`
}

// Env maps auth config fields to environment variable names for override injection.
type Env struct {
	Enabled          string
	IssuerURL        string
	ClientID         string
	FallbackUsername string
	FallbackRoles    string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. Enabled always applies; string and
// slice fields only apply when non-zero.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled

	if overlay.IssuerURL != "" {
		c.IssuerURL = overlay.IssuerURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.FallbackUsername != "" {
		c.FallbackUsername = overlay.FallbackUsername
	}
	if overlay.FallbackRoles != nil {
		c.FallbackRoles = overlay.FallbackRoles
	}
}

func (c *Config) loadDefaults() {
	if c.FallbackUsername == "" {
		c.FallbackUsername = "local"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.IssuerURL != "" {
		if v := os.Getenv(env.IssuerURL); v != "" {
			c.IssuerURL = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
	if env.FallbackUsername != "" {
		if v := os.Getenv(env.FallbackUsername); v != "" {
			c.FallbackUsername = v
		}
	}
	if env.FallbackRoles != "" {
		if v := os.Getenv(env.FallbackRoles); v != "" {
			c.FallbackRoles = splitList(v)
		}
	}
}

func (c *Config) validate() error {
	if c.Enabled && c.IssuerURL == "" {
		return fmt.Errorf("issuer_url is required when auth is enabled")
	}
	return nil
}
