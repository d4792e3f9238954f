package policy

import (
	"fmt"
	"os"
	"time"
)

// Config holds OPA connection settings.
type Config struct {
	// URL is the base address of the OPA REST API, e.g. http://opa:8181.
	URL string `toml:"url"`

	// Timeout bounds each decision and deployment request.
	Timeout string `toml:"timeout"`
}

// Env maps policy config fields to environment variable names for override injection.
type Env struct {
	URL     string
	Timeout string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:8181"
	}
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
