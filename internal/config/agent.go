package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvAgentAPIKey     = "PASHU_AGENT_API_KEY"
	EnvAgentModel      = "PASHU_AGENT_MODEL"
	EnvAgentTimeout    = "PASHU_AGENT_TIMEOUT"
	EnvAgentCacheTTL   = "PASHU_AGENT_CACHE_TTL"
	EnvAgentSessionTTL = "PASHU_AGENT_SESSION_TTL"

	// EnvGeminiAPIKey is honored when PASHU_AGENT_API_KEY is unset.
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// AgentConfig configures the Gemini model behind the AI gateway.
// An empty APIKey leaves the gateway running in its fixed-failure mode.
type AgentConfig struct {
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	Timeout    string `toml:"timeout"`
	CacheTTL   string `toml:"cache_ttl"`
	SessionTTL string `toml:"session_ttl"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *AgentConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// CacheTTLDuration returns CacheTTL as a time.Duration.
func (c *AgentConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

// SessionTTLDuration returns SessionTTL as a time.Duration.
func (c *AgentConfig) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AgentConfig) Finalize() error {
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "24h"
	}
	if c.SessionTTL == "" {
		c.SessionTTL = "2h"
	}

	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvGeminiAPIKey)
	}
	envString(&c.APIKey, EnvAgentAPIKey)
	envString(&c.Model, EnvAgentModel)
	envString(&c.Timeout, EnvAgentTimeout)
	envString(&c.CacheTTL, EnvAgentCacheTTL)
	envString(&c.SessionTTL, EnvAgentSessionTTL)

	for name, v := range map[string]string{
		"timeout":     c.Timeout,
		"cache_ttl":   c.CacheTTL,
		"session_ttl": c.SessionTTL,
	} {
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s: %q", name, v)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *AgentConfig) Merge(overlay *AgentConfig) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
	if overlay.SessionTTL != "" {
		c.SessionTTL = overlay.SessionTTL
	}
}
