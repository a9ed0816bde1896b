package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Sync remote kinds.
const (
	RemoteSimulated = "simulated"
	RemoteHTTP      = "http"
	RemotePostgres  = "postgres"
)

// SyncConfig configures the background push of completed registrations.
type SyncConfig struct {
	Enabled *bool `toml:"enabled"`
	// Interval between passes. Zero disables the ticker; on-demand passes
	// still run.
	Interval       string `toml:"interval"`
	Remote         string `toml:"remote"`
	RemoteURL      string `toml:"remote_url"`
	RemoteToken    string `toml:"remote_token"`
	SimulatedDelay string `toml:"simulated_delay"`
	Concurrency    int    `toml:"concurrency"`
	RequestTimeout string `toml:"request_timeout"`
	// Source names this instance to the registry. Defaults to the hostname.
	Source string `toml:"source"`
}

// IsEnabled reports whether the sync loop runs. Defaults to true.
func (c *SyncConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// IntervalDuration returns Interval as a time.Duration.
func (c *SyncConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

// SimulatedDelayDuration returns SimulatedDelay as a time.Duration.
func (c *SyncConfig) SimulatedDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.SimulatedDelay)
	return d
}

// RequestTimeoutDuration returns RequestTimeout as a time.Duration.
func (c *SyncConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SyncConfig) Finalize() error {
	if c.Interval == "" {
		c.Interval = "30s"
	}
	if c.Remote == "" {
		c.Remote = RemoteSimulated
	}
	if c.SimulatedDelay == "" {
		c.SimulatedDelay = "750ms"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "15s"
	}

	if v := os.Getenv("PASHU_SYNC_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = &enabled
		}
	}
	envString(&c.Interval, "PASHU_SYNC_INTERVAL")
	envString(&c.Remote, "PASHU_SYNC_REMOTE")
	envString(&c.RemoteURL, "PASHU_SYNC_REMOTE_URL")
	envString(&c.RemoteToken, "PASHU_SYNC_REMOTE_TOKEN")
	envString(&c.SimulatedDelay, "PASHU_SYNC_SIMULATED_DELAY")
	envString(&c.RequestTimeout, "PASHU_SYNC_REQUEST_TIMEOUT")
	envString(&c.Source, "PASHU_SYNC_SOURCE")
	if c.Source == "" {
		c.Source, _ = os.Hostname()
	}
	if v := os.Getenv("PASHU_SYNC_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Concurrency = n
		}
	}

	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *SyncConfig) Merge(overlay *SyncConfig) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Interval != "" {
		c.Interval = overlay.Interval
	}
	if overlay.Remote != "" {
		c.Remote = overlay.Remote
	}
	if overlay.RemoteURL != "" {
		c.RemoteURL = overlay.RemoteURL
	}
	if overlay.RemoteToken != "" {
		c.RemoteToken = overlay.RemoteToken
	}
	if overlay.SimulatedDelay != "" {
		c.SimulatedDelay = overlay.SimulatedDelay
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.Source != "" {
		c.Source = overlay.Source
	}
}

func (c *SyncConfig) validate() error {
	for name, v := range map[string]string{
		"interval":        c.Interval,
		"simulated_delay": c.SimulatedDelay,
		"request_timeout": c.RequestTimeout,
	} {
		if d, err := time.ParseDuration(v); err != nil || d < 0 {
			return fmt.Errorf("invalid %s: %q", name, v)
		}
	}

	switch c.Remote {
	case RemoteSimulated, RemotePostgres:
	case RemoteHTTP:
		if c.RemoteURL == "" {
			return fmt.Errorf("remote_url required for http remote")
		}
	default:
		return fmt.Errorf("unknown remote %q", c.Remote)
	}
	return nil
}
