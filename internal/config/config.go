// Package config loads service configuration from config.toml, an optional
// config.<PASHU_ENV>.toml overlay, and PASHU_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/pashuvision/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPashuEnv             = "PASHU_ENV"
	EnvPashuConfig          = "PASHU_CONFIG"
	EnvPashuShutdownTimeout = "PASHU_SHUTDOWN_TIMEOUT"
	EnvPashuVersion         = "PASHU_VERSION"
)

var storageEnv = &storage.Env{
	Provider:         "PASHU_STORAGE_PROVIDER",
	Root:             "PASHU_STORAGE_ROOT",
	ContainerName:    "PASHU_STORAGE_CONTAINER_NAME",
	ConnectionString: "PASHU_STORAGE_CONNECTION_STRING",
	AccountURL:       "PASHU_STORAGE_ACCOUNT_URL",
}

// Config is the root configuration for the PashuVision service.
type Config struct {
	Server          ServerConfig   `toml:"server"`
	Local           LocalConfig    `toml:"local"`
	Registry        RegistryConfig `toml:"registry"`
	Storage         storage.Config `toml:"storage"`
	API             APIConfig      `toml:"api"`
	Agent           AgentConfig    `toml:"agent"`
	Sync            SyncConfig     `toml:"sync"`
	ShutdownTimeout string         `toml:"shutdown_timeout"`
	Version         string         `toml:"version"`
}

// Env returns the PASHU_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPashuEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config file (PASHU_CONFIG, else config.toml) when it
// exists, applies the environment overlay, and finalizes every section.
// Without any file, defaults and environment variables supply everything.
func Load() (*Config, error) {
	path := BaseConfigFile
	if v := os.Getenv(EnvPashuConfig); v != "" {
		path = v
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit base config path.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Local.Merge(&overlay.Local)
	c.Registry.Merge(&overlay.Registry)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Agent.Merge(&overlay.Agent)
	c.Sync.Merge(&overlay.Sync)
}

func (c *Config) finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v := os.Getenv(EnvPashuShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPashuVersion); v != "" {
		c.Version = v
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Finalize},
		{"local", c.Local.Finalize},
		{"registry", c.Registry.Finalize},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"api", c.API.Finalize},
		{"agent", c.Agent.Finalize},
		{"sync", c.Sync.Finalize},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if c.Sync.Remote == RemotePostgres && !c.Registry.Enabled {
		return fmt.Errorf("sync: postgres remote requires [registry] enabled")
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func overlayPath() string {
	env := os.Getenv(EnvPashuEnv)
	if env == "" {
		return ""
	}
	path := fmt.Sprintf(OverlayConfigPattern, env)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func envString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
