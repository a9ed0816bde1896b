package storage

import (
	"fmt"
	"os"
)

// Providers recognized by New.
const (
	ProviderFilesystem = "filesystem"
	ProviderAzure      = "azure"
)

// Config selects and configures the blob storage provider.
//
// The azure provider authenticates with ConnectionString when set, otherwise
// with the default Azure credential chain against AccountURL.
type Config struct {
	Provider         string `toml:"provider"`
	Root             string `toml:"root"`
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	Root             string
	ContainerName    string
	ConnectionString string
	AccountURL       string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderFilesystem
	}
	if c.Root == "" {
		c.Root = "data/blobs"
	}
	if c.ContainerName == "" {
		c.ContainerName = "pashuvision"
	}
}

func (c *Config) loadEnv(env *Env) {
	for dst, name := range map[*string]string{
		&c.Provider:         env.Provider,
		&c.Root:             env.Root,
		&c.ContainerName:    env.ContainerName,
		&c.ConnectionString: env.ConnectionString,
		&c.AccountURL:       env.AccountURL,
	} {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderFilesystem:
		return nil
	case ProviderAzure:
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("azure storage requires connection_string or account_url")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage provider %q", c.Provider)
	}
}
