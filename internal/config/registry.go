package config

import (
	"os"
	"strconv"

	"github.com/JaimeStill/pashuvision/pkg/database"
)

var databaseEnv = &database.Env{
	DSN:             "PASHU_DB_DSN",
	Host:            "PASHU_DB_HOST",
	Port:            "PASHU_DB_PORT",
	Name:            "PASHU_DB_NAME",
	User:            "PASHU_DB_USER",
	Password:        "PASHU_DB_PASSWORD",
	SSLMode:         "PASHU_DB_SSL_MODE",
	MaxOpenConns:    "PASHU_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PASHU_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PASHU_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PASHU_DB_CONN_TIMEOUT",
}

// RegistryConfig enables the central PostgreSQL registry that receives
// synced registrations. Field deployments leave it disabled.
type RegistryConfig struct {
	Enabled bool `toml:"enabled"`
	// AutoMigrate applies the embedded schema migrations at startup.
	AutoMigrate bool            `toml:"auto_migrate"`
	Database    database.Config `toml:"database"`
}

// Finalize applies environment overrides and finalizes the database section
// when the registry is enabled.
func (c *RegistryConfig) Finalize() error {
	if v := os.Getenv("PASHU_REGISTRY_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv("PASHU_REGISTRY_AUTO_MIGRATE"); v != "" {
		if auto, err := strconv.ParseBool(v); err == nil {
			c.AutoMigrate = auto
		}
	}
	if !c.Enabled {
		return nil
	}
	return c.Database.Finalize(databaseEnv)
}

// Merge overwrites non-zero fields from overlay. An overlay can enable the
// registry but not disable it; use PASHU_REGISTRY_ENABLED for that.
func (c *RegistryConfig) Merge(overlay *RegistryConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.AutoMigrate {
		c.AutoMigrate = true
	}
	c.Database.Merge(&overlay.Database)
}
