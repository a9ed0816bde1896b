package config

import (
	"fmt"
	"os"
	"strconv"
)

// Local store drivers.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// LocalConfig configures the on-device registration store.
type LocalConfig struct {
	Driver string `toml:"driver"`
	Path   string `toml:"path"`
	// SeedSamples controls whether an empty store is filled with sample data
	// on first read. Defaults to true.
	SeedSamples *bool `toml:"seed_samples"`
}

// Seed reports whether sample seeding is enabled.
func (c *LocalConfig) Seed() bool {
	return c.SeedSamples == nil || *c.SeedSamples
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *LocalConfig) Finalize() error {
	if c.Driver == "" {
		c.Driver = StoreSQLite
	}
	if c.Path == "" {
		c.Path = "data/pashuvision.db"
	}
	envString(&c.Driver, "PASHU_LOCAL_DRIVER")
	envString(&c.Path, "PASHU_LOCAL_PATH")
	if v := os.Getenv("PASHU_LOCAL_SEED_SAMPLES"); v != "" {
		if seed, err := strconv.ParseBool(v); err == nil {
			c.SeedSamples = &seed
		}
	}

	switch c.Driver {
	case StoreSQLite, StoreMemory:
		return nil
	default:
		return fmt.Errorf("unknown local driver %q", c.Driver)
	}
}

// Merge overwrites non-zero fields from overlay.
func (c *LocalConfig) Merge(overlay *LocalConfig) {
	if overlay.Driver != "" {
		c.Driver = overlay.Driver
	}
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
	if overlay.SeedSamples != nil {
		c.SeedSamples = overlay.SeedSamples
	}
}
