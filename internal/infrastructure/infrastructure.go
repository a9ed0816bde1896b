// Package infrastructure assembles the shared subsystems every PashuVision
// module depends on: lifecycle, logging, the local registration store, blob
// storage, and the optional central registry database.
package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/pashuvision/internal/config"
	"github.com/JaimeStill/pashuvision/internal/registrations"
	"github.com/JaimeStill/pashuvision/internal/registry"
	"github.com/JaimeStill/pashuvision/pkg/database"
	"github.com/JaimeStill/pashuvision/pkg/lifecycle"
	"github.com/JaimeStill/pashuvision/pkg/storage"
)

// Infrastructure holds the core systems shared across modules.
// Database is nil unless the registry is enabled.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Store     registrations.Store
	Storage   storage.System
	Database  database.System

	local       *sql.DB
	autoMigrate bool
	dsn         string
}

// New creates all infrastructure systems from configuration.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	lc := lifecycle.New()

	infra := &Infrastructure{
		Lifecycle:   lc,
		Logger:      logger,
		autoMigrate: cfg.Registry.Enabled && cfg.Registry.AutoMigrate,
	}

	if err := infra.openStore(lc.Context(), &cfg.Local); err != nil {
		return nil, err
	}

	storageSys, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		infra.closeLocal()
		return nil, fmt.Errorf("storage init failed: %w", err)
	}
	infra.Storage = storageSys

	if cfg.Registry.Enabled {
		db, err := database.New(&cfg.Registry.Database, logger)
		if err != nil {
			infra.closeLocal()
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
		infra.dsn = cfg.Registry.Database.Dsn()
	}

	return infra, nil
}

func (i *Infrastructure) openStore(ctx context.Context, cfg *config.LocalConfig) error {
	switch cfg.Driver {
	case config.StoreMemory:
		i.Store = registrations.NewMemoryStore()
		return nil
	case config.StoreSQLite:
		db, err := registrations.OpenSQLite(cfg.Path)
		if err != nil {
			return fmt.Errorf("local store init failed: %w", err)
		}
		store, err := registrations.NewSQLiteStore(ctx, db)
		if err != nil {
			db.Close()
			return fmt.Errorf("local store init failed: %w", err)
		}
		i.local = db
		i.Store = store
		return nil
	default:
		return fmt.Errorf("unknown local driver %q", cfg.Driver)
	}
}

// Start applies registry migrations when configured and wires every
// subsystem into the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if i.autoMigrate {
		i.Logger.Info("applying registry migrations")
		if err := registry.MigrateUp(i.dsn); err != nil {
			return fmt.Errorf("registry migrate failed: %w", err)
		}
	}

	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}

	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}

	if i.local != nil {
		i.Lifecycle.OnClose(i.closeLocal)
	}
	return nil
}

func (i *Infrastructure) closeLocal() {
	if i.local == nil {
		return
	}
	if err := i.local.Close(); err != nil {
		i.Logger.Error("local store close failed", "error", err)
		return
	}
	i.Logger.Info("local store closed")
}
