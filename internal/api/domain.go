package api

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/pashuvision/internal/analytics"
	"github.com/JaimeStill/pashuvision/internal/config"
	"github.com/JaimeStill/pashuvision/internal/gateway"
	"github.com/JaimeStill/pashuvision/internal/registrations"
	"github.com/JaimeStill/pashuvision/internal/registry"
	"github.com/JaimeStill/pashuvision/internal/samples"
	"github.com/JaimeStill/pashuvision/internal/syncer"
	"github.com/JaimeStill/pashuvision/pkg/httpclient"
)

// Domain holds all domain systems that comprise the API.
// Registry is nil unless the central registry is enabled.
type Domain struct {
	Gateway       gateway.System
	Registrations registrations.System
	Analytics     analytics.System
	Registry      registry.System
	Sync          syncer.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(ctx context.Context, cfg *config.Config, runtime *Runtime) (*Domain, error) {
	gen, err := gateway.NewGemini(ctx, cfg.Agent.APIKey, cfg.Agent.Model, cfg.Agent.TimeoutDuration())
	if err != nil {
		return nil, err
	}
	if cfg.Agent.APIKey == "" {
		runtime.Logger.Warn("no gemini api key configured, ai features will return failure results")
	}

	gatewaySystem := gateway.New(
		gen,
		gateway.Config{
			CacheTTL:   cfg.Agent.CacheTTLDuration(),
			SessionTTL: cfg.Agent.SessionTTLDuration(),
		},
		runtime.Logger,
	)

	var seed registrations.Seeder
	if cfg.Local.Seed() {
		seed = samples.Seeder(nil)
	}

	regsSystem := registrations.New(
		runtime.Store,
		runtime.Storage,
		gatewaySystem,
		seed,
		runtime.Logger,
		runtime.Pagination,
	)

	domain := &Domain{
		Gateway:       gatewaySystem,
		Registrations: regsSystem,
		Analytics:     analytics.New(regsSystem, time.Local, runtime.Logger),
	}

	if runtime.Database != nil {
		domain.Registry = registry.New(
			runtime.Database.Connection(),
			runtime.Logger,
			runtime.Pagination,
		)
	}

	remote, err := newRemote(&cfg.Sync, domain, runtime)
	if err != nil {
		return nil, err
	}

	domain.Sync = syncer.New(
		regsSystem,
		remote,
		syncer.Config{
			Interval:    cfg.Sync.IntervalDuration(),
			Concurrency: cfg.Sync.Concurrency,
			PushTimeout: cfg.Sync.RequestTimeoutDuration(),
		},
		runtime.Logger,
	)

	return domain, nil
}

func newRemote(cfg *config.SyncConfig, domain *Domain, runtime *Runtime) (syncer.Remote, error) {
	switch cfg.Remote {
	case config.RemoteHTTP:
		client, err := httpclient.New(cfg.RemoteURL, cfg.RequestTimeoutDuration())
		if err != nil {
			return nil, fmt.Errorf("sync remote: %w", err)
		}
		client.Token = cfg.RemoteToken
		return syncer.NewHTTP(client, cfg.Source), nil
	case config.RemotePostgres:
		if domain.Registry == nil {
			return nil, fmt.Errorf("sync remote: postgres remote requires the registry")
		}
		return syncer.NewRegistry(domain.Registry, runtime.Database, cfg.Source), nil
	default:
		return syncer.NewSimulated(cfg.SimulatedDelayDuration()), nil
	}
}

