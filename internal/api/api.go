// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/pashuvision/internal/config"
	"github.com/JaimeStill/pashuvision/internal/infrastructure"
	"github.com/JaimeStill/pashuvision/pkg/middleware"
	"github.com/JaimeStill/pashuvision/pkg/module"
)

// Module is the mounted API along with the domain systems behind it.
type Module struct {
	*module.Module
	Domain *Domain
}

// NewModule creates the API module with all domain handlers and middleware,
// and registers the sync loop with the lifecycle when sync is enabled.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(infra.Lifecycle.Context(), cfg, runtime)
	if err != nil {
		return nil, fmt.Errorf("api domain: %w", err)
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	if cfg.API.Auth.Enabled {
		verifier, err := middleware.NewOIDCVerifier(infra.Lifecycle.Context(), &cfg.API.Auth)
		if err != nil {
			return nil, fmt.Errorf("auth verifier: %w", err)
		}
		m.Use(middleware.Auth(verifier, runtime.Logger))
	}

	if cfg.Sync.IsEnabled() {
		domain.Sync.Start(infra.Lifecycle)
	}

	return &Module{Module: m, Domain: domain}, nil
}
