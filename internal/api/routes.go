package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/pashuvision/internal/breeds"
	"github.com/JaimeStill/pashuvision/internal/config"
	"github.com/JaimeStill/pashuvision/pkg/openapi"
	"github.com/JaimeStill/pashuvision/pkg/routes"
)

// SpecPath is where the OpenAPI document is served, relative to the API base path.
const SpecPath = "/openapi.json"

func groups(domain *Domain, runtime *Runtime) []routes.Group {
	groups := []routes.Group{
		domain.Registrations.Handler(runtime.MaxUploadSize).Routes(),
		domain.Gateway.Handler(runtime.MaxUploadSize).Routes(),
		domain.Analytics.Handler().Routes(),
		domain.Sync.Handler().Routes(),
		breeds.NewHandler(runtime.Logger).Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	}
	if domain.Registry != nil {
		groups = append(groups, domain.Registry.Handler().Routes())
	}
	return groups
}

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config, runtime *Runtime) error {
	all := groups(domain, runtime)
	routes.Register(mux, all...)

	spec, err := buildSpec(cfg, all)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET "+SpecPath, openapi.ServeSpec(spec))
	return nil
}

func buildSpec(cfg *config.Config, all []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)
	spec.Components.AddSchemas(schemas())

	routes.Describe(spec, "", all...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi: %w", err)
	}
	return data, nil
}
