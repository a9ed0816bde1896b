package breeds

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/pashuvision/pkg/handlers"
	"github.com/JaimeStill/pashuvision/pkg/openapi"
	"github.com/JaimeStill/pashuvision/pkg/routes"
)

// Handler serves the breed catalog.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a catalog Handler.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger.With("handler", "breeds")}
}

// Routes returns the route group for catalog endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/breeds",
		Tags:   []string{"Breeds"},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: h.List,
				OpenAPI: &openapi.Operation{
					Summary: "List breeds, optionally filtered by species and search text",
					Parameters: []*openapi.Parameter{
						openapi.QueryParam("species", "string", "Cattle or Buffalo", false),
						openapi.QueryParam("search", "string", "Name or origin substring", false),
					},
					Responses: openapi.ResponseOK("Breed"),
				},
			},
		},
	}
}

// List returns the catalog filtered by the species and search query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	handlers.RespondJSON(w, http.StatusOK, Search(q.Get("search"), q.Get("species")))
}
