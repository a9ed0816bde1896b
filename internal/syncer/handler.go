package syncer

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/pashuvision/pkg/handlers"
	"github.com/JaimeStill/pashuvision/pkg/openapi"
	"github.com/JaimeStill/pashuvision/pkg/routes"
)

// Handler provides HTTP endpoints for the sync loop.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for sys.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{sys: sys, logger: logger.With("handler", "sync")}
}

// Routes returns the route group definition for sync endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sync",
		Tags:   []string{"Sync"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Run, OpenAPI: &openapi.Operation{
				Summary:   "Run a sync pass now",
				Responses: openapi.ResponseOK("SyncResult"),
			}},
			{Method: "GET", Pattern: "/status", Handler: h.Status, OpenAPI: &openapi.Operation{
				Summary:   "Report sync loop state",
				Responses: openapi.ResponseOK("SyncStatus"),
			}},
		},
	}
}

// Run performs a pass bound to the request and returns its result.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Run(r.Context()))
}

// Status returns the loop state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.sys.Status(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, status)
}
