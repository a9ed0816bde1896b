package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/pashuvision/pkg/handlers"
	"github.com/JaimeStill/pashuvision/pkg/middleware"
	"github.com/JaimeStill/pashuvision/pkg/openapi"
	"github.com/JaimeStill/pashuvision/pkg/pagination"
	"github.com/JaimeStill/pashuvision/pkg/routes"
)

// SourceHeader names the pushing instance when the body does not.
const SourceHeader = "X-Pashu-Source"

// Handler provides HTTP endpoints for registry operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "registry"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for registry endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/registry",
		Tags:   []string{"Registry"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Push, OpenAPI: &openapi.Operation{
				Summary:     "Receive a registration pushed by a field instance",
				RequestBody: openapi.RequestBodyJSON("PushCommand", true),
				Responses:   map[int]*openapi.Response{200: openapi.ResponseJSON("Stored", "RegistryEntry"), 400: openapi.ResponseRef("BadRequest")},
			}},
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary: "List registry entries",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("page", "integer", "Page number", false),
					openapi.QueryParam("page_size", "integer", "Page size", false),
					openapi.QueryParam("search", "string", "Free-text search", false),
					openapi.QueryParam("state", "string", "Owner state", false),
					openapi.QueryParam("source", "string", "Pushing instance", false),
				},
				Responses: openapi.ResponseOK("RegistryPage"),
			}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
				Summary:     "Search registry entries with a JSON body",
				RequestBody: openapi.RequestBodyJSON("RegistrySearch", true),
				Responses:   openapi.ResponseOK("RegistryPage"),
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Find a registry entry",
				Parameters: []*openapi.Parameter{openapi.PathParam("id", "Registration ID")},
				Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("OK", "RegistryEntry"), 404: openapi.ResponseRef("NotFound")},
			}},
		},
	}
}

// Push stores a pushed registration. The source falls back to the
// SourceHeader value, then to the authenticated subject.
func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[PushCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRecord, err))
		return
	}

	source := cmd.Source
	if source == "" {
		source = r.Header.Get(SourceHeader)
	}
	if source == "" {
		source = middleware.Subject(r.Context())
	}

	entry, err := h.sys.Upsert(r.Context(), cmd.Registration, source)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, entry)
}

// List returns a paginated list of entries with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRecord)
		return
	}

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single entry.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	entry, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, entry)
}
