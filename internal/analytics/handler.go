package analytics

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/pashuvision/pkg/handlers"
	"github.com/JaimeStill/pashuvision/pkg/openapi"
	"github.com/JaimeStill/pashuvision/pkg/routes"
)

const defaultRecentLimit = 10

// Handler provides HTTP endpoints for dashboard analytics.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler for sys.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{sys: sys, logger: logger.With("handler", "analytics")}
}

// Routes returns the route group definition for analytics endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analytics",
		Tags:   []string{"Analytics"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/summary", Handler: h.Summary, OpenAPI: &openapi.Operation{
				Summary:   "Dashboard totals, activity and distributions",
				Responses: openapi.ResponseOK("Summary"),
			}},
			{Method: "GET", Pattern: "/vaccinations/upcoming", Handler: h.Upcoming, OpenAPI: &openapi.Operation{
				Summary:    "Vaccinations due within a window, overdue first",
				Parameters: []*openapi.Parameter{openapi.QueryParam("days", "integer", "Window in days (default 30)", false)},
				Responses:  map[int]*openapi.Response{200: {Description: "OK", Content: map[string]*openapi.MediaType{"application/json": {Schema: openapi.ArrayOf("UpcomingVaccination")}}}},
			}},
			{Method: "GET", Pattern: "/recent", Handler: h.Recent, OpenAPI: &openapi.Operation{
				Summary:    "Recent field registrations, samples excluded",
				Parameters: []*openapi.Parameter{openapi.QueryParam("limit", "integer", "Maximum records (default 10)", false)},
				Responses:  map[int]*openapi.Response{200: {Description: "OK", Content: map[string]*openapi.MediaType{"application/json": {Schema: openapi.ArrayOf("Registration")}}}},
			}},
			{Method: "GET", Pattern: "/export", Handler: h.Export, OpenAPI: &openapi.Operation{
				Summary:   "Export completed registrations as CSV, one row per animal",
				Responses: map[int]*openapi.Response{200: openapi.Binary("CSV export", "text/csv")},
			}},
		},
	}
}

// Summary returns the dashboard overview.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Summary(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

// Upcoming returns vaccinations due within ?days.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days", DefaultUpcomingDays)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	list, err := h.sys.Upcoming(r.Context(), days)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

// Recent returns the newest field registrations.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultRecentLimit)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	list, err := h.sys.Recent(r.Context(), limit)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, list)
}

// Export streams the CSV export as a download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	regs, err := h.sys.Completed(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, regs); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return n, nil
}
