package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/pashuvision/pkg/handlers"
	"github.com/JaimeStill/pashuvision/pkg/openapi"
	"github.com/JaimeStill/pashuvision/pkg/routes"
	"github.com/JaimeStill/pashuvision/pkg/storage"
)

// storageHandler serves photo and attachment blobs by storage key.
type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Tags:   []string{"Storage"},
		Routes: []routes.Route{
			{Method: "HEAD", Pattern: "/{key...}", Handler: h.exists, OpenAPI: &openapi.Operation{
				Summary:    "Check whether a blob exists",
				Parameters: []*openapi.Parameter{openapi.PathParam("key", "Storage key")},
				Responses:  map[int]*openapi.Response{200: {Description: "Exists"}, 404: {Description: "Missing"}},
			}},
			{Method: "GET", Pattern: "/{key...}", Handler: h.download, OpenAPI: &openapi.Operation{
				Summary:    "Download a stored photo or attachment by key",
				Parameters: []*openapi.Parameter{openapi.PathParam("key", "Storage key")},
				Responses: map[int]*openapi.Response{
					200: openapi.Binary("Blob content", "application/octet-stream"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

func (h *storageHandler) exists(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.Exists(r.Context(), r.PathValue("key"))
	if err != nil {
		w.WriteHeader(storage.MapHTTPStatus(err))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	blob, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer blob.Body.Close()

	if blob.ContentType != "" {
		w.Header().Set("Content-Type", blob.ContentType)
	}
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("blob stream interrupted", "key", key, "error", err)
	}
}
