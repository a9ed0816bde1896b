package registrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/pashuvision/pkg/handlers"
	"github.com/JaimeStill/pashuvision/pkg/openapi"
	"github.com/JaimeStill/pashuvision/pkg/pagination"
	"github.com/JaimeStill/pashuvision/pkg/routes"
	"github.com/JaimeStill/pashuvision/pkg/storage"
)

// Handler provides HTTP endpoints for registration operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

type verifyRequest struct {
	BreedName string `json:"breed_name"`
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "registrations"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for registration endpoints.
func (h *Handler) Routes() routes.Group {
	id := openapi.PathParam("id", "Registration ID")
	animal := openapi.PathParam("animal", "Animal ID")

	return routes.Group{
		Prefix: "/registrations",
		Tags:   []string{"Registrations"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary: "List registrations newest first",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("page", "integer", "Page number", false),
					openapi.QueryParam("page_size", "integer", "Page size", false),
					openapi.QueryParam("search", "string", "Owner name, mobile, ID number, village, district, breed or registration ID", false),
					openapi.QueryParam("status", "string", "Draft or Completed", false),
					openapi.QueryParam("synced", "boolean", "Sync state", false),
					openapi.QueryParam("species", "string", "Cattle or Buffalo", false),
				},
				Responses: openapi.ResponseOK("RegistrationPage"),
			}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
				Summary:     "Search registrations with a JSON body",
				RequestBody: openapi.RequestBodyJSON("RegistrationSearch", true),
				Responses:   openapi.ResponseOK("RegistrationPage"),
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Find a registration",
				Parameters: []*openapi.Parameter{id},
				Responses:  map[int]*openapi.Response{200: openapi.ResponseJSON("OK", "Registration"), 404: openapi.ResponseRef("NotFound")},
			}},
			{Method: "POST", Pattern: "", Handler: h.Complete, OpenAPI: &openapi.Operation{
				Summary:     "Complete a registration from the wizard",
				RequestBody: openapi.RequestBodyJSON("SaveCommand", true),
				Responses:   map[int]*openapi.Response{201: openapi.ResponseJSON("Created", "Registration"), 400: openapi.ResponseRef("BadRequest")},
			}},
			{Method: "POST", Pattern: "/drafts", Handler: h.SaveDraft, OpenAPI: &openapi.Operation{
				Summary:     "Save a draft registration",
				RequestBody: openapi.RequestBodyJSON("SaveCommand", true),
				Responses:   map[int]*openapi.Response{201: openapi.ResponseJSON("Created", "Registration")},
			}},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: &openapi.Operation{
				Summary:     "Replace a registration",
				Parameters:  []*openapi.Parameter{id},
				RequestBody: openapi.RequestBodyJSON("Registration", true),
				Responses:   map[int]*openapi.Response{200: openapi.ResponseJSON("OK", "Registration"), 404: openapi.ResponseRef("NotFound")},
			}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: &openapi.Operation{
				Summary:    "Delete a registration with its photos and attachments",
				Parameters: []*openapi.Parameter{id},
				Responses:  map[int]*openapi.Response{204: {Description: "Deleted"}, 404: openapi.ResponseRef("NotFound")},
			}},
			{Method: "POST", Pattern: "/{id}/animals/{animal}/photos", Handler: h.UploadPhoto, OpenAPI: &openapi.Operation{
				Summary:     "Upload an animal photo",
				Parameters:  []*openapi.Parameter{id, animal},
				RequestBody: openapi.Multipart("photo", "Image file"),
				Responses:   map[int]*openapi.Response{201: openapi.ResponseJSON("Created", "PhotoFile"), 413: openapi.ResponseRef("TooLarge")},
			}},
			{Method: "GET", Pattern: "/{id}/animals/{animal}/photos/{photo}", Handler: h.DownloadPhoto, OpenAPI: &openapi.Operation{
				Summary:    "Download an animal photo",
				Parameters: []*openapi.Parameter{id, animal, openapi.PathParam("photo", "Photo ID")},
				Responses:  map[int]*openapi.Response{200: openapi.Binary("Image bytes", "image/*"), 404: openapi.ResponseRef("NotFound")},
			}},
			{Method: "DELETE", Pattern: "/{id}/animals/{animal}/photos/{photo}", Handler: h.RemovePhoto, OpenAPI: &openapi.Operation{
				Summary:    "Remove an animal photo",
				Parameters: []*openapi.Parameter{id, animal, openapi.PathParam("photo", "Photo ID")},
				Responses:  map[int]*openapi.Response{204: {Description: "Removed"}},
			}},
			{Method: "POST", Pattern: "/{id}/animals/{animal}/identify", Handler: h.Identify, OpenAPI: &openapi.Operation{
				Summary:    "Identify the animal's breed from its stored photos",
				Parameters: []*openapi.Parameter{id, animal},
				Responses:  openapi.ResponseOK("AnimalResult"),
			}},
			{Method: "PUT", Pattern: "/{id}/animals/{animal}/breed", Handler: h.VerifyBreed, OpenAPI: &openapi.Operation{
				Summary:    "Confirm the animal's breed",
				Parameters: []*openapi.Parameter{id, animal},
				Responses:  openapi.ResponseOK("AnimalResult"),
			}},
			{Method: "POST", Pattern: "/{id}/animals/{animal}/vaccinations", Handler: h.AddVaccination, OpenAPI: &openapi.Operation{
				Summary:     "Add a vaccination record",
				Parameters:  []*openapi.Parameter{id, animal},
				RequestBody: openapi.RequestBodyJSON("VaccinationCommand", true),
				Responses:   map[int]*openapi.Response{201: openapi.ResponseJSON("Created", "VaccinationRecord"), 400: openapi.ResponseRef("BadRequest")},
			}},
			{Method: "DELETE", Pattern: "/{id}/animals/{animal}/vaccinations/{vaccination}", Handler: h.RemoveVaccination, OpenAPI: &openapi.Operation{
				Summary:    "Remove a vaccination record",
				Parameters: []*openapi.Parameter{id, animal, openapi.PathParam("vaccination", "Vaccination ID")},
				Responses:  map[int]*openapi.Response{204: {Description: "Removed"}},
			}},
			{Method: "POST", Pattern: "/{id}/attachments", Handler: h.UploadAttachment, OpenAPI: &openapi.Operation{
				Summary:     "Upload a supporting document",
				Parameters:  []*openapi.Parameter{id},
				RequestBody: openapi.MultipartFields("file", "Document", map[string]*openapi.Schema{
					"kind": {Type: "string", Description: "owner_id, certificate, or other"},
				}),
				Responses: map[int]*openapi.Response{201: openapi.ResponseJSON("Created", "Attachment"), 413: openapi.ResponseRef("TooLarge")},
			}},
			{Method: "GET", Pattern: "/{id}/attachments/{attachment}", Handler: h.DownloadAttachment, OpenAPI: &openapi.Operation{
				Summary:    "Download a supporting document",
				Parameters: []*openapi.Parameter{id, openapi.PathParam("attachment", "Attachment ID")},
				Responses:  map[int]*openapi.Response{200: openapi.Binary("File bytes", "application/octet-stream"), 404: openapi.ResponseRef("NotFound")},
			}},
			{Method: "DELETE", Pattern: "/{id}/attachments/{attachment}", Handler: h.RemoveAttachment, OpenAPI: &openapi.Operation{
				Summary:    "Remove a supporting document",
				Parameters: []*openapi.Parameter{id, openapi.PathParam("attachment", "Attachment ID")},
				Responses:  map[int]*openapi.Response{204: {Description: "Removed"}},
			}},
		},
	}
}

// List returns a paginated list of registrations with optional query parameter filters.
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
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRegistration)
		return
	}

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single registration.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	reg, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, reg)
}

// Complete saves a completed wizard result.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.sys.Complete)
}

// SaveDraft saves an in-progress wizard result.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, h.sys.SaveDraft)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, fn func(context.Context, SaveCommand) (*Registration, error)) {
	cmd, err := handlers.DecodeJSON[SaveCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRegistration, err))
		return
	}

	reg, err := fn(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, reg)
}

// Update replaces a registration. The path id wins over the body id.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	reg, err := handlers.DecodeJSON[Registration](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRegistration, err))
		return
	}
	reg.ID = r.PathValue("id")

	updated, err := h.sys.Update(r.Context(), reg)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, updated)
}

// Delete removes a registration.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("id")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto stores the multipart "photo" file on the animal.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.readUpload(w, r, "photo")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	photo, err := h.sys.UploadPhoto(r.Context(), r.PathValue("id"), r.PathValue("animal"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, photo)
}

// DownloadPhoto streams a stored animal photo.
func (h *Handler) DownloadPhoto(w http.ResponseWriter, r *http.Request) {
	blob, err := h.sys.DownloadPhoto(r.Context(), r.PathValue("id"), r.PathValue("animal"), r.PathValue("photo"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	h.stream(w, blob, "")
}

// RemovePhoto deletes a stored animal photo.
func (h *Handler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.RemovePhoto(r.Context(), r.PathValue("id"), r.PathValue("animal"), r.PathValue("photo")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Identify runs AI identification on the animal's stored photos.
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	animal, err := h.sys.IdentifyAnimal(r.Context(), r.PathValue("id"), r.PathValue("animal"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, animal)
}

// VerifyBreed confirms the animal's breed.
func (h *Handler) VerifyBreed(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[verifyRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidRegistration, err))
		return
	}

	animal, err := h.sys.VerifyBreed(r.Context(), r.PathValue("id"), r.PathValue("animal"), req.BreedName)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, animal)
}

// AddVaccination records a vaccination on the animal.
func (h *Handler) AddVaccination(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[VaccinationCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidVaccination, err))
		return
	}

	record, err := h.sys.AddVaccination(r.Context(), r.PathValue("id"), r.PathValue("animal"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, record)
}

// RemoveVaccination deletes a vaccination record.
func (h *Handler) RemoveVaccination(w http.ResponseWriter, r *http.Request) {
	err := h.sys.RemoveVaccination(r.Context(), r.PathValue("id"), r.PathValue("animal"), r.PathValue("vaccination"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAttachment stores the multipart "file" with an optional "kind" field.
// PDF page counts are extracted with pdfcpu.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.readUpload(w, r, "file")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	cmd.Kind = r.FormValue("kind")
	cmd.PageCount = extractPDFPageCount(h.logger, cmd.Data, cmd.ContentType)

	att, err := h.sys.UploadAttachment(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, att)
}

// DownloadAttachment streams a stored attachment.
func (h *Handler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	att, blob, err := h.sys.DownloadAttachment(r.Context(), r.PathValue("id"), r.PathValue("attachment"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	h.stream(w, blob, att.Filename)
}

// RemoveAttachment deletes a stored attachment.
func (h *Handler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.RemoveAttachment(r.Context(), r.PathValue("id"), r.PathValue("attachment")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, field string) (UploadCommand, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return UploadCommand{}, ErrFileTooLarge
		}
		return UploadCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return UploadCommand{}, fmt.Errorf("%w: %s is required", ErrInvalidFile, field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return UploadCommand{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	return UploadCommand{
		Data:        data,
		Filename:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
	}, nil
}

func (h *Handler) stream(w http.ResponseWriter, blob *storage.Blob, filename string) {
	defer blob.Body.Close()

	if blob.ContentType != "" {
		w.Header().Set("Content-Type", blob.ContentType)
	}
	if blob.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.ContentLength, 10))
	}
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.Warn("stream blob interrupted", "error", err)
	}
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}
	return &count
}
