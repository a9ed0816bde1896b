package gateway

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/JaimeStill/pashuvision/pkg/handlers"
	"github.com/JaimeStill/pashuvision/pkg/openapi"
	"github.com/JaimeStill/pashuvision/pkg/routes"
)

// MaxImages bounds the photos accepted by a single identification.
const MaxImages = 5

// Handler provides HTTP endpoints for the AI gateway.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a gateway Handler.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "gateway"),
		maxUploadSize: maxUploadSize,
	}
}

type startChatRequest struct {
	Breed string `json:"breed"`
}

type messageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// Routes returns the route group for AI endpoints.
func (h *Handler) Routes() routes.Group {
	species := openapi.QueryParam("species", "string", "Cattle or Buffalo (default Cattle)", false)
	breed := openapi.PathParam("breed", "Breed name")

	return routes.Group{
		Prefix: "/ai",
		Tags:   []string{"AI"},
		Routes: []routes.Route{
			{
				Method: "POST", Pattern: "/identify", Handler: h.Identify,
				OpenAPI: &openapi.Operation{
					Summary:     "Identify species and breed from one to five photos of the same animal",
					RequestBody: openapi.Multipart("images", "Photos of the animal"),
					Responses:   openapi.ResponseOK("IdentificationResult"),
				},
			},
			{
				Method: "POST", Pattern: "/detect", Handler: h.Detect,
				OpenAPI: &openapi.Operation{
					Summary:     "Detect species and sex of every animal in a photo",
					RequestBody: openapi.Multipart("image", "Photo"),
					Responses:   openapi.ResponseOK("DetectionResult"),
				},
			},
			{
				Method: "GET", Pattern: "/breeds/{breed}/facts", Handler: h.Facts,
				OpenAPI: &openapi.Operation{
					Summary:    "Search-grounded facts about a breed",
					Parameters: []*openapi.Parameter{breed, species},
					Responses:  openapi.ResponseOK("BreedFacts"),
				},
			},
			{
				Method: "GET", Pattern: "/breeds/{breed}/schemes", Handler: h.Schemes,
				OpenAPI: &openapi.Operation{
					Summary:    "Government schemes for owners of a breed",
					Parameters: []*openapi.Parameter{breed, species},
					Responses:  openapi.ResponseOK("SchemesResult"),
				},
			},
			{
				Method: "GET", Pattern: "/breeds/{breed}/vaccinations", Handler: h.Vaccinations,
				OpenAPI: &openapi.Operation{
					Summary:    "Recommended vaccinations for a breed",
					Parameters: []*openapi.Parameter{breed, species},
					Responses:  openapi.ResponseOK("VaccinationResult"),
				},
			},
			{
				Method: "POST", Pattern: "/chat/breed", Handler: h.StartBreedChat,
				OpenAPI: &openapi.Operation{
					Summary:   "Start a chat session scoped to a breed",
					Responses: map[int]*openapi.Response{201: openapi.ResponseJSON("Created", "ChatSession")},
				},
			},
			{
				Method: "POST", Pattern: "/chat/breed/{id}/messages", Handler: h.SendBreedMessage,
				OpenAPI: &openapi.Operation{
					Summary:    "Send a message to a breed chat session",
					Parameters: []*openapi.Parameter{openapi.PathParam("id", "Session ID")},
					Responses: map[int]*openapi.Response{
						200: openapi.ResponseJSON("OK", "ChatReply"),
						404: openapi.ResponseRef("NotFound"),
					},
				},
			},
			{
				Method: "POST", Pattern: "/chat/general", Handler: h.SendGeneralMessage,
				OpenAPI: &openapi.Operation{
					Summary:   "Send a message to the general assistant, creating a session when needed",
					Responses: openapi.ResponseOK("ChatReply"),
				},
			},
		},
	}
}

// Identify runs breed identification over the uploaded "images" files.
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	images, err := h.readImages(w, r, "images")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.sys.IdentifyBreed(r.Context(), images))
}

// Detect runs animal detail detection over the uploaded "image" file.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	images, err := h.readImages(w, r, "image")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.sys.DetectAnimalDetails(r.Context(), images[0]))
}

// Facts returns breed facts.
func (h *Handler) Facts(w http.ResponseWriter, r *http.Request) {
	breed, species, err := breedParams(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.sys.BreedFacts(r.Context(), breed, species))
}

// Schemes returns government schemes for a breed.
func (h *Handler) Schemes(w http.ResponseWriter, r *http.Request) {
	breed, species, err := breedParams(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.sys.Schemes(r.Context(), breed, species))
}

// Vaccinations returns vaccination suggestions for a breed.
func (h *Handler) Vaccinations(w http.ResponseWriter, r *http.Request) {
	breed, species, err := breedParams(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.sys.VaccinationSchedule(r.Context(), breed, species))
}

// StartBreedChat creates a breed chat session.
func (h *Handler) StartBreedChat(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[startChatRequest](r)
	if err != nil || strings.TrimSpace(req.Breed) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: breed is required", ErrInvalidRequest))
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, h.sys.StartBreedChat(strings.TrimSpace(req.Breed)))
}

// SendBreedMessage sends one message to a breed chat session.
func (h *Handler) SendBreedMessage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMessage(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	reply, err := h.sys.SendBreedMessage(r.Context(), r.PathValue("id"), req.Message)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, reply)
}

// SendGeneralMessage sends one message to the general assistant.
func (h *Handler) SendGeneralMessage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMessage(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	reply, err := h.sys.SendGeneralMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, reply)
}

func decodeMessage(r *http.Request) (messageRequest, error) {
	req, err := handlers.DecodeJSON[messageRequest](r)
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		return req, fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}
	return req, nil
}

func breedParams(r *http.Request) (string, string, error) {
	breed := strings.TrimSpace(r.PathValue("breed"))
	if breed == "" {
		return "", "", fmt.Errorf("%w: breed is required", ErrInvalidRequest)
	}

	species, err := ParseSpecies(r.URL.Query().Get("species"))
	if err != nil {
		return "", "", err
	}
	return breed, species, nil
}

// ParseSpecies normalizes a species name, defaulting to Cattle when empty.
func ParseSpecies(s string) (string, error) {
	switch {
	case s == "", strings.EqualFold(s, SpeciesCattle):
		return SpeciesCattle, nil
	case strings.EqualFold(s, SpeciesBuffalo):
		return SpeciesBuffalo, nil
	default:
		return "", fmt.Errorf("%w: unknown species %q", ErrInvalidRequest, s)
	}
}

func (h *Handler) readImages(w http.ResponseWriter, r *http.Request, field string) ([]Image, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s file is required", ErrInvalidRequest, field)
	}
	if len(files) > MaxImages {
		return nil, fmt.Errorf("%w: at most %d images", ErrInvalidRequest, MaxImages)
	}

	images := make([]Image, 0, len(files))
	for _, fh := range files {
		img, err := readImage(fh)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func readImage(fh *multipart.FileHeader) (Image, error) {
	f, err := fh.Open()
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	mime := DetectImageType(fh.Header.Get("Content-Type"), data)
	if mime == "" {
		return Image{}, fmt.Errorf("%w: %s is not an image", ErrInvalidRequest, fh.Filename)
	}
	return Image{Data: data, MimeType: mime}, nil
}

// DetectImageType returns the image MIME type from the declared header or
// the content, or "" when the data is not an image.
func DetectImageType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	if detected := http.DetectContentType(data); strings.HasPrefix(detected, "image/") {
		return detected
	}
	return ""
}
