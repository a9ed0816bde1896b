package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"google.golang.org/genai"

	"github.com/JaimeStill/pashuvision/pkg/formatting"
)

// System defines the AI gateway operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	IdentifyBreed(ctx context.Context, images []Image) IdentificationResult
	DetectAnimalDetails(ctx context.Context, image Image) DetectionResult
	BreedFacts(ctx context.Context, breed, species string) BreedFacts
	Schemes(ctx context.Context, breed, species string) SchemesResult
	VaccinationSchedule(ctx context.Context, breed, species string) VaccinationResult

	StartBreedChat(breed string) ChatSession
	SendBreedMessage(ctx context.Context, sessionID, message string) (*ChatReply, error)
	SendGeneralMessage(ctx context.Context, sessionID, message string) (*ChatReply, error)
}

// Config tunes the gateway caches.
type Config struct {
	CacheTTL   time.Duration
	SessionTTL time.Duration
}

type session struct {
	ChatSession
	system string

	mu      sync.Mutex
	history []Message
}

type gateway struct {
	gen      Generator
	logger   *slog.Logger
	cache    *gocache.Cache
	sessions *gocache.Cache
	cfg      Config
}

// New creates the gateway over gen.
func New(gen Generator, cfg Config, logger *slog.Logger) System {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}

	return &gateway{
		gen:      gen,
		logger:   logger.With("system", "gateway"),
		cache:    gocache.New(cfg.CacheTTL, cfg.CacheTTL/2),
		sessions: gocache.New(cfg.SessionTTL, cfg.SessionTTL/4),
		cfg:      cfg,
	}
}

func (g *gateway) Handler(maxUploadSize int64) *Handler {
	return NewHandler(g, g.logger, maxUploadSize)
}

func (g *gateway) IdentifyBreed(ctx context.Context, images []Image) IdentificationResult {
	if len(images) == 0 {
		return FailedIdentification()
	}

	resp, err := g.gen.Generate(ctx, Request{
		SystemInstruction: identifySystem,
		Prompt:            identifyPrompt(),
		Images:            images,
		Schema:            identificationSchema,
	})
	if err != nil {
		g.logger.Error("identify breed failed", "images", len(images), "error", err)
		return FailedIdentification()
	}

	result, err := formatting.Parse[IdentificationResult](resp.Text)
	if err != nil {
		g.logger.Error("identify breed parse failed", "error", err)
		return FailedIdentification()
	}

	result.Error = normalizeError(result.Error)
	result.Confidence = min(max(result.Confidence, 0), 100)
	if result.Confidence >= LowConfidenceThreshold || result.Failed() {
		result.TopCandidates = nil
	}

	g.logger.Info(
		"breed identified",
		"species", result.Species,
		"breed", result.BreedName,
		"confidence", result.Confidence,
		"failed", result.Failed(),
	)
	return result
}

func (g *gateway) DetectAnimalDetails(ctx context.Context, image Image) DetectionResult {
	failed := DetectionResult{Error: ptr(msgDetectFailed), Animals: []DetectedAnimal{}}

	resp, err := g.gen.Generate(ctx, Request{
		Prompt: detectPrompt,
		Images: []Image{image},
		Schema: detectionSchema,
	})
	if err != nil {
		g.logger.Error("detect animal details failed", "error", err)
		return failed
	}

	result, err := formatting.Parse[DetectionResult](resp.Text)
	if err != nil {
		g.logger.Error("detect animal details parse failed", "error", err)
		return failed
	}

	result.Error = normalizeError(result.Error)
	if result.Animals == nil {
		result.Animals = []DetectedAnimal{}
	}
	return result
}

func (g *gateway) BreedFacts(ctx context.Context, breed, species string) BreedFacts {
	key := cacheKey("facts", breed, species)
	if v, ok := g.cache.Get(key); ok {
		return v.(BreedFacts)
	}

	resp, err := g.gen.Generate(ctx, Request{
		Prompt: promptFor(factsTemplate, breed, species),
		Search: true,
	})
	if err != nil {
		g.logger.Error("breed facts failed", "breed", breed, "species", species, "error", err)
		return BreedFacts{
			Name:    breed,
			Species: species,
			Facts:   msgFactsUnavailable,
			Sources: []Source{},
			Error:   ptr(msgFactsFailed),
		}
	}

	facts := BreedFacts{
		Name:    breed,
		Species: species,
		Facts:   resp.Text,
		Sources: resp.Sources,
	}
	if facts.Sources == nil {
		facts.Sources = []Source{}
	}

	g.cache.SetDefault(key, facts)
	return facts
}

func (g *gateway) Schemes(ctx context.Context, breed, species string) SchemesResult {
	key := cacheKey("schemes", breed, species)
	if v, ok := g.cache.Get(key); ok {
		return v.(SchemesResult)
	}

	schemes, err := generateList[SchemeInfo](ctx, g.gen, promptFor(schemesTemplate, breed, species), schemesSchema)
	if err != nil {
		g.logger.Error("schemes failed", "breed", breed, "species", species, "error", err)
		return SchemesResult{Schemes: []SchemeInfo{}, Error: ptr(msgSchemesFailed)}
	}

	result := SchemesResult{Schemes: schemes}
	g.cache.SetDefault(key, result)
	return result
}

func (g *gateway) VaccinationSchedule(ctx context.Context, breed, species string) VaccinationResult {
	key := cacheKey("vaccinations", breed, species)
	if v, ok := g.cache.Get(key); ok {
		return v.(VaccinationResult)
	}

	suggestions, err := generateList[VaccinationSuggestion](ctx, g.gen, promptFor(vaccinationTemplate, breed, species), vaccinationSchema)
	if err != nil {
		g.logger.Error("vaccination schedule failed", "breed", breed, "species", species, "error", err)
		return VaccinationResult{Suggestions: []VaccinationSuggestion{}, Error: ptr(msgVaccinationFailed)}
	}

	result := VaccinationResult{Suggestions: suggestions}
	g.cache.SetDefault(key, result)
	return result
}

func (g *gateway) StartBreedChat(breed string) ChatSession {
	s := g.newSession(ChatBreed, breed, breedChatSystem(breed))
	g.logger.Info("breed chat started", "session", s.ID, "breed", breed)
	return s.ChatSession
}

func (g *gateway) SendBreedMessage(ctx context.Context, sessionID, message string) (*ChatReply, error) {
	s, ok := g.session(sessionID)
	if !ok || s.Kind != ChatBreed {
		return nil, ErrSessionNotFound
	}
	return g.send(ctx, s, message, msgBreedChatFailed), nil
}

func (g *gateway) SendGeneralMessage(ctx context.Context, sessionID, message string) (*ChatReply, error) {
	s, ok := g.session(sessionID)
	if !ok || s.Kind != ChatGeneral {
		s = g.newSession(ChatGeneral, "", generalChatSystem)
	}
	return g.send(ctx, s, message, msgGeneralChatFailed), nil
}

func (g *gateway) newSession(kind ChatKind, breed, system string) *session {
	s := &session{
		ChatSession: ChatSession{ID: uuid.NewString(), Kind: kind, Breed: breed},
		system:      system,
	}
	g.sessions.SetDefault(s.ID, s)
	return s
}

func (g *gateway) session(id string) (*session, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := g.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*session), true
}

// send runs one chat turn. History only grows on success.
func (g *gateway) send(ctx context.Context, s *session, message, fallback string) *ChatReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	g.sessions.SetDefault(s.ID, s)

	resp, err := g.gen.Generate(ctx, Request{
		SystemInstruction: s.system,
		History:           s.history,
		Prompt:            message,
	})
	if err != nil {
		g.logger.Error("chat message failed", "session", s.ID, "kind", s.Kind, "error", err)
		return &ChatReply{SessionID: s.ID, Reply: fallback}
	}

	s.history = append(s.history,
		Message{Role: RoleUser, Text: message},
		Message{Role: RoleModel, Text: resp.Text},
	)
	return &ChatReply{SessionID: s.ID, Reply: resp.Text}
}

func generateList[T any](ctx context.Context, gen Generator, prompt string, schema *genai.Schema) ([]T, error) {
	resp, err := gen.Generate(ctx, Request{Prompt: prompt, Schema: schema})
	if err != nil {
		return nil, err
	}

	items, err := formatting.Parse[[]T](resp.Text)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func promptFor(template, breed, species string) string {
	return fmt.Sprintf(template, breed, species)
}

func cacheKey(kind, breed, species string) string {
	return kind + ":" + strings.ToLower(species) + ":" + strings.ToLower(strings.TrimSpace(breed))
}
