package gateway

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Role of a chat turn.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of chat history.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request is a single model call.
type Request struct {
	SystemInstruction string
	History           []Message
	Prompt            string
	Images            []Image
	// Schema constrains the reply to JSON of this shape when set.
	Schema *genai.Schema
	// Search enables Google Search grounding.
	Search bool
}

// Response is the model's text reply with any grounding sources.
type Response struct {
	Text    string
	Sources []Source
}

// Generator performs one model call.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

type gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGemini creates a Generator backed by the Gemini API. An empty apiKey
// returns a Generator whose every call fails with ErrNotConfigured.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (Generator, error) {
	if apiKey == "" {
		return unconfigured{}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &gemini{client: client, model: model, timeout: timeout}, nil
}

func (g *gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents(req), generateConfig(req))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &Response{Text: text, Sources: groundingSources(resp)}, nil
}

func contents(req Request) []*genai.Content {
	out := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Text, role))
	}

	parts := make([]*genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MimeType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	return append(out, genai.NewContentFromParts(parts, genai.RoleUser))
}

func generateConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema
	}
	if req.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}

func groundingSources(resp *genai.GenerateContentResponse) []Source {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		sources = append(sources, Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return sources
}

type unconfigured struct{}

func (unconfigured) Generate(context.Context, Request) (*Response, error) {
	return nil, ErrNotConfigured
}
