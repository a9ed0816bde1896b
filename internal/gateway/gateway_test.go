package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type fakeGenerator struct {
	mu       sync.Mutex
	replies  []string
	err      error
	sources  []Source
	requests []Request
}

func (f *fakeGenerator) Generate(_ context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	text := ""
	if len(f.replies) > 0 {
		text = f.replies[0]
		f.replies = f.replies[1:]
	}
	return &Response{Text: text, Sources: f.sources}, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestGateway(gen Generator) *gateway {
	return New(gen, Config{}, slog.New(slog.DiscardHandler)).(*gateway)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestIdentifyBreed(t *testing.T) {
	tests := []struct {
		name           string
		reply          string
		err            error
		wantErr        bool
		wantBreed      string
		wantCandidates int
	}{
		{
			name:      "success with null sentinel",
			reply:     `{"error":"NULL","species":"Cattle","breed_name":"Gir","confidence":91,"milk_yield_potential":{"en":"High","hi":"उच्च"},"care_notes":"Shade","reasoning":{"en":"Domed forehead","hi":"x"},"top_candidates":[{"breed_name":"Gir","confidence_percentage":100}]}`,
			wantBreed: "Gir",
		},
		{
			name:           "low confidence keeps candidates",
			reply:          "```json\n{\"error\":\"null\",\"species\":\"Buffalo\",\"breed_name\":\"Murrah\",\"confidence\":60,\"milk_yield_potential\":\"x\",\"care_notes\":\"y\",\"reasoning\":\"z\",\"top_candidates\":[{\"breed_name\":\"Murrah\",\"confidence_percentage\":50},{\"breed_name\":\"Surti\",\"confidence_percentage\":30},{\"breed_name\":\"Toda\",\"confidence_percentage\":20}]}\n```",
			wantBreed:      "Murrah",
			wantCandidates: 3,
		},
		{
			name:      "model reported error",
			reply:     `{"error":"Poor image quality for reliable identification.","species":"Cattle","breed_name":"Unknown","confidence":0,"milk_yield_potential":"N/A","care_notes":"N/A","reasoning":"N/A"}`,
			wantErr:   true,
			wantBreed: "Unknown",
		},
		{
			name:      "transport failure",
			err:       errors.New("connection refused"),
			wantErr:   true,
			wantBreed: "Unknown",
		},
		{
			name:      "unparseable reply",
			reply:     "I think it is a cow.",
			wantErr:   true,
			wantBreed: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{replies: []string{tt.reply}, err: tt.err}
			g := newTestGateway(gen)

			got := g.IdentifyBreed(context.Background(), []Image{{Data: pngHeader, MimeType: "image/png"}})

			if got.Failed() != tt.wantErr {
				t.Errorf("failed: got %v, want %v (error %v)", got.Failed(), tt.wantErr, got.Error)
			}
			if got.BreedName != tt.wantBreed {
				t.Errorf("breed: got %s, want %s", got.BreedName, tt.wantBreed)
			}
			if len(got.TopCandidates) != tt.wantCandidates {
				t.Errorf("candidates: got %d, want %d", len(got.TopCandidates), tt.wantCandidates)
			}
		})
	}
}

func TestIdentifyBreedRequest(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("down")}
	g := newTestGateway(gen)

	g.IdentifyBreed(context.Background(), []Image{{Data: pngHeader, MimeType: "image/png"}, {Data: pngHeader, MimeType: "image/png"}})

	req := gen.requests[0]
	if len(req.Images) != 2 {
		t.Errorf("images: got %d", len(req.Images))
	}
	if req.Schema != identificationSchema {
		t.Error("identification schema not attached")
	}
	if !strings.Contains(req.Prompt, "Murrah") || !strings.Contains(req.Prompt, "Sahiwal") {
		t.Error("prompt should list cattle and buffalo breeds")
	}
	if req.SystemInstruction != identifySystem {
		t.Error("system instruction not set")
	}
}

func TestFailedIdentification(t *testing.T) {
	r := FailedIdentification()
	if r.Error == nil || *r.Error != msgIdentifyFailed {
		t.Errorf("error: got %v", r.Error)
	}
	if r.Species != SpeciesCattle || r.Confidence != 0 {
		t.Errorf("got %+v", r)
	}
	if r.CareNotes.Hi != "लागू नहीं" {
		t.Errorf("hindi n/a: got %q", r.CareNotes.Hi)
	}
}

func TestIdentifyBreedNoImages(t *testing.T) {
	gen := &fakeGenerator{}
	g := newTestGateway(gen)

	if got := g.IdentifyBreed(context.Background(), nil); !got.Failed() {
		t.Error("expected failure without images")
	}
	if gen.calls() != 0 {
		t.Error("model should not be called without images")
	}
}

func TestDetectAnimalDetails(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`{"error":"null","animals":[{"species":"Buffalo","sex":"Female","sex_confidence":"High"}]}`}}
	g := newTestGateway(gen)

	got := g.DetectAnimalDetails(context.Background(), Image{Data: pngHeader, MimeType: "image/png"})
	if got.Error != nil {
		t.Fatalf("unexpected error: %s", *got.Error)
	}
	if len(got.Animals) != 1 || got.Animals[0].Sex != "Female" {
		t.Errorf("got %+v", got.Animals)
	}

	g = newTestGateway(&fakeGenerator{err: errors.New("down")})
	got = g.DetectAnimalDetails(context.Background(), Image{})
	if got.Error == nil || *got.Error != msgDetectFailed || got.Animals == nil {
		t.Errorf("failure: got %+v", got)
	}
}

func TestBreedFactsCached(t *testing.T) {
	gen := &fakeGenerator{
		replies: []string{"Gir originates in the Gir forests of Gujarat."},
		sources: []Source{{URI: "https://example.org/gir", Title: "Gir"}},
	}
	g := newTestGateway(gen)

	first := g.BreedFacts(context.Background(), "Gir", SpeciesCattle)
	second := g.BreedFacts(context.Background(), "gir ", SpeciesCattle)

	if gen.calls() != 1 {
		t.Errorf("calls: got %d, want 1", gen.calls())
	}
	if !gen.requests[0].Search {
		t.Error("facts should enable search grounding")
	}
	if first.Facts != second.Facts || len(second.Sources) != 1 {
		t.Errorf("cached facts mismatch: %+v", second)
	}
}

func TestBreedFactsFailureNotCached(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("down")}
	g := newTestGateway(gen)

	got := g.BreedFacts(context.Background(), "Gir", SpeciesCattle)
	if got.Error == nil || got.Facts != msgFactsUnavailable {
		t.Errorf("got %+v", got)
	}

	g.BreedFacts(context.Background(), "Gir", SpeciesCattle)
	if gen.calls() != 2 {
		t.Errorf("failures must not be cached: calls %d", gen.calls())
	}
}

func TestSchemesAndVaccinations(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		`[{"scheme_name":"Rashtriya Gokul Mission","issuing_body":"Central Government","description":"d","eligibility":"e","health_check_required":true,"health_check_frequency":"Annual"}]`,
		`[{"vaccine_name":"FMD Vaccine","schedule":"Every 6 months","importance":"i"}]`,
	}}
	g := newTestGateway(gen)

	schemes := g.Schemes(context.Background(), "Gir", SpeciesCattle)
	if schemes.Error != nil || len(schemes.Schemes) != 1 || !schemes.Schemes[0].HealthCheckRequired {
		t.Errorf("schemes: got %+v", schemes)
	}

	vacc := g.VaccinationSchedule(context.Background(), "Gir", SpeciesCattle)
	if vacc.Error != nil || len(vacc.Suggestions) != 1 {
		t.Errorf("vaccinations: got %+v", vacc)
	}

	failing := newTestGateway(&fakeGenerator{err: errors.New("down")})
	if got := failing.Schemes(context.Background(), "Gir", SpeciesCattle); got.Error == nil || got.Schemes == nil {
		t.Errorf("schemes failure: got %+v", got)
	}
	if got := failing.VaccinationSchedule(context.Background(), "Gir", SpeciesCattle); got.Error == nil || *got.Error != msgVaccinationFailed {
		t.Errorf("vaccination failure: got %+v", got)
	}
}

func TestBreedChat(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Feed green fodder.", "Vaccinate before monsoon."}}
	g := newTestGateway(gen)

	if _, err := g.SendBreedMessage(context.Background(), "missing", "hi"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown session: got %v", err)
	}

	s := g.StartBreedChat("Sahiwal")
	if s.Kind != ChatBreed || s.Breed != "Sahiwal" {
		t.Fatalf("session: got %+v", s)
	}

	reply, err := g.SendBreedMessage(context.Background(), s.ID, "What to feed?")
	if err != nil || reply.Reply != "Feed green fodder." {
		t.Fatalf("first reply: %+v, %v", reply, err)
	}
	if _, err := g.SendBreedMessage(context.Background(), s.ID, "Vaccines?"); err != nil {
		t.Fatal(err)
	}

	second := gen.requests[1]
	if len(second.History) != 2 || second.History[1].Role != RoleModel {
		t.Errorf("history: got %+v", second.History)
	}
	if !strings.Contains(second.SystemInstruction, "Sahiwal") {
		t.Error("system instruction should name the breed")
	}
}

func TestChatFailureKeepsHistory(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("down")}
	g := newTestGateway(gen)

	s := g.StartBreedChat("Gir")
	reply, err := g.SendBreedMessage(context.Background(), s.ID, "hello")
	if err != nil || reply.Reply != msgBreedChatFailed {
		t.Fatalf("got %+v, %v", reply, err)
	}

	sess, _ := g.session(s.ID)
	if len(sess.history) != 0 {
		t.Errorf("history should not grow on failure: %d", len(sess.history))
	}
}

func TestGeneralChatCreatesSession(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Namaste!", "Sure."}}
	g := newTestGateway(gen)

	first, _ := g.SendGeneralMessage(context.Background(), "", "hello")
	if first.SessionID == "" {
		t.Fatal("session id not assigned")
	}
	second, _ := g.SendGeneralMessage(context.Background(), first.SessionID, "help")
	if second.SessionID != first.SessionID {
		t.Errorf("session changed: %s -> %s", first.SessionID, second.SessionID)
	}
	if gen.requests[0].SystemInstruction != generalChatSystem {
		t.Error("general system instruction not used")
	}

	breed := g.StartBreedChat("Gir")
	third, _ := g.SendGeneralMessage(context.Background(), breed.ID, "mixed")
	if third.SessionID == breed.ID {
		t.Error("breed session must not be reused for general chat")
	}
}

func TestTranslatableTextUnmarshal(t *testing.T) {
	var a, b TranslatableText
	if err := json.Unmarshal([]byte(`"plain"`), &a); err != nil || a.En != "plain" || a.Hi != "" {
		t.Errorf("string form: %+v, %v", a, err)
	}
	if err := json.Unmarshal([]byte(`{"en":"e","hi":"h"}`), &b); err != nil || b.Hi != "h" {
		t.Errorf("object form: %+v, %v", b, err)
	}
}

func TestContentsBuildsHistoryAndParts(t *testing.T) {
	got := contents(Request{
		History: []Message{{Role: RoleUser, Text: "q"}, {Role: RoleModel, Text: "a"}},
		Prompt:  "next",
		Images:  []Image{{Data: pngHeader, MimeType: "image/png"}},
	})
	if len(got) != 3 {
		t.Fatalf("contents: got %d", len(got))
	}
	if got[1].Role != "model" {
		t.Errorf("history role: got %s", got[1].Role)
	}
	if len(got[2].Parts) != 2 {
		t.Errorf("final parts: got %d", len(got[2].Parts))
	}
}

func TestUnconfiguredGenerator(t *testing.T) {
	gen, err := NewGemini(context.Background(), "", "gemini-2.5-flash", 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gen.Generate(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("got %v", err)
	}
}

func TestHandlerIdentify(t *testing.T) {
	gen := &fakeGenerator{replies: []string{`{"error":"null","species":"Cattle","breed_name":"Gir","confidence":88,"milk_yield_potential":"x","care_notes":"y","reasoning":"z"}`}}
	h := newTestGateway(gen).Handler(1 << 20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("images", "cow.png")
	part.Write(pngHeader)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/ai/identify", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Identify(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body)
	}
	var got IdentificationResult
	json.NewDecoder(rec.Body).Decode(&got)
	if got.BreedName != "Gir" || got.Error != nil {
		t.Errorf("got %+v", got)
	}
}

func TestHandlerIdentifyRejectsNonImage(t *testing.T) {
	h := newTestGateway(&fakeGenerator{}).Handler(1 << 20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("images", "notes.txt")
	part.Write([]byte("plain text"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/ai/identify", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Identify(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", rec.Code)
	}
}

func TestHandlerRoutes(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"facts"}}
	h := newTestGateway(gen).Handler(1 << 20)

	mux := http.NewServeMux()
	for _, r := range h.Routes().Routes {
		mux.HandleFunc(r.Method+" /ai"+r.Pattern, r.Handler)
	}

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"GET", "/ai/breeds/Gir/facts", "", http.StatusOK},
		{"GET", "/ai/breeds/Gir/facts?species=goat", "", http.StatusBadRequest},
		{"POST", "/ai/chat/breed", `{"breed":""}`, http.StatusBadRequest},
		{"POST", "/ai/chat/breed", `{"breed":"Gir"}`, http.StatusCreated},
		{"POST", "/ai/chat/breed/unknown/messages", `{"message":"hi"}`, http.StatusNotFound},
		{"POST", "/ai/chat/general", `{"message":"  "}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s: got %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestParseSpecies(t *testing.T) {
	for in, want := range map[string]string{"": SpeciesCattle, "buffalo": SpeciesBuffalo, "CATTLE": SpeciesCattle} {
		got, err := ParseSpecies(in)
		if err != nil || got != want {
			t.Errorf("ParseSpecies(%q): got %s, %v", in, got, err)
		}
	}
	if _, err := ParseSpecies("goat"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("goat: got %v", err)
	}
}
