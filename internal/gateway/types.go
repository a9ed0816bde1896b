// Package gateway wraps the hosted Gemini model behind the operations field
// workers need: breed identification, animal detail detection, breed facts,
// government schemes, vaccination suggestions, and chat.
//
// Every operation degrades to a fixed failure value when the model cannot be
// reached or replies with unparseable output. Callers never see transport
// errors.
package gateway

import (
	"encoding/json"
	"strings"
)

// Species of animal recognized by the service.
const (
	SpeciesCattle  = "Cattle"
	SpeciesBuffalo = "Buffalo"
)

// Sex confidence levels reported by detection.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// LowConfidenceThreshold is the overall confidence below which the model
// must offer top candidates.
const LowConfidenceThreshold = 75

// Image is an inline photo passed to the model.
type Image struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
}

// TranslatableText carries English and Hindi renderings of a model reply.
// A bare JSON string decodes into En.
type TranslatableText struct {
	En string `json:"en"`
	Hi string `json:"hi"`
}

// UnmarshalJSON accepts either {"en","hi"} or a plain string.
func (t *TranslatableText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TranslatableText{En: s}
		return nil
	}

	type plain TranslatableText
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*t = TranslatableText(p)
	return nil
}

// BreedChoice is one candidate offered on a low-confidence identification.
type BreedChoice struct {
	BreedName            string `json:"breed_name"`
	ConfidencePercentage int    `json:"confidence_percentage"`
}

// IdentificationResult is the outcome of breed identification. A non-nil
// Error marks a failed analysis.
type IdentificationResult struct {
	Error              *string          `json:"error"`
	Species            string           `json:"species"`
	BreedName          string           `json:"breed_name"`
	Confidence         int              `json:"confidence"`
	IsUserVerified     bool             `json:"is_user_verified,omitempty"`
	MilkYieldPotential TranslatableText `json:"milk_yield_potential"`
	CareNotes          TranslatableText `json:"care_notes"`
	Reasoning          TranslatableText `json:"reasoning"`
	TopCandidates      []BreedChoice    `json:"top_candidates,omitempty"`
}

// Failed reports whether the identification carries an error.
func (r IdentificationResult) Failed() bool {
	return r.Error != nil
}

// DetectedAnimal is one animal found by detail detection.
type DetectedAnimal struct {
	Species       string `json:"species"`
	Sex           string `json:"sex"`
	SexConfidence string `json:"sex_confidence"`
}

// DetectionResult lists every cattle or buffalo found in a photo.
type DetectionResult struct {
	Error   *string          `json:"error"`
	Animals []DetectedAnimal `json:"animals"`
}

// Source is a web page that grounded a breed facts reply.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// BreedFacts holds free-text breed information with its search sources.
type BreedFacts struct {
	Name    string   `json:"name"`
	Species string   `json:"species"`
	Facts   string   `json:"facts"`
	Sources []Source `json:"sources"`
	Error   *string  `json:"error"`
}

// SchemeInfo describes a government scheme available to an owner.
type SchemeInfo struct {
	SchemeName           string `json:"scheme_name"`
	IssuingBody          string `json:"issuing_body"`
	Description          string `json:"description"`
	Eligibility          string `json:"eligibility"`
	HealthCheckRequired  bool   `json:"health_check_required"`
	HealthCheckFrequency string `json:"health_check_frequency"`
}

// SchemesResult is the list of schemes for a breed.
type SchemesResult struct {
	Schemes []SchemeInfo `json:"schemes"`
	Error   *string      `json:"error"`
}

// VaccinationSuggestion is one recommended vaccine.
type VaccinationSuggestion struct {
	VaccineName string `json:"vaccine_name"`
	Schedule    string `json:"schedule"`
	Importance  string `json:"importance"`
}

// VaccinationResult is the list of vaccination suggestions for a breed.
type VaccinationResult struct {
	Suggestions []VaccinationSuggestion `json:"suggestions"`
	Error       *string                 `json:"error"`
}

// ChatKind distinguishes breed-scoped sessions from the general assistant.
type ChatKind string

const (
	ChatBreed   ChatKind = "breed"
	ChatGeneral ChatKind = "general"
)

// ChatSession is the public view of a chat session.
type ChatSession struct {
	ID    string   `json:"id"`
	Kind  ChatKind `json:"kind"`
	Breed string   `json:"breed,omitempty"`
}

// ChatReply is the model's answer to one chat message.
type ChatReply struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// normalizeError maps the model's "null" sentinel, in any case, to nil.
func normalizeError(e *string) *string {
	if e == nil {
		return nil
	}
	v := strings.TrimSpace(*e)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

func ptr(s string) *string {
	return &s
}
