// Package breeds holds the catalog of recognized Indian cattle and buffalo
// breeds used to constrain identification and validate user corrections.
package breeds

import (
	"slices"
	"strings"
)

// Purpose is a breed's primary use.
type Purpose string

const (
	Dairy   Purpose = "Dairy"
	Draught Purpose = "Draught"
	Dual    Purpose = "Dual"
)

// Breed is one catalog entry.
type Breed struct {
	Name    string  `json:"name"`
	Species string  `json:"species"`
	Origin  string  `json:"origin"`
	Purpose Purpose `json:"purpose,omitempty"`
}

// All returns every breed, cattle first.
func All() []Breed {
	return slices.Concat(cattle, buffalo)
}

// List returns the breeds of one species. An empty species returns all.
// Matching is case-insensitive.
func List(species string) []Breed {
	switch {
	case species == "":
		return All()
	case strings.EqualFold(species, "Cattle"):
		return slices.Clone(cattle)
	case strings.EqualFold(species, "Buffalo"):
		return slices.Clone(buffalo)
	default:
		return []Breed{}
	}
}

// Names returns the breed names of one species in catalog order.
func Names(species string) []string {
	list := List(species)
	names := make([]string, len(list))
	for i, b := range list {
		names[i] = b.Name
	}
	return names
}

// Search returns breeds whose name or origin contains q, case-insensitively,
// optionally restricted to a species.
func Search(q, species string) []Breed {
	q = strings.ToLower(strings.TrimSpace(q))
	results := []Breed{}
	for _, b := range List(species) {
		if q == "" ||
			strings.Contains(strings.ToLower(b.Name), q) ||
			strings.Contains(strings.ToLower(b.Origin), q) {
			results = append(results, b)
		}
	}
	return results
}

// Find returns the breed with the exact (case-insensitive) name within species.
func Find(name, species string) (Breed, bool) {
	for _, b := range List(species) {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Breed{}, false
}
