// Package registry is the central store field instances push completed
// registrations to. Each entry keeps the full record alongside the columns
// the registry searches and filters on.
package registry

import (
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/pashuvision/internal/registrations"
)

// Entry is one registration as held by the central registry.
type Entry struct {
	ID           string                     `json:"id"`
	OwnerName    string                     `json:"owner_name"`
	Mobile       string                     `json:"mobile"`
	IDNumber     string                     `json:"id_number"`
	Village      string                     `json:"village"`
	District     string                     `json:"district"`
	State        string                     `json:"state"`
	Status       string                     `json:"status"`
	AnimalCount  int                        `json:"animal_count"`
	Breeds       string                     `json:"breeds"`
	IsSample     bool                       `json:"is_sample"`
	Source       string                     `json:"source"`
	RegisteredAt time.Time                  `json:"registered_at"`
	ReceivedAt   time.Time                  `json:"received_at"`
	Registration registrations.Registration `json:"registration"`
}

// PushCommand is the body a field instance posts to the registry.
type PushCommand struct {
	Source       string                     `json:"source,omitempty"`
	Registration registrations.Registration `json:"registration"`
}

// newEntry derives the searchable columns from reg.
func newEntry(reg registrations.Registration, source string) Entry {
	status := reg.Status
	if status == "" {
		status = registrations.StatusCompleted
	}

	var names []string
	for _, a := range reg.Animals {
		if b := a.AIResult.BreedName; b != "" && !slices.Contains(names, b) {
			names = append(names, b)
		}
	}

	return Entry{
		ID:           reg.ID,
		OwnerName:    reg.Owner.Name,
		Mobile:       reg.Owner.Mobile,
		IDNumber:     reg.Owner.IDNumber,
		Village:      reg.Owner.Village,
		District:     reg.Owner.District,
		State:        reg.Owner.State,
		Status:       status,
		AnimalCount:  len(reg.Animals),
		Breeds:       strings.Join(names, ", "),
		IsSample:     reg.IsSample,
		Source:       source,
		RegisteredAt: reg.Timestamp.UTC(),
		Registration: reg,
	}
}
