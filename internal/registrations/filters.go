package registrations

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/JaimeStill/pashuvision/pkg/query"
)

// Filters narrows history queries. Nil fields are ignored. String filters
// match case-insensitively. Species and Breed match when any animal matches.
type Filters struct {
	Status   *string `json:"status,omitempty"`
	Synced   *bool   `json:"synced,omitempty"`
	Species  *string `json:"species,omitempty"`
	Breed    *string `json:"breed,omitempty"`
	State    *string `json:"state,omitempty"`
	District *string `json:"district,omitempty"`
	IsSample *bool   `json:"is_sample,omitempty"`
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	str := func(key string) *string {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return &v
		}
		return nil
	}
	boolean := func(key string) *bool {
		if v, err := strconv.ParseBool(values.Get(key)); err == nil {
			return &v
		}
		return nil
	}

	f.Status = str("status")
	f.Synced = boolean("synced")
	f.Species = str("species")
	f.Breed = str("breed")
	f.State = str("state")
	f.District = str("district")
	f.IsSample = boolean("is_sample")
	return f
}

// Match reports whether reg satisfies every set filter.
func (f Filters) Match(reg Registration) bool {
	if f.Status != nil && !strings.EqualFold(statusOf(reg), *f.Status) {
		return false
	}
	if f.Synced != nil && reg.Synced != *f.Synced {
		return false
	}
	if f.IsSample != nil && reg.IsSample != *f.IsSample {
		return false
	}
	if f.State != nil && !strings.EqualFold(reg.Owner.State, *f.State) {
		return false
	}
	if f.District != nil && !strings.EqualFold(reg.Owner.District, *f.District) {
		return false
	}
	if f.Species != nil && !slices.ContainsFunc(reg.Animals, func(a AnimalResult) bool {
		return strings.EqualFold(a.Species, *f.Species)
	}) {
		return false
	}
	if f.Breed != nil && !slices.ContainsFunc(reg.Animals, func(a AnimalResult) bool {
		return strings.EqualFold(a.AIResult.BreedName, *f.Breed)
	}) {
		return false
	}
	return true
}

// matchesSearch reports whether q appears in the owner name, mobile, id
// number, village, district, any animal breed, or the registration id.
func matchesSearch(reg Registration, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}

	fields := []string{
		reg.ID,
		reg.Owner.Name,
		reg.Owner.Mobile,
		reg.Owner.IDNumber,
		reg.Owner.Village,
		reg.Owner.District,
	}
	for _, a := range reg.Animals {
		fields = append(fields, a.AIResult.BreedName)
	}

	return slices.ContainsFunc(fields, func(s string) bool {
		return strings.Contains(strings.ToLower(s), q)
	})
}

func statusOf(reg Registration) string {
	if reg.Completed() {
		return StatusCompleted
	}
	return StatusDraft
}

var sorters = map[string]func(a, b Registration) int{
	"timestamp": func(a, b Registration) int { return a.Timestamp.Compare(b.Timestamp) },
	"owner":     func(a, b Registration) int { return cmp.Compare(strings.ToLower(a.Owner.Name), strings.ToLower(b.Owner.Name)) },
	"village":   func(a, b Registration) int { return cmp.Compare(a.Owner.Village, b.Owner.Village) },
	"district":  func(a, b Registration) int { return cmp.Compare(a.Owner.District, b.Owner.District) },
	"animals":   func(a, b Registration) int { return cmp.Compare(len(a.Animals), len(b.Animals)) },
	"id":        func(a, b Registration) int { return cmp.Compare(a.ID, b.ID) },
}

var defaultSort = []query.SortField{{Field: "timestamp", Descending: true}}

// sortRegistrations orders regs by fields, newest first when none apply.
// Unknown fields are ignored.
func sortRegistrations(regs []Registration, fields []query.SortField) {
	var active []query.SortField
	for _, f := range fields {
		if _, ok := sorters[f.Field]; ok {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		active = defaultSort
	}

	slices.SortStableFunc(regs, func(a, b Registration) int {
		for _, f := range active {
			c := sorters[f.Field](a, b)
			if f.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
