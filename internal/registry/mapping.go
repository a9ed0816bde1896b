package registry

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/pashuvision/pkg/query"
	"github.com/JaimeStill/pashuvision/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "registry_registrations", "r").
	Project("id", "ID").
	Project("owner_name", "OwnerName").
	Project("mobile", "Mobile").
	Project("id_number", "IDNumber").
	Project("village", "Village").
	Project("district", "District").
	Project("state", "State").
	Project("status", "Status").
	Project("animal_count", "AnimalCount").
	Project("breeds", "Breeds").
	Project("is_sample", "IsSample").
	Project("source", "Source").
	Project("registered_at", "RegisteredAt").
	Project("received_at", "ReceivedAt").
	Project("data", "Data")

var defaultSort = query.SortField{
	Field:      "RegisteredAt",
	Descending: true,
}

var searchFields = []string{"ID", "OwnerName", "Mobile", "IDNumber", "Village", "District", "Breeds"}

// Filters contains optional exact-match criteria for registry queries.
type Filters struct {
	Status   *string `json:"status,omitempty"`
	State    *string `json:"state,omitempty"`
	District *string `json:"district,omitempty"`
	Source   *string `json:"source,omitempty"`
	IsSample *bool   `json:"is_sample,omitempty"`
	Since    *string `json:"since,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("State", f.State).
		WhereEquals("District", f.District).
		WhereEquals("Source", f.Source).
		WhereEquals("IsSample", f.IsSample).
		WhereSince("RegisteredAt", f.Since)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if s := values.Get("state"); s != "" {
		f.State = &s
	}
	if d := values.Get("district"); d != "" {
		f.District = &d
	}
	if src := values.Get("source"); src != "" {
		f.Source = &src
	}
	if v, err := strconv.ParseBool(values.Get("is_sample")); err == nil {
		f.IsSample = &v
	}
	if s := values.Get("since"); s != "" {
		f.Since = &s
	}

	return f
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e    Entry
		data []byte
	)
	err := s.Scan(
		&e.ID,
		&e.OwnerName,
		&e.Mobile,
		&e.IDNumber,
		&e.Village,
		&e.District,
		&e.State,
		&e.Status,
		&e.AnimalCount,
		&e.Breeds,
		&e.IsSample,
		&e.Source,
		&e.RegisteredAt,
		&e.ReceivedAt,
		&data,
	)
	if err != nil {
		return e, err
	}
	err = json.Unmarshal(data, &e.Registration)
	return e, err
}
