package registry

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/pashuvision/internal/gateway"
	"github.com/JaimeStill/pashuvision/internal/registrations"
	"github.com/JaimeStill/pashuvision/pkg/pagination"
	"github.com/JaimeStill/pashuvision/pkg/query"
	"github.com/JaimeStill/pashuvision/pkg/routes"
)

type fakeSystem struct {
	pushed  []registrations.Registration
	sources []string
	page    pagination.PageRequest
	filters Filters
}

func (f *fakeSystem) Handler() *Handler {
	return NewHandler(f, slog.New(slog.DiscardHandler), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func (f *fakeSystem) Upsert(_ context.Context, reg registrations.Registration, source string) (*Entry, error) {
	if reg.ID == "" {
		return nil, ErrInvalidRecord
	}
	f.pushed = append(f.pushed, reg)
	f.sources = append(f.sources, source)
	e := newEntry(reg, source)
	return &e, nil
}

func (f *fakeSystem) Find(_ context.Context, id string) (*Entry, error) {
	for _, reg := range f.pushed {
		if reg.ID == id {
			e := newEntry(reg, "")
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeSystem) List(_ context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Entry], error) {
	f.page = page
	f.filters = filters
	result := pagination.NewPageResult[Entry](nil, 0, page.Page, page.PageSize)
	return &result, nil
}

func TestNewEntry(t *testing.T) {
	reg := registrations.Registration{
		ID:        "reg-1",
		Timestamp: time.Date(2026, 2, 3, 4, 5, 6, 0, time.FixedZone("IST", 19800)),
		Owner:     registrations.OwnerData{Name: "Geeta Yadav", State: "Bihar", District: "Gaya"},
		Animals: []registrations.AnimalResult{
			{AIResult: gateway.IdentificationResult{BreedName: "Sahiwal"}},
			{AIResult: gateway.IdentificationResult{BreedName: "Sahiwal"}},
			{AIResult: gateway.IdentificationResult{BreedName: "Murrah"}},
		},
	}

	e := newEntry(reg, "field-7")
	if e.Status != registrations.StatusCompleted {
		t.Errorf("status: got %q", e.Status)
	}
	if e.Breeds != "Sahiwal, Murrah" || e.AnimalCount != 3 {
		t.Errorf("breeds: got %q count %d", e.Breeds, e.AnimalCount)
	}
	if e.RegisteredAt.Location() != time.UTC || !e.RegisteredAt.Equal(reg.Timestamp) {
		t.Errorf("registered at: got %v", e.RegisteredAt)
	}
	if e.Source != "field-7" || e.State != "Bihar" {
		t.Errorf("entry: %+v", e)
	}
}

func TestFiltersApply(t *testing.T) {
	values := url.Values{"state": {"Gujarat"}, "is_sample": {"false"}, "district": {""}}
	f := FiltersFromQuery(values)

	search := "patel"
	sql, args := f.Apply(query.NewBuilder(projection, defaultSort).WhereSearch(&search, searchFields...)).BuildCount()

	if !strings.Contains(sql, "r.state = $8") || !strings.Contains(sql, "r.is_sample = $9") {
		t.Errorf("sql: %s", sql)
	}
	if strings.Contains(sql, "r.district =") {
		t.Errorf("empty district applied: %s", sql)
	}
	if len(args) != len(searchFields)+2 || args[len(args)-1] != false {
		t.Errorf("args: %v", args)
	}
}

func newMux(sys *fakeSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func TestPushSource(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		header string
		want   string
	}{
		{"body source", `{"source":"tablet-1","registration":{"id":"r1"}}`, "tablet-2", "tablet-1"},
		{"header source", `{"registration":{"id":"r1"}}`, "tablet-2", "tablet-2"},
		{"no source", `{"registration":{"id":"r1"}}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &fakeSystem{}
			req := httptest.NewRequest("POST", "/registry", strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set(SourceHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			newMux(sys).ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status: got %d %s", rec.Code, rec.Body)
			}
			if sys.sources[0] != tt.want {
				t.Errorf("source: got %q, want %q", sys.sources[0], tt.want)
			}
		})
	}
}

func TestHandlerErrors(t *testing.T) {
	sys := &fakeSystem{}
	mux := newMux(sys)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{"POST", "/registry", `{"registration":{}}`, http.StatusBadRequest},
		{"POST", "/registry", `{"unknown":1}`, http.StatusBadRequest},
		{"GET", "/registry/missing", "", http.StatusNotFound},
		{"GET", "/registry?page=2&source=tablet-1", "", http.StatusOK},
		{"POST", "/registry/search", `{"page":1,"state":"Punjab"}`, http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s: got %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}

	if sys.filters.State == nil || *sys.filters.State != "Punjab" {
		t.Errorf("search filters: %+v", sys.filters)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatal(err)
	}
	up, down := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Errorf("migrations: %d up, %d down", up, down)
	}
}
