package registrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/pashuvision/internal/gateway"
	"github.com/JaimeStill/pashuvision/pkg/pagination"
	"github.com/JaimeStill/pashuvision/pkg/storage"
)

var (
	testNow   = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

type fakeIdentifier struct {
	mu     sync.Mutex
	result gateway.IdentificationResult
	images [][]gateway.Image
}

func (f *fakeIdentifier) IdentifyBreed(_ context.Context, images []gateway.Image) gateway.IdentificationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images = append(f.images, images)
	return f.result
}

type failingStore struct {
	Store
	failID string
}

func (f *failingStore) Upsert(ctx context.Context, reg *Registration) error {
	if reg.ID == f.failID {
		return errors.New("disk full")
	}
	return f.Store.Upsert(ctx, reg)
}

func testPagination() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func newTestBlobs(t *testing.T) storage.System {
	t.Helper()
	blobs, err := storage.New(&storage.Config{Provider: storage.ProviderFilesystem, Root: t.TempDir()}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	return blobs
}

func newTestSystem(t *testing.T, store Store, identifier Identifier, seed Seeder) *system {
	t.Helper()
	if store == nil {
		store = NewMemoryStore()
	}
	if identifier == nil {
		identifier = &fakeIdentifier{}
	}
	sys := New(store, newTestBlobs(t), identifier, seed, slog.New(slog.DiscardHandler), testPagination()).(*system)
	sys.now = func() time.Time { return testNow }
	return sys
}

func samplesOf(ids ...string) Seeder {
	return func(now time.Time) []Registration {
		regs := make([]Registration, len(ids))
		for i, id := range ids {
			regs[i] = Registration{
				ID:        id,
				Timestamp: now.Add(-time.Duration(i) * time.Hour),
				IsSample:  true,
				Synced:    true,
				Status:    StatusCompleted,
			}
		}
		return regs
	}
}

func completeOne(t *testing.T, sys *system) *Registration {
	t.Helper()
	reg, err := sys.Complete(context.Background(), SaveCommand{
		Owner:   OwnerData{Name: "Sita Devi", District: "Anand"},
		Animals: []AnimalResult{{ID: "a1", Species: gateway.SpeciesCattle, AgeValue: "4"}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	return reg
}

func TestGetAllSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: NewMemoryStore(), failID: "s2"}
	sys := newTestSystem(t, store, nil, samplesOf("s1", "s2", "s3"))

	regs, err := sys.GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(regs) != 3 {
		t.Errorf("returned: got %d, want the full sample set of 3", len(regs))
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("written: got %d, want 2 after one failed write", n)
	}

	again, err := sys.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 2 {
		t.Errorf("second read reseeded: got %d records", len(again))
	}
}

func TestGetAllWithoutSeeder(t *testing.T) {
	sys := newTestSystem(t, nil, nil, nil)
	regs, err := sys.GetAll(context.Background())
	if err != nil || len(regs) != 0 {
		t.Errorf("got %d records, %v", len(regs), err)
	}
}

func TestCompletePreservesSyncedFlag(t *testing.T) {
	ctx := context.Background()
	sys := newTestSystem(t, nil, nil, nil)

	reg := completeOne(t, sys)
	if reg.Synced || reg.Status != StatusCompleted {
		t.Fatalf("new record: synced=%v status=%q", reg.Synced, reg.Status)
	}
	if reg.ID == "" || reg.Animals[0].AgeUnit != AgeYears || reg.Animals[0].Photos == nil {
		t.Errorf("defaults not applied: %+v", reg)
	}

	if err := sys.MarkSynced(ctx, reg.ID); err != nil {
		t.Fatal(err)
	}

	again, err := sys.Complete(ctx, SaveCommand{ID: reg.ID, Owner: reg.Owner, Animals: reg.Animals})
	if err != nil {
		t.Fatal(err)
	}
	if !again.Synced {
		t.Error("completing an existing record dropped its synced flag")
	}
	if !again.Timestamp.Equal(reg.Timestamp) {
		t.Errorf("timestamp changed: got %v, want %v", again.Timestamp, reg.Timestamp)
	}

	draft, err := sys.SaveDraft(ctx, SaveCommand{ID: reg.ID, Owner: reg.Owner})
	if err != nil {
		t.Fatal(err)
	}
	if draft.Synced || draft.Status != StatusDraft {
		t.Errorf("draft: synced=%v status=%q", draft.Synced, draft.Status)
	}
}

func TestCompleteValidation(t *testing.T) {
	tests := []struct {
		name string
		cmd  SaveCommand
	}{
		{"no animals", SaveCommand{Owner: OwnerData{Name: "x"}}},
		{"bad species", SaveCommand{Animals: []AnimalResult{{Species: "Goat"}}}},
		{"bad age unit", SaveCommand{Animals: []AnimalResult{{AgeUnit: "Weeks"}}}},
		{"duplicate animal ids", SaveCommand{Animals: []AnimalResult{{ID: "a"}, {ID: "a"}}}},
		{"malformed id", SaveCommand{ID: "../etc", Animals: []AnimalResult{{}}}},
	}

	sys := newTestSystem(t, nil, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sys.Complete(context.Background(), tt.cmd); !errors.Is(err, ErrInvalidRegistration) {
				t.Errorf("got %v, want ErrInvalidRegistration", err)
			}
		})
	}

	if _, err := sys.SaveDraft(context.Background(), SaveCommand{}); err != nil {
		t.Errorf("empty draft: %v", err)
	}
}

func TestCompleteCarriesOverAnimalData(t *testing.T) {
	ctx := context.Background()
	sys := newTestSystem(t, nil, nil, nil)
	reg := completeOne(t, sys)

	photo, err := sys.UploadPhoto(ctx, reg.ID, "a1", UploadCommand{Data: pngHeader, Filename: "cow.png"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	updated, err := sys.Complete(ctx, SaveCommand{
		ID:      reg.ID,
		Owner:   reg.Owner,
		Animals: []AnimalResult{{ID: "a1", Species: gateway.SpeciesCattle, AgeValue: "5"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Animals[0].Photos) != 1 || updated.Animals[0].Photos[0].ID != photo.ID {
		t.Errorf("photos not carried over: %+v", updated.Animals[0].Photos)
	}
	if updated.Animals[0].AgeValue != "5" {
		t.Errorf("age value: got %q", updated.Animals[0].AgeValue)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seed := []*Registration{
		{ID: "r1", Timestamp: testNow.Add(-3 * time.Hour), Owner: OwnerData{Name: "Arjun", District: "Pune", State: "Maharashtra"}, Status: StatusCompleted,
			Animals: []AnimalResult{{ID: "a", Species: "Cattle", AIResult: gateway.IdentificationResult{BreedName: "Gir"}}}},
		{ID: "r2", Timestamp: testNow.Add(-1 * time.Hour), Owner: OwnerData{Name: "Meena", District: "Karnal", Mobile: "9812345678"}, Status: StatusCompleted, Synced: true,
			Animals: []AnimalResult{{ID: "a", Species: "Buffalo", AIResult: gateway.IdentificationResult{BreedName: "Murrah"}}}},
		{ID: "r3", Timestamp: testNow.Add(-2 * time.Hour), Owner: OwnerData{Name: "Kiran", Village: "Girwar"}, Status: StatusDraft},
	}
	for _, reg := range seed {
		if err := store.Upsert(ctx, reg); err != nil {
			t.Fatal(err)
		}
	}
	sys := newTestSystem(t, store, nil, nil)

	str := func(s string) *string { return &s }
	boolean := func(b bool) *bool { return &b }

	tests := []struct {
		name    string
		page    pagination.PageRequest
		filters Filters
		want    []string
	}{
		{"newest first", pagination.PageRequest{}, Filters{}, []string{"r2", "r3", "r1"}},
		{"search breed", pagination.PageRequest{Search: str("gir")}, Filters{}, []string{"r3", "r1"}},
		{"search mobile", pagination.PageRequest{Search: str("98123")}, Filters{}, []string{"r2"}},
		{"status", pagination.PageRequest{}, Filters{Status: str("draft")}, []string{"r3"}},
		{"synced", pagination.PageRequest{}, Filters{Synced: boolean(false), Status: str(StatusCompleted)}, []string{"r1"}},
		{"species", pagination.PageRequest{}, Filters{Species: str("buffalo")}, []string{"r2"}},
		{"state", pagination.PageRequest{}, Filters{State: str("maharashtra")}, []string{"r1"}},
		{"sort by owner", pagination.PageRequest{Sort: pagination.SortFields{{Field: "owner"}}}, Filters{}, []string{"r1", "r3", "r2"}},
		{"second page", pagination.PageRequest{Page: 2, PageSize: 2}, Filters{}, []string{"r1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := sys.List(ctx, tt.page, tt.filters)
			if err != nil {
				t.Fatal(err)
			}
			var got []string
			for _, reg := range result.Data {
				got = append(got, reg.ID)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	sys := newTestSystem(t, nil, nil, nil)

	if _, err := sys.Update(ctx, Registration{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v, want ErrNotFound", err)
	}

	reg := completeOne(t, sys)
	if err := sys.MarkSynced(ctx, reg.ID); err != nil {
		t.Fatal(err)
	}
	stored, _ := sys.Find(ctx, reg.ID)
	stored.Status = StatusDraft

	updated, err := sys.Update(ctx, *stored)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Synced {
		t.Error("draft kept synced flag")
	}

	stored.Status = "Archived"
	if _, err := sys.Update(ctx, *stored); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("unknown status: got %v, want ErrInvalidRegistration", err)
	}
	pending, err := sys.Unsynced(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range pending {
		if p.Status != StatusCompleted {
			t.Errorf("unsynced listed %s with status %q", p.ID, p.Status)
		}
	}
}

func TestVaccinations(t *testing.T) {
	ctx := context.Background()
	sys := newTestSystem(t, nil, nil, nil)
	reg := completeOne(t, sys)

	tests := []struct {
		name    string
		cmd     VaccinationCommand
		wantErr bool
	}{
		{"valid", VaccinationCommand{VaccineName: "FMD", AdministeredDate: "2026-05-01", DueDate: "2026-11-01"}, false},
		{"missing name", VaccinationCommand{AdministeredDate: "2026-05-01", DueDate: "2026-11-01"}, true},
		{"missing due", VaccinationCommand{VaccineName: "FMD", AdministeredDate: "2026-05-01"}, true},
		{"due equals administered", VaccinationCommand{VaccineName: "FMD", AdministeredDate: "2026-05-01", DueDate: "2026-05-01"}, true},
		{"due before administered", VaccinationCommand{VaccineName: "FMD", AdministeredDate: "2026-05-01", DueDate: "2026-04-01"}, true},
		{"administered in future", VaccinationCommand{VaccineName: "FMD", AdministeredDate: "2026-06-01", DueDate: "2026-12-01"}, true},
		{"bad format", VaccinationCommand{VaccineName: "FMD", AdministeredDate: "01/05/2026", DueDate: "2026-12-01"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := sys.AddVaccination(ctx, reg.ID, "a1", tt.cmd)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVaccination) {
					t.Errorf("got %v, want ErrInvalidVaccination", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if record.ID == "" {
				t.Error("record has no id")
			}
		})
	}

	stored, _ := sys.Find(ctx, reg.ID)
	if len(stored.Animals[0].Vaccinations) != 1 {
		t.Fatalf("vaccinations: got %d, want 1", len(stored.Animals[0].Vaccinations))
	}

	id := stored.Animals[0].Vaccinations[0].ID
	if err := sys.RemoveVaccination(ctx, reg.ID, "a1", id); err != nil {
		t.Fatal(err)
	}
	if err := sys.RemoveVaccination(ctx, reg.ID, "a1", id); !errors.Is(err, ErrVaccinationNotFound) {
		t.Errorf("second remove: got %v", err)
	}
	if _, err := sys.AddVaccination(ctx, reg.ID, "nope", tests[0].cmd); !errors.Is(err, ErrAnimalNotFound) {
		t.Errorf("unknown animal: got %v", err)
	}
}

func TestIdentifyAnimal(t *testing.T) {
	ctx := context.Background()
	identifier := &fakeIdentifier{result: gateway.IdentificationResult{
		Species:    gateway.SpeciesBuffalo,
		BreedName:  "Murrah",
		Confidence: 62,
		TopCandidates: []gateway.BreedChoice{
			{BreedName: "Murrah", ConfidencePercentage: 62},
			{BreedName: "Jaffarabadi", ConfidencePercentage: 38},
		},
	}}
	sys := newTestSystem(t, nil, identifier, nil)

	reg, err := sys.SaveDraft(ctx, SaveCommand{Animals: []AnimalResult{{ID: "a1"}}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sys.IdentifyAnimal(ctx, reg.ID, "a1"); !errors.Is(err, ErrNoPhotos) {
		t.Errorf("no photos: got %v, want ErrNoPhotos", err)
	}

	for range 2 {
		if _, err := sys.UploadPhoto(ctx, reg.ID, "a1", UploadCommand{Data: pngHeader}); err != nil {
			t.Fatal(err)
		}
	}

	animal, err := sys.IdentifyAnimal(ctx, reg.ID, "a1")
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if animal.Species != gateway.SpeciesBuffalo || animal.AIResult.BreedName != "Murrah" {
		t.Errorf("result not applied: %+v", animal)
	}
	if len(identifier.images) != 1 || len(identifier.images[0]) != 2 {
		t.Fatalf("identifier images: got %v", identifier.images)
	}
	if identifier.images[0][0].MimeType != "image/png" {
		t.Errorf("mime type: got %q", identifier.images[0][0].MimeType)
	}

	verified, err := sys.VerifyBreed(ctx, reg.ID, "a1", "jaffarabadi")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.AIResult.BreedName != "Jaffarabadi" || !verified.AIResult.IsUserVerified {
		t.Errorf("verify: %+v", verified.AIResult)
	}
	if _, err := sys.VerifyBreed(ctx, reg.ID, "a1", "Unicorn"); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("unknown breed: got %v", err)
	}
}

func TestPhotosAndAttachments(t *testing.T) {
	ctx := context.Background()
	sys := newTestSystem(t, nil, nil, nil)
	reg := completeOne(t, sys)

	if _, err := sys.UploadPhoto(ctx, reg.ID, "a1", UploadCommand{Data: []byte("plain text"), ContentType: "text/plain"}); !errors.Is(err, ErrInvalidFile) {
		t.Errorf("non-image: got %v", err)
	}

	photo, err := sys.UploadPhoto(ctx, reg.ID, "a1", UploadCommand{Data: pngHeader})
	if err != nil {
		t.Fatal(err)
	}
	blob, err := sys.DownloadPhoto(ctx, reg.ID, "a1", photo.ID)
	if err != nil {
		t.Fatal(err)
	}
	blob.Body.Close()

	pages := 2
	att, err := sys.UploadAttachment(ctx, reg.ID, UploadCommand{
		Data: []byte("%PDF-1.4"), Filename: "aadhaar.pdf", ContentType: "application/pdf",
		Kind: AttachmentOwnerID, PageCount: &pages,
	})
	if err != nil {
		t.Fatal(err)
	}
	got, blob, err := sys.DownloadAttachment(ctx, reg.ID, att.ID)
	if err != nil {
		t.Fatal(err)
	}
	blob.Body.Close()
	if got.Filename != "aadhaar.pdf" || *got.PageCount != 2 {
		t.Errorf("attachment: %+v", got)
	}

	if _, err := sys.UploadAttachment(ctx, reg.ID, UploadCommand{Data: []byte("x"), Kind: "selfie"}); !errors.Is(err, ErrInvalidFile) {
		t.Errorf("bad kind: got %v", err)
	}

	if err := sys.Delete(ctx, reg.ID); err != nil {
		t.Fatal(err)
	}
	if exists, _ := sys.blobs.Exists(ctx, photo.StorageKey); exists {
		t.Error("photo blob survived delete")
	}
	if exists, _ := sys.blobs.Exists(ctx, att.StorageKey); exists {
		t.Error("attachment blob survived delete")
	}
}

func TestUnsynced(t *testing.T) {
	ctx := context.Background()
	sys := newTestSystem(t, nil, nil, samplesOf("sample"))

	reg := completeOne(t, sys)
	if _, err := sys.SaveDraft(ctx, SaveCommand{}); err != nil {
		t.Fatal(err)
	}

	pending, err := sys.Unsynced(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != reg.ID {
		t.Fatalf("unsynced: got %+v", pending)
	}

	if err := sys.MarkSynced(ctx, reg.ID); err != nil {
		t.Fatal(err)
	}
	pending, _ = sys.Unsynced(ctx)
	if len(pending) != 0 {
		t.Errorf("after mark synced: got %d pending", len(pending))
	}
	if err := sys.MarkSynced(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}
}
