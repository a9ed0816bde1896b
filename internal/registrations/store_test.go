package registrations

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "store.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLiteStore(context.Background(), db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestStores(t *testing.T) {
	stores := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": newSQLiteStore,
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := open(t)

			if n, err := store.Count(ctx); err != nil || n != 0 {
				t.Fatalf("empty count: got %d, %v", n, err)
			}

			reg := &Registration{
				ID:        "reg-2",
				Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
				Owner:     OwnerData{Name: "Ramesh Kumar", Village: "Rampur"},
				Animals:   []AnimalResult{{ID: "a1", Species: "Cattle", Photos: []PhotoFile{}}},
				Status:    StatusCompleted,
			}
			if err := store.Upsert(ctx, reg); err != nil {
				t.Fatalf("upsert: %v", err)
			}
			if err := store.Upsert(ctx, &Registration{ID: "reg-1", Status: StatusDraft}); err != nil {
				t.Fatalf("upsert second: %v", err)
			}

			reg.Synced = true
			reg.Owner.Name = "Ramesh K."
			if err := store.Upsert(ctx, reg); err != nil {
				t.Fatalf("replace: %v", err)
			}

			got, err := store.Find(ctx, "reg-2")
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if !got.Synced || got.Owner.Name != "Ramesh K." {
				t.Errorf("replace not applied: %+v", got)
			}
			if !got.Timestamp.Equal(reg.Timestamp) {
				t.Errorf("timestamp: got %v, want %v", got.Timestamp, reg.Timestamp)
			}

			all, err := store.GetAll(ctx)
			if err != nil {
				t.Fatalf("get all: %v", err)
			}
			if len(all) != 2 || all[0].ID != "reg-1" || all[1].ID != "reg-2" {
				t.Errorf("get all: got %+v", all)
			}

			if err := store.Delete(ctx, "reg-1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := store.Delete(ctx, "reg-1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second delete: got %v, want ErrNotFound", err)
			}
			if _, err := store.Find(ctx, "reg-1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("find deleted: got %v, want ErrNotFound", err)
			}
			if err := store.Upsert(ctx, &Registration{}); !errors.Is(err, ErrInvalidRegistration) {
				t.Errorf("empty id: got %v, want ErrInvalidRegistration", err)
			}
		})
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	reg := &Registration{ID: "reg-1", Animals: []AnimalResult{{ID: "a1"}}}
	if err := store.Upsert(ctx, reg); err != nil {
		t.Fatal(err)
	}
	reg.Animals[0].Species = "Buffalo"

	got, _ := store.Find(ctx, "reg-1")
	if got.Animals[0].Species != "" {
		t.Errorf("store shares caller memory: got species %q", got.Animals[0].Species)
	}
}
