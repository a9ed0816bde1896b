package samples_test

import (
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/pashuvision/internal/breeds"
	"github.com/JaimeStill/pashuvision/internal/registrations"
	"github.com/JaimeStill/pashuvision/internal/samples"
)

var now = time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestGenerateShape(t *testing.T) {
	regs := samples.Generate(seeded(7), now)

	if len(regs) != samples.Records+samples.UserRecords {
		t.Fatalf("count: got %d", len(regs))
	}

	ids := make(map[string]bool)
	users := 0
	for _, reg := range regs {
		if ids[reg.ID] {
			t.Errorf("duplicate id %s", reg.ID)
		}
		ids[reg.ID] = true

		if !reg.IsSample || !reg.Synced || reg.Status != registrations.StatusCompleted {
			t.Errorf("%s: sample=%v synced=%v status=%q", reg.ID, reg.IsSample, reg.Synced, reg.Status)
		}
		if reg.Timestamp.After(now) || reg.Timestamp.Before(now.Add(-7*24*time.Hour)) {
			t.Errorf("%s: timestamp %v outside the last week", reg.ID, reg.Timestamp)
		}
		if n := len(reg.Animals); n < 1 || n > 2 {
			t.Errorf("%s: %d animals", reg.ID, n)
		}
		if strings.Contains(reg.ID, "-user-") {
			users++
			if len(reg.Animals) != 1 {
				t.Errorf("%s: user record with %d animals", reg.ID, len(reg.Animals))
			}
		}

		o := reg.Owner
		if len(o.Mobile) != 10 || o.Mobile[0] != '9' {
			t.Errorf("%s: mobile %q", reg.ID, o.Mobile)
		}
		if len(o.IDNumber) != 12 || len(o.Pincode) != 6 || o.IDType != "Aadhaar" {
			t.Errorf("%s: owner ids %+v", reg.ID, o)
		}
		if o.State == "" || o.District == "" || o.Village == "" {
			t.Errorf("%s: location %+v", reg.ID, o)
		}
	}
	if users != samples.UserRecords {
		t.Errorf("user records: got %d", users)
	}
}

func TestGenerateResults(t *testing.T) {
	var failed, uncertain, confident int

	for _, reg := range samples.Generate(seeded(11), now) {
		for _, a := range reg.Animals {
			if _, ok := breeds.Find(a.AIResult.BreedName, a.Species); !ok && a.AIResult.Error == nil {
				t.Errorf("breed %q not in %s catalog", a.AIResult.BreedName, a.Species)
			}

			r := a.AIResult
			switch {
			case r.Error != nil:
				failed++
				if r.BreedName != "Unknown" || r.Confidence != 0 {
					t.Errorf("failed result: %+v", r)
				}
			case len(r.TopCandidates) > 0:
				uncertain++
				if r.Confidence < 50 || r.Confidence > 73 || !r.IsUserVerified {
					t.Errorf("low-confidence result: %+v", r)
				}
				sum := 0
				seen := map[string]bool{}
				for _, c := range r.TopCandidates {
					sum += c.ConfidencePercentage
					seen[c.BreedName] = true
				}
				if sum != 100 || len(seen) != 3 {
					t.Errorf("candidates: %+v", r.TopCandidates)
				}
			default:
				confident++
				if r.Confidence < 75 || r.Confidence > 99 {
					t.Errorf("confident result: %d", r.Confidence)
				}
				if !strings.Contains(r.MilkYieldPotential.En, r.BreedName) {
					t.Errorf("milk yield text: %q", r.MilkYieldPotential.En)
				}
			}
		}
	}

	if failed == 0 || uncertain == 0 || confident <= failed+uncertain {
		t.Errorf("outcome mix: failed=%d uncertain=%d confident=%d", failed, uncertain, confident)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := samples.Generate(seeded(42), now)
	b := samples.Generate(seeded(42), now)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different sets")
	}

	c := samples.Generate(seeded(43), now)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical sets")
	}
}

func TestSeeder(t *testing.T) {
	seed := samples.Seeder(nil)
	if got := len(seed(now)); got != samples.Records+samples.UserRecords {
		t.Errorf("seeder: got %d records", got)
	}
}
