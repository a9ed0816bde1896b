// Package samples generates the demonstration registrations written to an
// empty local store.
package samples

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/pashuvision/internal/breeds"
	"github.com/JaimeStill/pashuvision/internal/gateway"
	"github.com/JaimeStill/pashuvision/internal/registrations"
)

// Sizes of the generated set.
const (
	Records     = 115
	UserRecords = 5
)

const window = 7 * 24 * time.Hour

// Generate builds the sample set: Records registrations with one or two
// animals followed by UserRecords single-animal registrations, all marked as
// synced samples with timestamps in the week before now. The same rng seed
// yields the same set.
func Generate(rng *rand.Rand, now time.Time) []registrations.Registration {
	g := generator{rng: rng, now: now.UTC()}
	states := make([]string, 0, len(locations))
	for s := range locations {
		states = append(states, s)
	}
	slices.Sort(states)
	g.states = states

	regs := make([]registrations.Registration, 0, Records+UserRecords)
	for i := range Records {
		count := 1
		if rng.Float64() >= 0.8 {
			count = 2
		}
		regs = append(regs, g.registration(count, func(ts time.Time) string {
			return fmt.Sprintf("reg-%d-%d", ts.UnixMilli(), i)
		}))
	}
	for i := range UserRecords {
		regs = append(regs, g.registration(1, func(ts time.Time) string {
			return fmt.Sprintf("reg-%d-user-%d", ts.UnixMilli(), i)
		}))
	}
	return regs
}

// Seeder returns a registrations.Seeder drawing from rng. A nil rng uses a
// time-seeded source.
func Seeder(rng *rand.Rand) registrations.Seeder {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>32))
	}
	var mu sync.Mutex
	return func(now time.Time) []registrations.Registration {
		mu.Lock()
		defer mu.Unlock()
		return Generate(rng, now)
	}
}

type generator struct {
	rng    *rand.Rand
	now    time.Time
	states []string
	seq    int
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func (g *generator) registration(animals int, id func(time.Time) string) registrations.Registration {
	ts := g.now.Add(-time.Duration(g.rng.Int64N(int64(window))))
	reg := registrations.Registration{
		Timestamp: ts,
		Owner:     g.owner(),
		IsSample:  true,
		Synced:    true,
		Status:    registrations.StatusCompleted,
	}
	reg.ID = id(ts)
	for range animals {
		reg.Animals = append(reg.Animals, g.animal())
	}
	return reg
}

func (g *generator) owner() registrations.OwnerData {
	state := pick(g.rng, g.states)
	return registrations.OwnerData{
		Name:          pick(g.rng, firstNames) + " " + pick(g.rng, lastNames),
		Mobile:        fmt.Sprintf("9%d", 100000000+g.rng.IntN(900000000)),
		Dob:           fmt.Sprintf("%d-%02d-%02d", 1960+g.rng.IntN(40), 1+g.rng.IntN(12), 1+g.rng.IntN(28)),
		Gender:        pick(g.rng, []string{"Male", "Female", "Other"}),
		Address:       fmt.Sprintf("%d Main Road", 10+g.rng.IntN(90)),
		Village:       pick(g.rng, villages),
		District:      pick(g.rng, locations[state]),
		State:         state,
		Pincode:       fmt.Sprintf("%d", 100000+g.rng.IntN(900000)),
		IDType:        "Aadhaar",
		IDNumber:      fmt.Sprintf("%d", 100000000000+g.rng.Int64N(900000000000)),
		CasteCategory: pick(g.rng, []string{"General", "OBC", "SC", "ST"}),
	}
}

func (g *generator) animal() registrations.AnimalResult {
	species := pick(g.rng, []string{gateway.SpeciesCattle, gateway.SpeciesBuffalo})
	breed := pick(g.rng, breeds.Names(species))

	a := registrations.AnimalResult{
		Species:  species,
		AgeUnit:  pick(g.rng, []string{registrations.AgeYears, registrations.AgeMonths}),
		Sex:      pick(g.rng, []string{"Male", "Female"}),
		Photos:   []registrations.PhotoFile{},
		AIResult: g.result(species, breed),
	}
	if a.AgeUnit == registrations.AgeYears {
		a.AgeValue = fmt.Sprint(1 + g.rng.IntN(8))
	} else {
		a.AgeValue = fmt.Sprint(6 + g.rng.IntN(6))
	}

	g.seq++
	a.ID = fmt.Sprintf("animal-%d-%d", g.now.UnixMilli(), g.seq)
	return a
}

func en(s string) gateway.TranslatableText {
	return gateway.TranslatableText{En: s}
}

// result draws an identification outcome: 10% failed, 20% low confidence
// with three candidates, 70% confident.
func (g *generator) result(species, breed string) gateway.IdentificationResult {
	outcome := g.rng.Float64()

	switch {
	case outcome < 0.1:
		msg := pick(g.rng, identifyErrors)
		return gateway.IdentificationResult{
			Error:              &msg,
			Species:            species,
			BreedName:          "Unknown",
			MilkYieldPotential: en("N/A"),
			CareNotes:          en("N/A"),
			Reasoning:          en("AI analysis could not be completed due to poor image quality."),
		}

	case outcome < 0.3:
		candidates := g.candidates(species, breed)
		c1 := 40 + g.rng.IntN(20)
		c2 := 20 + g.rng.IntN(20)
		return gateway.IdentificationResult{
			Species:            species,
			BreedName:          pick(g.rng, candidates),
			Confidence:         50 + g.rng.IntN(24),
			IsUserVerified:     true,
			MilkYieldPotential: en("Varies based on breed; requires confirmation."),
			CareNotes:          en("General care suitable for most local breeds is recommended until breed is confirmed."),
			Reasoning:          en("Visual markers are ambiguous. Key features match several breeds like " + strings.Join(candidates, ", ") + "."),
			TopCandidates: []gateway.BreedChoice{
				{BreedName: candidates[0], ConfidencePercentage: c1},
				{BreedName: candidates[1], ConfidencePercentage: c2},
				{BreedName: candidates[2], ConfidencePercentage: 100 - c1 - c2},
			},
		}

	default:
		return gateway.IdentificationResult{
			Species:            species,
			BreedName:          breed,
			Confidence:         75 + g.rng.IntN(25),
			MilkYieldPotential: en(fmt.Sprintf("Average for %s is typically between 8-12 liters/day.", breed)),
			CareNotes:          en(fmt.Sprintf("The %s is a hardy breed, well-suited for local climates. Ensure regular vaccinations and a balanced diet.", breed)),
			Reasoning:          en("Clear visual confirmation of breed-specific traits such as horn shape, coat color, and body structure."),
		}
	}
}

// candidates returns breed plus two distinct breeds of the same species.
func (g *generator) candidates(species, breed string) []string {
	names := breeds.Names(species)
	out := []string{breed}
	for len(out) < 3 {
		if n := pick(g.rng, names); !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}
