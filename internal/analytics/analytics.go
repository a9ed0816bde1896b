// Package analytics derives the dashboard figures, the vaccination health
// hub and the CSV export from the local registration store.
package analytics

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/JaimeStill/pashuvision/internal/registrations"
)

// DefaultUpcomingDays is the health hub window when none is given.
const DefaultUpcomingDays = 30

// Source supplies every stored registration.
type Source interface {
	GetAll(ctx context.Context) ([]registrations.Registration, error)
}

// Activity counts completed registrations since the start of the current
// day, week (Sunday) and month.
type Activity struct {
	Today int `json:"today"`
	Week  int `json:"week"`
	Month int `json:"month"`
}

// BreedCount is one entry of the breed distribution.
type BreedCount struct {
	Breed string `json:"breed"`
	Count int    `json:"count"`
}

// Identification counts AI outcomes across completed animals.
type Identification struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// Summary is the dashboard overview.
type Summary struct {
	TotalRegistrations int            `json:"total_registrations"`
	TotalAnimals       int            `json:"total_animals"`
	MostCommonBreed    string         `json:"most_common_breed"`
	Unsynced           int            `json:"unsynced"`
	RegisteredOwners   int            `json:"registered_owners"`
	Drafts             int            `json:"drafts"`
	Activity           Activity       `json:"activity"`
	Species            map[string]int `json:"species"`
	Breeds             []BreedCount   `json:"breeds"`
	Identification     Identification `json:"identification"`
}

// UpcomingVaccination is a vaccination due within the requested window.
// Overdue entries carry a negative DaysUntilDue.
type UpcomingVaccination struct {
	RegistrationID string `json:"registration_id"`
	OwnerName      string `json:"owner_name"`
	AnimalID       string `json:"animal_id"`
	AnimalBreed    string `json:"animal_breed"`
	VaccineName    string `json:"vaccine_name"`
	DueDate        string `json:"due_date"`
	DaysUntilDue   int    `json:"days_until_due"`
}

// System defines the public contract for analytics.
type System interface {
	Handler() *Handler
	Summary(ctx context.Context) (*Summary, error)
	Upcoming(ctx context.Context, days int) ([]UpcomingVaccination, error)
	// Recent returns completed non-sample registrations, newest first.
	Recent(ctx context.Context, limit int) ([]registrations.Registration, error)
	// Completed returns completed registrations, newest first.
	Completed(ctx context.Context) ([]registrations.Registration, error)
}

type analytics struct {
	source Source
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// New creates the analytics system. Day, week and month boundaries are
// computed in loc; nil means UTC.
func New(source Source, loc *time.Location, logger *slog.Logger) System {
	if loc == nil {
		loc = time.UTC
	}
	return &analytics{
		source: source,
		loc:    loc,
		logger: logger.With("system", "analytics"),
		now:    time.Now,
	}
}

func (a *analytics) Handler() *Handler {
	return NewHandler(a, a.logger)
}

func (a *analytics) Summary(ctx context.Context) (*Summary, error) {
	all, err := a.source.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(all, a.now().In(a.loc)), nil
}

func summarize(all []registrations.Registration, now time.Time) *Summary {
	s := &Summary{Species: map[string]int{}}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	week := today.AddDate(0, 0, -int(today.Weekday()))
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	breeds := map[string]int{}
	owners := map[string]bool{}

	for _, reg := range all {
		if !reg.Completed() {
			s.Drafts++
			continue
		}

		s.TotalRegistrations++
		s.TotalAnimals += len(reg.Animals)
		if !reg.Synced {
			s.Unsynced++
		}
		if reg.Owner.IDNumber != "" {
			owners[reg.Owner.IDNumber] = true
		}

		if !reg.Timestamp.Before(today) {
			s.Activity.Today++
		}
		if !reg.Timestamp.Before(week) {
			s.Activity.Week++
		}
		if !reg.Timestamp.Before(month) {
			s.Activity.Month++
		}

		for _, animal := range reg.Animals {
			if animal.Species != "" {
				s.Species[animal.Species]++
			}
			if animal.AIResult.Failed() {
				s.Identification.Failed++
				continue
			}
			s.Identification.Success++
			if animal.AIResult.BreedName != "" {
				breeds[animal.AIResult.BreedName]++
			}
		}
	}
	s.RegisteredOwners = len(owners)

	s.Breeds = make([]BreedCount, 0, len(breeds))
	for name, n := range breeds {
		s.Breeds = append(s.Breeds, BreedCount{Breed: name, Count: n})
	}
	slices.SortFunc(s.Breeds, func(x, y BreedCount) int {
		return cmp.Or(cmp.Compare(y.Count, x.Count), cmp.Compare(x.Breed, y.Breed))
	})

	s.MostCommonBreed = "N/A"
	if len(s.Breeds) > 0 {
		s.MostCommonBreed = s.Breeds[0].Breed
	}
	return s
}

func (a *analytics) Upcoming(ctx context.Context, days int) ([]UpcomingVaccination, error) {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	all, err := a.source.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return upcoming(all, a.now().In(a.loc), days), nil
}

func upcoming(all []registrations.Registration, now time.Time, days int) []UpcomingVaccination {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	out := make([]UpcomingVaccination, 0)
	for _, reg := range all {
		for _, animal := range reg.Animals {
			for _, vac := range animal.Vaccinations {
				// both dates are UTC midnights, so the difference is whole days
				due, err := time.Parse("2006-01-02", vac.DueDate)
				if err != nil {
					continue
				}
				diff := int(due.Sub(today).Hours()) / 24
				if diff > days {
					continue
				}
				out = append(out, UpcomingVaccination{
					RegistrationID: reg.ID,
					OwnerName:      reg.Owner.Name,
					AnimalID:       animal.ID,
					AnimalBreed:    animal.AIResult.BreedName,
					VaccineName:    vac.VaccineName,
					DueDate:        vac.DueDate,
					DaysUntilDue:   diff,
				})
			}
		}
	}

	slices.SortStableFunc(out, func(x, y UpcomingVaccination) int {
		return cmp.Compare(x.DaysUntilDue, y.DaysUntilDue)
	})
	return out
}

func (a *analytics) Recent(ctx context.Context, limit int) ([]registrations.Registration, error) {
	completed, err := a.Completed(ctx)
	if err != nil {
		return nil, err
	}
	recent := slices.DeleteFunc(completed, func(r registrations.Registration) bool { return r.IsSample })
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func (a *analytics) Completed(ctx context.Context) ([]registrations.Registration, error) {
	all, err := a.source.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	completed := slices.DeleteFunc(all, func(r registrations.Registration) bool { return !r.Completed() })
	slices.SortStableFunc(completed, func(x, y registrations.Registration) int {
		return y.Timestamp.Compare(x.Timestamp)
	})
	return completed, nil
}
