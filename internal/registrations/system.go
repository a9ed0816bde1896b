package registrations

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/pashuvision/internal/breeds"
	"github.com/JaimeStill/pashuvision/internal/gateway"
	"github.com/JaimeStill/pashuvision/pkg/pagination"
	"github.com/JaimeStill/pashuvision/pkg/storage"
)

const dateLayout = "2006-01-02"

// photoLoadLimit bounds concurrent photo downloads for one identification.
const photoLoadLimit = 4

var validID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// System defines the public contract for registration operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// GetAll returns every registration, seeding the store with sample data
	// when it is empty.
	GetAll(ctx context.Context) ([]Registration, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Registration], error)
	Find(ctx context.Context, id string) (*Registration, error)
	Complete(ctx context.Context, cmd SaveCommand) (*Registration, error)
	SaveDraft(ctx context.Context, cmd SaveCommand) (*Registration, error)
	Update(ctx context.Context, reg Registration) (*Registration, error)
	Delete(ctx context.Context, id string) error

	AddVaccination(ctx context.Context, id, animalID string, cmd VaccinationCommand) (*VaccinationRecord, error)
	RemoveVaccination(ctx context.Context, id, animalID, vaccinationID string) error

	UploadPhoto(ctx context.Context, id, animalID string, cmd UploadCommand) (*PhotoFile, error)
	DownloadPhoto(ctx context.Context, id, animalID, photoID string) (*storage.Blob, error)
	RemovePhoto(ctx context.Context, id, animalID, photoID string) error
	IdentifyAnimal(ctx context.Context, id, animalID string) (*AnimalResult, error)
	VerifyBreed(ctx context.Context, id, animalID, breedName string) (*AnimalResult, error)

	UploadAttachment(ctx context.Context, id string, cmd UploadCommand) (*Attachment, error)
	DownloadAttachment(ctx context.Context, id, attachmentID string) (*Attachment, *storage.Blob, error)
	RemoveAttachment(ctx context.Context, id, attachmentID string) error

	// Unsynced returns completed registrations not yet pushed to the remote.
	Unsynced(ctx context.Context) ([]Registration, error)
	// MarkSynced re-writes the registration with synced set.
	MarkSynced(ctx context.Context, id string) error
}

// Identifier runs breed identification over an animal's photos.
type Identifier interface {
	IdentifyBreed(ctx context.Context, images []gateway.Image) gateway.IdentificationResult
}

// Seeder produces the sample records written to an empty store.
type Seeder func(now time.Time) []Registration

type system struct {
	store      Store
	blobs      storage.System
	identifier Identifier
	seed       Seeder
	logger     *slog.Logger
	pagination pagination.Config
	now        func() time.Time

	// mu serializes read-modify-write cycles against the store.
	mu     sync.Mutex
	seedMu sync.Mutex
}

// New creates the registration system. A nil seed disables sample seeding.
func New(
	store Store,
	blobs storage.System,
	identifier Identifier,
	seed Seeder,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &system{
		store:      store,
		blobs:      blobs,
		identifier: identifier,
		seed:       seed,
		logger:     logger.With("system", "registrations"),
		pagination: pagination,
		now:        time.Now,
	}
}

func (s *system) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxUploadSize)
}

func (s *system) GetAll(ctx context.Context) ([]Registration, error) {
	regs, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(regs) > 0 || s.seed == nil {
		return regs, nil
	}

	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	// another caller may have seeded while we waited
	if n, err := s.store.Count(ctx); err != nil {
		return nil, err
	} else if n > 0 {
		return s.store.GetAll(ctx)
	}

	samples := s.seed(s.now())
	written := 0
	for i := range samples {
		if err := s.store.Upsert(ctx, &samples[i]); err != nil {
			s.logger.Error("write sample registration failed", "id", samples[i].ID, "error", err)
			continue
		}
		written++
	}
	s.logger.Info("seeded sample registrations", "generated", len(samples), "written", written)
	return samples, nil
}

func (s *system) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Registration], error) {
	page.Normalize(s.pagination)

	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]Registration, 0, len(all))
	for _, reg := range all {
		if filters.Match(reg) && (page.Search == nil || matchesSearch(reg, *page.Search)) {
			matched = append(matched, reg)
		}
	}
	sortRegistrations(matched, page.Sort)

	result := pagination.Slice(matched, page)
	return &result, nil
}

func (s *system) Find(ctx context.Context, id string) (*Registration, error) {
	return s.store.Find(ctx, id)
}

func (s *system) Complete(ctx context.Context, cmd SaveCommand) (*Registration, error) {
	return s.save(ctx, cmd, StatusCompleted)
}

func (s *system) SaveDraft(ctx context.Context, cmd SaveCommand) (*Registration, error) {
	return s.save(ctx, cmd, StatusDraft)
}

// save writes a wizard result. Completing an existing record keeps its
// synced flag; drafts are never synced.
func (s *system) save(ctx context.Context, cmd SaveCommand, status string) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	reg := &Registration{
		ID:        cmd.ID,
		Timestamp: now,
		Owner:     cmd.Owner,
		Animals:   slices.Clone(cmd.Animals),
		Status:    status,
	}
	if reg.ID == "" {
		reg.ID = newRegistrationID(now)
	}
	if !validID.MatchString(reg.ID) {
		return nil, fmt.Errorf("%w: malformed id %q", ErrInvalidRegistration, reg.ID)
	}

	existing, err := s.store.Find(ctx, reg.ID)
	switch {
	case err == nil:
		if status == StatusCompleted {
			reg.Synced = existing.Synced
		}
		reg.IsSample = existing.IsSample
		reg.Attachments = existing.Attachments
		reg.Timestamp = existing.Timestamp
		carryOver(reg.Animals, existing.Animals)
	case errors.Is(err, ErrNotFound):
	default:
		return nil, err
	}
	if cmd.Timestamp != nil {
		reg.Timestamp = cmd.Timestamp.UTC()
	}

	if err := normalizeAnimals(reg.Animals); err != nil {
		return nil, err
	}
	if status == StatusCompleted {
		if err := validateCompleted(reg); err != nil {
			return nil, err
		}
	}

	reg.UpdatedAt = now
	if err := s.store.Upsert(ctx, reg); err != nil {
		return nil, err
	}

	s.logger.Info("registration saved", "id", reg.ID, "status", status, "animals", len(reg.Animals))
	return reg, nil
}

func (s *system) Update(ctx context.Context, reg Registration) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Find(ctx, reg.ID); err != nil {
		return nil, err
	}
	switch reg.Status {
	case "":
		reg.Status = StatusCompleted
	case StatusDraft, StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRegistration, reg.Status)
	}
	if err := normalizeAnimals(reg.Animals); err != nil {
		return nil, err
	}
	if reg.Completed() {
		if err := validateCompleted(&reg); err != nil {
			return nil, err
		}
	} else {
		reg.Synced = false
	}

	reg.UpdatedAt = s.now().UTC()
	if err := s.store.Upsert(ctx, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (s *system) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	for _, key := range blobKeys(reg) {
		if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("delete blob failed", "id", id, "key", key, "error", err)
		}
	}
	s.logger.Info("registration deleted", "id", id)
	return nil
}

func (s *system) AddVaccination(ctx context.Context, id, animalID string, cmd VaccinationCommand) (*VaccinationRecord, error) {
	if err := validateVaccination(cmd, s.now()); err != nil {
		return nil, err
	}

	record := VaccinationRecord{
		ID:               "vac-" + uuid.NewString(),
		VaccineName:      strings.TrimSpace(cmd.VaccineName),
		AdministeredDate: cmd.AdministeredDate,
		DueDate:          cmd.DueDate,
		Notes:            strings.TrimSpace(cmd.Notes),
	}

	err := s.mutateAnimal(ctx, id, animalID, func(_ *Registration, a *AnimalResult) error {
		a.Vaccinations = append(a.Vaccinations, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *system) RemoveVaccination(ctx context.Context, id, animalID, vaccinationID string) error {
	return s.mutateAnimal(ctx, id, animalID, func(_ *Registration, a *AnimalResult) error {
		i := slices.IndexFunc(a.Vaccinations, func(v VaccinationRecord) bool { return v.ID == vaccinationID })
		if i < 0 {
			return ErrVaccinationNotFound
		}
		a.Vaccinations = slices.Delete(a.Vaccinations, i, i+1)
		return nil
	})
}

func (s *system) UploadPhoto(ctx context.Context, id, animalID string, cmd UploadCommand) (*PhotoFile, error) {
	mime := gateway.DetectImageType(cmd.ContentType, cmd.Data)
	if mime == "" {
		return nil, fmt.Errorf("%w: photo must be an image", ErrInvalidFile)
	}

	if _, err := s.findAnimal(ctx, id, animalID); err != nil {
		return nil, err
	}

	photo := PhotoFile{
		ID:        uuid.NewString(),
		MimeType:  mime,
		SizeBytes: int64(len(cmd.Data)),
	}
	photo.StorageKey = photoKey(id, animalID, photo.ID)

	if err := s.blobs.Upload(ctx, photo.StorageKey, bytes.NewReader(cmd.Data), mime); err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	err := s.mutateAnimal(ctx, id, animalID, func(_ *Registration, a *AnimalResult) error {
		a.Photos = append(a.Photos, photo)
		return nil
	})
	if err != nil {
		s.discardBlob(ctx, photo.StorageKey)
		return nil, err
	}
	return &photo, nil
}

func (s *system) DownloadPhoto(ctx context.Context, id, animalID, photoID string) (*storage.Blob, error) {
	animal, err := s.findAnimal(ctx, id, animalID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(animal.Photos, func(p PhotoFile) bool { return p.ID == photoID })
	if i < 0 {
		return nil, ErrPhotoNotFound
	}
	return s.blobs.Download(ctx, animal.Photos[i].StorageKey)
}

func (s *system) RemovePhoto(ctx context.Context, id, animalID, photoID string) error {
	var key string
	err := s.mutateAnimal(ctx, id, animalID, func(_ *Registration, a *AnimalResult) error {
		i := slices.IndexFunc(a.Photos, func(p PhotoFile) bool { return p.ID == photoID })
		if i < 0 {
			return ErrPhotoNotFound
		}
		key = a.Photos[i].StorageKey
		a.Photos = slices.Delete(a.Photos, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}
	s.discardBlob(ctx, key)
	return nil
}

// IdentifyAnimal runs identification outside the store lock; the result is
// applied to whatever version of the record exists when it returns.
func (s *system) IdentifyAnimal(ctx context.Context, id, animalID string) (*AnimalResult, error) {
	animal, err := s.findAnimal(ctx, id, animalID)
	if err != nil {
		return nil, err
	}
	if len(animal.Photos) == 0 {
		return nil, ErrNoPhotos
	}

	images, err := s.loadImages(ctx, animal.Photos)
	if err != nil {
		return nil, err
	}

	result := s.identifier.IdentifyBreed(ctx, images)

	var updated AnimalResult
	err = s.mutateAnimal(ctx, id, animalID, func(_ *Registration, a *AnimalResult) error {
		a.AIResult = result
		if a.Species == "" && result.Species != "" {
			a.Species = result.Species
		}
		updated = *a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// VerifyBreed records the field worker's confirmed breed. The name must be
// one of the offered candidates or a catalog breed of the animal's species.
func (s *system) VerifyBreed(ctx context.Context, id, animalID, breedName string) (*AnimalResult, error) {
	breedName = strings.TrimSpace(breedName)
	if breedName == "" {
		return nil, fmt.Errorf("%w: breed name is required", ErrInvalidRegistration)
	}

	var updated AnimalResult
	err := s.mutateAnimal(ctx, id, animalID, func(_ *Registration, a *AnimalResult) error {
		offered := slices.ContainsFunc(a.AIResult.TopCandidates, func(c gateway.BreedChoice) bool {
			return strings.EqualFold(c.BreedName, breedName)
		})
		if b, ok := breeds.Find(breedName, a.Species); ok {
			breedName = b.Name
		} else if !offered {
			return fmt.Errorf("%w: unknown breed %q", ErrInvalidRegistration, breedName)
		}

		a.AIResult.BreedName = breedName
		a.AIResult.IsUserVerified = true
		if a.Species == "" {
			a.Species = a.AIResult.Species
		}
		updated = *a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *system) UploadAttachment(ctx context.Context, id string, cmd UploadCommand) (*Attachment, error) {
	kind := cmd.Kind
	if kind == "" {
		kind = AttachmentOther
	}
	switch kind {
	case AttachmentOwnerID, AttachmentCertificate, AttachmentOther:
	default:
		return nil, fmt.Errorf("%w: unknown attachment kind %q", ErrInvalidFile, kind)
	}
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidFile)
	}

	if _, err := s.store.Find(ctx, id); err != nil {
		return nil, err
	}

	att := Attachment{
		ID:          uuid.NewString(),
		Kind:        kind,
		Filename:    cmd.Filename,
		ContentType: cmd.ContentType,
		SizeBytes:   int64(len(cmd.Data)),
		PageCount:   cmd.PageCount,
		UploadedAt:  s.now().UTC(),
	}
	att.StorageKey = attachmentKey(id, att.ID)

	if err := s.blobs.Upload(ctx, att.StorageKey, bytes.NewReader(cmd.Data), att.ContentType); err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}

	err := s.mutate(ctx, id, func(reg *Registration) error {
		reg.Attachments = append(reg.Attachments, att)
		return nil
	})
	if err != nil {
		s.discardBlob(ctx, att.StorageKey)
		return nil, err
	}
	return &att, nil
}

func (s *system) DownloadAttachment(ctx context.Context, id, attachmentID string) (*Attachment, *storage.Blob, error) {
	reg, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	i := slices.IndexFunc(reg.Attachments, func(a Attachment) bool { return a.ID == attachmentID })
	if i < 0 {
		return nil, nil, ErrAttachmentNotFound
	}

	att := reg.Attachments[i]
	blob, err := s.blobs.Download(ctx, att.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return &att, blob, nil
}

func (s *system) RemoveAttachment(ctx context.Context, id, attachmentID string) error {
	var key string
	err := s.mutate(ctx, id, func(reg *Registration) error {
		i := slices.IndexFunc(reg.Attachments, func(a Attachment) bool { return a.ID == attachmentID })
		if i < 0 {
			return ErrAttachmentNotFound
		}
		key = reg.Attachments[i].StorageKey
		reg.Attachments = slices.Delete(reg.Attachments, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}
	s.discardBlob(ctx, key)
	return nil
}

func (s *system) Unsynced(ctx context.Context) ([]Registration, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]Registration, 0)
	for _, reg := range all {
		if !reg.Synced && reg.Completed() {
			pending = append(pending, reg)
		}
	}
	return pending, nil
}

func (s *system) MarkSynced(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(reg *Registration) error {
		reg.Synced = true
		return nil
	})
}

// mutate applies fn to the stored record under the store lock and writes
// the result back.
func (s *system) mutate(ctx context.Context, id string, fn func(*Registration) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	reg.UpdatedAt = s.now().UTC()
	return s.store.Upsert(ctx, reg)
}

func (s *system) mutateAnimal(ctx context.Context, id, animalID string, fn func(*Registration, *AnimalResult) error) error {
	return s.mutate(ctx, id, func(reg *Registration) error {
		animal, _ := reg.Animal(animalID)
		if animal == nil {
			return ErrAnimalNotFound
		}
		return fn(reg, animal)
	})
}

func (s *system) findAnimal(ctx context.Context, id, animalID string) (*AnimalResult, error) {
	reg, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	animal, _ := reg.Animal(animalID)
	if animal == nil {
		return nil, ErrAnimalNotFound
	}
	return animal, nil
}

func (s *system) loadImages(ctx context.Context, photos []PhotoFile) ([]gateway.Image, error) {
	images := make([]gateway.Image, len(photos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(photoLoadLimit)

	for i, p := range photos {
		g.Go(func() error {
			data, contentType, err := storage.ReadAll(gctx, s.blobs, p.StorageKey)
			if err != nil {
				return fmt.Errorf("load photo %s: %w", p.ID, err)
			}
			if contentType == "" {
				contentType = p.MimeType
			}
			images[i] = gateway.Image{Data: data, MimeType: contentType}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (s *system) discardBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("discard blob failed", "key", key, "error", err)
	}
}

func newRegistrationID(now time.Time) string {
	return fmt.Sprintf("reg-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

func photoKey(id, animalID, photoID string) string {
	return fmt.Sprintf("registrations/%s/animals/%s/photos/%s", id, animalID, photoID)
}

func attachmentKey(id, attachmentID string) string {
	return fmt.Sprintf("registrations/%s/attachments/%s", id, attachmentID)
}

func blobKeys(reg *Registration) []string {
	var keys []string
	for _, a := range reg.Animals {
		for _, p := range a.Photos {
			keys = append(keys, p.StorageKey)
		}
	}
	for _, att := range reg.Attachments {
		keys = append(keys, att.StorageKey)
	}
	return keys
}

// carryOver keeps photos, vaccinations and AI results the incoming animals
// omit when an animal with the same id already exists.
func carryOver(incoming, existing []AnimalResult) {
	for i := range incoming {
		in := &incoming[i]
		j := slices.IndexFunc(existing, func(a AnimalResult) bool { return a.ID != "" && a.ID == in.ID })
		if j < 0 {
			continue
		}
		prev := existing[j]
		if in.Photos == nil {
			in.Photos = prev.Photos
		}
		if in.Vaccinations == nil {
			in.Vaccinations = prev.Vaccinations
		}
		if !in.Identified() {
			in.AIResult = prev.AIResult
		}
	}
}

func normalizeAnimals(animals []AnimalResult) error {
	seen := make(map[string]bool, len(animals))
	for i := range animals {
		a := &animals[i]
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if !validID.MatchString(a.ID) {
			return fmt.Errorf("%w: malformed animal id %q", ErrInvalidRegistration, a.ID)
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: duplicate animal id %q", ErrInvalidRegistration, a.ID)
		}
		seen[a.ID] = true

		if a.Photos == nil {
			a.Photos = []PhotoFile{}
		}
		if a.AgeUnit == "" {
			a.AgeUnit = AgeYears
		}
	}
	return nil
}

func validateCompleted(reg *Registration) error {
	if len(reg.Animals) == 0 {
		return fmt.Errorf("%w: at least one animal is required", ErrInvalidRegistration)
	}
	for _, a := range reg.Animals {
		switch a.Species {
		case "", gateway.SpeciesCattle, gateway.SpeciesBuffalo:
		default:
			return fmt.Errorf("%w: unknown species %q", ErrInvalidRegistration, a.Species)
		}
		switch a.AgeUnit {
		case AgeYears, AgeMonths:
		default:
			return fmt.Errorf("%w: unknown age unit %q", ErrInvalidRegistration, a.AgeUnit)
		}
	}
	return nil
}

func validateVaccination(cmd VaccinationCommand, now time.Time) error {
	if strings.TrimSpace(cmd.VaccineName) == "" || cmd.AdministeredDate == "" || cmd.DueDate == "" {
		return fmt.Errorf("%w: vaccine name, administered date and due date are required", ErrInvalidVaccination)
	}

	administered, err := time.Parse(dateLayout, cmd.AdministeredDate)
	if err != nil {
		return fmt.Errorf("%w: administered date must be YYYY-MM-DD", ErrInvalidVaccination)
	}
	due, err := time.Parse(dateLayout, cmd.DueDate)
	if err != nil {
		return fmt.Errorf("%w: due date must be YYYY-MM-DD", ErrInvalidVaccination)
	}

	if !due.After(administered) {
		return fmt.Errorf("%w: due date must be after administered date", ErrInvalidVaccination)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if administered.After(today) {
		return fmt.Errorf("%w: administered date cannot be in the future", ErrInvalidVaccination)
	}
	return nil
}
