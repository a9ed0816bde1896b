package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/pashuvision/internal/registrations"
	"github.com/JaimeStill/pashuvision/pkg/pagination"
	"github.com/JaimeStill/pashuvision/pkg/query"
	"github.com/JaimeStill/pashuvision/pkg/repository"
)

// System defines the public contract for the central registry.
type System interface {
	Handler() *Handler

	// Upsert stores reg, replacing any entry with the same id.
	Upsert(ctx context.Context, reg registrations.Registration, source string) (*Entry, error)
	Find(ctx context.Context, id string) (*Entry, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Entry], error)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a registry repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "registry"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

const upsertSQL = `
	INSERT INTO registry_registrations(
		id, owner_name, mobile, id_number, village, district, state, status,
		animal_count, breeds, is_sample, source, registered_at, data)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (id) DO UPDATE SET
		owner_name = EXCLUDED.owner_name,
		mobile = EXCLUDED.mobile,
		id_number = EXCLUDED.id_number,
		village = EXCLUDED.village,
		district = EXCLUDED.district,
		state = EXCLUDED.state,
		status = EXCLUDED.status,
		animal_count = EXCLUDED.animal_count,
		breeds = EXCLUDED.breeds,
		is_sample = EXCLUDED.is_sample,
		source = EXCLUDED.source,
		registered_at = EXCLUDED.registered_at,
		data = EXCLUDED.data,
		received_at = now()
	RETURNING id, owner_name, mobile, id_number, village, district, state, status,
		animal_count, breeds, is_sample, source, registered_at, received_at, data`

func (r *repo) Upsert(ctx context.Context, reg registrations.Registration, source string) (*Entry, error) {
	if reg.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	// the registry stores the record as it was pushed, already synced
	reg.Synced = true
	entry := newEntry(reg, source)

	data, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("encode registration: %w", err)
	}

	args := []any{
		entry.ID,
		entry.OwnerName,
		entry.Mobile,
		entry.IDNumber,
		entry.Village,
		entry.District,
		entry.State,
		entry.Status,
		entry.AnimalCount,
		entry.Breeds,
		entry.IsSample,
		entry.Source,
		entry.RegisteredAt,
		data,
	}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Entry, error) {
		return repository.QueryOne(ctx, tx, upsertSQL, args, scanEntry)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}

	r.logger.Info("registry entry stored", "id", e.ID, "source", e.Source, "animals", e.AnimalCount)
	return &e, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Entry, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, nil)
	}
	return &e, nil
}

func (r *repo) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, searchFields...)

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryScalar[int](ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, fmt.Errorf("count registry entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query registry entries: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Page, page.PageSize)
	return &result, nil
}
