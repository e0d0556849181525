package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/comunityalert/backend/internal/domain"
)

// LocationRepo exposes the read-only location lookups the core needs.
// The geographic hierarchy itself is maintained by an external collaborator.
type LocationRepo interface {
	// GetByID retrieves a location by primary key.
	// Returns domain.ErrNotFound if no location with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Location, error)

	// Count returns the total number of locations.
	Count(ctx context.Context) (int64, error)
}

// pgLocationRepo is the Postgres implementation of LocationRepo.
type pgLocationRepo struct {
	db db
}

// NewLocationRepo constructs a LocationRepo backed by the provided db connection.
func NewLocationRepo(db db) LocationRepo {
	return &pgLocationRepo{db: db}
}

// GetByID retrieves a location by primary key.
func (r *pgLocationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Location, error) {
	const q = `SELECT id, name, kind, code, parent_id FROM locations WHERE id = @id`

	var (
		loc      domain.Location
		locID    pgtype.UUID
		code     pgtype.Int4
		parentID pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).
		Scan(&locID, &loc.Name, &loc.Kind, &code, &parentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Location{}, fmt.Errorf("repo.LocationRepo.GetByID: %w", domain.ErrNotFound)
		}
		return domain.Location{}, fmt.Errorf("repo.LocationRepo.GetByID: %w", err)
	}
	loc.ID = uuid.UUID(locID.Bytes)
	if code.Valid {
		c := int(code.Int32)
		loc.Code = &c
	}
	if parentID.Valid {
		p := uuid.UUID(parentID.Bytes)
		loc.ParentID = &p
	}
	return loc, nil
}

// Count returns the total number of locations.
func (r *pgLocationRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM locations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.LocationRepo.Count: %w", err)
	}
	return n, nil
}
