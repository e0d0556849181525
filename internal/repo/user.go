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

// UserRepo exposes the read-only user lookups the core needs. User records
// are owned by the authentication collaborator; this repo never writes them.
type UserRepo interface {
	// GetByID retrieves a user by primary key.
	// Returns domain.ErrNotFound if no user with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// ListByRole returns all users holding the given role. Used for the
	// admin fan-out on issue creation.
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int64, error)
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `id, full_name, email, phone_number, role, location_id, created_at`

// GetByID retrieves a user by primary key.
func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = @id`

	user, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return user, nil
}

// ListByRole returns all users holding the given role, ordered by creation.
func (r *pgUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE role = @role ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"role": string(role)})
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.ListByRole: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.UserRepo.ListByRole: scan: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.UserRepo.ListByRole: rows: %w", err)
	}
	return users, nil
}

// Count returns the total number of users.
func (r *pgUserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.UserRepo.Count: %w", err)
	}
	return n, nil
}

// scanUser maps a single database row into a domain.User.
func scanUser(s scanner) (domain.User, error) {
	var (
		u          domain.User
		id         pgtype.UUID
		role       string
		locationID pgtype.UUID
	)
	err := s.Scan(&id, &u.FullName, &u.Email, &u.PhoneNumber, &role, &locationID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.ID = uuid.UUID(id.Bytes)
	u.Role = domain.Role(role)
	if locationID.Valid {
		loc := uuid.UUID(locationID.Bytes)
		u.LocationID = &loc
	}
	return u, nil
}
