package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/comunityalert/backend/internal/domain"
)

// tagSortColumns whitelists the sort keys accepted by the paged tag listings.
var tagSortColumns = map[string]string{
	"name":       "t.name",
	"created_at": "t.created_at",
	"active":     "t.active",
}

// tagColumns is the SELECT list shared by every tag query. The membership
// count comes from the issue_tags join table, the single authoritative
// record of the issue↔tag relation.
const tagColumns = `
	t.id, t.name, t.description, t.active,
	(SELECT count(*) FROM issue_tags it WHERE it.tag_id = t.id),
	t.created_at`

// TagRepo defines the persistence operations for the tag catalog.
type TagRepo interface {
	// Create inserts a new tag. Returns domain.ErrConflict if a tag with
	// the same name already exists (case-sensitive match).
	Create(ctx context.Context, name, description string) (domain.Tag, error)

	// GetByID retrieves a tag by primary key.
	// Returns domain.ErrNotFound if no tag with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)

	// GetByName retrieves a tag by exact name.
	GetByName(ctx context.Context, name string) (domain.Tag, error)

	// GetByIDs retrieves all tags whose id appears in ids, in no particular
	// order. Missing ids are simply absent from the result — the caller
	// decides whether that is an error.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error)

	// List returns every tag, ordered by name. activeOnly restricts the
	// result to selectable tags for resident-facing listings.
	List(ctx context.Context, activeOnly bool) ([]domain.Tag, error)

	// ListPaged returns one page of tags and the total count, honoring the
	// same activeOnly restriction as List.
	ListPaged(ctx context.Context, activeOnly bool, p domain.PaginationParams, sort domain.SortParams) ([]domain.Tag, int64, error)

	// SearchByName returns tags whose name contains the query,
	// case-insensitively, ordered by name.
	SearchByName(ctx context.Context, query string) ([]domain.Tag, error)

	// ListUsed returns tags attached to at least one issue.
	ListUsed(ctx context.Context) ([]domain.Tag, error)

	// ListUnused returns tags attached to no issue.
	ListUnused(ctx context.Context) ([]domain.Tag, error)

	// Update overwrites name, description, and active.
	// Returns domain.ErrNotFound if missing, domain.ErrConflict if the new
	// name is held by a different tag.
	Update(ctx context.Context, id uuid.UUID, name, description string, active bool) (domain.Tag, error)

	// SetActive flips only the active flag, leaving membership untouched.
	SetActive(ctx context.Context, id uuid.UUID, active bool) (domain.Tag, error)

	// Delete detaches the tag from every issue holding it, then removes the
	// tag, all in one transaction. Returns domain.ErrNotFound if missing.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db txdb
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db txdb) TagRepo {
	return &pgTagRepo{db: db}
}

// Create inserts a tag, mapping the unique-name violation to ErrConflict.
func (r *pgTagRepo) Create(ctx context.Context, name, description string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (name, description)
		VALUES (@name, @description)
		RETURNING id, name, description, active, 0::bigint, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name, "description": description})
	tag, err := scanTag(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: name %q: %w", name, domain.ErrConflict)
		}
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Create: %w", err)
	}
	return tag, nil
}

// GetByID retrieves a tag by primary key.
func (r *pgTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags t WHERE t.id = @id`

	tag, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByID: %w", err)
	}
	return tag, nil
}

// GetByName retrieves a tag by exact, case-sensitive name.
func (r *pgTagRepo) GetByName(ctx context.Context, name string) (domain.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags t WHERE t.name = @name`

	tag, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetByName: %w", err)
	}
	return tag, nil
}

// GetByIDs retrieves all tags matching the given ids.
func (r *pgTagRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags t WHERE t.id = ANY(@ids)`

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.GetByIDs: %w", err)
	}
	return tags, nil
}

// List returns all (or all active) tags ordered by name.
func (r *pgTagRepo) List(ctx context.Context, activeOnly bool) ([]domain.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags t
		WHERE (NOT @active_only OR t.active)
		ORDER BY t.name`

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{"active_only": activeOnly})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	return tags, nil
}

// ListPaged returns one page of tags plus the total matching count.
func (r *pgTagRepo) ListPaged(ctx context.Context, activeOnly bool, p domain.PaginationParams, sort domain.SortParams) ([]domain.Tag, int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM tags t WHERE (NOT @active_only OR t.active)`,
		pgx.NamedArgs{"active_only": activeOnly}).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: count: %w", err)
	}

	q := `SELECT ` + tagColumns + ` FROM tags t
		WHERE (NOT @active_only OR t.active)
		` + orderClause(sort, tagSortColumns, "t.name") + `
		LIMIT @limit OFFSET @offset`

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{
		"active_only": activeOnly,
		"limit":       p.Limit,
		"offset":      p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TagRepo.ListPaged: %w", err)
	}
	return tags, total, nil
}

// SearchByName performs a case-insensitive substring match on tag names.
func (r *pgTagRepo) SearchByName(ctx context.Context, query string) ([]domain.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags t
		WHERE t.name ILIKE @pattern
		ORDER BY t.name`

	tags, err := r.queryTags(ctx, q, pgx.NamedArgs{"pattern": "%" + query + "%"})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.SearchByName: %w", err)
	}
	return tags, nil
}

// ListUsed returns tags with at least one issue membership.
func (r *pgTagRepo) ListUsed(ctx context.Context) ([]domain.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags t
		WHERE EXISTS (SELECT 1 FROM issue_tags it WHERE it.tag_id = t.id)
		ORDER BY t.name`

	tags, err := r.queryTags(ctx, q, nil)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListUsed: %w", err)
	}
	return tags, nil
}

// ListUnused returns tags with no issue membership.
func (r *pgTagRepo) ListUnused(ctx context.Context) ([]domain.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags t
		WHERE NOT EXISTS (SELECT 1 FROM issue_tags it WHERE it.tag_id = t.id)
		ORDER BY t.name`

	tags, err := r.queryTags(ctx, q, nil)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListUnused: %w", err)
	}
	return tags, nil
}

// Update overwrites the mutable tag fields.
func (r *pgTagRepo) Update(ctx context.Context, id uuid.UUID, name, description string, active bool) (domain.Tag, error) {
	const q = `
		UPDATE tags t
		SET name = @name, description = @description, active = @active
		WHERE t.id = @id
		RETURNING ` + `t.id, t.name, t.description, t.active,
			(SELECT count(*) FROM issue_tags it WHERE it.tag_id = t.id),
			t.created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id": id, "name": name, "description": description, "active": active,
	})
	tag, err := scanTag(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Tag{}, fmt.Errorf("repo.TagRepo.Update: name %q: %w", name, domain.ErrConflict)
		}
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Update: %w", err)
	}
	return tag, nil
}

// SetActive flips the active flag only.
func (r *pgTagRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (domain.Tag, error) {
	const q = `
		UPDATE tags t
		SET active = @active
		WHERE t.id = @id
		RETURNING t.id, t.name, t.description, t.active,
			(SELECT count(*) FROM issue_tags it WHERE it.tag_id = t.id),
			t.created_at`

	tag, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "active": active}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.SetActive: %w", err)
	}
	return tag, nil
}

// Delete detaches the tag everywhere and removes it in one transaction.
// The explicit detach is redundant with the ON DELETE CASCADE on issue_tags
// but keeps the operation correct even if the constraint changes.
func (r *pgTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM issue_tags WHERE tag_id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: detach: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM tags WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.Delete: %w", domain.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: commit: %w", err)
	}
	return nil
}

// queryTags runs a tag-shaped query and scans all rows.
func (r *pgTagRepo) queryTags(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Tag, error) {
	var rows pgx.Rows
	var err error
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tags, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var (
		t  domain.Tag
		id pgtype.UUID
	)
	err := s.Scan(&id, &t.Name, &t.Description, &t.Active, &t.IssueCount, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
