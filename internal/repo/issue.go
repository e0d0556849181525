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

// issueSortColumns whitelists the sort keys accepted by ListPaged.
var issueSortColumns = map[string]string{
	"date_reported": "i.date_reported",
	"title":         "i.title",
	"status":        "i.status",
	"category":      "i.category",
}

// issueColumns is the SELECT list shared by every issue query, joining the
// nullable location and reporter references so the domain.Issue comes back
// fully populated in one round trip (tags are a second, explicit query).
const issueColumns = `
	i.id, i.title, i.description, i.category, i.status, i.photo_url,
	i.date_reported, i.date_resolved,
	l.id, l.name, l.kind, l.code, l.parent_id,
	u.id, u.full_name, u.email, u.phone_number, u.role, u.location_id, u.created_at`

const issueFrom = `
	FROM issues i
	LEFT JOIN locations l ON l.id = i.location_id
	LEFT JOIN users u ON u.id = i.reported_by`

// scopeIssue is the visibility predicate for issues: admins see everything,
// residents see rows they reported. Appended to every scoped query so the
// rule cannot drift between lists, counts, and aggregates.
const scopeIssue = `(@scope_all OR i.reported_by = @scope_owner)`

// IssueRepo defines the persistence operations for issues and their tag
// memberships. The service layer depends on this interface, not the concrete
// Postgres implementation, which allows it to be unit-tested with a mock.
type IssueRepo interface {
	// Create inserts a new issue row plus its initial tag memberships in a
	// single transaction and returns the fully populated record.
	Create(ctx context.Context, issue domain.Issue, tagIDs []uuid.UUID) (domain.Issue, error)

	// GetByID retrieves a single issue with location, reporter, and tags
	// populated. Returns domain.ErrNotFound if no issue with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Issue, error)

	// Update overwrites title, description, category, and location reference
	// only. Returns domain.ErrNotFound if the issue does not exist.
	Update(ctx context.Context, id uuid.UUID, in domain.UpdateIssue) (domain.Issue, error)

	// UpdateStatus assigns the new status in a single atomic statement,
	// stamping date_resolved inside the same statement whenever the new
	// status is RESOLVED. It returns the updated issue and the status the
	// row held before the update. Returns domain.ErrNotFound if missing.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Issue, domain.Status, error)

	// Delete removes an issue. Tag memberships cascade away; notifications
	// keep their rows with issue_id nulled by the schema.
	Delete(ctx context.Context, id uuid.UUID) error

	// AttachTag links a tag to an issue. Idempotent — no error if already linked.
	AttachTag(ctx context.Context, issueID, tagID uuid.UUID) error

	// DetachTag unlinks a tag from an issue. Detaching a tag that is not
	// attached is a no-op; existence of both sides is the caller's concern.
	DetachTag(ctx context.Context, issueID, tagID uuid.UUID) error

	// ListPaged returns one page of in-scope issues plus the in-scope total.
	ListPaged(ctx context.Context, scope domain.Scope, p domain.PaginationParams, sort domain.SortParams) ([]domain.Issue, int64, error)

	// Search returns in-scope issues whose title, description, or category
	// contains the query, case-insensitively, newest first.
	Search(ctx context.Context, scope domain.Scope, query string) ([]domain.Issue, error)

	// Count returns the number of in-scope issues.
	Count(ctx context.Context, scope domain.Scope) (int64, error)

	// CountByStatus returns the number of in-scope issues in the given status.
	CountByStatus(ctx context.Context, scope domain.Scope, status domain.Status) (int64, error)

	// TopNByRecency returns the n most recently reported in-scope issues.
	TopNByRecency(ctx context.Context, scope domain.Scope, n int) ([]domain.Issue, error)

	// CountByCategory groups in-scope issues by category, most frequent first.
	CountByCategory(ctx context.Context, scope domain.Scope) ([]domain.CategoryCount, error)

	// CountByLocation groups in-scope issues by location display name,
	// most frequent first. Issues without a location group under
	// "Unknown location".
	CountByLocation(ctx context.Context, scope domain.Scope) ([]domain.LocationCount, error)
}

// pgIssueRepo is the Postgres implementation of IssueRepo.
type pgIssueRepo struct {
	db txdb
}

// NewIssueRepo constructs an IssueRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewIssueRepo(db txdb) IssueRepo {
	return &pgIssueRepo{db: db}
}

// Create inserts the issue and its tag links inside one transaction so a
// concurrent reader never observes the issue without its initial tags.
func (r *pgIssueRepo) Create(ctx context.Context, issue domain.Issue, tagIDs []uuid.UUID) (domain.Issue, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("repo.IssueRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `
		INSERT INTO issues (title, description, category, status, location_id, reported_by, photo_url, date_reported)
		VALUES (@title, @description, @category, @status, @location_id, @reported_by, @photo_url, @date_reported)
		RETURNING id`

	var locationID, reporterID any
	if issue.Location != nil {
		locationID = issue.Location.ID
	}
	if issue.ReportedBy != nil {
		reporterID = issue.ReportedBy.ID
	}

	var id pgtype.UUID
	err = tx.QueryRow(ctx, q, pgx.NamedArgs{
		"title":         issue.Title,
		"description":   issue.Description,
		"category":      issue.Category,
		"status":        string(issue.Status),
		"location_id":   locationID,
		"reported_by":   reporterID,
		"photo_url":     issue.PhotoURL,
		"date_reported": issue.DateReported,
	}).Scan(&id)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("repo.IssueRepo.Create: %w", err)
	}

	issueID := uuid.UUID(id.Bytes)
	for _, tagID := range tagIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO issue_tags (issue_id, tag_id)
			VALUES (@issue_id, @tag_id)
			ON CONFLICT (issue_id, tag_id) DO NOTHING`,
			pgx.NamedArgs{"issue_id": issueID, "tag_id": tagID})
		if err != nil {
			return domain.Issue{}, fmt.Errorf("repo.IssueRepo.Create: link tag: %w", err)
		}
	}

	created, err := getIssue(ctx, tx, issueID)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("repo.IssueRepo.Create: reload: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Issue{}, fmt.Errorf("repo.IssueRepo.Create: commit: %w", err)
	}
	return created, nil
}

// GetByID retrieves a fully populated issue (location, reporter, tags).
func (r *pgIssueRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Issue, error) {
	issue, err := getIssue(ctx, r.db, id)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("repo.IssueRepo.GetByID: %w", err)
	}
	return issue, nil
}

// getIssue is the shared eager-fetch used by GetByID and by the mutation
// paths that return the updated record. It always populates tags.
func getIssue(ctx context.Context, db db, id uuid.UUID) (domain.Issue, error) {
	q := `SELECT ` + issueColumns + issueFrom + ` WHERE i.id = @id`

	row := db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	issue, err := scanIssue(row)
	if err != nil {
		return domain.Issue{}, err
	}

	tags, err := tagsForIssue(ctx, db, id)
	if err != nil {
		return domain.Issue{}, err
	}
	issue.Tags = tags
	return issue, nil
}

// tagsForIssue loads the tag memberships for one issue, ordered by name.
func tagsForIssue(ctx context.Context, db db, issueID uuid.UUID) ([]domain.Tag, error) {
	const q = `
		SELECT t.id, t.name, t.description, t.active, 0, t.created_at
		FROM tags t
		JOIN issue_tags it ON it.tag_id = t.id
		WHERE it.issue_id = @issue_id
		ORDER BY t.name`

	rows, err := db.Query(ctx, q, pgx.NamedArgs{"issue_id": issueID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Update overwrites the plain-update fields and returns the updated record.
func (r *pgIssueRepo) Update(ctx context.Context, id uuid.UUID, in domain.UpdateIssue) (domain.Issue, error) {
	const q = `
		UPDATE issues
		SET title       = @title,
		    description = @description,
		    category    = @category,
		    location_id = @location_id
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":          id,
		"title":       in.Title,
		"description": in.Description,
		"category":    in.Category,
		"location_id": in.LocationID,
	})
	if err != nil {
		return domain.Issue{}, fmt.Errorf("repo.IssueRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Issue{}, fmt.Errorf("repo.IssueRepo.Update: %w", domain.ErrNotFound)
	}

	issue, err := getIssue(ctx, r.db, id)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("repo.IssueRepo.Update: reload: %w", err)
	}
	return issue, nil
}

// UpdateStatus assigns the status and stamps date_resolved in one statement.
// The CTE captures the previous status so the caller can decide whether a
// notification is due; the single UPDATE leaves no read-modify-write window
// for a concurrent writer to interleave with.
func (r *pgIssueRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Issue, domain.Status, error) {
	const q = `
		WITH prev AS (
			SELECT id, status FROM issues WHERE id = @id
		)
		UPDATE issues i
		SET status        = @status,
		    date_resolved = CASE WHEN @status = 'RESOLVED' THEN now() ELSE i.date_resolved END
		FROM prev
		WHERE i.id = prev.id
		RETURNING prev.status`

	var prevStatus string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}).Scan(&prevStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Issue{}, "", fmt.Errorf("repo.IssueRepo.UpdateStatus: %w", domain.ErrNotFound)
		}
		return domain.Issue{}, "", fmt.Errorf("repo.IssueRepo.UpdateStatus: %w", err)
	}

	issue, err := getIssue(ctx, r.db, id)
	if err != nil {
		return domain.Issue{}, "", fmt.Errorf("repo.IssueRepo.UpdateStatus: reload: %w", err)
	}
	return issue, domain.Status(prevStatus), nil
}

// Delete removes an issue by primary key.
func (r *pgIssueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM issues WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.IssueRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.IssueRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// AttachTag links a tag to an issue. Idempotent via ON CONFLICT DO NOTHING.
func (r *pgIssueRepo) AttachTag(ctx context.Context, issueID, tagID uuid.UUID) error {
	const q = `
		INSERT INTO issue_tags (issue_id, tag_id)
		VALUES (@issue_id, @tag_id)
		ON CONFLICT (issue_id, tag_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"issue_id": issueID, "tag_id": tagID})
	if err != nil {
		return fmt.Errorf("repo.IssueRepo.AttachTag: %w", err)
	}
	return nil
}

// DetachTag unlinks a tag from an issue.
func (r *pgIssueRepo) DetachTag(ctx context.Context, issueID, tagID uuid.UUID) error {
	const q = `DELETE FROM issue_tags WHERE issue_id = @issue_id AND tag_id = @tag_id`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"issue_id": issueID, "tag_id": tagID})
	if err != nil {
		return fmt.Errorf("repo.IssueRepo.DetachTag: %w", err)
	}
	return nil
}

// ListPaged returns one page of in-scope issues plus the in-scope total.
func (r *pgIssueRepo) ListPaged(ctx context.Context, scope domain.Scope, p domain.PaginationParams, sort domain.SortParams) ([]domain.Issue, int64, error) {
	countQ := `SELECT count(*) FROM issues i WHERE ` + scopeIssue

	var total int64
	if err := r.db.QueryRow(ctx, countQ, scopeArgs(scope)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.IssueRepo.ListPaged: count: %w", err)
	}

	q := `SELECT ` + issueColumns + issueFrom + `
		WHERE ` + scopeIssue + `
		` + orderClause(sort, issueSortColumns, "i.date_reported DESC") + `
		LIMIT @limit OFFSET @offset`

	args := mergeArgs(scopeArgs(scope), pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	issues, err := r.queryIssues(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.IssueRepo.ListPaged: %w", err)
	}
	return issues, total, nil
}

// Search performs a case-insensitive substring match over title, description,
// and category within the in-scope subset.
func (r *pgIssueRepo) Search(ctx context.Context, scope domain.Scope, query string) ([]domain.Issue, error) {
	q := `SELECT ` + issueColumns + issueFrom + `
		WHERE ` + scopeIssue + `
		  AND (i.title ILIKE @pattern OR i.description ILIKE @pattern OR i.category ILIKE @pattern)
		ORDER BY i.date_reported DESC`

	args := mergeArgs(scopeArgs(scope), pgx.NamedArgs{"pattern": "%" + query + "%"})
	issues, err := r.queryIssues(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.IssueRepo.Search: %w", err)
	}
	return issues, nil
}

// Count returns the number of in-scope issues.
func (r *pgIssueRepo) Count(ctx context.Context, scope domain.Scope) (int64, error) {
	q := `SELECT count(*) FROM issues i WHERE ` + scopeIssue

	var n int64
	if err := r.db.QueryRow(ctx, q, scopeArgs(scope)).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.IssueRepo.Count: %w", err)
	}
	return n, nil
}

// CountByStatus returns the number of in-scope issues in the given status.
func (r *pgIssueRepo) CountByStatus(ctx context.Context, scope domain.Scope, status domain.Status) (int64, error) {
	q := `SELECT count(*) FROM issues i WHERE i.status = @status AND ` + scopeIssue

	args := mergeArgs(scopeArgs(scope), pgx.NamedArgs{"status": string(status)})
	var n int64
	if err := r.db.QueryRow(ctx, q, args).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.IssueRepo.CountByStatus: %w", err)
	}
	return n, nil
}

// TopNByRecency returns the n most recently reported in-scope issues.
func (r *pgIssueRepo) TopNByRecency(ctx context.Context, scope domain.Scope, n int) ([]domain.Issue, error) {
	q := `SELECT ` + issueColumns + issueFrom + `
		WHERE ` + scopeIssue + `
		ORDER BY i.date_reported DESC
		LIMIT @limit`

	args := mergeArgs(scopeArgs(scope), pgx.NamedArgs{"limit": n})
	issues, err := r.queryIssues(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.IssueRepo.TopNByRecency: %w", err)
	}
	return issues, nil
}

// CountByCategory groups in-scope issues by category, most frequent first.
func (r *pgIssueRepo) CountByCategory(ctx context.Context, scope domain.Scope) ([]domain.CategoryCount, error) {
	q := `
		SELECT i.category, count(*)
		FROM issues i
		WHERE ` + scopeIssue + `
		GROUP BY i.category
		ORDER BY count(*) DESC, i.category`

	rows, err := r.db.Query(ctx, q, scopeArgs(scope))
	if err != nil {
		return nil, fmt.Errorf("repo.IssueRepo.CountByCategory: %w", err)
	}
	defer rows.Close()

	counts := []domain.CategoryCount{}
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("repo.IssueRepo.CountByCategory: scan: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.IssueRepo.CountByCategory: rows: %w", err)
	}
	return counts, nil
}

// CountByLocation groups in-scope issues by location display name.
func (r *pgIssueRepo) CountByLocation(ctx context.Context, scope domain.Scope) ([]domain.LocationCount, error) {
	q := `
		SELECT coalesce(l.name, 'Unknown location'), count(*)
		FROM issues i
		LEFT JOIN locations l ON l.id = i.location_id
		WHERE ` + scopeIssue + `
		GROUP BY coalesce(l.name, 'Unknown location')
		ORDER BY count(*) DESC, 1`

	rows, err := r.db.Query(ctx, q, scopeArgs(scope))
	if err != nil {
		return nil, fmt.Errorf("repo.IssueRepo.CountByLocation: %w", err)
	}
	defer rows.Close()

	counts := []domain.LocationCount{}
	for rows.Next() {
		var c domain.LocationCount
		if err := rows.Scan(&c.LocationName, &c.Count); err != nil {
			return nil, fmt.Errorf("repo.IssueRepo.CountByLocation: scan: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.IssueRepo.CountByLocation: rows: %w", err)
	}
	return counts, nil
}

// queryIssues runs an issue-shaped query and scans all rows.
func (r *pgIssueRepo) queryIssues(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Issue, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := []domain.Issue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return issues, nil
}

// scanIssue maps one joined row (issue + nullable location + nullable
// reporter) into a domain.Issue. Tags are loaded separately.
func scanIssue(s scanner) (domain.Issue, error) {
	var (
		i            domain.Issue
		id           pgtype.UUID
		status       string
		dateResolved pgtype.Timestamptz

		locID      pgtype.UUID
		locName    pgtype.Text
		locKind    pgtype.Text
		locCode    pgtype.Int4
		locParent  pgtype.UUID

		usrID      pgtype.UUID
		usrName    pgtype.Text
		usrEmail   pgtype.Text
		usrPhone   pgtype.Text
		usrRole    pgtype.Text
		usrLoc     pgtype.UUID
		usrCreated pgtype.Timestamptz
	)

	err := s.Scan(
		&id, &i.Title, &i.Description, &i.Category, &status, &i.PhotoURL,
		&i.DateReported, &dateResolved,
		&locID, &locName, &locKind, &locCode, &locParent,
		&usrID, &usrName, &usrEmail, &usrPhone, &usrRole, &usrLoc, &usrCreated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Issue{}, domain.ErrNotFound
		}
		return domain.Issue{}, err
	}

	i.ID = uuid.UUID(id.Bytes)
	i.Status = domain.Status(status)
	if dateResolved.Valid {
		t := dateResolved.Time
		i.DateResolved = &t
	}

	if locID.Valid {
		loc := domain.Location{
			ID:   uuid.UUID(locID.Bytes),
			Name: locName.String,
			Kind: locKind.String,
		}
		if locCode.Valid {
			code := int(locCode.Int32)
			loc.Code = &code
		}
		if locParent.Valid {
			parent := uuid.UUID(locParent.Bytes)
			loc.ParentID = &parent
		}
		i.Location = &loc
	}

	if usrID.Valid {
		reporter := domain.User{
			ID:          uuid.UUID(usrID.Bytes),
			FullName:    usrName.String,
			Email:       usrEmail.String,
			PhoneNumber: usrPhone.String,
			Role:        domain.Role(usrRole.String),
			CreatedAt:   usrCreated.Time,
		}
		if usrLoc.Valid {
			loc := uuid.UUID(usrLoc.Bytes)
			reporter.LocationID = &loc
		}
		i.ReportedBy = &reporter
	}

	return i, nil
}
