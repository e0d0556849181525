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

// notificationSortColumns whitelists the sort keys accepted by ListPaged.
var notificationSortColumns = map[string]string{
	"sent_at": "n.sent_at",
	"read":    "n.read",
}

const notificationColumns = `
	n.id, n.message, n.channel, n.sent_at, n.delivered, n.read, n.recipient_id, n.issue_id`

// scopeNotification is the visibility predicate for notifications: admins see
// everything, residents see notifications addressed to them.
const scopeNotification = `(@scope_all OR n.recipient_id = @scope_owner)`

// NotificationRepo defines the persistence operations for notifications.
type NotificationRepo interface {
	// Create inserts a notification and returns the persisted record.
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)

	// GetByID retrieves a notification by primary key.
	// Returns domain.ErrNotFound if no notification with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error)

	// MarkRead sets read = true. Marking an already-read notification is
	// not an error and leaves the row unchanged.
	MarkRead(ctx context.Context, id uuid.UUID) (domain.Notification, error)

	// ListByRecipient returns all notifications for one user, newest first.
	ListByRecipient(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)

	// ListByIssue returns all notifications linked to one issue, newest first.
	ListByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Notification, error)

	// ListPaged returns one page of in-scope notifications plus the
	// in-scope total.
	ListPaged(ctx context.Context, scope domain.Scope, p domain.PaginationParams, sort domain.SortParams) ([]domain.Notification, int64, error)

	// Search returns in-scope notifications whose message contains the
	// query, case-insensitively, newest first.
	Search(ctx context.Context, scope domain.Scope, query string) ([]domain.Notification, error)
}

// pgNotificationRepo is the Postgres implementation of NotificationRepo.
type pgNotificationRepo struct {
	db db
}

// NewNotificationRepo constructs a NotificationRepo backed by the provided
// db connection.
func NewNotificationRepo(db db) NotificationRepo {
	return &pgNotificationRepo{db: db}
}

// Create inserts a notification row and returns the persisted record.
func (r *pgNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	const q = `
		INSERT INTO notifications (message, channel, sent_at, delivered, read, recipient_id, issue_id)
		VALUES (@message, @channel, @sent_at, @delivered, @read, @recipient_id, @issue_id)
		RETURNING id, message, channel, sent_at, delivered, read, recipient_id, issue_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"message":      n.Message,
		"channel":      string(n.Channel),
		"sent_at":      n.SentAt,
		"delivered":    n.Delivered,
		"read":         n.Read,
		"recipient_id": n.RecipientID,
		"issue_id":     n.IssueID,
	})
	result, err := scanNotification(row)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a notification by primary key.
func (r *pgNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications n WHERE n.id = @id`

	result, err := scanNotification(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.GetByID: %w", err)
	}
	return result, nil
}

// MarkRead flips read to true. The statement is idempotent by construction.
func (r *pgNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	const q = `
		UPDATE notifications n
		SET read = true
		WHERE n.id = @id
		RETURNING n.id, n.message, n.channel, n.sent_at, n.delivered, n.read, n.recipient_id, n.issue_id`

	result, err := scanNotification(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.MarkRead: %w", err)
	}
	return result, nil
}

// ListByRecipient returns all notifications for one user, newest first.
func (r *pgNotificationRepo) ListByRecipient(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	q := `SELECT ` + notificationColumns + `
		FROM notifications n
		WHERE n.recipient_id = @user_id
		ORDER BY n.sent_at DESC`

	result, err := r.queryNotifications(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo.ListByRecipient: %w", err)
	}
	return result, nil
}

// ListByIssue returns all notifications linked to one issue, newest first.
func (r *pgNotificationRepo) ListByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Notification, error) {
	q := `SELECT ` + notificationColumns + `
		FROM notifications n
		WHERE n.issue_id = @issue_id
		ORDER BY n.sent_at DESC`

	result, err := r.queryNotifications(ctx, q, pgx.NamedArgs{"issue_id": issueID})
	if err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo.ListByIssue: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of in-scope notifications plus the total.
func (r *pgNotificationRepo) ListPaged(ctx context.Context, scope domain.Scope, p domain.PaginationParams, sort domain.SortParams) ([]domain.Notification, int64, error) {
	countQ := `SELECT count(*) FROM notifications n WHERE ` + scopeNotification

	var total int64
	if err := r.db.QueryRow(ctx, countQ, scopeArgs(scope)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.NotificationRepo.ListPaged: count: %w", err)
	}

	q := `SELECT ` + notificationColumns + `
		FROM notifications n
		WHERE ` + scopeNotification + `
		` + orderClause(sort, notificationSortColumns, "n.sent_at DESC") + `
		LIMIT @limit OFFSET @offset`

	args := mergeArgs(scopeArgs(scope), pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	result, err := r.queryNotifications(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.NotificationRepo.ListPaged: %w", err)
	}
	return result, total, nil
}

// Search performs a case-insensitive substring match on message text within
// the in-scope subset.
func (r *pgNotificationRepo) Search(ctx context.Context, scope domain.Scope, query string) ([]domain.Notification, error) {
	q := `SELECT ` + notificationColumns + `
		FROM notifications n
		WHERE ` + scopeNotification + `
		  AND n.message ILIKE @pattern
		ORDER BY n.sent_at DESC`

	args := mergeArgs(scopeArgs(scope), pgx.NamedArgs{"pattern": "%" + query + "%"})
	result, err := r.queryNotifications(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo.Search: %w", err)
	}
	return result, nil
}

// queryNotifications runs a notification-shaped query and scans all rows.
func (r *pgNotificationRepo) queryNotifications(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return notes, nil
}

// scanNotification maps a single database row into a domain.Notification.
func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n         domain.Notification
		id        pgtype.UUID
		channel   string
		recipient pgtype.UUID
		issueID   pgtype.UUID
	)
	err := s.Scan(&id, &n.Message, &channel, &n.SentAt, &n.Delivered, &n.Read, &recipient, &issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotFound
		}
		return domain.Notification{}, err
	}
	n.ID = uuid.UUID(id.Bytes)
	n.Channel = domain.Channel(channel)
	n.RecipientID = uuid.UUID(recipient.Bytes)
	if issueID.Valid {
		iid := uuid.UUID(issueID.Bytes)
		n.IssueID = &iid
	}
	return n, nil
}
