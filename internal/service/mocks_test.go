package service_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/comunityalert/backend/internal/domain"
	"github.com/comunityalert/backend/internal/repo"
	"github.com/comunityalert/backend/internal/service"
)

// Hand-written test doubles. Each method is a function field — set only the
// ones a test needs; an unset field panics, which points straight at the
// unexpected call.

type mockIssueRepo struct {
	create          func(ctx context.Context, issue domain.Issue, tagIDs []uuid.UUID) (domain.Issue, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Issue, error)
	update          func(ctx context.Context, id uuid.UUID, in domain.UpdateIssue) (domain.Issue, error)
	updateStatus    func(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Issue, domain.Status, error)
	delete          func(ctx context.Context, id uuid.UUID) error
	attachTag       func(ctx context.Context, issueID, tagID uuid.UUID) error
	detachTag       func(ctx context.Context, issueID, tagID uuid.UUID) error
	listPaged       func(ctx context.Context, scope domain.Scope, p domain.PaginationParams, sort domain.SortParams) ([]domain.Issue, int64, error)
	search          func(ctx context.Context, scope domain.Scope, query string) ([]domain.Issue, error)
	count           func(ctx context.Context, scope domain.Scope) (int64, error)
	countByStatus   func(ctx context.Context, scope domain.Scope, status domain.Status) (int64, error)
	topNByRecency   func(ctx context.Context, scope domain.Scope, n int) ([]domain.Issue, error)
	countByCategory func(ctx context.Context, scope domain.Scope) ([]domain.CategoryCount, error)
	countByLocation func(ctx context.Context, scope domain.Scope) ([]domain.LocationCount, error)
}

func (m *mockIssueRepo) Create(ctx context.Context, issue domain.Issue, tagIDs []uuid.UUID) (domain.Issue, error) {
	return m.create(ctx, issue, tagIDs)
}
func (m *mockIssueRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Issue, error) {
	return m.getByID(ctx, id)
}
func (m *mockIssueRepo) Update(ctx context.Context, id uuid.UUID, in domain.UpdateIssue) (domain.Issue, error) {
	return m.update(ctx, id, in)
}
func (m *mockIssueRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Issue, domain.Status, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockIssueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockIssueRepo) AttachTag(ctx context.Context, issueID, tagID uuid.UUID) error {
	return m.attachTag(ctx, issueID, tagID)
}
func (m *mockIssueRepo) DetachTag(ctx context.Context, issueID, tagID uuid.UUID) error {
	return m.detachTag(ctx, issueID, tagID)
}
func (m *mockIssueRepo) ListPaged(ctx context.Context, scope domain.Scope, p domain.PaginationParams, sort domain.SortParams) ([]domain.Issue, int64, error) {
	return m.listPaged(ctx, scope, p, sort)
}
func (m *mockIssueRepo) Search(ctx context.Context, scope domain.Scope, query string) ([]domain.Issue, error) {
	return m.search(ctx, scope, query)
}
func (m *mockIssueRepo) Count(ctx context.Context, scope domain.Scope) (int64, error) {
	return m.count(ctx, scope)
}
func (m *mockIssueRepo) CountByStatus(ctx context.Context, scope domain.Scope, status domain.Status) (int64, error) {
	return m.countByStatus(ctx, scope, status)
}
func (m *mockIssueRepo) TopNByRecency(ctx context.Context, scope domain.Scope, n int) ([]domain.Issue, error) {
	return m.topNByRecency(ctx, scope, n)
}
func (m *mockIssueRepo) CountByCategory(ctx context.Context, scope domain.Scope) ([]domain.CategoryCount, error) {
	return m.countByCategory(ctx, scope)
}
func (m *mockIssueRepo) CountByLocation(ctx context.Context, scope domain.Scope) ([]domain.LocationCount, error) {
	return m.countByLocation(ctx, scope)
}

var _ repo.IssueRepo = (*mockIssueRepo)(nil)

type mockTagRepo struct {
	create       func(ctx context.Context, name, description string) (domain.Tag, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	getByName    func(ctx context.Context, name string) (domain.Tag, error)
	getByIDs     func(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error)
	list         func(ctx context.Context, activeOnly bool) ([]domain.Tag, error)
	listPaged    func(ctx context.Context, activeOnly bool, p domain.PaginationParams, sort domain.SortParams) ([]domain.Tag, int64, error)
	searchByName func(ctx context.Context, query string) ([]domain.Tag, error)
	listUsed     func(ctx context.Context) ([]domain.Tag, error)
	listUnused   func(ctx context.Context) ([]domain.Tag, error)
	update       func(ctx context.Context, id uuid.UUID, name, description string, active bool) (domain.Tag, error)
	setActive    func(ctx context.Context, id uuid.UUID, active bool) (domain.Tag, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagRepo) Create(ctx context.Context, name, description string) (domain.Tag, error) {
	return m.create(ctx, name, description)
}
func (m *mockTagRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}
func (m *mockTagRepo) GetByName(ctx context.Context, name string) (domain.Tag, error) {
	return m.getByName(ctx, name)
}
func (m *mockTagRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Tag, error) {
	return m.getByIDs(ctx, ids)
}
func (m *mockTagRepo) List(ctx context.Context, activeOnly bool) ([]domain.Tag, error) {
	return m.list(ctx, activeOnly)
}
func (m *mockTagRepo) ListPaged(ctx context.Context, activeOnly bool, p domain.PaginationParams, sort domain.SortParams) ([]domain.Tag, int64, error) {
	return m.listPaged(ctx, activeOnly, p, sort)
}
func (m *mockTagRepo) SearchByName(ctx context.Context, query string) ([]domain.Tag, error) {
	return m.searchByName(ctx, query)
}
func (m *mockTagRepo) ListUsed(ctx context.Context) ([]domain.Tag, error) {
	return m.listUsed(ctx)
}
func (m *mockTagRepo) ListUnused(ctx context.Context) ([]domain.Tag, error) {
	return m.listUnused(ctx)
}
func (m *mockTagRepo) Update(ctx context.Context, id uuid.UUID, name, description string, active bool) (domain.Tag, error) {
	return m.update(ctx, id, name, description, active)
}
func (m *mockTagRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (domain.Tag, error) {
	return m.setActive(ctx, id, active)
}
func (m *mockTagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TagRepo = (*mockTagRepo)(nil)

type mockNotificationRepo struct {
	create          func(ctx context.Context, n domain.Notification) (domain.Notification, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Notification, error)
	markRead        func(ctx context.Context, id uuid.UUID) (domain.Notification, error)
	listByRecipient func(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	listByIssue     func(ctx context.Context, issueID uuid.UUID) ([]domain.Notification, error)
	listPaged       func(ctx context.Context, scope domain.Scope, p domain.PaginationParams, sort domain.SortParams) ([]domain.Notification, int64, error)
	search          func(ctx context.Context, scope domain.Scope, query string) ([]domain.Notification, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	return m.create(ctx, n)
}
func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	return m.getByID(ctx, id)
}
func (m *mockNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	return m.markRead(ctx, id)
}
func (m *mockNotificationRepo) ListByRecipient(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	return m.listByRecipient(ctx, userID)
}
func (m *mockNotificationRepo) ListByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Notification, error) {
	return m.listByIssue(ctx, issueID)
}
func (m *mockNotificationRepo) ListPaged(ctx context.Context, scope domain.Scope, p domain.PaginationParams, sort domain.SortParams) ([]domain.Notification, int64, error) {
	return m.listPaged(ctx, scope, p, sort)
}
func (m *mockNotificationRepo) Search(ctx context.Context, scope domain.Scope, query string) ([]domain.Notification, error) {
	return m.search(ctx, scope, query)
}

var _ repo.NotificationRepo = (*mockNotificationRepo)(nil)

type mockUserRepo struct {
	getByID    func(ctx context.Context, id uuid.UUID) (domain.User, error)
	listByRole func(ctx context.Context, role domain.Role) ([]domain.User, error)
	count      func(ctx context.Context) (int64, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return m.listByRole(ctx, role)
}
func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	return m.count(ctx)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

type mockLocationRepo struct {
	getByID func(ctx context.Context, id uuid.UUID) (domain.Location, error)
	count   func(ctx context.Context) (int64, error)
}

func (m *mockLocationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Location, error) {
	return m.getByID(ctx, id)
}
func (m *mockLocationRepo) Count(ctx context.Context) (int64, error) {
	return m.count(ctx)
}

var _ repo.LocationRepo = (*mockLocationRepo)(nil)

// mockNotifier records every Send so tests can assert on fan-out behavior.
type mockNotifier struct {
	sent    []sentNotification
	sendErr error
}

type sentNotification struct {
	recipientID uuid.UUID
	issueID     *uuid.UUID
	message     string
}

func (m *mockNotifier) Send(_ context.Context, recipientID uuid.UUID, issueID *uuid.UUID, message string) (domain.Notification, error) {
	if m.sendErr != nil {
		return domain.Notification{}, m.sendErr
	}
	m.sent = append(m.sent, sentNotification{recipientID: recipientID, issueID: issueID, message: message})
	return domain.Notification{RecipientID: recipientID, IssueID: issueID, Message: message}, nil
}

var _ service.Notifier = (*mockNotifier)(nil)

// mockTagCatalog stubs the catalog slice the issue service consumes.
type mockTagCatalog struct {
	validateTagIDs func(ctx context.Context, ids []uuid.UUID) error
	getByID        func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
}

func (m *mockTagCatalog) ValidateTagIDs(ctx context.Context, ids []uuid.UUID) error {
	return m.validateTagIDs(ctx, ids)
}
func (m *mockTagCatalog) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}

var _ service.TagCatalog = (*mockTagCatalog)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
