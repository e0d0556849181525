package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/comunityalert/backend/internal/domain"
	"github.com/comunityalert/backend/internal/handler"
	"github.com/comunityalert/backend/internal/middleware"
)

// ---- mock IssueServicer -----------------------------------------------------

type mockIssueServicer struct {
	create       func(ctx context.Context, in domain.CreateIssue) (domain.Issue, error)
	getByID      func(ctx context.Context, id uuid.UUID) (domain.Issue, error)
	update       func(ctx context.Context, id uuid.UUID, in domain.UpdateIssue) (domain.Issue, error)
	updateStatus func(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Issue, error)
	delete       func(ctx context.Context, id uuid.UUID) error
	addTag       func(ctx context.Context, issueID, tagID uuid.UUID) (domain.Issue, error)
	removeTag    func(ctx context.Context, issueID, tagID uuid.UUID) (domain.Issue, error)
	listScoped   func(ctx context.Context, caller *domain.User, p domain.PaginationParams, sort domain.SortParams) ([]domain.Issue, int64, error)
	searchScoped func(ctx context.Context, caller *domain.User, query string) ([]domain.Issue, error)
	stats        func(ctx context.Context, caller *domain.User) (domain.DashboardStats, error)
}

func (m *mockIssueServicer) Create(ctx context.Context, in domain.CreateIssue) (domain.Issue, error) {
	return m.create(ctx, in)
}

func (m *mockIssueServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Issue, error) {
	return m.getByID(ctx, id)
}

func (m *mockIssueServicer) Update(ctx context.Context, id uuid.UUID, in domain.UpdateIssue) (domain.Issue, error) {
	return m.update(ctx, id, in)
}

func (m *mockIssueServicer) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Issue, error) {
	return m.updateStatus(ctx, id, status)
}

func (m *mockIssueServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

func (m *mockIssueServicer) AddTag(ctx context.Context, issueID, tagID uuid.UUID) (domain.Issue, error) {
	return m.addTag(ctx, issueID, tagID)
}

func (m *mockIssueServicer) RemoveTag(ctx context.Context, issueID, tagID uuid.UUID) (domain.Issue, error) {
	return m.removeTag(ctx, issueID, tagID)
}

func (m *mockIssueServicer) ListScoped(ctx context.Context, caller *domain.User, p domain.PaginationParams, sort domain.SortParams) ([]domain.Issue, int64, error) {
	return m.listScoped(ctx, caller, p, sort)
}

func (m *mockIssueServicer) SearchScoped(ctx context.Context, caller *domain.User, query string) ([]domain.Issue, error) {
	return m.searchScoped(ctx, caller, query)
}

func (m *mockIssueServicer) Stats(ctx context.Context, caller *domain.User) (domain.DashboardStats, error) {
	return m.stats(ctx, caller)
}

var _ handler.IssueServicer = (*mockIssueServicer)(nil)

// ---- mock TagServicer -------------------------------------------------------

type mockTagServicer struct {
	create     func(ctx context.Context, name, description string) (domain.Tag, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	getByName  func(ctx context.Context, name string) (domain.Tag, error)
	list       func(ctx context.Context, activeOnly bool) ([]domain.Tag, error)
	listPaged  func(ctx context.Context, activeOnly bool, p domain.PaginationParams, sort domain.SortParams) ([]domain.Tag, int64, error)
	search     func(ctx context.Context, query string) ([]domain.Tag, error)
	listUsed   func(ctx context.Context) ([]domain.Tag, error)
	listUnused func(ctx context.Context) ([]domain.Tag, error)
	update     func(ctx context.Context, id uuid.UUID, in domain.UpdateTag) (domain.Tag, error)
	activate   func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	deactivate func(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTagServicer) Create(ctx context.Context, name, description string) (domain.Tag, error) {
	return m.create(ctx, name, description)
}

func (m *mockTagServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.getByID(ctx, id)
}

func (m *mockTagServicer) GetByName(ctx context.Context, name string) (domain.Tag, error) {
	return m.getByName(ctx, name)
}

func (m *mockTagServicer) List(ctx context.Context, activeOnly bool) ([]domain.Tag, error) {
	return m.list(ctx, activeOnly)
}

func (m *mockTagServicer) ListPaged(ctx context.Context, activeOnly bool, p domain.PaginationParams, sort domain.SortParams) ([]domain.Tag, int64, error) {
	return m.listPaged(ctx, activeOnly, p, sort)
}

func (m *mockTagServicer) Search(ctx context.Context, query string) ([]domain.Tag, error) {
	return m.search(ctx, query)
}

func (m *mockTagServicer) ListUsed(ctx context.Context) ([]domain.Tag, error) {
	return m.listUsed(ctx)
}

func (m *mockTagServicer) ListUnused(ctx context.Context) ([]domain.Tag, error) {
	return m.listUnused(ctx)
}

func (m *mockTagServicer) Update(ctx context.Context, id uuid.UUID, in domain.UpdateTag) (domain.Tag, error) {
	return m.update(ctx, id, in)
}

func (m *mockTagServicer) Activate(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.activate(ctx, id)
}

func (m *mockTagServicer) Deactivate(ctx context.Context, id uuid.UUID) (domain.Tag, error) {
	return m.deactivate(ctx, id)
}

func (m *mockTagServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.TagServicer = (*mockTagServicer)(nil)

// ---- mock NotificationServicer ----------------------------------------------

type mockNotificationServicer struct {
	markAsRead   func(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Notification, error)
	byRecipient  func(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	byIssue      func(ctx context.Context, issueID uuid.UUID) ([]domain.Notification, error)
	listScoped   func(ctx context.Context, caller *domain.User, p domain.PaginationParams, sort domain.SortParams) ([]domain.Notification, int64, error)
	searchScoped func(ctx context.Context, caller *domain.User, query string) ([]domain.Notification, error)
}

func (m *mockNotificationServicer) MarkAsRead(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Notification, error) {
	return m.markAsRead(ctx, caller, id)
}

func (m *mockNotificationServicer) ByRecipient(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	return m.byRecipient(ctx, userID)
}

func (m *mockNotificationServicer) ByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Notification, error) {
	return m.byIssue(ctx, issueID)
}

func (m *mockNotificationServicer) ListScoped(ctx context.Context, caller *domain.User, p domain.PaginationParams, sort domain.SortParams) ([]domain.Notification, int64, error) {
	return m.listScoped(ctx, caller, p, sort)
}

func (m *mockNotificationServicer) SearchScoped(ctx context.Context, caller *domain.User, query string) ([]domain.Notification, error) {
	return m.searchScoped(ctx, caller, query)
}

var _ handler.NotificationServicer = (*mockNotificationServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with service mocks. Pass nil for mocks the
// test does not use.
func newHTTPHandler(issues handler.IssueServicer, tags handler.TagServicer, notes handler.NotificationServicer) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(issues, tags, notes, log).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// asUser attaches a caller identity to the request, the way the auth
// middleware would after verifying a token.
func asUser(req *http.Request, user domain.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), &user))
}

func adminUser() domain.User {
	return domain.User{
		ID:       uuid.New(),
		FullName: "Grace Uwase",
		Email:    "grace@example.com",
		Role:     domain.RoleAdmin,
	}
}

func residentUser() domain.User {
	return domain.User{
		ID:       uuid.New(),
		FullName: "Alice Mukamana",
		Email:    "alice@example.com",
		Role:     domain.RoleResident,
	}
}

func issueFixture() domain.Issue {
	return domain.Issue{
		ID:           uuid.New(),
		Title:        "Broken streetlight",
		Description:  "The light at the corner has been out for a week",
		Category:     "INFRASTRUCTURE",
		Status:       domain.StatusReported,
		DateReported: time.Now().UTC(),
	}
}

func tagFixture() domain.Tag {
	return domain.Tag{
		ID:        uuid.New(),
		Name:      "Roads",
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

func notificationFixture(recipientID uuid.UUID) domain.Notification {
	return domain.Notification{
		ID:          uuid.New(),
		Message:     "Your report Broken streetlight has been resolved",
		Channel:     domain.ChannelSystem,
		SentAt:      time.Now().UTC(),
		Delivered:   true,
		RecipientID: recipientID,
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}
