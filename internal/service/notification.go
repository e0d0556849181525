package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/comunityalert/backend/internal/domain"
	"github.com/comunityalert/backend/internal/metrics"
	"github.com/comunityalert/backend/internal/repo"
)

// NotificationService is the single creation path for notifications. Issue
// lifecycle operations call Send as a best-effort side effect; everything
// else is the read/mark surface behind the notification feed.
type NotificationService struct {
	notes repo.NotificationRepo
	m     *metrics.Metrics
}

// NewNotificationService constructs a NotificationService. m may be nil.
func NewNotificationService(notes repo.NotificationRepo, m *metrics.Metrics) *NotificationService {
	return &NotificationService{notes: notes, m: m}
}

// Send creates and persists a system notification addressed to recipientID,
// optionally linked to an issue. Channel, delivery flag, and read flag are
// fixed here: SYSTEM, delivered, unread.
func (s *NotificationService) Send(ctx context.Context, recipientID uuid.UUID, issueID *uuid.UUID, message string) (domain.Notification, error) {
	n := domain.Notification{
		Message:     message,
		Channel:     domain.ChannelSystem,
		SentAt:      time.Now().UTC(),
		Delivered:   true,
		Read:        false,
		RecipientID: recipientID,
		IssueID:     issueID,
	}

	created, err := s.notes.Create(ctx, n)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("service.NotificationService.Send: %w", err)
	}
	s.m.NotificationSent()
	return created, nil
}

// MarkAsRead marks a notification as read on behalf of caller. Marking an
// already-read notification again is not an error. Returns ErrUnauthenticated
// without a caller, ErrForbidden when the notification belongs to someone
// else and the caller is not an administrator.
func (s *NotificationService) MarkAsRead(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Notification, error) {
	if caller == nil {
		return domain.Notification{}, fmt.Errorf("service.NotificationService.MarkAsRead: %w", domain.ErrUnauthenticated)
	}

	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("service.NotificationService.MarkAsRead: %w", err)
	}
	if !domain.ScopeFor(caller).Allows(&n.RecipientID) {
		return domain.Notification{}, fmt.Errorf("service.NotificationService.MarkAsRead: %w", domain.ErrForbidden)
	}

	updated, err := s.notes.MarkRead(ctx, id)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("service.NotificationService.MarkAsRead: %w", err)
	}
	return updated, nil
}

// ByRecipient returns all notifications addressed to one user, newest first.
// Unscoped; callers are expected to already know the owner (a user's own feed).
func (s *NotificationService) ByRecipient(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	notes, err := s.notes.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.NotificationService.ByRecipient: %w", err)
	}
	return notes, nil
}

// ByIssue returns all notifications linked to one issue, newest first.
func (s *NotificationService) ByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Notification, error) {
	notes, err := s.notes.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("service.NotificationService.ByIssue: %w", err)
	}
	return notes, nil
}

// ListScoped returns one page of notifications visible to caller. An absent
// caller yields an empty page and zero total, never an error.
func (s *NotificationService) ListScoped(ctx context.Context, caller *domain.User, p domain.PaginationParams, sort domain.SortParams) ([]domain.Notification, int64, error) {
	scope := domain.ScopeFor(caller)
	if scope.IsNone() {
		return []domain.Notification{}, 0, nil
	}

	notes, total, err := s.notes.ListPaged(ctx, scope, p, sort)
	if err != nil {
		return nil, 0, fmt.Errorf("service.NotificationService.ListScoped: %w", err)
	}
	return notes, total, nil
}

// SearchScoped matches message text, case-insensitively, within the caller's
// visible subset. An absent caller yields an empty result, never an error.
func (s *NotificationService) SearchScoped(ctx context.Context, caller *domain.User, query string) ([]domain.Notification, error) {
	scope := domain.ScopeFor(caller)
	if scope.IsNone() {
		return []domain.Notification{}, nil
	}

	notes, err := s.notes.Search(ctx, scope, query)
	if err != nil {
		return nil, fmt.Errorf("service.NotificationService.SearchScoped: %w", err)
	}
	return notes, nil
}
