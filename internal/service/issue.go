// Package service contains the business logic for the Community Alert API.
// Services validate inputs, enforce business rules, and orchestrate repo
// calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comunityalert/backend/internal/domain"
	"github.com/comunityalert/backend/internal/metrics"
	"github.com/comunityalert/backend/internal/repo"
)

// Notifier is the slice of the notification dispatcher the issue lifecycle
// needs. Satisfied by *NotificationService.
type Notifier interface {
	Send(ctx context.Context, recipientID uuid.UUID, issueID *uuid.UUID, message string) (domain.Notification, error)
}

// TagCatalog is the slice of the tag catalog the issue lifecycle needs:
// selection validation at creation, plain existence lookup for attach/detach.
// Satisfied by *TagService.
type TagCatalog interface {
	ValidateTagIDs(ctx context.Context, ids []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)
}

// IssueService implements the issue lifecycle: creation with reference
// resolution, status transitions, tag membership, and the role-scoped query
// surface. Notification dispatch is strictly best-effort: a failed Send is
// logged and never surfaces to the caller or rolls back the mutation.
type IssueService struct {
	issues    repo.IssueRepo
	users     repo.UserRepo
	locations repo.LocationRepo
	tags      TagCatalog
	notifier  Notifier
	log       *slog.Logger
	m         *metrics.Metrics
}

// NewIssueService constructs an IssueService. m may be nil.
func NewIssueService(
	issues repo.IssueRepo,
	users repo.UserRepo,
	locations repo.LocationRepo,
	tags TagCatalog,
	notifier Notifier,
	log *slog.Logger,
	m *metrics.Metrics,
) *IssueService {
	return &IssueService{
		issues:    issues,
		users:     users,
		locations: locations,
		tags:      tags,
		notifier:  notifier,
		log:       log,
		m:         m,
	}
}

// Create resolves the supplied references, persists the issue, and fans a
// notification out to every administrator. Status and DateReported are
// stamped here unconditionally; any caller-supplied status is ignored.
func (s *IssueService) Create(ctx context.Context, in domain.CreateIssue) (domain.Issue, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Issue{}, fmt.Errorf("service.IssueService.Create: title is required: %w", domain.ErrValidation)
	}

	issue := domain.Issue{
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		Status:       domain.StatusReported,
		PhotoURL:     in.PhotoURL,
		DateReported: time.Now().UTC(),
	}

	if in.LocationID != nil {
		loc, err := s.locations.GetByID(ctx, *in.LocationID)
		if err != nil {
			return domain.Issue{}, fmt.Errorf("service.IssueService.Create: location: %w", err)
		}
		issue.Location = &loc
	}
	if in.ReportedByID != nil {
		reporter, err := s.users.GetByID(ctx, *in.ReportedByID)
		if err != nil {
			return domain.Issue{}, fmt.Errorf("service.IssueService.Create: reporter: %w", err)
		}
		issue.ReportedBy = &reporter
	}
	if err := s.tags.ValidateTagIDs(ctx, in.TagIDs); err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.Create: %w", err)
	}

	created, err := s.issues.Create(ctx, issue, in.TagIDs)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.Create: %w", err)
	}
	s.m.IssueCreated()

	s.notifyAdmins(ctx, created)
	return created, nil
}

// notifyAdmins fans the creation message out to every administrator.
// Failures are logged and swallowed: issue creation is already committed.
func (s *IssueService) notifyAdmins(ctx context.Context, issue domain.Issue) {
	admins, err := s.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		s.log.ErrorContext(ctx, "admin fan-out: listing admins failed",
			"issue_id", issue.ID, "error", err)
		return
	}

	reporterName := "Unknown reporter"
	if issue.ReportedBy != nil {
		reporterName = issue.ReportedBy.DisplayName()
	}
	locationName := "Unknown location"
	if issue.Location != nil {
		locationName = issue.Location.Name
	}
	message := fmt.Sprintf("New issue reported: %s by %s in %s", issue.Title, reporterName, locationName)

	for _, admin := range admins {
		if _, err := s.notifier.Send(ctx, admin.ID, &issue.ID, message); err != nil {
			s.log.ErrorContext(ctx, "admin fan-out: notification failed",
				"issue_id", issue.ID, "recipient_id", admin.ID, "error", err)
		}
	}
}

// GetByID returns a single issue with location, reporter, and tags populated.
func (s *IssueService) GetByID(ctx context.Context, id uuid.UUID) (domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.GetByID: %w", err)
	}
	return issue, nil
}

// UpdateStatus assigns the new status unconditionally; every status is
// reachable from every other. Entering RESOLVED stamps DateResolved, which is
// never cleared afterwards. When the status actually changed and the issue
// has a reporter, the reporter gets a status-specific notification,
// best-effort.
func (s *IssueService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Issue, error) {
	if !status.Valid() {
		return domain.Issue{}, fmt.Errorf("service.IssueService.UpdateStatus: unknown status %q: %w", status, domain.ErrValidation)
	}

	issue, prev, err := s.issues.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.UpdateStatus: %w", err)
	}

	if prev != status && issue.ReportedBy != nil {
		message := statusMessage(issue.Title, prev, status)
		if _, err := s.notifier.Send(ctx, issue.ReportedBy.ID, &issue.ID, message); err != nil {
			s.log.ErrorContext(ctx, "status change notification failed",
				"issue_id", issue.ID, "recipient_id", issue.ReportedBy.ID, "error", err)
		}
	}
	return issue, nil
}

// statusMessage composes the reporter-facing text for a status change.
func statusMessage(title string, from, to domain.Status) string {
	switch to {
	case domain.StatusInProgress:
		return fmt.Sprintf("Your issue %q is now being processed", title)
	case domain.StatusResolved:
		return fmt.Sprintf("Your issue %q has been resolved", title)
	case domain.StatusReported:
		return fmt.Sprintf("Your issue %q status has been updated to Reported", title)
	default:
		return fmt.Sprintf("Your issue %q was updated from %s to %s", title, from, to)
	}
}

// AddTag attaches a tag to an issue and returns the updated issue. Fails with
// ErrNotFound if either side is missing. Deactivated tags may still be
// attached here; deactivation only blocks selection at creation time.
func (s *IssueService) AddTag(ctx context.Context, issueID, tagID uuid.UUID) (domain.Issue, error) {
	if _, err := s.issues.GetByID(ctx, issueID); err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.AddTag: issue: %w", err)
	}
	if _, err := s.tags.GetByID(ctx, tagID); err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.AddTag: tag: %w", err)
	}
	if err := s.issues.AttachTag(ctx, issueID, tagID); err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.AddTag: %w", err)
	}

	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.AddTag: reload: %w", err)
	}
	return issue, nil
}

// RemoveTag detaches a tag from an issue and returns the updated issue.
// Fails with ErrNotFound if either side is missing.
func (s *IssueService) RemoveTag(ctx context.Context, issueID, tagID uuid.UUID) (domain.Issue, error) {
	if _, err := s.issues.GetByID(ctx, issueID); err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.RemoveTag: issue: %w", err)
	}
	if _, err := s.tags.GetByID(ctx, tagID); err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.RemoveTag: tag: %w", err)
	}
	if err := s.issues.DetachTag(ctx, issueID, tagID); err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.RemoveTag: %w", err)
	}

	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.RemoveTag: reload: %w", err)
	}
	return issue, nil
}

// Update replaces title, description, category, and location reference only.
// Status, dates, reporter, and tags change through their dedicated operations.
func (s *IssueService) Update(ctx context.Context, id uuid.UUID, in domain.UpdateIssue) (domain.Issue, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Issue{}, fmt.Errorf("service.IssueService.Update: title is required: %w", domain.ErrValidation)
	}
	if in.LocationID != nil {
		if _, err := s.locations.GetByID(ctx, *in.LocationID); err != nil {
			return domain.Issue{}, fmt.Errorf("service.IssueService.Update: location: %w", err)
		}
	}

	issue, err := s.issues.Update(ctx, id, in)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("service.IssueService.Update: %w", err)
	}
	return issue, nil
}

// Delete removes an issue unconditionally. Tag memberships go with it;
// notifications keep their rows with the issue reference nulled.
func (s *IssueService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.issues.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.IssueService.Delete: %w", err)
	}
	return nil
}

// ListScoped returns one page of issues visible to caller. An absent caller
// yields an empty page and zero total, never an error.
func (s *IssueService) ListScoped(ctx context.Context, caller *domain.User, p domain.PaginationParams, sort domain.SortParams) ([]domain.Issue, int64, error) {
	scope := domain.ScopeFor(caller)
	if scope.IsNone() {
		return []domain.Issue{}, 0, nil
	}

	issues, total, err := s.issues.ListPaged(ctx, scope, p, sort)
	if err != nil {
		return nil, 0, fmt.Errorf("service.IssueService.ListScoped: %w", err)
	}
	return issues, total, nil
}

// SearchScoped matches title, description, and category, case-insensitively,
// within the caller's visible subset. An absent caller yields an empty
// result, never an error.
func (s *IssueService) SearchScoped(ctx context.Context, caller *domain.User, query string) ([]domain.Issue, error) {
	scope := domain.ScopeFor(caller)
	if scope.IsNone() {
		return []domain.Issue{}, nil
	}

	issues, err := s.issues.Search(ctx, scope, query)
	if err != nil {
		return nil, fmt.Errorf("service.IssueService.SearchScoped: %w", err)
	}
	return issues, nil
}

// Stats computes the dashboard aggregate over the caller's visible subset.
// An absent caller yields the zero value with empty slices. User and location
// totals are filled in for administrators only.
func (s *IssueService) Stats(ctx context.Context, caller *domain.User) (domain.DashboardStats, error) {
	scope := domain.ScopeFor(caller)
	if scope.IsNone() {
		return domain.EmptyDashboardStats(), nil
	}

	stats := domain.EmptyDashboardStats()
	var err error

	if stats.TotalIssues, err = s.issues.Count(ctx, scope); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.IssueService.Stats: total: %w", err)
	}
	if stats.ReportedIssues, err = s.issues.CountByStatus(ctx, scope, domain.StatusReported); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.IssueService.Stats: reported: %w", err)
	}
	if stats.InProgressIssues, err = s.issues.CountByStatus(ctx, scope, domain.StatusInProgress); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.IssueService.Stats: in progress: %w", err)
	}
	if stats.ResolvedIssues, err = s.issues.CountByStatus(ctx, scope, domain.StatusResolved); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.IssueService.Stats: resolved: %w", err)
	}
	if stats.RecentIssues, err = s.issues.TopNByRecency(ctx, scope, 5); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.IssueService.Stats: recent: %w", err)
	}
	if stats.IssuesByCategory, err = s.issues.CountByCategory(ctx, scope); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.IssueService.Stats: by category: %w", err)
	}
	if stats.IssuesByLocation, err = s.issues.CountByLocation(ctx, scope); err != nil {
		return domain.DashboardStats{}, fmt.Errorf("service.IssueService.Stats: by location: %w", err)
	}

	if scope.IsAll() {
		if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
			return domain.DashboardStats{}, fmt.Errorf("service.IssueService.Stats: users: %w", err)
		}
		if stats.TotalLocations, err = s.locations.Count(ctx); err != nil {
			return domain.DashboardStats{}, fmt.Errorf("service.IssueService.Stats: locations: %w", err)
		}
	}
	return stats, nil
}
