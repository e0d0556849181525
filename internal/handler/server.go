// Package handler implements the HTTP handlers for the Community Alert API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (issue.go, tag.go, notification.go, dashboard.go) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comunityalert/backend/internal/domain"
	"github.com/comunityalert/backend/internal/middleware"
)

// IssueServicer defines the business operations the issue handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type IssueServicer interface {
	Create(ctx context.Context, in domain.CreateIssue) (domain.Issue, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Issue, error)
	Update(ctx context.Context, id uuid.UUID, in domain.UpdateIssue) (domain.Issue, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Issue, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddTag(ctx context.Context, issueID, tagID uuid.UUID) (domain.Issue, error)
	RemoveTag(ctx context.Context, issueID, tagID uuid.UUID) (domain.Issue, error)
	ListScoped(ctx context.Context, caller *domain.User, p domain.PaginationParams, sort domain.SortParams) ([]domain.Issue, int64, error)
	SearchScoped(ctx context.Context, caller *domain.User, query string) ([]domain.Issue, error)
	Stats(ctx context.Context, caller *domain.User) (domain.DashboardStats, error)
}

// TagServicer defines the catalog operations the tag handlers depend on.
type TagServicer interface {
	Create(ctx context.Context, name, description string) (domain.Tag, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	GetByName(ctx context.Context, name string) (domain.Tag, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Tag, error)
	ListPaged(ctx context.Context, activeOnly bool, p domain.PaginationParams, sort domain.SortParams) ([]domain.Tag, int64, error)
	Search(ctx context.Context, query string) ([]domain.Tag, error)
	ListUsed(ctx context.Context) ([]domain.Tag, error)
	ListUnused(ctx context.Context) ([]domain.Tag, error)
	Update(ctx context.Context, id uuid.UUID, in domain.UpdateTag) (domain.Tag, error)
	Activate(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	Deactivate(ctx context.Context, id uuid.UUID) (domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotificationServicer defines the operations the notification handlers
// depend on.
type NotificationServicer interface {
	MarkAsRead(ctx context.Context, caller *domain.User, id uuid.UUID) (domain.Notification, error)
	ByRecipient(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	ByIssue(ctx context.Context, issueID uuid.UUID) ([]domain.Notification, error)
	ListScoped(ctx context.Context, caller *domain.User, p domain.PaginationParams, sort domain.SortParams) ([]domain.Notification, int64, error)
	SearchScoped(ctx context.Context, caller *domain.User, query string) ([]domain.Notification, error)
}

// Server holds the handler dependencies for all API endpoints.
type Server struct {
	issues        IssueServicer
	tags          TagServicer
	notifications NotificationServicer
	log           *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(issues IssueServicer, tags TagServicer, notifications NotificationServicer, log *slog.Logger) *Server {
	return &Server{issues: issues, tags: tags, notifications: notifications, log: log}
}

// Routes mounts every endpoint on a fresh router. Middleware (request id,
// logging, CORS, auth) is applied by the caller around this router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/issues", func(r chi.Router) {
			r.Get("/", s.ListIssues)
			r.Post("/", s.CreateIssue)
			r.Get("/search", s.SearchIssues)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetIssue)
				r.Put("/", s.UpdateIssue)
				r.Delete("/", s.adminOnly(s.DeleteIssue))
				r.Put("/status", s.adminOnly(s.UpdateIssueStatus))
				r.Get("/tags", s.ListIssueTags)
				r.Post("/tags/{tagID}", s.adminOnly(s.AddIssueTag))
				r.Delete("/tags/{tagID}", s.adminOnly(s.RemoveIssueTag))
				r.Get("/notifications", s.ListIssueNotifications)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.ListTags)
			r.Post("/", s.adminOnly(s.CreateTag))
			r.Get("/search", s.SearchTags)
			r.Get("/name/{name}", s.GetTagByName)
			r.Get("/used", s.adminOnly(s.ListUsedTags))
			r.Get("/unused", s.adminOnly(s.ListUnusedTags))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetTag)
				r.Put("/", s.adminOnly(s.UpdateTag))
				r.Delete("/", s.adminOnly(s.DeleteTag))
				r.Put("/activate", s.adminOnly(s.ActivateTag))
				r.Put("/deactivate", s.adminOnly(s.DeactivateTag))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.ListNotifications)
			r.Get("/search", s.SearchNotifications)
			r.Get("/user/{userID}", s.ListUserNotifications)
			r.Put("/{id}/read", s.MarkNotificationRead)
		})

		r.Get("/dashboard/stats", s.DashboardStats)
	})

	return r
}

// adminOnly wraps a handler with the administrator gate: 401 without a
// caller, 403 for a caller who is not an administrator.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.UserFrom(r.Context())
		if user == nil {
			s.respondError(w, r, domain.ErrUnauthenticated)
			return
		}
		if user.Role != domain.RoleAdmin {
			s.respondError(w, r, domain.ErrForbidden)
			return
		}
		next(w, r)
	}
}
