package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/comunityalert/backend/internal/auth"
	"github.com/comunityalert/backend/internal/domain"
)

type contextKey string

const currentUserKey contextKey = "current_user"

// TokenVerifier is the slice of the auth package the middleware needs.
// Satisfied by *auth.TokenService.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*auth.Claims, error)
}

// UserSource resolves a verified subject id to a full user record.
// Satisfied by repo.UserRepo.
type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// NewCurrentUser returns a middleware that resolves an optional bearer token
// into a *domain.User on the request context. Requests without a token, or
// with a token that fails verification, proceed unauthenticated: read paths
// degrade to empty scoped results and services reject where identity is
// required. Verification failures are logged at Debug, not surfaced.
func NewCurrentUser(tokens TokenVerifier, users UserSource, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Verify(r.Context(), token)
			if err != nil {
				log.DebugContext(r.Context(), "bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			id, err := claims.UserID()
			if err != nil {
				log.DebugContext(r.Context(), "bearer token subject invalid", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), id)
			if err != nil {
				log.DebugContext(r.Context(), "token subject not resolvable", "user_id", id, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), currentUserKey, &user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFrom returns the authenticated user on ctx, or nil when the request
// carried no resolvable identity.
func UserFrom(ctx context.Context) *domain.User {
	user, _ := ctx.Value(currentUserKey).(*domain.User)
	return user
}

// WithUser returns a context carrying user. Exposed for handler tests.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}
