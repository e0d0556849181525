package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/comunityalert/backend/internal/domain"
)

// Claims are the signed contents of an access token. The user id rides in the
// registered Subject claim; the role is carried so request handling does not
// need a user lookup just to branch on it.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues, verifies, and revokes HS256 bearer tokens.
// Verification checks the signature, the expiry, and the revocation store.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	store      TokenStore
}

// NewTokenService constructs a TokenService.
func NewTokenService(signingKey string, issuer string, ttl time.Duration, store TokenStore) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		store:      store,
	}
}

// Issue signs a new token for the given user.
func (s *TokenService) Issue(user domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("auth.TokenService.Issue: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string and checks it against the
// revocation store. Any failure maps to domain.ErrUnauthenticated; callers
// on optional-auth paths treat that as "no caller", not as a fault.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("auth.TokenService.Verify: %w", domain.ErrUnauthenticated)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("auth.TokenService.Verify: claims: %w", domain.ErrUnauthenticated)
	}

	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("auth.TokenService.Verify: revocation check: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("auth.TokenService.Verify: token revoked: %w", domain.ErrUnauthenticated)
	}
	return claims, nil
}

// UserID returns the subject claim as a uuid.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth.Claims.UserID: %w", domain.ErrUnauthenticated)
	}
	return id, nil
}

// Revoke invalidates a still-valid token for the remainder of its lifetime.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.Verify(ctx, tokenString)
	if err != nil {
		return fmt.Errorf("auth.TokenService.Revoke: %w", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.store.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("auth.TokenService.Revoke: %w", err)
	}
	return nil
}
