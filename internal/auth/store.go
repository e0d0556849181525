// Package auth resolves the current user from a presented bearer credential.
// It issues and verifies HS256 tokens and tracks revocations in a TokenStore,
// constructed explicitly in main — no ambient global state.
package auth

import (
	"context"
	"sync"
	"time"
)

// TokenStore records revoked token ids (jti) until their natural expiry.
// A jti absent from the store is not revoked.
type TokenStore interface {
	// Revoke marks jti revoked for ttl. A zero or negative ttl is a no-op:
	// the token is already expired and verification will reject it anyway.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryTokenStore is the in-process TokenStore used when no Redis address is
// configured. Expired entries are dropped lazily on read.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewMemoryTokenStore constructs an empty in-memory revocation store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{revoked: make(map[string]time.Time)}
}

// Revoke marks jti revoked until now+ttl.
func (s *MemoryTokenStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether jti is revoked, expiring stale entries as it goes.
func (s *MemoryTokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	s.mu.RLock()
	expiry, ok := s.revoked[jti]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		s.mu.Lock()
		delete(s.revoked, jti)
		s.mu.Unlock()
		return false, nil
	}
	return true, nil
}

var _ TokenStore = (*MemoryTokenStore)(nil)
