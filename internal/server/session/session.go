// Package session issues and resolves opaque authentication tokens over
// a TTL-backed key-value store.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ubonisrael/alx-files-manager/internal/server/kv"
)

// ErrNoSession is returned when a token is unknown or has expired.
var ErrNoSession = errors.New("session not found")

const keyPrefix = "auth_"

// Store maps opaque tokens to user ids with a fixed TTL. Expiry is
// enforced by the underlying store, never by callers comparing
// timestamps. Many sessions may exist per user concurrently.
type Store struct {
	kv  kv.KV
	ttl time.Duration
}

// NewStore creates a session store with the given token lifetime.
func NewStore(store kv.KV, ttl time.Duration) *Store {
	return &Store{kv: store, ttl: ttl}
}

// Create issues a fresh random token for userID and stores it with the
// configured expiry.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.kv.SetWithTTL(ctx, keyPrefix+token, userID, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Resolve returns the user id a token was issued for, or ErrNoSession.
func (s *Store) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := s.kv.Get(ctx, keyPrefix+token)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return "", ErrNoSession
		}
		return "", err
	}
	return userID, nil
}

// Revoke destroys a session. Revoking an absent token is not an error.
func (s *Store) Revoke(ctx context.Context, token string) error {
	return s.kv.Del(ctx, keyPrefix+token)
}
