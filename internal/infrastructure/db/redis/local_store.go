package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mesi0621/storefront-gateway/internal/core/domain"
	"github.com/mesi0621/storefront-gateway/internal/core/ports"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// LocalStore implements ports.LocalStore on Redis, one hash per session.
// The hash holds the session's persisted browser-state keys (guest cart,
// credential, flags) and survives gateway restarts. Every write refreshes the
// session TTL; an idle session's state eventually expires as a whole.
type LocalStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.LocalStore = (*LocalStore)(nil)

// NewLocalStore creates a LocalStore wrapping the given Redis client.
// If ttl <= 0, defaultSessionTTL is used.
func NewLocalStore(client *redis.Client, ttl time.Duration) *LocalStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &LocalStore{client: client, ttl: ttl}
}

func (s *LocalStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	v, err := s.client.HGet(ctx, s.hashKey(sessionID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("local store get %q: %w", key, err)
	}
	return v, nil
}

func (s *LocalStore) Set(ctx context.Context, sessionID, key, value string) error {
	hk := s.hashKey(sessionID)
	if err := s.client.HSet(ctx, hk, key, value).Err(); err != nil {
		return fmt.Errorf("local store set %q: %w", key, err)
	}
	if err := s.client.Expire(ctx, hk, s.ttl).Err(); err != nil {
		return fmt.Errorf("local store expire: %w", err)
	}
	return nil
}

func (s *LocalStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := s.client.HDel(ctx, s.hashKey(sessionID), key).Err(); err != nil {
		return fmt.Errorf("local store delete %q: %w", key, err)
	}
	return nil
}

func (s *LocalStore) hashKey(sessionID string) string {
	return fmt.Sprintf("session:%s:kv", sessionID)
}
