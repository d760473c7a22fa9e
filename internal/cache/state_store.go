package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const GlobalKeyPrefix = "hiraya"

// GenerateCacheKey builds a namespaced key for a given service, object type
// and identifier.
func GenerateCacheKey(serviceName, objectType, identifier string) string {
	return strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
}

// StateStore keeps short-lived OAuth state tokens server-side so callbacks
// can be tied back to the login request that started them. Each state is
// single-use: consuming it removes it.
type StateStore interface {
	SaveState(ctx context.Context, state, nonce string, ttl time.Duration) error
	ConsumeState(ctx context.Context, state string) (string, bool, error)
}

type redisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore creates a StateStore backed by Redis.
func NewRedisStateStore(client *redis.Client) StateStore {
	return &redisStateStore{client: client}
}

func stateKey(state string) string {
	return GenerateCacheKey("auth", "state", state)
}

func (s *redisStateStore) SaveState(ctx context.Context, state, nonce string, ttl time.Duration) error {
	if err := s.client.Set(ctx, stateKey(state), nonce, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save oauth state: %w", err)
	}
	return nil
}

// ConsumeState atomically reads and deletes the state. The second return
// value is false when the state was never stored or has expired.
func (s *redisStateStore) ConsumeState(ctx context.Context, state string) (string, bool, error) {
	nonce, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to consume oauth state: %w", err)
	}
	return nonce, true, nil
}
