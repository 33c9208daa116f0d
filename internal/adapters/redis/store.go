// Package redis keeps client storage keys in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/joinify/joinify-go/internal/ports"
)

// DefaultPrefix namespaces client keys inside a shared Redis.
const DefaultPrefix = "joinify:"

// Store implements ports.KeyValueStore on any go-redis client (single node,
// sentinel or cluster). Keys never expire.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.KeyValueStore = (*Store)(nil)

// NewStore returns a Store using DefaultPrefix.
func NewStore(client redis.UniversalClient) *Store {
	return NewStoreWithPrefix(client, DefaultPrefix)
}

// NewStoreWithPrefix returns a Store that prepends prefix to every key.
func NewStoreWithPrefix(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ports.ErrNotFound
	}
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ports.ErrNotFound
	case err != nil:
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
