package ports

// Package ports defines interfaces (hexagonal ports) for client-side persistence.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
)

// TokenKey is the single storage key holding the bearer token.
const TokenKey = "jwt_token"

// ErrNotFound is returned by a KeyValueStore when a key is absent.
var ErrNotFound = errors.New("key not found")

// KeyValueStore persists small string values across client runs.
// Set and Delete are atomic per key; Delete of an absent key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
