package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joinify/joinify-go/internal/ports"
)

// TokenStore persists the bearer token under ports.TokenKey.
// It satisfies apiclient.TokenProvider.
type TokenStore struct {
	store ports.KeyValueStore
}

// NewTokenStore constructs a TokenStore over store.
func NewTokenStore(store ports.KeyValueStore) (*TokenStore, error) {
	if store == nil {
		return nil, errors.New("key-value store is required")
	}
	return &TokenStore{store: store}, nil
}

// Token returns the stored token, or "" when none is stored.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	v, err := s.store.Get(ctx, ports.TokenKey)
	if errors.Is(err, ports.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return v, nil
}

// SetToken stores token. A blank token removes the stored one.
func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return s.RemoveToken(ctx)
	}
	if err := s.store.Set(ctx, ports.TokenKey, token); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}

// RemoveToken deletes the stored token. Removing an absent token is not an error.
func (s *TokenStore) RemoveToken(ctx context.Context) error {
	if err := s.store.Delete(ctx, ports.TokenKey); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
