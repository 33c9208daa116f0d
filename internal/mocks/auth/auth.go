package auth

// Package auth contains simple hand-written test doubles for client auth storage.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	"github.com/joinify/joinify-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var _ ports.KeyValueStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory key-value store for unit tests and the
// "memory" storage backend. Optional *Func hooks override behavior.
type MemoryStore struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string) error
	DeleteFunc func(ctx context.Context, key string) error

	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// NewMemoryStoreWithToken creates a MemoryStore holding token under ports.TokenKey.
func NewMemoryStoreWithToken(token string) *MemoryStore {
	m := NewMemoryStore()
	m.values[ports.TokenKey] = token
	return m
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ports.ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len returns how many keys are held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
