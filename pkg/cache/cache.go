// Package cache provides the key/value stores backing per-market metadata
// lookups (tick size, neg-risk flag, fee rate). The default in-process store
// suits a single client; the Redis store lets a fleet of clients share one
// metadata view.
package cache

import (
	"context"
	"sync"
)

// Store is a string key/value cache. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Memory is an in-process Store.
type Memory struct {
	entries sync.Map
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := m.entries.Load(key)
	if !ok {
		return "", false, nil
	}
	return value.(string), true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.entries.Store(key, value)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.entries.Range(func(key, _ any) bool {
		m.entries.Delete(key)
		return true
	})
	return nil
}
