package kv

import (
	"context"
	"sync"
)

// MemoryBackend keeps values in a map. With a non-zero quota it behaves like browser
// localStorage: the summed size of every key and value may not exceed the quota.
type MemoryBackend struct {
	mu    sync.RWMutex
	data  map[string][]byte
	quota int64
	usage int64
}

// NewMemoryBackend creates an in-memory backend. quota <= 0 means unlimited.
func NewMemoryBackend(quota int64) *MemoryBackend {
	return &MemoryBackend{
		data:  make(map[string][]byte),
		quota: quota,
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.usage + entrySize(key, value)
	if old, ok := m.data[key]; ok {
		next -= entrySize(key, old)
	}
	if m.quota > 0 && next > m.quota {
		return capacityExceeded("memory", key, nil)
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	m.usage = next
	return nil
}

func (m *MemoryBackend) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.data[key]; ok {
		m.usage -= entrySize(key, old)
		delete(m.data, key)
	}
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}

// Usage returns the bytes currently counted against the quota.
func (m *MemoryBackend) Usage() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usage
}

func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}
