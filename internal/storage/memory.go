package storage

import (
	"context"
	"sync"
)

// MemoryProvider keeps payloads in a map. For tests and development.
type MemoryProvider struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryProvider builds an empty in-memory store.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: make(map[string][]byte)}
}

// Save copies data into the map.
func (m *MemoryProvider) Save(_ context.Context, key string, data []byte) (ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return ObjectInfo{
		Bucket: "memory",
		Key:    key,
		Size:   int64(len(data)),
		SHA256: digest(data),
	}, nil
}

// Get returns the stored payload for key.
func (m *MemoryProvider) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	return data, ok
}

// Len reports how many objects are stored.
func (m *MemoryProvider) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
