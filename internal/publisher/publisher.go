// Package publisher notifies downstream consumers when a record has been
// stored. Production uses GCP Pub/Sub; the memory and no-op providers
// serve tests and local runs.
package publisher

import (
	"context"
	"sync"
)

// Provider pushes one stored-record notification.
type Provider interface {
	// Publish sends payload and returns the broker's message ID.
	Publish(ctx context.Context, payload any) (string, error)
	// Close releases broker resources.
	Close() error
}

// NoOpProvider drops notifications.
type NoOpProvider struct{}

// Publish does nothing.
func (NoOpProvider) Publish(context.Context, any) (string, error) { return "noop", nil }

// Close does nothing.
func (NoOpProvider) Close() error { return nil }

// MemoryProvider records published payloads for inspection in tests.
type MemoryProvider struct {
	mu       sync.Mutex
	payloads []any
}

// NewMemoryProvider builds an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{}
}

// Publish appends payload to the in-memory log.
func (m *MemoryProvider) Publish(_ context.Context, payload any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
	return "memory", nil
}

// Close does nothing.
func (m *MemoryProvider) Close() error { return nil }

// Payloads returns a copy of everything published so far.
func (m *MemoryProvider) Payloads() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.payloads...)
}
