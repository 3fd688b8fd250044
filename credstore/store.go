package credstore

import (
	"context"
	"sync"
)

// Store is the durable credential slot contract. An empty credential
// from Get means no credential is persisted.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}

// Memory is a process-local Store. Sessions backed by it do not survive
// a restart; it is also the building block tests substitute for the
// durable backends.
type Memory struct {
	mu         sync.RWMutex
	credential string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the stored credential. It never fails.
func (m *Memory) Get(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential, nil
}

// Set stores the credential.
func (m *Memory) Set(_ context.Context, credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = credential
	return nil
}

// Clear removes the credential. Idempotent.
func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = ""
	return nil
}
