package credstore

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Mirrored keeps the credential in memory and mirrors every mutation into
// a durable backend. The in-memory copy is authoritative for the current
// process: durable failures are logged and swallowed, after which the
// store runs memory-only for the remainder of the process.
type Mirrored struct {
	durable Store
	log     zerolog.Logger

	mu         sync.RWMutex
	credential string
	degraded   bool
}

// NewMirrored wraps durable and seeds the in-memory copy by reading it
// once, synchronously. A durable read failure degrades the store to
// memory-only immediately; the process starts anonymous in that case.
func NewMirrored(durable Store, log zerolog.Logger) *Mirrored {
	m := &Mirrored{durable: durable, log: log}

	cred, err := durable.Get(context.Background())
	if err != nil {
		m.log.Warn().Err(err).Msg("credential storage unavailable, running memory-only")
		m.degraded = true
		return m
	}
	m.credential = cred
	return m
}

// Credential returns the in-memory credential. Synchronous and
// side-effect-free; safe to call from transport hot paths.
func (m *Mirrored) Credential() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential
}

// Get implements [Store] over the in-memory copy. It never fails.
func (m *Mirrored) Get(context.Context) (string, error) {
	return m.Credential(), nil
}

// Set writes memory first, so dependent reads see the new credential
// immediately, then the durable backend. A durable failure does not undo
// the memory write.
func (m *Mirrored) Set(ctx context.Context, credential string) error {
	m.mu.Lock()
	m.credential = credential
	degraded := m.degraded
	m.mu.Unlock()

	if degraded {
		return nil
	}
	if err := m.durable.Set(ctx, credential); err != nil {
		m.degrade(err)
	}
	return nil
}

// Clear nulls memory and makes a best-effort removal of the durable
// entry. Idempotent; never fails.
func (m *Mirrored) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.credential = ""
	degraded := m.degraded
	m.mu.Unlock()

	if degraded {
		return nil
	}
	if err := m.durable.Clear(ctx); err != nil {
		m.degrade(err)
	}
	return nil
}

func (m *Mirrored) degrade(err error) {
	m.mu.Lock()
	already := m.degraded
	m.degraded = true
	m.mu.Unlock()

	if !already {
		m.log.Warn().Err(err).Msg("credential storage unavailable, falling back to memory-only")
	}
}

// Degraded reports whether the durable backend has failed and the store
// is running memory-only.
func (m *Mirrored) Degraded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.degraded
}
