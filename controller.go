package authsession

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/streamvault/authsession/credstore"
	"github.com/streamvault/authsession/transport"
)

// Controller orchestrates login, logout, and hydration, and owns the
// authoritative in-memory session state. It is the single writer of that
// state; everything else reads it through [Controller.Snapshot].
//
// A fresh Controller is in the undetermined state: a persisted credential
// (if any) has been read and a provisional role derived from it, but the
// server has not yet confirmed the identity. Call [Controller.Hydrate]
// once at startup to settle it.
type Controller struct {
	store *credstore.Mirrored
	auth  Authenticator
	log   zerolog.Logger

	mu       sync.Mutex
	identity *Identity
	role     Role
	ready    bool
	epoch    uuid.UUID
}

// Snapshot captures the session state under one lock acquisition.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	cred := c.store.Credential()
	return Snapshot{
		Credential:    cred,
		Identity:      c.identity.clone(),
		Role:          c.role,
		Ready:         c.ready,
		Authenticated: cred != "",
	}
}

// Login exchanges the identifier/secret pair for a credential, stores it,
// derives a provisional role from whatever the login endpoint returned,
// and then unconditionally hydrates to reconcile against the server. The
// login endpoint's identity may be partial, so its role is never trusted
// as final without confirmation.
//
// When the backend rejects the pair, [ErrInvalidCredentials] is returned
// and session state is left untouched. A hydration failure after a
// successful exchange is ambient: it tears the session down locally and
// is not returned.
func (c *Controller) Login(ctx context.Context, identifier, secret string) error {
	res, err := c.auth.Authenticate(ctx, identifier, secret)
	if err != nil {
		return err
	}

	c.mu.Lock()
	_ = c.store.Set(ctx, res.Credential)
	c.identity = res.Identity.clone()
	c.role = DeriveRole(c.identity, res.Credential)
	c.epoch = uuid.New()
	epoch := c.epoch
	c.mu.Unlock()

	c.hydrate(ctx, epoch)
	return nil
}

// Hydrate confirms the identity behind the current credential against the
// server. Without a credential it is a no-op that settles readiness. Any
// hydration failure is treated as "this credential is no longer valid"
// and tears the session down; it is never retried automatically.
func (c *Controller) Hydrate(ctx context.Context) {
	c.mu.Lock()
	if c.store.Credential() == "" {
		c.ready = true
		c.mu.Unlock()
		return
	}
	epoch := c.epoch
	c.mu.Unlock()

	c.hydrate(ctx, epoch)
}

// Logout performs an unconditional teardown. It always succeeds and is
// idempotent.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked(context.Background())
}

// Handlers returns the hook set for the transport chain: the store's
// synchronous credential read and Logout as the rejection callback.
func (c *Controller) Handlers() transport.Handlers {
	return transport.Handlers{
		Credential:     c.store.Credential,
		OnUnauthorized: c.Logout,
	}
}

// hydrate performs one hydration attempt for the credential epoch it was
// started under. If the epoch has moved on by the time the server answers
// (newer login, logout), the result is discarded: whoever moved the epoch
// owns the state now.
func (c *Controller) hydrate(ctx context.Context, epoch uuid.UUID) {
	identity, err := c.auth.WhoAmI(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		c.log.Debug().Msg("discarding superseded hydration result")
		return
	}

	if err != nil {
		c.log.Warn().Err(err).Msg("hydration failed, clearing session")
		c.teardownLocked(ctx)
		return
	}

	// Wholesale replacement: the confirmed record supersedes anything
	// provisional, and the role is recomputed from it.
	c.identity = identity.clone()
	c.role = DeriveRole(c.identity, c.store.Credential())
	c.ready = true
}

// teardownLocked nulls credential, identity, and role as one group and
// forces readiness. Callers hold c.mu.
func (c *Controller) teardownLocked(ctx context.Context) {
	_ = c.store.Clear(ctx)
	c.identity = nil
	c.role = RoleNone
	c.ready = true
	c.epoch = uuid.New()
}
