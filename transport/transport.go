// Package transport implements the request interceptor chain: an
// [net/http.RoundTripper] that attaches the current bearer credential to
// every outbound request and invokes a rejection callback whenever a
// response signals that the credential was rejected.
//
// The chain carries no session state of its own. It receives a credential
// provider and a rejection callback by explicit injection; until both are
// attached it degrades to a pass-through, so it tolerates being queried
// before the session controller exists.
package transport

import (
	"net/http"
	"sync"
)

// Handlers are the two hooks the chain consumes. Either field may be nil;
// a nil field disables the corresponding hook.
type Handlers struct {
	// Credential returns the current bearer credential, or "" when
	// anonymous. Called once per outbound request.
	Credential func() string

	// OnUnauthorized fires once per response whose status signals
	// credential rejection. The response itself still propagates to the
	// caller unchanged.
	OnUnauthorized func()
}

// Chain wraps an underlying RoundTripper with the outbound and inbound
// hooks. The zero value is not usable; construct with [New].
type Chain struct {
	next http.RoundTripper

	mu       sync.RWMutex
	handlers Handlers
}

// New builds a Chain around next. A nil next falls back to
// [http.DefaultTransport]. Handlers may be attached now or later via
// [Chain.Attach].
func New(next http.RoundTripper, handlers Handlers) *Chain {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Chain{next: next, handlers: handlers}
}

// Attach replaces the hook set. It exists for the bootstrap order where
// the transport must be built before the session controller that feeds
// it.
func (c *Chain) Attach(handlers Handlers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = handlers
}

// RoundTrip implements [http.RoundTripper]. The request is cloned before
// the Authorization header is added; the original is never mutated, and
// the body is untouched.
func (c *Chain) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.RLock()
	h := c.handlers
	c.mu.RUnlock()

	if h.Credential != nil {
		if cred := h.Credential(); cred != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+cred)
		}
	}

	resp, err := c.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && h.OnUnauthorized != nil {
		h.OnUnauthorized()
	}

	// The caller must still see the rejection; teardown is a side
	// effect, not a substitute for the failure.
	return resp, nil
}
