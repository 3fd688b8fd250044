package authsession

import "context"

// Identity is the server-confirmed user record. It is owned by the
// [Controller] and mutated wholesale: hydration replaces the full record
// or clears it, never merges individual fields.
type Identity struct {
	ID          int64  `json:"user_id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

// clone returns a copy so external callers can never mutate controller
// state through a shared pointer.
func (i *Identity) clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// LoginResult is returned by [Authenticator.Authenticate]. Identity is
// optional; when present it is treated as provisional until hydration
// confirms it.
type LoginResult struct {
	Credential string
	Identity   *Identity
}

// Authenticator is the collaborator contract the [Controller] consumes.
// The api subpackage provides an HTTP implementation; tests substitute
// stubs.
type Authenticator interface {
	// Authenticate exchanges an identifier/secret pair for a bearer
	// credential and, optionally, the identity it belongs to. It fails
	// with [ErrInvalidCredentials] when the backend rejects the pair.
	Authenticate(ctx context.Context, identifier, secret string) (LoginResult, error)

	// WhoAmI resolves the identity behind the current credential. It
	// fails with [ErrUnauthorized] when the credential is invalid or
	// expired.
	WhoAmI(ctx context.Context) (*Identity, error)
}

// Snapshot is a point-in-time, read-only view of session state. All
// fields are captured under one lock acquisition, so a Snapshot is
// internally consistent: Role always corresponds to Credential and
// Identity as they were at capture time.
type Snapshot struct {
	Credential    string
	Identity      *Identity
	Role          Role
	Ready         bool
	Authenticated bool
}
