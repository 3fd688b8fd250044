// Package guard implements the authorization gate: a declarative check
// placed in front of protected views that turns a session snapshot and an
// optional allowed-role set into a render decision.
//
// The gate never mutates session state. It only reads snapshots, which
// keeps the flicker rules enforceable: while the session is still
// undetermined the only permitted output is a loading state, never a
// redirect, and an authenticated user with the wrong role is denied in
// place rather than bounced to login.
package guard

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	authsession "github.com/streamvault/authsession"
)

// Action is the gate's verdict kind.
type Action int

const (
	// Pending means the session is still undetermined: render a neutral
	// loading indicator and nothing else.
	Pending Action = iota
	// Allow means the protected content may render.
	Allow
	// Redirect means the visitor is unauthenticated: send them to the
	// login entry point, preserving where they were going.
	Redirect
	// Deny means the visitor is authenticated but lacks a required
	// role: render an access-denied view, not a redirect.
	Deny
)

// String names the action for logs and error pages.
func (a Action) String() string {
	switch a {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Deny:
		return "deny"
	}
	return "unknown"
}

// Decision is one gate evaluation. Location and From are set for
// Redirect; Required and Actual are set for Deny.
type Decision struct {
	Action Action

	// Location is the login entry point to redirect to.
	Location string
	// From is the originally requested location, so the caller can
	// return there after a successful login.
	From string

	// Required lists the roles that would have been accepted.
	Required []authsession.Role
	// Actual is the visitor's normalized role at evaluation time.
	Actual authsession.Role
}

// Gate guards protected views. The zero value requires authentication
// only; set Roles to additionally restrict by role.
type Gate struct {
	// LoginPath is the login entry point used for Redirect decisions.
	// Defaults to "/login".
	LoginPath string

	// Roles is the allowed-role set. Empty means any authenticated
	// visitor passes.
	Roles []authsession.Role
}

// Evaluate turns a snapshot into a decision for a visitor heading to
// from. Role comparison is lowercase-trimmed, mirroring the normalizer,
// so a restriction list and the stored role never mismatch on casing.
func (g Gate) Evaluate(snap authsession.Snapshot, from string) Decision {
	if !snap.Ready {
		return Decision{Action: Pending}
	}

	if !snap.Authenticated {
		login := g.LoginPath
		if login == "" {
			login = "/login"
		}
		return Decision{Action: Redirect, Location: login, From: from}
	}

	if len(g.Roles) == 0 || Allowed(snap.Role, g.Roles...) {
		return Decision{Action: Allow}
	}

	return Decision{
		Action:   Deny,
		Required: append([]authsession.Role(nil), g.Roles...),
		Actual:   snap.Role,
	}
}

// Allowed reports whether role is a member of allow, comparing
// lowercase-trimmed. It is the inline check for hiding or showing single
// elements without a full gate.
func Allowed(role authsession.Role, allow ...authsession.Role) bool {
	norm := authsession.NormalizeRole(string(role))
	if norm == authsession.RoleNone {
		return false
	}
	for _, a := range allow {
		if authsession.NormalizeRole(string(a)) == norm {
			return true
		}
	}
	return false
}

// Snapshotter is the session view the middleware consumes; satisfied by
// [authsession.Controller].
type Snapshotter interface {
	Snapshot() authsession.Snapshot
}

// Middleware adapts the gate to an http.Handler chain for locally served
// views. Pending answers 503 with Retry-After, Redirect issues a 302 to
// the login path with the original location in the "from" query
// parameter, and Deny answers 403 naming the required roles and the
// visitor's actual one.
func Middleware(sessions Snapshotter, g Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Evaluate(sessions.Snapshot(), r.URL.RequestURI())

			switch d.Action {
			case Allow:
				next.ServeHTTP(w, r)
			case Pending:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session undetermined", http.StatusServiceUnavailable)
			case Redirect:
				target := d.Location + "?from=" + url.QueryEscape(d.From)
				http.Redirect(w, r, target, http.StatusFound)
			case Deny:
				required := make([]string, len(d.Required))
				for i, role := range d.Required {
					required[i] = string(role)
				}
				actual := string(d.Actual)
				if actual == "" {
					actual = "unknown"
				}
				msg := fmt.Sprintf("access denied: requires %s, your role: %s",
					strings.Join(required, ", "), actual)
				http.Error(w, msg, http.StatusForbidden)
			}
		})
	}
}
