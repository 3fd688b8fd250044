// Package authsession provides the client-side session and authorization
// layer for applications talking to a bearer-token REST backend: it
// establishes, persists, and validates the authenticated identity, derives
// a canonical authorization role from it, injects the credential into
// outbound requests, reacts to credential rejection, and gates access to
// protected views by role.
//
// The package is the public surface. It exposes [Controller], [Builder],
// [Config], and value types (Identity, Snapshot, Role). Supporting
// concerns live in focused subpackages: credstore (the durable credential
// slot), transport (the request interceptor chain), guard (the
// authorization gate), and api (the REST collaborator client).
//
// # Architecture boundaries
//
//   - The Controller is the only writer of session state. Every other
//     component reads it through [Controller.Snapshot].
//   - The credential store performs no network or UI side effects; the
//     transport chain performs no session mutation beyond the injected
//     rejection callback.
//   - Roles decoded from an unverified token are a hint for immediate
//     responsiveness only. Server-confirmed hydration always supersedes
//     them; decoded claims are never authorization-grade truth.
//
// # Concurrency contract
//
// Controller methods are safe to call from multiple goroutines after
// initialization through [Builder.Build]. Session fields (credential,
// identity, role, readiness) are mutated as a group under one lock
// acquisition, so a Snapshot never observes a partially-updated state. An
// in-flight hydration that is superseded by a newer login or a logout is
// discarded, not applied.
package authsession
