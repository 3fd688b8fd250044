// Package credstore holds the current bearer credential: an in-memory
// authoritative copy for synchronous reads plus one durable slot that
// survives process restarts.
//
// The durable slot is deliberately minimal: exactly one key holding the
// raw bearer string. Absence means anonymous. Implementations perform no
// network calls beyond their own backend and no UI side effects, which is
// what lets every other component be tested by substituting the store.
package credstore
