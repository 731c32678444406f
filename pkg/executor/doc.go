// Package executor runs Delegators.
//
// The executor owns three guarantees: the delegator it calls exposes the
// single Process entry point, the caller's initial state is never touched,
// and errors raised by collaborators reach the caller unchanged. A cancelled
// context is reported as a *domain.CancelledError so it cannot be mistaken
// for a business failure.
package executor
