// Package ui defines the contracts the message hub needs from the UI
// environment: a stable identity and type tag per UI instance, and an
// executor that serializes callbacks against a UI's state.
package ui

// UI is one live user-interface instance. ID is stable for the logical UI
// across session passivation; Kind is the type tag the locator matches
// against when rebinding a hub after revival.
type UI interface {
	ID() int
	Kind() string
}

// Executor schedules work against UI instances.
type Executor interface {
	// Access runs fn at some future point with exclusive access to u's
	// state. Work scheduled for a discarded UI is silently dropped.
	Access(u UI, fn func())
	// OnDetach registers hook to run exactly once when u is permanently
	// discarded. Registering after discard runs the hook immediately.
	OnDetach(u UI, hook func())
}
