// Package liveness observes the destruction of key objects.
package liveness

import (
	"runtime"

	"github.com/surgura/id-key-collections/pkg/identity"
)

// Tracker arms one-shot destruction notifications for key objects.
type Tracker[T any] interface {
	// Track arms onDestroyed to run exactly once, after obj becomes
	// unreachable. The returned Registration cancels the notification.
	//
	// onDestroyed must not capture obj, directly or through the values it
	// closes over; a callback that references its own object keeps it
	// reachable forever and never runs.
	Track(obj *T, onDestroyed func()) (*Registration, error)

	// SupportsAutoReclaim reports whether destruction is actually
	// observed. When false, tracked objects are reclaimed only by
	// explicit removal and registrations never fire.
	SupportsAutoReclaim() bool
}

// Runtime is the garbage-collector-backed tracker. Notifications are
// delivered through runtime.AddCleanup on the runtime's cleanup goroutine.
type Runtime[T any] struct{}

// NewRuntime creates the runtime-backed tracker.
func NewRuntime[T any]() *Runtime[T] {
	return &Runtime[T]{}
}

// SupportsAutoReclaim implements Tracker.
func (*Runtime[T]) SupportsAutoReclaim() bool { return true }

// Track implements Tracker.
func (*Runtime[T]) Track(obj *T, onDestroyed func()) (*Registration, error) {
	if obj == nil {
		return nil, identity.ErrInvalidKey
	}

	reg := &Registration{id: newRegistrationID()}

	// The cleanup closure captures only the registration and the caller's
	// callback. The registration state decides the cancel-vs-fire race.
	cleanup := runtime.AddCleanup(obj, func(struct{}) {
		if reg.fire() {
			onDestroyed()
		}
	}, struct{}{})
	reg.stop = cleanup.Stop

	return reg, nil
}

// Manual is the capability-degraded tracker for callers that must not, or
// cannot, observe destruction. Registrations never fire; tracked entries
// persist until explicitly removed.
type Manual[T any] struct{}

// NewManual creates the explicit-removal-only tracker.
func NewManual[T any]() *Manual[T] {
	return &Manual[T]{}
}

// SupportsAutoReclaim implements Tracker.
func (*Manual[T]) SupportsAutoReclaim() bool { return false }

// Track implements Tracker. The returned registration is inert.
func (*Manual[T]) Track(obj *T, _ func()) (*Registration, error) {
	if obj == nil {
		return nil, identity.ErrInvalidKey
	}
	return &Registration{id: newRegistrationID()}, nil
}
