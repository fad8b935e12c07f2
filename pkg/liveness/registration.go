// Package liveness observes the destruction of key objects.
package liveness

import (
	"crypto/rand"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// Registration states. Exactly one transition away from armed ever happens.
const (
	stateArmed uint32 = iota
	stateCanceled
	stateFired
)

// Registration is the handle for one tracked key object.
//
// At most one of {Cancel, destruction callback} wins; the loser is a
// no-op. Both sides are safe to invoke concurrently and repeatedly.
type Registration struct {
	id    string
	state atomic.Uint32
	stop  func() // disarms the runtime cleanup; nil for manual tracking
}

// newRegistrationID mints a ULID for correlating a registration in logs.
func newRegistrationID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "reg-unknown"
	}
	return "reg-" + id.String()
}

// ID returns the registration's log-correlation id.
func (r *Registration) ID() string { return r.id }

// Cancel deregisters the destruction callback. After Cancel returns, the
// callback is guaranteed not to fire. Calling Cancel twice, or after the
// callback has already run, is a no-op.
//
// Cancel on a nil Registration is a no-op.
func (r *Registration) Cancel() {
	if r == nil {
		return
	}
	if r.state.CompareAndSwap(stateArmed, stateCanceled) {
		if r.stop != nil {
			r.stop()
		}
	}
}

// Canceled reports whether Cancel claimed the registration.
func (r *Registration) Canceled() bool {
	return r.state.Load() == stateCanceled
}

// Fired reports whether the destruction callback claimed the registration.
func (r *Registration) Fired() bool {
	return r.state.Load() == stateFired
}

// fire claims the registration for the destruction callback.
// Returns false if Cancel already won.
func (r *Registration) fire() bool {
	return r.state.CompareAndSwap(stateArmed, stateFired)
}
