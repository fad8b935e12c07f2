// Package liveness observes the destruction of key objects.
//
// A Tracker arms a one-shot notification that runs once a tracked object
// becomes unreachable, so that stores keyed by object identity can reclaim
// the matching slot instead of letting it silently alias a future object
// at a recycled address.
//
// Features:
//
//   - One-shot Notification: at most one callback per registration
//   - Cancellation: Registration.Cancel is idempotent and race-free
//     against a concurrently firing callback
//   - Capability Flag: SupportsAutoReclaim distinguishes the runtime
//     tracker from the explicit-removal-only Manual tracker
//
// Usage:
//
//	tr := liveness.NewRuntime[Key]()
//	reg, err := tr.Track(obj, func() { store.reclaim(tok) })
//	...
//	reg.Cancel() // e.g. on explicit removal
//
// Thread Safety:
//
// Destruction callbacks run on a goroutine chosen by the runtime's
// reclamation machinery, concurrent with everything else. Callbacks must
// do their own locking and must not assume any ordering relative to
// in-flight store operations.
package liveness
