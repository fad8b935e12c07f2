// Package idmap provides a mapping keyed by object identity.
//
// A Map associates values with key objects by who they are, not by what
// they contain: value-equal objects are distinct keys, mutating a key
// never invalidates its entry, and key types need no comparability or
// hashing contract. Keys are referenced weakly, so keying a value to an
// object never keeps that object alive.
//
// Features:
//
//   - Identity Keying: entries resolved by generation-qualified tokens,
//     immune to address reuse after collection
//   - Weak Keys: destroyed key objects are reclaimed automatically, or
//     lazily purged before the next Len/Range/Stats
//   - Insertion Order: Range yields entries in insertion order; updating
//     an existing key keeps its position
//   - Own Table: bucketed hash table over the raw identity value, 0.75
//     load factor, doubling growth, no shrink-on-delete
//
// Usage:
//
//	m := idmap.New[Node, string]()
//	if err := m.Set(node, "annotation"); err != nil { ... }
//	val, ok := m.Get(node)
//
// Thread Safety:
//
// All operations are safe for concurrent use. Destruction notifications
// run on the runtime's cleanup goroutine and take the same write lock as
// every mutation; Range snapshots under the lock and yields outside it,
// so callbacks may freely call back into the map.
package idmap
