// Package idset provides a set of objects distinguished by identity.
package idset

import (
	"github.com/surgura/id-key-collections/pkg/idmap"
	"github.com/surgura/id-key-collections/pkg/liveness"
)

// Set is a collection of objects distinguished by identity.
type Set[T any] struct {
	m *idmap.Map[T, struct{}]
}

// New creates a set that drops members automatically when they are
// destroyed.
func New[T any](opts ...idmap.Option) *Set[T] {
	return &Set[T]{m: idmap.New[T, struct{}](opts...)}
}

// NewWithTracker creates a set using the given liveness tracker.
func NewWithTracker[T any](tracker liveness.Tracker[T], opts ...idmap.Option) *Set[T] {
	return &Set[T]{m: idmap.NewWithTracker[T, struct{}](tracker, opts...)}
}

// Add inserts obj. Adding a member twice is a no-op.
// Returns ErrInvalidKey for objects that cannot carry an identity (nil).
func (s *Set[T]) Add(obj *T) error {
	return s.m.Set(obj, struct{}{})
}

// Discard removes obj, reporting whether it was a member. Discarding a
// non-member is a no-op returning false, never an error.
func (s *Set[T]) Discard(obj *T) bool {
	return s.m.Remove(obj)
}

// Contains reports whether obj is a member.
func (s *Set[T]) Contains(obj *T) bool {
	return s.m.Contains(obj)
}

// Len returns the number of live members.
func (s *Set[T]) Len() int {
	return s.m.Len()
}

// Clear removes all members.
func (s *Set[T]) Clear() {
	s.m.Clear()
}

// SupportsAutoReclaim reports whether destroyed members leave the set
// automatically.
func (s *Set[T]) SupportsAutoReclaim() bool {
	return s.m.SupportsAutoReclaim()
}

// Range calls fn for each live member in insertion order. The callback
// returns false to stop iteration. Yielded references are strong for the
// duration of the pass.
func (s *Set[T]) Range(fn func(obj *T) bool) {
	s.m.Range(func(k *T, _ struct{}) bool {
		return fn(k)
	})
}

// Items returns strong references to all live members in insertion order.
func (s *Set[T]) Items() []*T {
	return s.m.Keys()
}

// Union returns a new set with the members of both s and other.
func (s *Set[T]) Union(other *Set[T]) *Set[T] {
	out := New[T]()
	s.Range(func(obj *T) bool {
		_ = out.Add(obj) // members always carry identity
		return true
	})
	other.Range(func(obj *T) bool {
		_ = out.Add(obj)
		return true
	})
	return out
}

// Intersect returns a new set with the members present in both s and
// other.
func (s *Set[T]) Intersect(other *Set[T]) *Set[T] {
	out := New[T]()
	s.Range(func(obj *T) bool {
		if other.Contains(obj) {
			_ = out.Add(obj)
		}
		return true
	})
	return out
}

// Difference returns a new set with the members of s that are not in
// other.
func (s *Set[T]) Difference(other *Set[T]) *Set[T] {
	out := New[T]()
	s.Range(func(obj *T) bool {
		if !other.Contains(obj) {
			_ = out.Add(obj)
		}
		return true
	})
	return out
}

// SubsetOf reports whether every member of s is in other.
func (s *Set[T]) SubsetOf(other *Set[T]) bool {
	ok := true
	s.Range(func(obj *T) bool {
		if !other.Contains(obj) {
			ok = false
			return false
		}
		return true
	})
	return ok
}

// SupersetOf reports whether every member of other is in s.
func (s *Set[T]) SupersetOf(other *Set[T]) bool {
	return other.SubsetOf(s)
}

// Equal reports whether s and other have exactly the same members.
func (s *Set[T]) Equal(other *Set[T]) bool {
	return s.Len() == other.Len() && s.SubsetOf(other)
}
