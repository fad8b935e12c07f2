// Package idset provides a set of objects distinguished by identity.
//
// A Set holds each member by who it is, not by what it contains:
// value-equal objects are distinct members and member types need no
// comparability contract. Members are referenced weakly by default, so a
// set never keeps its members alive; destroyed members simply leave.
//
// The set algebra (Union, Intersect, Difference and the subset
// predicates) is identity-based throughout.
//
// Usage:
//
//	s := idset.New[Node]()
//	if err := s.Add(node); err != nil { ... }
//	if s.Contains(node) { ... }
//
// Thread Safety:
//
// All operations are safe for concurrent use; see package idmap, which
// backs the set, for the reclamation model.
package idset
