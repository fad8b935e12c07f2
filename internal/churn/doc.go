// Package churn drives a configurable create/replace workload against an
// identity-keyed store.
//
// The engine holds a fixed population of live objects and replaces them
// at a configured rate. Each replacement drops the only strong reference
// to the old object, so the store's automatic reclamation is exercised
// continuously. Periodic GC cycles keep reclamation latency bounded and
// observable.
//
// The churn rate can be retuned while a run is in progress, which lets
// the stress tool react to configuration-file changes.
package churn
