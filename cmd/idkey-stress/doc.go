// Package main provides the entry point for idkey-stress.
//
// idkey-stress soaks an identity-keyed store under object churn:
//
//   - Holds a steady-state population of live objects
//   - Replaces objects at a configured rate, letting the GC reclaim them
//   - Verifies the store converges back to the population after the run
//   - Serves store statistics on a Prometheus /metrics endpoint
//
// Usage:
//
//	idkey-stress run [flags]
//	idkey-stress run --config /path/to/config.yaml --churn-rate 5000
//
// The churn rate reloads live when the configuration file changes, and
// SIGHUP re-applies the configured log level.
package main
