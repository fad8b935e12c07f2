// Package logger provides structured logging for the id-key tooling.
//
// This package wraps log/slog:
//
//   - logger.go: Logger configuration and initialization
//   - context.go: Context-aware logging with run IDs
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering with runtime adjustment
//   - Context propagation for workload runs
package logger
