// Package config defines the stress tool configuration structure.
package config

import "time"

// Config is the root configuration for idkey-stress.
type Config struct {
	Workload WorkloadSection `koanf:"workload"`
	Metrics  MetricsSection  `koanf:"metrics"`
	Log      LogSection      `koanf:"log"`
}

// WorkloadSection configures the churn workload.
type WorkloadSection struct {
	// Objects is the steady-state number of live objects in the store.
	Objects int `koanf:"objects"`

	// ChurnRate is the number of object replacements per second.
	ChurnRate float64 `koanf:"churn_rate"`

	// Duration bounds the run. Zero runs until SIGINT/SIGTERM.
	Duration time.Duration `koanf:"duration"`

	// GCInterval is how often a forced GC cycle runs during the
	// workload. Zero disables forced cycles.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`

	// Namespace prefixes every exported metric name.
	Namespace string `koanf:"namespace"`
}

// LogSection configures logging behavior.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
