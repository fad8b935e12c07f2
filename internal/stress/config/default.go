// Package config defines the stress tool configuration structure.
package config

import "time"

// Default configuration values.
const (
	DefaultObjects    = 10000
	DefaultChurnRate  = 1000.0
	DefaultGCInterval = time.Second

	DefaultMetricsAddr      = "127.0.0.1:9100"
	DefaultMetricsNamespace = "idkey"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default stress tool configuration.
func Default() *Config {
	return &Config{
		Workload: WorkloadSection{
			Objects:    DefaultObjects,
			ChurnRate:  DefaultChurnRate,
			GCInterval: DefaultGCInterval,
		},
		Metrics: MetricsSection{
			Enabled:   true,
			Addr:      DefaultMetricsAddr,
			Namespace: DefaultMetricsNamespace,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
