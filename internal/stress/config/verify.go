// Package config defines the stress tool configuration structure.
package config

import "errors"

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyWorkload(&cfg.Workload); err != nil {
		return err
	}
	return verifyMetrics(&cfg.Metrics)
}

func verifyWorkload(cfg *WorkloadSection) error {
	if cfg.Objects < 1 {
		return errors.New("workload.objects must be at least 1")
	}
	if cfg.ChurnRate <= 0 {
		return errors.New("workload.churn_rate must be positive")
	}
	if cfg.Duration < 0 {
		return errors.New("workload.duration must not be negative")
	}
	if cfg.GCInterval < 0 {
		return errors.New("workload.gc_interval must not be negative")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Addr == "" {
		return errors.New("metrics.addr is required when metrics are enabled")
	}
	if cfg.Namespace == "" {
		return errors.New("metrics.namespace is required when metrics are enabled")
	}
	return nil
}
