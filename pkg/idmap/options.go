// Package idmap provides a mapping keyed by object identity.
package idmap

import "log/slog"

type config struct {
	initialCapacity int
	manualReclaim   bool
	logger          *slog.Logger
}

func defaultConfig() config {
	return config{
		logger: slog.New(slog.DiscardHandler),
	}
}

// Option configures a Map at construction time.
type Option func(*config)

// WithInitialCapacity pre-sizes the table for n entries, avoiding early
// rehashes when the expected population is known.
func WithInitialCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.initialCapacity = n
		}
	}
}

// WithManualReclaim disables destruction tracking. Entries persist until
// explicitly removed and SupportsAutoReclaim reports false.
func WithManualReclaim() Option {
	return func(c *config) {
		c.manualReclaim = true
	}
}

// WithLogger sets the logger for reclamation and rebuild events.
// The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
