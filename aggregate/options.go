package aggregate

import (
	"log/slog"
	"time"
)

type Option func(a *Aggregator)

// WithLogger specifies the logger for the aggregator
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// WithSourceTimeout specifies the per-source fetch deadline.
// Defaults to 10s
func WithSourceTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.sourceTimeout = d
	}
}
