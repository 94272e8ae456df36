package ingest

import (
	"log/slog"
	"time"
)

type Option func(s *Service)

// WithLogger specifies the logger for the refresh service
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithInterval specifies the delay between successful refresh cycles.
// Defaults to 10m
func WithInterval(d time.Duration) Option {
	return func(s *Service) {
		s.interval = d
	}
}

// WithRetryDelay specifies the delay before retrying a failed cycle.
// Defaults to 30s
func WithRetryDelay(d time.Duration) Option {
	return func(s *Service) {
		s.retryDelay = d
	}
}

// WithQueryInterval specifies the schedule poll interval.
// Defaults to 1s
func WithQueryInterval(d time.Duration) Option {
	return func(s *Service) {
		s.queryInterval = d
	}
}
