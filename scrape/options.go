package scrape

import "log/slog"

type Option func(c *Client)

// WithLogger specifies the logger for the fetch client
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}
