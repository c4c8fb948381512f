// Package ratelimit counts attempts per client key over a sliding window.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter decides whether another attempt is allowed for a key.
// Implementations must be safe for concurrent use.
type RateLimiter interface {
	// Allow records an attempt for key. When the attempt is refused,
	// retryAfter is the time until the oldest counted attempt leaves the window.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// Stats summarises limiter state for monitoring.
type Stats struct {
	TotalKeys     int
	TotalRequests int
}

// StatsReporter is implemented by limiters that can report their state.
type StatsReporter interface {
	Stats() Stats
}

// Clock returns the current time.
type Clock func() time.Time

// Config contains rate limit configuration.
type Config struct {
	// Limit is the number of attempts allowed in Window.
	Limit int
	// Window is the sliding period attempts are counted over.
	Window time.Duration
	// Clock defaults to time.Now.
	Clock Clock
}

// Validate checks if the Config is valid.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	return nil
}
