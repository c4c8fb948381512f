package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimiter implements RateLimiter using an in-memory sliding window
// log. Counters are per process.
type MemoryRateLimiter struct {
	limit  int
	window time.Duration
	now    Clock

	mu      sync.Mutex
	buckets map[string][]time.Time

	cleanupInterval time.Duration
	done            chan struct{}
	wg              sync.WaitGroup
}

// NewMemoryRateLimiter creates a limiter and starts its cleanup goroutine.
// Call Close to stop it.
func NewMemoryRateLimiter(cfg Config) (*MemoryRateLimiter, error) {
	return NewMemoryRateLimiterWithCleanup(cfg, 10*time.Minute)
}

// NewMemoryRateLimiterWithCleanup creates a limiter with a custom cleanup interval.
func NewMemoryRateLimiterWithCleanup(cfg Config, cleanupInterval time.Duration) (*MemoryRateLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	m := &MemoryRateLimiter{
		limit:           cfg.Limit,
		window:          cfg.Window,
		now:             now,
		buckets:         make(map[string][]time.Time),
		cleanupInterval: cleanupInterval,
		done:            make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m, nil
}

// Allow counts an attempt for key. Refused attempts are not recorded.
func (m *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	timestamps := filterValid(m.buckets[key], now.Add(-m.window))

	if len(timestamps) >= m.limit {
		m.buckets[key] = timestamps
		retryAfter := timestamps[0].Add(m.window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}

	m.buckets[key] = append(timestamps, now)
	return true, 0, nil
}

// Close stops the background cleanup goroutine. Safe to call multiple times.
func (m *MemoryRateLimiter) Close() error {
	select {
	case <-m.done:
		return nil
	default:
		close(m.done)
	}
	m.wg.Wait()
	return nil
}

func (m *MemoryRateLimiter) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *MemoryRateLimiter) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.window)
	for key, timestamps := range m.buckets {
		timestamps = filterValid(timestamps, cutoff)
		if len(timestamps) == 0 {
			delete(m.buckets, key)
			continue
		}
		m.buckets[key] = timestamps
	}
}

// filterValid returns only timestamps after the cutoff.
func filterValid(timestamps []time.Time, cutoff time.Time) []time.Time {
	valid := timestamps[:0]
	for _, t := range timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	return valid
}

// Stats returns the number of tracked keys and of attempts still counted
// in their windows.
func (m *MemoryRateLimiter) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{TotalKeys: len(m.buckets)}
	for _, timestamps := range m.buckets {
		stats.TotalRequests += len(timestamps)
	}
	return stats
}
