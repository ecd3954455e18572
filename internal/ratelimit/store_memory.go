package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps one sliding window per key. It is per-process; use
// RedisStore when several replicas serve traffic.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	clock   func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
}

func (sw *slidingWindow) tryConsume(limit int, window time.Duration, now time.Time) (bool, int, time.Time) {
	sw.evict(now.Add(-window))
	if len(sw.timestamps) >= limit {
		return false, 0, sw.timestamps[0].Add(window)
	}
	sw.timestamps = append(sw.timestamps, now)
	return true, limit - len(sw.timestamps), sw.timestamps[0].Add(window)
}

func (sw *slidingWindow) evict(cutoff time.Time) {
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		windows: make(map[string]*slidingWindow),
		clock:   time.Now,
	}
}

// Allow records one request against key and reports whether it fits in limit.
func (s *InMemoryStore) Allow(_ context.Context, key string, limit Limit) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	sw, ok := s.windows[key]
	if !ok {
		sw = &slidingWindow{}
		s.windows[key] = sw
	}
	allowed, remaining, resetAt := sw.tryConsume(limit.Requests, limit.Window, now)
	return newResult(allowed, limit.Requests, remaining, resetAt, now), nil
}

// Sweep drops windows that have been idle longer than maxWindow.
func (s *InMemoryStore) Sweep(maxWindow time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock().Add(-maxWindow)
	removed := 0
	for key, sw := range s.windows {
		sw.evict(cutoff)
		if len(sw.timestamps) == 0 {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps idle windows every interval until ctx is cancelled.
func (s *InMemoryStore) RunSweeper(ctx context.Context, interval, maxWindow time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep(maxWindow)
		case <-ctx.Done():
			return nil
		}
	}
}
