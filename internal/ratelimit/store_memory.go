package ratelimit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore implements Store with per-key sliding windows. Single-process
// only; deployments with multiple replicas should use the Redis store.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	now     func() time.Time
}

type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		windows: make(map[string]*slidingWindow),
		now:     time.Now,
	}
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sw := s.windows[key]
	if sw == nil {
		sw = &slidingWindow{window: window}
		s.windows[key] = sw
	}
	sw.cleanup(now)

	if len(sw.timestamps) >= limit {
		return &Result{
			Allowed:   false,
			Remaining: 0,
			Limit:     limit,
			ResetAt:   sw.timestamps[0].Add(window),
		}, nil
	}

	sw.timestamps = append(sw.timestamps, now)
	return &Result{
		Allowed:   true,
		Remaining: limit - len(sw.timestamps),
		Limit:     limit,
		ResetAt:   sw.timestamps[0].Add(window),
	}, nil
}

// cleanup drops timestamps that have slid out of the window.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
