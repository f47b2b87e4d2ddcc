package cache

import (
	"context"
	"sync"
	"time"
)

// InMemoryIdempotencyStore keeps processed keys in process memory. Suitable
// for single-instance deployments and tests; distributed deployments use the
// Redis store instead.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	done    chan struct{}
	once    sync.Once
}

// NewInMemoryIdempotencyStore creates an in-memory idempotency store and
// starts its expiry sweeper.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

// MarkProcessed marks a key as processed with a TTL
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if expiry, ok := s.entries[key]; ok && expiry.After(now) {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed checks if a key has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if !expiry.After(time.Now()) {
		delete(s.entries, key)
		return false, nil
	}
	return true, nil
}

// Close stops the expiry sweeper
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *InMemoryIdempotencyStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, expiry := range s.entries {
				if !expiry.After(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
