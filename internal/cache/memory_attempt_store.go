package cache

import (
	"context"
	"sync"
	"time"

	"github.com/BradenHooton/leadintake/internal/models"
)

// MemoryAttemptStore keeps attempts in process memory. Every instance has
// its own map, so behind a load balancer each replica enforces the limit
// separately. Use RedisAttemptStore when running more than one replica.
type MemoryAttemptStore struct {
	mu      sync.Mutex
	entries map[string]models.RateLimitEntry
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{entries: make(map[string]models.RateLimitEntry)}
}

func (s *MemoryAttemptStore) Update(_ context.Context, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, found := s.entries[key]
	next, write := fn(current, found)
	if write {
		s.entries[key] = next
	}
	return nil
}

// Prune drops entries whose last attempt is before cutoff and returns how
// many were removed.
func (s *MemoryAttemptStore) Prune(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.LastAttempt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of tracked keys.
func (s *MemoryAttemptStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
