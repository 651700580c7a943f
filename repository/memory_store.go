package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryReplayStore keeps markers in a map with expiry timestamps. Expired
// entries are dropped when touched or swept.
type MemoryReplayStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemoryReplayStore() *MemoryReplayStore {
	return NewMemoryReplayStoreWithClock(time.Now)
}

// NewMemoryReplayStoreWithClock lets tests control expiry.
func NewMemoryReplayStoreWithClock(now func() time.Time) *MemoryReplayStore {
	return &MemoryReplayStore{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

func (s *MemoryReplayStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(key), nil
}

func (s *MemoryReplayStore) SetWithTTL(_ context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	s.mu.Lock()
	s.entries[key] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *MemoryReplayStore) SetIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, ErrInvalidTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveLocked(key) {
		return false, nil
	}
	s.entries[key] = s.now().Add(ttl)
	return true, nil
}

func (s *MemoryReplayStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (s *MemoryReplayStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len counts entries, including expired ones not yet swept.
func (s *MemoryReplayStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryReplayStore) liveLocked(key string) bool {
	exp, ok := s.entries[key]
	if !ok {
		return false
	}
	if !s.now().Before(exp) {
		delete(s.entries, key)
		return false
	}
	return true
}
