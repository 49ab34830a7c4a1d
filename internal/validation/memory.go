package validation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore provides in-process storage of validation records with expiry.
// Records do not survive a restart; use it for development and tests.
type MemoryStore struct {
	data     map[string]*memoryEntry
	mu       sync.RWMutex
	now      func() time.Time
	cleanup  *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

// memoryEntry represents a stored payload with expiration
type memoryEntry struct {
	value      []byte
	expiration time.Time
}

// NewMemoryStore creates a store that purges expired records every cleanupInterval
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	store := &MemoryStore{
		data:    make(map[string]*memoryEntry),
		now:     time.Now,
		cleanup: time.NewTicker(cleanupInterval),
		done:    make(chan struct{}),
	}

	go store.cleanupLoop()

	return store
}

func (s *MemoryStore) Put(ctx context.Context, id string, record Record, ttl time.Duration) error {
	data, err := EncodeRecord(record)
	if err != nil {
		return fmt.Errorf("failed to encode validation record: %w", err)
	}
	s.PutRaw(id, data, ttl)
	return nil
}

// PutRaw stores an arbitrary payload, bypassing record encoding
func (s *MemoryStore) PutRaw(id string, data []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &memoryEntry{value: append([]byte(nil), data...)}
	if ttl > 0 {
		entry.expiration = s.now().Add(ttl)
	}
	s.data[id] = entry
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	entry, ok := s.data[id]
	s.mu.RUnlock()

	if !ok || s.expired(entry, s.now()) {
		return nil, ErrNotFound
	}
	return DecodeRecord(entry.value)
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Size returns the number of stored entries, expired ones included until the next cleanup
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		s.cleanup.Stop()
		close(s.done)
	})
	return nil
}

func (s *MemoryStore) expired(entry *memoryEntry, now time.Time) bool {
	return !entry.expiration.IsZero() && !now.Before(entry.expiration)
}

// cleanupLoop periodically removes expired entries
func (s *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-s.cleanup.C:
			s.removeExpired()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, entry := range s.data {
		if s.expired(entry, now) {
			delete(s.data, key)
		}
	}
}
