package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"learnhub-quiz-service/internal/domain"
)

// KVStore is an in-process app.KeyValueStore with optional per-key expiry.
type KVStore struct {
	clock func() time.Time

	mu      sync.RWMutex
	entries map[string]kvEntry
}

type kvEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewKVStore() *KVStore {
	return NewKVStoreWithClock(time.Now)
}

// NewKVStoreWithClock is test-only for deterministic expiry.
func NewKVStoreWithClock(clock func() time.Time) *KVStore {
	return &KVStore{clock: clock, entries: make(map[string]kvEntry)}
}

func (s *KVStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := kvEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.clock().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.expired(entry) {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), entry.value...), nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Keys lists live keys with the prefix in lexical order.
func (s *KVStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0)
	for key, entry := range s.entries {
		if strings.HasPrefix(key, prefix) && !s.expired(entry) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *KVStore) expired(entry kvEntry) bool {
	return !entry.expiresAt.IsZero() && !entry.expiresAt.After(s.clock())
}
