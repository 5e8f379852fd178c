package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/codex/pkg/metrics"
)

// MemoryStore keeps progress in a map. It is used when no store path is
// configured and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]int
	closed bool
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]int)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, key string, value int) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.values[key] = value
	metrics.UpdateRepositoryRecordsTotal(len(s.values))
	return nil
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, key string, def int) (int, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if strings.TrimSpace(key) == "" {
		return 0, ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	v, ok := s.values[key]
	if !ok {
		return def, nil
	}
	return v, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.values), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
