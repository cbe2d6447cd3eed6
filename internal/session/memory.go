package session

import (
	"context"
	"sync"
	"time"
)

// Memory is the in-process Store used for a single pipeline run.
// The expiry check and the eviction happen under one lock acquisition,
// so no caller can observe the expired value between the two.
type Memory struct {
	mu      sync.Mutex
	entries map[string]string
	now     func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory builds an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]string),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Put(_ context.Context, key, value string, ttl time.Duration) error {
	sealed, err := sealEnvelope(value, m.now(), ttl)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = sealed
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(key)
}

func (m *Memory) Take(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok, err := m.getLocked(key)
	if ok {
		delete(m.entries, key)
	}
	return value, ok, err
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// getLocked resolves key and evicts dead entries. Callers must hold mu.
func (m *Memory) getLocked(key string) (string, bool, error) {
	raw, exists := m.entries[key]
	if !exists {
		return "", false, nil
	}

	value, ok := openEnvelope(raw, m.now())
	if !ok {
		delete(m.entries, key)
		return "", false, nil
	}
	return value, true, nil
}

// Len reports the number of stored entries, including not-yet-evicted
// expired ones. Used by tests to assert eviction-on-read.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
