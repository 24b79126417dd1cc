package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultTTL is the entry lifetime used when none is configured.
const DefaultTTL = 5 * time.Minute

type entry struct {
	body      []byte
	storedAt  time.Time
	expiresAt time.Time
}

// Memory is an in-process ResponseCache.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	maxEntries int
	clock      clock.Clock
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock sets the time source.
func WithClock(c clock.Clock) MemoryOption {
	return func(m *Memory) { m.clock = c }
}

// NewMemory creates an in-memory cache. A non-positive maxEntries means
// unbounded; a non-positive defaultTTL uses DefaultTTL.
func NewMemory(defaultTTL time.Duration, maxEntries int, opts ...MemoryOption) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	m := &Memory{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
		clock:      clock.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup implements ResponseCache.
func (m *Memory) Lookup(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return bytes.Clone(e.body), true, nil
}

// Store implements ResponseCache. A non-positive ttl uses the default.
func (m *Memory) Store(_ context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		m.evictOldest()
	}
	now := m.clock.Now()
	m.entries[key] = entry{body: bytes.Clone(body), storedAt: now, expiresAt: now.Add(ttl)}
	return nil
}

// evictOldest removes the entry with the smallest storedAt. Caller holds mu.
func (m *Memory) evictOldest() {
	var (
		oldestKey string
		oldest    time.Time
		found     bool
	)
	for k, e := range m.entries {
		if !found || e.storedAt.Before(oldest) {
			oldestKey, oldest, found = k, e.storedAt, true
		}
	}
	if found {
		delete(m.entries, oldestKey)
	}
}

// Invalidate implements ResponseCache.
func (m *Memory) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Clear implements ResponseCache.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	clear(m.entries)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not
// yet read.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
