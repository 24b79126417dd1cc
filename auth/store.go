package auth

import (
	"context"
	"sync"
)

// TokenStore persists a single TokenPair.
type TokenStore interface {
	// Retrieve returns the stored pair, or nil when nothing is stored.
	Retrieve(ctx context.Context) (*TokenPair, error)
	// Store replaces the stored pair.
	Store(ctx context.Context, pair TokenPair) error
	// Delete removes the stored pair. Deleting an empty store is not an error.
	Delete(ctx context.Context) error
}

// MemoryStore keeps the pair in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	pair *TokenPair
}

// NewMemoryStore creates a store, optionally seeded with a pair.
func NewMemoryStore(initial ...TokenPair) *MemoryStore {
	s := &MemoryStore{}
	if len(initial) > 0 {
		p := initial[0]
		s.pair = &p
	}
	return s
}

// Retrieve implements TokenStore.
func (s *MemoryStore) Retrieve(_ context.Context) (*TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pair == nil {
		return nil, nil
	}
	p := *s.pair
	return &p, nil
}

// Store implements TokenStore.
func (s *MemoryStore) Store(_ context.Context, pair TokenPair) error {
	s.mu.Lock()
	s.pair = &pair
	s.mu.Unlock()
	return nil
}

// Delete implements TokenStore.
func (s *MemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	s.pair = nil
	s.mu.Unlock()
	return nil
}
