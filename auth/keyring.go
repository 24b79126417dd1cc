package auth

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/99designs/keyring"
)

// KeyringStore keeps the pair as one JSON item in an OS keyring.
type KeyringStore struct {
	ring keyring.Keyring
	key  string
}

// NewKeyringStore wraps an open keyring.
func NewKeyringStore(ring keyring.Keyring, key string) *KeyringStore {
	if key == "" {
		key = defaultKeyringKey
	}
	return &KeyringStore{ring: ring, key: key}
}

// OpenKeyringStore opens the keyring described by cfg.
func OpenKeyringStore(cfg KeyringConfig) (*KeyringStore, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ring, err := openKeyring(cfg.keyringConfig())
	if err != nil {
		return nil, fmt.Errorf("auth: open keyring: %w", err)
	}
	return NewKeyringStore(ring, cfg.Key), nil
}

// Retrieve implements TokenStore.
func (s *KeyringStore) Retrieve(_ context.Context) (*TokenPair, error) {
	item, err := s.ring.Get(s.key)
	if err != nil {
		if stderrors.Is(err, keyring.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: read keyring item: %w", err)
	}
	var pair TokenPair
	if err := json.Unmarshal(item.Data, &pair); err != nil {
		return nil, fmt.Errorf("auth: unmarshal token pair: %w", err)
	}
	return &pair, nil
}

// Store implements TokenStore.
func (s *KeyringStore) Store(_ context.Context, pair TokenPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("auth: marshal token pair: %w", err)
	}
	if err := s.ring.Set(keyring.Item{
		Key:         s.key,
		Data:        data,
		Label:       "API token pair",
		Description: "access and refresh token",
	}); err != nil {
		return fmt.Errorf("auth: write keyring item: %w", err)
	}
	return nil
}

// Delete implements TokenStore.
func (s *KeyringStore) Delete(_ context.Context) error {
	if err := s.ring.Remove(s.key); err != nil && !stderrors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("auth: remove keyring item: %w", err)
	}
	return nil
}
