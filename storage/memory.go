package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/CreativeUnicorns/shopstate"
)

// MemoryStorage keeps blobs in a map. State survives for the life of the
// process only, which suits tests and ephemeral CLI runs.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string]map[string][]byte // profileID -> namespace -> blob
}

// NewMemoryStorage creates a new instance of MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		blobs: make(map[string]map[string][]byte),
	}
}

// Load returns a copy of the blob, or shopstate.ErrNotFound.
func (s *MemoryStorage) Load(_ context.Context, profileID, namespace string) ([]byte, error) {
	if err := validateKey(profileID, namespace); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[profileID][namespace]
	if !ok {
		return nil, shopstate.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save replaces the blob. The caller's slice is copied.
func (s *MemoryStorage) Save(_ context.Context, profileID, namespace string, data []byte) error {
	if err := validateKey(profileID, namespace); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[profileID]; !ok {
		s.blobs[profileID] = make(map[string][]byte)
	}
	s.blobs[profileID][namespace] = append([]byte(nil), data...)
	return nil
}

// Delete removes the blob, returning shopstate.ErrNotFound if it is absent.
func (s *MemoryStorage) Delete(_ context.Context, profileID, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.blobs[profileID]
	if !ok {
		return shopstate.ErrNotFound
	}
	if _, ok := profile[namespace]; !ok {
		return shopstate.ErrNotFound
	}
	delete(profile, namespace)
	if len(profile) == 0 {
		delete(s.blobs, profileID)
	}
	return nil
}

// Namespaces lists the profile's namespaces in lexical order.
func (s *MemoryStorage) Namespaces(_ context.Context, profileID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.blobs[profileID]))
	for ns := range s.blobs[profileID] {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op for MemoryStorage.
func (s *MemoryStorage) Close() error {
	return nil
}

func validateKey(profileID, namespace string) error {
	if profileID == "" || namespace == "" {
		return shopstate.ErrInvalidInput
	}
	return nil
}
