package token

import (
	"context"
	"sync"
)

// Store persists user token pairs. The consent flow writes the initial
// pair; the Manager reads and rewrites it across refreshes. Production
// implementations are expected to encrypt at rest.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Load returns ErrNotFound when no credential exists.
type Store interface {
	Load(ctx context.Context, userID string) (*Credential, error)
	Save(ctx context.Context, userID string, cred *Credential) error
	Delete(ctx context.Context, userID string) error
}

// MemoryStore is an in-memory Store for tests and single-node use.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[string]*Credential
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[string]*Credential)}
}

// Load returns the credential for userID or ErrNotFound.
func (s *MemoryStore) Load(_ context.Context, userID string) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cred, nil
}

// Save stores the credential for userID.
func (s *MemoryStore) Save(_ context.Context, userID string, cred *Credential) error {
	s.mu.Lock()
	s.creds[userID] = cred
	s.mu.Unlock()
	return nil
}

// Delete removes the credential for userID. Idempotent.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.creds, userID)
	s.mu.Unlock()
	return nil
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
