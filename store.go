package papertrading

import (
	"encoding/json"
	"sync"
)

// Store is the persistence the Ledger runs against.
//
// Implementations read and write a single account record at a time.
// Single-writer access is assumed, the host serializes concurrent processes.
type Store interface {
	// Account returns the account of userID, ok is false if there is none.
	Account(userID string) (a Account, ok bool, err error)
	// SaveAccount creates or replaces the account of userID.
	SaveAccount(userID string, a Account) error
	// DeleteAccountAndPositions removes the account and its open positions.
	DeleteAccountAndPositions(userID string) error
}

// MemStore is an in-memory Store. Its zero value is ready to use.
type MemStore struct {
	mu        sync.Mutex
	accounts  map[string]Account
	positions map[string]json.RawMessage
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) Account(userID string) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	return a.clone(), ok, nil
}

func (s *MemStore) SaveAccount(userID string, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accounts == nil {
		s.accounts = make(map[string]Account)
	}
	s.accounts[userID] = a.clone()
	return nil
}

func (s *MemStore) DeleteAccountAndPositions(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, userID)
	delete(s.positions, userID)
	return nil
}

// Position returns the opaque position payload held for userID.
func (s *MemStore) Position(userID string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[userID]
	return p, ok
}

// SetPosition records an opaque position payload for userID.
func (s *MemStore) SetPosition(userID string, payload json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.positions == nil {
		s.positions = make(map[string]json.RawMessage)
	}
	s.positions[userID] = payload
}
