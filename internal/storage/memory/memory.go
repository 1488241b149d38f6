// Package memory keeps the snapshot document in process memory.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/snapshot"
	"github.com/dvloznov/pocket-ledger/internal/storage"
)

// Store holds the encoded document so that loads go through the same
// decoding path as the durable stores.
type Store struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Load(ctx context.Context) (*domain.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, storage.ErrNotFound
	}
	state, err := snapshot.Import(s.data)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return state, nil
}

func (s *Store) Save(ctx context.Context, state *domain.State) error {
	data, err := snapshot.Export(*state, time.Now())
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Bytes returns the last saved document.
func (s *Store) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

// Saves counts successful saves.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

var _ storage.Store = (*Store)(nil)
