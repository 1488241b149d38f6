// Package storage defines the persistence port the ledger saves its snapshot
// through. Implementations live in the file, gcs and memory subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/dvloznov/pocket-ledger/internal/domain"
)

// ErrNotFound is returned by Load when no snapshot has been saved yet.
var ErrNotFound = errors.New("snapshot not found")

// Store loads and saves the whole ledger state as one document.
type Store interface {
	// Load returns the saved state or ErrNotFound.
	Load(ctx context.Context) (*domain.State, error)

	// Save replaces the saved state.
	Save(ctx context.Context, state *domain.State) error
}
