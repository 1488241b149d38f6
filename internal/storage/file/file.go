// Package file persists the ledger snapshot as a JSON document on local disk.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/snapshot"
	"github.com/dvloznov/pocket-ledger/internal/storage"
	"github.com/rs/zerolog"
)

// Store writes the snapshot atomically and optionally keeps the previous
// versions next to it as <path>.v1 ... <path>.vN.
type Store struct {
	path     string
	versions int
	log      zerolog.Logger
	now      func() time.Time
}

// NewStore creates the parent directory of path if needed.
func NewStore(path string, versions int, log zerolog.Logger) (*Store, error) {
	if versions < 0 {
		versions = 0
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("NewStore: creating directory for %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("versions", versions).Msg("File store opened")
	return &Store{path: path, versions: versions, log: log, now: time.Now}, nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(ctx context.Context) (*domain.State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("Load: reading %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, storage.ErrNotFound
	}

	state, err := snapshot.Import(data)
	if err != nil {
		return nil, fmt.Errorf("Load: parsing %s: %w", s.path, err)
	}
	return state, nil
}

func (s *Store) Save(ctx context.Context, state *domain.State) error {
	data, err := snapshot.Export(*state, s.now())
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("Save: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("Save: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("Save: closing temp file: %w", err)
	}

	if s.versions > 0 {
		s.rotateVersions()
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("Save: renaming temp file: %w", err)
	}

	s.log.Debug().Str("path", s.path).Int("bytes", len(data)).Msg("Snapshot saved")
	return nil
}

// rotateVersions shifts <path>.v{i} to <path>.v{i+1}, dropping the oldest,
// and moves the current file to <path>.v1.
func (s *Store) rotateVersions() {
	os.Remove(s.versionPath(s.versions))
	for i := s.versions; i > 1; i-- {
		os.Rename(s.versionPath(i-1), s.versionPath(i))
	}
	if _, err := os.Stat(s.path); err == nil {
		os.Rename(s.path, s.versionPath(1))
	}
}

func (s *Store) versionPath(i int) string {
	return fmt.Sprintf("%s.v%d", s.path, i)
}

var _ storage.Store = (*Store)(nil)
