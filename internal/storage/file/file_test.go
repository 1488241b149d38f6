package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateWithBalance(n int64) *domain.State {
	s := domain.NewState()
	s.Accounts = append(s.Accounts, domain.Account{ID: "a", Name: "Main", Balance: decimal.NewFromInt(n), Currency: domain.USD})
	return &s
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.json")

	s, err := NewStore(path, 0, zerolog.Nop())
	require.NoError(t, err)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Save(ctx, stateWithBalance(42)))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Accounts, 1)
	assert.True(t, got.Accounts[0].Balance.Equal(decimal.NewFromInt(42)))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStoreRotatesVersions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")

	s, err := NewStore(path, 2, zerolog.Nop())
	require.NoError(t, err)

	for i := int64(1); i <= 4; i++ {
		require.NoError(t, s.Save(ctx, stateWithBalance(i)))
	}

	assert.FileExists(t, path)
	assert.FileExists(t, path+".v1")
	assert.FileExists(t, path+".v2")
	assert.NoFileExists(t, path+".v3")

	prev, err := NewStore(path+".v1", 0, zerolog.Nop())
	require.NoError(t, err)
	got, err := prev.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Accounts[0].Balance.Equal(decimal.NewFromInt(3)))
}

func TestStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := NewStore(path, 0, zerolog.Nop())
	require.NoError(t, err)

	_, err = s.Load(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}
