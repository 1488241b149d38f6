package memory

import (
	"context"
	"testing"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	state := domain.NewState()
	state.Accounts = append(state.Accounts, domain.Account{ID: "a", Balance: decimal.NewFromInt(7), Currency: domain.USD})
	require.NoError(t, s.Save(ctx, &state))

	state.Accounts[0].Balance = decimal.NewFromInt(99)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Accounts[0].Balance.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, 1, s.Saves())
	assert.NotEmpty(t, s.Bytes())
}
