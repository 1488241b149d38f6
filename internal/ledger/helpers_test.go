package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/storage"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// clock is a settable time source.
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// mockStore is a mock implementation of storage.Store for testing
type mockStore struct {
	saved    []domain.State
	LoadFunc func(ctx context.Context) (*domain.State, error)
	SaveFunc func(ctx context.Context, state *domain.State) error
}

func (m *mockStore) Load(ctx context.Context) (*domain.State, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil, storage.ErrNotFound
}

func (m *mockStore) Save(ctx context.Context, state *domain.State) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, state)
	}
	m.saved = append(m.saved, *state)
	return nil
}

func (m *mockStore) last() domain.State {
	return m.saved[len(m.saved)-1]
}

type fixture struct {
	ledger *Ledger
	clock  *clock
	store  *mockStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{now: t0}
	store := &mockStore{}
	seq := 0
	l := New(domain.NewState(), Options{
		Rates:  currency.Rates{domain.USD: dec("1"), domain.EUR: dec("0.9")},
		Store:  store,
		Logger: zerolog.Nop(),
		Now:    c.Now,
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	return &fixture{ledger: l, clock: c, store: store}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) account(t *testing.T, id string, balance string, cur domain.Currency) {
	t.Helper()
	_, err := f.ledger.AddAccount(context.Background(), domain.Account{
		ID: id, Name: id, Type: domain.AccountChecking, Balance: dec(balance), Currency: cur,
	})
	require.NoError(t, err)
}

func (f *fixture) goal(t *testing.T, id, target, current string) {
	t.Helper()
	_, err := f.ledger.AddGoal(context.Background(), domain.Goal{
		ID: id, Name: id, TargetAmount: dec(target), CurrentAmount: dec(current), Currency: domain.USD,
	})
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	if acc, err := f.ledger.Account(id); err == nil {
		return acc.Balance
	}
	g, err := f.ledger.Goal(id)
	require.NoError(t, err)
	return g.CurrentAmount
}

func tx(id string, typ domain.TransactionType, amount string, cur domain.Currency, from, to string) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Amount:      dec(amount),
		Currency:    cur,
		Type:        typ,
		Category:    "cat_other",
		AccountID:   from,
		ToAccountID: to,
		Date:        t0,
		Title:       "test " + id,
	}
}
