// Package ledger owns the finance state and applies every balance mutation.
// All exported methods serialize on one mutex, so a mutation is never
// observed half applied.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/alerts"
	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultUndoWindow matches how long the undo toast stays on screen.
	DefaultUndoWindow = 4 * time.Second
	// DefaultMaxCatchUp bounds the occurrences one rule may generate per run.
	DefaultMaxCatchUp = 1000
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrDebtNotFound        = errors.New("debt not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrRuleNotFound        = errors.New("recurring rule not found")
	ErrDuplicateID         = errors.New("id already exists")
	ErrTransferToGoal      = errors.New("transfers must move money between accounts")
	ErrUndoExpired         = errors.New("undo window has expired")
	ErrPersist             = errors.New("persisting snapshot")
)

// Options configure a Ledger. Zero values select the defaults.
type Options struct {
	Rates      currency.Rates
	Store      storage.Store
	Logger     zerolog.Logger
	Now        func() time.Time
	NewID      func() string
	UndoWindow time.Duration
	MaxCatchUp int
}

type deletedTransaction struct {
	tx        domain.Transaction
	deletedAt time.Time
}

// Ledger is the single owner of accounts, goals, debts, budgets,
// transactions, recurring rules, settings and alerts.
type Ledger struct {
	mu sync.Mutex

	state  domain.State
	rates  currency.Rates
	active []domain.Alert
	memory alerts.Memory
	undo   map[string]deletedTransaction

	store      storage.Store
	log        zerolog.Logger
	now        func() time.Time
	newID      func() string
	undoWindow time.Duration
	maxCatchUp int
}

// New wraps state. Nothing is loaded or saved until the first mutation.
func New(state domain.State, opts Options) *Ledger {
	l := &Ledger{
		state:      state.Clone(),
		rates:      opts.Rates,
		undo:       map[string]deletedTransaction{},
		store:      opts.Store,
		log:        opts.Logger,
		now:        opts.Now,
		newID:      opts.NewID,
		undoWindow: opts.UndoWindow,
		maxCatchUp: opts.MaxCatchUp,
	}
	if l.rates == nil {
		l.rates = currency.Fallback()
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	if l.undoWindow <= 0 {
		l.undoWindow = DefaultUndoWindow
	}
	if l.maxCatchUp <= 0 {
		l.maxCatchUp = DefaultMaxCatchUp
	}

	l.evaluateAlerts()
	return l
}

// Open loads the saved snapshot from opts.Store, starting empty when none
// exists yet.
func Open(ctx context.Context, opts Options) (*Ledger, error) {
	if opts.Store == nil {
		return New(domain.NewState(), opts), nil
	}

	state, err := opts.Store.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		opts.Logger.Info().Msg("No saved snapshot, starting with an empty ledger")
		fresh := domain.NewState()
		state = &fresh
	case err != nil:
		return nil, fmt.Errorf("Open: loading snapshot: %w", err)
	}

	l := New(*state, opts)
	l.log.Info().
		Int("accounts", len(state.Accounts)).
		Int("transactions", len(state.Transactions)).
		Int("recurring_rules", len(state.RecurringRules)).
		Msg("Ledger opened")
	return l, nil
}

// commit re-evaluates alerts and saves the snapshot. The caller holds mu.
// A failed save leaves the in-memory mutation in place.
func (l *Ledger) commit(ctx context.Context) error {
	l.evaluateAlerts()
	if l.store == nil {
		return nil
	}

	state := l.state.Clone()
	if err := l.store.Save(ctx, &state); err != nil {
		l.log.Error().Err(err).Msg("Failed to persist snapshot")
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (l *Ledger) evaluateAlerts() {
	res := alerts.Evaluate(alerts.Input{
		Settings:         l.state.Settings,
		Accounts:         l.state.Accounts,
		Debts:            l.state.Debts,
		Goals:            l.state.Goals,
		TransactionCount: len(l.state.Transactions),
		Rates:            l.rates,
		Now:              l.now(),
		Active:           l.active,
		Memory:           l.memory,
	})
	l.active = res.Active
	l.memory = res.Memory
	for _, a := range res.Raised {
		l.log.Info().Str("alert_id", a.ID).Str("alert_type", string(a.Type)).Msg("Alert raised")
	}
}

// SetRates swaps the exchange rate table used by later operations. Balances
// already converted are not recomputed.
func (l *Ledger) SetRates(rates currency.Rates) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rates == nil {
		rates = currency.Rates{}
	}
	l.rates = rates
	l.log.Info().Int("currencies", len(rates)).Msg("Exchange rates updated")
}

// Rates returns a copy of the current rate table.
func (l *Ledger) Rates() currency.Rates {
	l.mu.Lock()
	defer l.mu.Unlock()
	return currency.Rates{}.Merge(l.rates)
}

// Save persists the current state without mutating it.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit(ctx)
}
