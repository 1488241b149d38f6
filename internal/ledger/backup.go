package ledger

import (
	"context"
	"fmt"

	"github.com/dvloznov/pocket-ledger/internal/alerts"
	"github.com/dvloznov/pocket-ledger/internal/snapshot"
)

// Export renders the current state as a backup document.
func (l *Ledger) Export() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := snapshot.Export(l.state, l.now())
	if err != nil {
		return nil, fmt.Errorf("Export: %w", err)
	}
	return data, nil
}

// Import replaces the whole state with a backup document. The document is
// parsed completely before anything is swapped, so a bad document leaves the
// ledger untouched.
func (l *Ledger) Import(ctx context.Context, data []byte) error {
	state, err := snapshot.Import(data)
	if err != nil {
		return fmt.Errorf("Import: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = *state
	l.undo = map[string]deletedTransaction{}
	l.active = nil
	l.memory = alerts.Memory{}

	for _, r := range state.RecurringRules {
		if r.NextDueDate.IsZero() {
			l.log.Warn().Str("rule_id", r.ID).Msg("Recurring rule has no next due date, imported paused")
		}
	}
	l.log.Info().
		Int("accounts", len(state.Accounts)).
		Int("transactions", len(state.Transactions)).
		Msg("Snapshot imported")
	return l.commit(ctx)
}
