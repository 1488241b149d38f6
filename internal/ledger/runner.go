package ledger

import (
	"context"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/alerts"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/recurrence"
)

// RunReport summarizes one pass of the recurring rule runner.
type RunReport struct {
	Generated []domain.Transaction `json:"generated"`
	Advanced  []string             `json:"advancedRules"`
	Stalled   []string             `json:"stalledRules,omitempty"`
}

// RunRecurring materializes every occurrence of every active rule that fell
// due at or before now. A rule that missed several periods generates one
// transaction per period. A rule stops early when it hits the catch-up limit
// or when its next date would not move forward.
func (l *Ledger) RunRecurring(ctx context.Context, now time.Time) (RunReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var report RunReport
	for i := range l.state.RecurringRules {
		rule := &l.state.RecurringRules[i]
		if !rule.Active {
			continue
		}

		log := l.log.With().Str("rule_id", rule.ID).Logger()
		if rule.NextDueDate.IsZero() {
			log.Warn().Msg("Recurring rule has no next due date, skipping")
			report.Stalled = append(report.Stalled, rule.ID)
			continue
		}
		generated := 0
		for !rule.NextDueDate.After(now) {
			if generated >= l.maxCatchUp {
				log.Warn().Int("limit", l.maxCatchUp).Time("next_due_date", rule.NextDueDate).Msg("Catch-up limit reached, continuing next run")
				report.Stalled = append(report.Stalled, rule.ID)
				break
			}
			next := recurrence.Next(rule.NextDueDate, rule.Frequency)
			if !next.After(rule.NextDueDate) {
				log.Error().Str("frequency", string(rule.Frequency)).Msg("Recurring rule does not advance, skipping")
				report.Stalled = append(report.Stalled, rule.ID)
				break
			}

			tx := rule.Template.Materialize(l.newID(), rule.NextDueDate, rule.ID)
			l.insertTransaction(tx)
			if rule.Notify {
				l.active = append([]domain.Alert{alerts.RecurringProcessed(tx)}, l.active...)
			}
			report.Generated = append(report.Generated, tx)

			rule.NextDueDate = next
			generated++
		}

		if generated > 0 {
			report.Advanced = append(report.Advanced, rule.ID)
			log.Info().Int("generated", generated).Time("next_due_date", rule.NextDueDate).Msg("Recurring rule processed")
		}
	}

	if len(report.Generated) == 0 {
		return report, nil
	}
	return report, l.commit(ctx)
}
