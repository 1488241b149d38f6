// Package snapshot converts ledger state to and from the JSON backup
// document. Import is tolerant of older and hand-edited backups.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
)

// Version is written into every exported document.
const Version = 1

var (
	ErrMalformed = errors.New("malformed snapshot")
	ErrBadDate   = errors.New("unrecognised date")
)

// Document is the backup file layout.
type Document struct {
	Version        int                    `json:"version"`
	Timestamp      time.Time              `json:"timestamp"`
	Settings       domain.Settings        `json:"settings"`
	Accounts       []domain.Account       `json:"accounts"`
	Transactions   []domain.Transaction   `json:"transactions"`
	Goals          []domain.Goal          `json:"goals"`
	Debts          []domain.Debt          `json:"debts"`
	Budgets        []domain.Budget        `json:"budgets"`
	RecurringRules []domain.RecurringRule `json:"recurringRules"`
}

// Export renders state as an indented backup document stamped with now.
func Export(state domain.State, now time.Time) ([]byte, error) {
	state = state.Clone()
	doc := Document{
		Version:        Version,
		Timestamp:      now.UTC(),
		Settings:       state.Settings,
		Accounts:       state.Accounts,
		Transactions:   state.Transactions,
		Goals:          state.Goals,
		Debts:          state.Debts,
		Budgets:        state.Budgets,
		RecurringRules: state.RecurringRules,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("Export: marshaling document: %w", err)
	}
	return append(data, '\n'), nil
}

// Import parses a backup document. Amounts may be JSON numbers or strings,
// dates may be RFC 3339, "2006-01-02" or "2006-01-02T15:04". Missing sections
// are empty, missing settings take their defaults, rules without an active
// flag are active and goal completion is recomputed. A rule without a
// nextDueDate is imported paused and a transaction without a date is
// rejected. The caller's state is never touched, so a failed import leaves
// nothing half applied.
func Import(data []byte) (*domain.State, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("Import: %w: %v", ErrMalformed, err)
	}
	root, ok := tree.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("Import: %w: top level is not an object", ErrMalformed)
	}

	if err := normalize(root); err != nil {
		return nil, fmt.Errorf("Import: %w", err)
	}
	if rules, ok := root["recurringRules"].([]any); ok {
		for _, r := range rules {
			if m, ok := r.(map[string]any); ok {
				if _, set := m["active"]; !set {
					m["active"] = true
				}
			}
		}
	}

	normalized, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("Import: re-encoding: %w", err)
	}

	doc := Document{Settings: domain.DefaultSettings()}
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, fmt.Errorf("Import: %w: %v", ErrMalformed, err)
	}
	if doc.Version > Version {
		return nil, fmt.Errorf("Import: %w: unsupported version %d", ErrMalformed, doc.Version)
	}

	state := domain.NewState()
	state.Settings = doc.Settings
	if doc.Settings.Currency == "" {
		state.Settings.Currency = domain.USD
	}
	if doc.Accounts != nil {
		state.Accounts = doc.Accounts
	}
	if doc.Transactions != nil {
		state.Transactions = doc.Transactions
	}
	for _, tx := range state.Transactions {
		if tx.Date.IsZero() {
			return nil, fmt.Errorf("Import: %w: transaction %q has no date", ErrMalformed, tx.ID)
		}
	}
	if doc.Goals != nil {
		state.Goals = doc.Goals
	}
	if doc.Debts != nil {
		state.Debts = doc.Debts
	}
	if doc.Budgets != nil {
		state.Budgets = doc.Budgets
	}
	if doc.RecurringRules != nil {
		state.RecurringRules = doc.RecurringRules
	}
	for i := range state.RecurringRules {
		if state.RecurringRules[i].NextDueDate.IsZero() {
			state.RecurringRules[i].Active = false
		}
	}
	for i := range state.Goals {
		state.Goals[i].RefreshCompletion()
	}
	return &state, nil
}

var dateKeys = map[string]bool{
	"date":        true,
	"deadline":    true,
	"dueDate":     true,
	"startDate":   true,
	"nextDueDate": true,
	"timestamp":   true,
}

var numberKeys = map[string]bool{
	"interestRate": true,
	"version":      true,
}

// normalize rewrites dates to RFC 3339 and numeric strings to numbers for
// the fields that are not decimals, in place.
func normalize(v any) error {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			s, isString := child.(string)
			switch {
			case isString && dateKeys[k]:
				if strings.TrimSpace(s) == "" {
					delete(node, k)
					continue
				}
				t, err := ParseDate(s)
				if err != nil {
					return fmt.Errorf("field %q: %w", k, err)
				}
				node[k] = t.Format(time.RFC3339Nano)
			case isString && numberKeys[k]:
				if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
					return fmt.Errorf("field %q: %w: %q is not a number", k, ErrMalformed, s)
				}
				node[k] = json.Number(strings.TrimSpace(s))
			case child == nil && dateKeys[k]:
				delete(node, k)
			default:
				if err := normalize(child); err != nil {
					return err
				}
			}
		}
	case []any:
		for _, child := range node {
			if err := normalize(child); err != nil {
				return err
			}
		}
	}
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate accepts the date spellings found in backups. Times without a
// zone are read as UTC and bare dates as noon UTC, so the calendar day
// survives conversion to any local zone.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Add(12 * time.Hour), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}
