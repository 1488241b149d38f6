// Package handlers exposes the ledger over JSON HTTP endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/api/middleware"
	"github.com/dvloznov/pocket-ledger/internal/calc"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/jobs"
	"github.com/dvloznov/pocket-ledger/internal/ledger"
	"github.com/dvloznov/pocket-ledger/internal/snapshot"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds request bodies, imports included.
const maxBodyBytes = 10 << 20

// LedgerHandler handles every ledger endpoint.
type LedgerHandler struct {
	ledger *ledger.Ledger
	now    func() time.Time
	log    zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(l *ledger.Ledger, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger: l,
		now:    time.Now,
		log:    log,
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusFor maps ledger and domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrGoalNotFound),
		errors.Is(err, ledger.ErrDebtNotFound),
		errors.Is(err, ledger.ErrBudgetNotFound),
		errors.Is(err, ledger.ErrRuleNotFound),
		errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrUndoExpired):
		return http.StatusGone
	case errors.Is(err, ledger.ErrTransferToGoal),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingTitle),
		errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrMissingAccount),
		errors.Is(err, domain.ErrMissingDestination),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidFrequency),
		errors.Is(err, domain.ErrMissingName),
		errors.Is(err, snapshot.ErrMalformed),
		errors.Is(err, snapshot.ErrBadDate),
		errors.Is(err, calc.ErrSyntax),
		errors.Is(err, calc.ErrDivisionByZero):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeErr logs server side failures and writes the JSON error body. Client
// errors carry the error text, server errors a generic message.
func (h *LedgerHandler) writeErr(w http.ResponseWriter, err error, msg string) {
	writeErr(w, h.log, err, msg)
}

func writeErr(w http.ResponseWriter, log zerolog.Logger, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, status, msg)
		return
	}
	middleware.WriteError(w, status, err.Error())
}

// parseTime reads an optional date query parameter, falling back to now.
func (h *LedgerHandler) parseTime(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return h.now(), nil
	}
	return snapshot.ParseDate(raw)
}

// Health handles GET /health
func (h *LedgerHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}
