package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dvloznov/pocket-ledger/internal/api/middleware"
	"github.com/dvloznov/pocket-ledger/internal/calc"
	"github.com/dvloznov/pocket-ledger/internal/domain"
)

// fallbackCategory is used when no category was given and none could be
// guessed from the title.
const fallbackCategory = "cat_other"

// transactionRequest is the body of POST /api/transactions. AmountExpr, when
// set, is a keypad expression such as "12.50+3" and replaces the amount.
type transactionRequest struct {
	Transaction domain.Transaction       `json:"transaction"`
	AmountExpr  string                   `json:"amountExpr,omitempty"`
	Recurring   *domain.RecurringOptions `json:"recurring,omitempty"`
}

// ListTransactions handles GET /api/transactions
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	txs := h.ledger.Transactions()

	if accountID := query.Get("account_id"); accountID != "" {
		filtered := txs[:0]
		for _, tx := range txs {
			if tx.References(accountID) {
				filtered = append(filtered, tx)
			}
		}
		txs = filtered
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 && limit < len(txs) {
			txs = txs[:limit]
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *LedgerHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tx := req.Transaction
	if strings.TrimSpace(req.AmountExpr) != "" {
		amount, err := calc.Evaluate(req.AmountExpr)
		if err != nil {
			h.writeErr(w, err, "Failed to evaluate amount")
			return
		}
		tx.Amount = amount
	}
	if tx.Category == "" {
		tx.Category = fallbackCategory
		if guess, ok := domain.SuggestCategory(tx.Title, tx.Type); ok {
			tx.Category = guess
		}
	}
	if req.Recurring != nil {
		tx.IsRecurring = true
	}

	created, err := h.ledger.AddTransaction(r.Context(), tx, req.Recurring)
	if err != nil {
		h.writeErr(w, err, "Failed to add transaction")
		return
	}

	h.log.Info().
		Str("transaction_id", created.ID).
		Str("category", created.Category).
		Bool("recurring", created.IsRecurring).
		Msg("Transaction created via API")
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *LedgerHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx domain.Transaction
	if !decodeBody(w, r, &tx) {
		return
	}
	tx.ID = r.PathValue("id")
	updated, err := h.ledger.UpdateTransaction(r.Context(), tx)
	if err != nil {
		h.writeErr(w, err, "Failed to update transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteTransaction handles DELETE /api/transactions/{id}. The response
// carries the removed transaction so the client can offer undo.
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	removed, err := h.ledger.DeleteTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, err, "Failed to delete transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, removed)
}

// UndoDelete handles POST /api/transactions/{id}/undo
func (h *LedgerHandler) UndoDelete(w http.ResponseWriter, r *http.Request) {
	restored, err := h.ledger.UndoDelete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, err, "Failed to restore transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, restored)
}
