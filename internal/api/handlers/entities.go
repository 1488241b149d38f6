package handlers

import (
	"net/http"

	"github.com/dvloznov/pocket-ledger/internal/api/middleware"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/interest"
)

// AccountView is an account with interest accrued to the request time.
type AccountView struct {
	domain.Account
	Accrued interest.Details `json:"accrued"`
}

// ListAccounts handles GET /api/accounts
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseTime(r, "asOf")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid asOf date")
		return
	}

	accounts := h.ledger.Accounts()
	views := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, AccountView{Account: a, Accrued: interest.ForAccount(a, asOf)})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": views,
		"count":    len(views),
	})
}

// CreateAccount handles POST /api/accounts
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var acc domain.Account
	if !decodeBody(w, r, &acc) {
		return
	}
	created, err := h.ledger.AddAccount(r.Context(), acc)
	if err != nil {
		h.writeErr(w, err, "Failed to add account")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// UpdateAccount handles PUT /api/accounts/{id}
func (h *LedgerHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	var acc domain.Account
	if !decodeBody(w, r, &acc) {
		return
	}
	acc.ID = r.PathValue("id")
	updated, err := h.ledger.UpdateAccount(r.Context(), acc)
	if err != nil {
		h.writeErr(w, err, "Failed to update account")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteAccount handles DELETE /api/accounts/{id}. The account's
// transactions and recurring rules go with it.
func (h *LedgerHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		h.writeErr(w, err, "Failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGoals handles GET /api/goals
func (h *LedgerHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	goals := h.ledger.Goals()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"goals": goals,
		"count": len(goals),
	})
}

// CreateGoal handles POST /api/goals
func (h *LedgerHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var g domain.Goal
	if !decodeBody(w, r, &g) {
		return
	}
	created, err := h.ledger.AddGoal(r.Context(), g)
	if err != nil {
		h.writeErr(w, err, "Failed to add goal")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// UpdateGoal handles PUT /api/goals/{id}
func (h *LedgerHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	var g domain.Goal
	if !decodeBody(w, r, &g) {
		return
	}
	g.ID = r.PathValue("id")
	updated, err := h.ledger.UpdateGoal(r.Context(), g)
	if err != nil {
		h.writeErr(w, err, "Failed to update goal")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteGoal handles DELETE /api/goals/{id}
func (h *LedgerHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		h.writeErr(w, err, "Failed to delete goal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDebts handles GET /api/debts. Each debt carries its accrued interest.
func (h *LedgerHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseTime(r, "asOf")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid asOf date")
		return
	}
	debts := h.ledger.DebtViews(asOf)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"debts": debts,
		"count": len(debts),
	})
}

// CreateDebt handles POST /api/debts
func (h *LedgerHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	var d domain.Debt
	if !decodeBody(w, r, &d) {
		return
	}
	created, err := h.ledger.AddDebt(r.Context(), d)
	if err != nil {
		h.writeErr(w, err, "Failed to add debt")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// UpdateDebt handles PUT /api/debts/{id}
func (h *LedgerHandler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	var d domain.Debt
	if !decodeBody(w, r, &d) {
		return
	}
	d.ID = r.PathValue("id")
	updated, err := h.ledger.UpdateDebt(r.Context(), d)
	if err != nil {
		h.writeErr(w, err, "Failed to update debt")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteDebt handles DELETE /api/debts/{id}
func (h *LedgerHandler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteDebt(r.Context(), r.PathValue("id")); err != nil {
		h.writeErr(w, err, "Failed to delete debt")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBudgets handles GET /api/budgets
func (h *LedgerHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets := h.ledger.Budgets()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"budgets": budgets,
		"count":   len(budgets),
	})
}

// CreateBudget handles POST /api/budgets
func (h *LedgerHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var b domain.Budget
	if !decodeBody(w, r, &b) {
		return
	}
	created, err := h.ledger.AddBudget(r.Context(), b)
	if err != nil {
		h.writeErr(w, err, "Failed to add budget")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// UpdateBudget handles PUT /api/budgets/{id}
func (h *LedgerHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	var b domain.Budget
	if !decodeBody(w, r, &b) {
		return
	}
	b.ID = r.PathValue("id")
	updated, err := h.ledger.UpdateBudget(r.Context(), b)
	if err != nil {
		h.writeErr(w, err, "Failed to update budget")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteBudget handles DELETE /api/budgets/{id}
func (h *LedgerHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteBudget(r.Context(), r.PathValue("id")); err != nil {
		h.writeErr(w, err, "Failed to delete budget")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BudgetStatus handles GET /api/budgets/{id}/status
func (h *LedgerHandler) BudgetStatus(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseTime(r, "asOf")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid asOf date")
		return
	}
	status, err := h.ledger.BudgetStatus(r.PathValue("id"), asOf)
	if err != nil {
		h.writeErr(w, err, "Failed to compute budget status")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, status)
}
