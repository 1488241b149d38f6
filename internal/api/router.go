// Package api assembles the HTTP surface of the ledger.
package api

import (
	"net/http"

	"github.com/dvloznov/pocket-ledger/internal/api/handlers"
	"github.com/dvloznov/pocket-ledger/internal/api/middleware"
	"github.com/rs/zerolog"
)

// NewRouter registers every route and wraps the mux in the middleware chain.
// jobsHandler may be nil when no job queue runs in this process.
func NewRouter(h *handlers.LedgerHandler, jobsHandler *handlers.JobsHandler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /api/accounts", h.ListAccounts)
	mux.HandleFunc("POST /api/accounts", h.CreateAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", h.UpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", h.DeleteAccount)

	mux.HandleFunc("GET /api/goals", h.ListGoals)
	mux.HandleFunc("POST /api/goals", h.CreateGoal)
	mux.HandleFunc("PUT /api/goals/{id}", h.UpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", h.DeleteGoal)

	mux.HandleFunc("GET /api/debts", h.ListDebts)
	mux.HandleFunc("POST /api/debts", h.CreateDebt)
	mux.HandleFunc("PUT /api/debts/{id}", h.UpdateDebt)
	mux.HandleFunc("DELETE /api/debts/{id}", h.DeleteDebt)

	mux.HandleFunc("GET /api/budgets", h.ListBudgets)
	mux.HandleFunc("POST /api/budgets", h.CreateBudget)
	mux.HandleFunc("PUT /api/budgets/{id}", h.UpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", h.DeleteBudget)
	mux.HandleFunc("GET /api/budgets/{id}/status", h.BudgetStatus)

	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("POST /api/transactions", h.CreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", h.UpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.DeleteTransaction)
	mux.HandleFunc("POST /api/transactions/{id}/undo", h.UndoDelete)

	mux.HandleFunc("GET /api/recurring", h.ListRecurring)
	mux.HandleFunc("POST /api/recurring/run", h.RunRecurring)
	mux.HandleFunc("PUT /api/recurring/{id}", h.UpdateRecurring)
	mux.HandleFunc("DELETE /api/recurring/{id}", h.DeleteRecurring)

	mux.HandleFunc("GET /api/alerts", h.ListAlerts)
	mux.HandleFunc("DELETE /api/alerts/{id}", h.DismissAlert)

	mux.HandleFunc("GET /api/settings", h.GetSettings)
	mux.HandleFunc("PUT /api/settings", h.UpdateSettings)

	mux.HandleFunc("GET /api/overview", h.Overview)
	mux.HandleFunc("GET /api/export", h.Export)
	mux.HandleFunc("POST /api/import", h.Import)

	mux.HandleFunc("GET /api/categories", h.Categories)
	mux.HandleFunc("GET /api/convert", h.Convert)
	mux.HandleFunc("GET /api/next", h.Next)
	mux.HandleFunc("GET /api/calc", h.Calc)

	if jobsHandler != nil {
		mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
		mux.HandleFunc("POST /api/jobs", jobsHandler.EnqueueJob)
		mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.GetJob)
	}

	return middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.RequestID,
		middleware.CORS,
	)
}
