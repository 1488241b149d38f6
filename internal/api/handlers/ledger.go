package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/dvloznov/pocket-ledger/internal/api/middleware"
	"github.com/dvloznov/pocket-ledger/internal/calc"
	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/recurrence"
	"github.com/shopspring/decimal"
)

// ListRecurring handles GET /api/recurring
func (h *LedgerHandler) ListRecurring(w http.ResponseWriter, r *http.Request) {
	rules := h.ledger.RecurringRules()
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		lang = h.ledger.Settings().Language
	}

	type ruleView struct {
		domain.RecurringRule
		Label string `json:"label"`
	}
	views := make([]ruleView, 0, len(rules))
	for _, rule := range rules {
		views = append(views, ruleView{
			RecurringRule: rule,
			Label:         recurrence.Describe(rule.Frequency, rule.NextDueDate, lang),
		})
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"rules": views,
		"count": len(views),
	})
}

// UpdateRecurring handles PUT /api/recurring/{id}. Only the active flag can
// change.
func (h *LedgerHandler) UpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active *bool `json:"active"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Active == nil {
		middleware.WriteError(w, http.StatusBadRequest, "active is required")
		return
	}
	rule, err := h.ledger.SetRuleActive(r.Context(), r.PathValue("id"), *req.Active)
	if err != nil {
		h.writeErr(w, err, "Failed to update recurring rule")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, rule)
}

// DeleteRecurring handles DELETE /api/recurring/{id}
func (h *LedgerHandler) DeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteRecurringRule(r.Context(), r.PathValue("id")); err != nil {
		h.writeErr(w, err, "Failed to delete recurring rule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunRecurring handles POST /api/recurring/run
func (h *LedgerHandler) RunRecurring(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseTime(r, "asOf")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid asOf date")
		return
	}
	report, err := h.ledger.RunRecurring(r.Context(), asOf)
	if err != nil {
		h.writeErr(w, err, "Failed to run recurring rules")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, report)
}

// ListAlerts handles GET /api/alerts
func (h *LedgerHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	active := h.ledger.Alerts()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": active,
		"count":  len(active),
	})
}

// DismissAlert handles DELETE /api/alerts/{id}
func (h *LedgerHandler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	if !h.ledger.DismissAlert(r.PathValue("id")) {
		middleware.WriteError(w, http.StatusNotFound, "Alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings handles GET /api/settings
func (h *LedgerHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.ledger.Settings())
}

// UpdateSettings handles PUT /api/settings
func (h *LedgerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	current := h.ledger.Settings()
	if !decodeBody(w, r, &current) {
		return
	}
	updated, err := h.ledger.UpdateSettings(r.Context(), current)
	if err != nil {
		h.writeErr(w, err, "Failed to update settings")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Overview handles GET /api/overview
func (h *LedgerHandler) Overview(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseTime(r, "asOf")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid asOf date")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.ledger.Overview(asOf))
}

// Export handles GET /api/export
func (h *LedgerHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.ledger.Export()
	if err != nil {
		h.writeErr(w, err, "Failed to export snapshot")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="pocket-ledger-`+h.now().Format("2006-01-02")+`.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/import. The body is a previously exported
// document; the ledger is replaced only if the whole document parses.
func (h *LedgerHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.ledger.Import(r.Context(), data); err != nil {
		h.writeErr(w, err, "Failed to import snapshot")
		return
	}
	snap := h.ledger.Snapshot()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "imported",
		"accounts":     len(snap.Accounts),
		"transactions": len(snap.Transactions),
	})
}

// Convert handles GET /api/convert?amount=&from=&to=
func (h *LedgerHandler) Convert(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	amount, err := decimal.NewFromString(query.Get("amount"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid amount")
		return
	}
	from := domain.Currency(strings.ToUpper(query.Get("from")))
	to := domain.Currency(strings.ToUpper(query.Get("to")))
	if from == "" || to == "" {
		middleware.WriteError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"amount":    amount,
		"from":      from,
		"to":        to,
		"converted": currency.Convert(amount, from, to, h.ledger.Rates()).Round(2),
		"symbol":    currency.Symbol(to),
	})
}

// Next handles GET /api/next?date=&frequency=
func (h *LedgerHandler) Next(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	freq := domain.Frequency(query.Get("frequency"))
	if !freq.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid frequency")
		return
	}
	date, err := h.parseTime(r, "date")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date")
		return
	}
	lang := query.Get("lang")
	if lang == "" {
		lang = h.ledger.Settings().Language
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":  date,
		"next":  recurrence.Next(date, freq),
		"label": recurrence.Describe(freq, date, lang),
	})
}

// Calc handles GET /api/calc?expr=
func (h *LedgerHandler) Calc(w http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("expr")
	value, err := calc.Evaluate(expr)
	if err != nil {
		h.writeErr(w, err, "Failed to evaluate expression")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expr":  expr,
		"value": value,
	})
}

// Categories handles GET /api/categories
func (h *LedgerHandler) Categories(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": domain.DefaultCategories,
		"count":      len(domain.DefaultCategories),
	})
}
