package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/api/handlers"
	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/pocket-ledger/internal/ledger"
	"github.com/dvloznov/pocket-ledger/internal/storage/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	ledger  *ledger.Ledger
	store   *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	seq := 0
	l := ledger.New(domain.NewState(), ledger.Options{
		Rates:  currency.Rates{domain.USD: decimal.NewFromInt(1), domain.EUR: decimal.RequireFromString("0.9")},
		Store:  store,
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return t0 },
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	h := NewRouter(
		handlers.NewLedgerHandler(l, zerolog.Nop()),
		handlers.NewJobsHandler(inmemory.NewStore(), nil, zerolog.Nop()),
		zerolog.Nop(),
	)
	return &testServer{handler: h, ledger: l, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *testServer) mustCreate(t *testing.T, path string, body interface{}) {
	t.Helper()
	rec := s.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestTransferThroughAPI(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, "/api/accounts", map[string]interface{}{"id": "A", "name": "Checking", "type": "checking", "balance": 100, "currency": "USD"})
	s.mustCreate(t, "/api/accounts", map[string]interface{}{"id": "B", "name": "Euro", "type": "savings", "balance": "0", "currency": "EUR"})

	rec := s.do(t, http.MethodPost, "/api/transactions", map[string]interface{}{
		"transaction": map[string]interface{}{
			"title":       "Uber",
			"type":        "transfer",
			"currency":    "USD",
			"accountId":   "A",
			"toAccountId": "B",
		},
		"amountExpr": "4+6",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Transaction
	decodeInto(t, rec, &created)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "cat_transport", created.Category)
	assert.Equal(t, t0, created.Date)

	rec = s.do(t, http.MethodGet, "/api/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Accounts []handlers.AccountView `json:"accounts"`
		Count    int                    `json:"count"`
	}
	decodeInto(t, rec, &list)
	require.Equal(t, 2, list.Count)
	assert.True(t, list.Accounts[0].Balance.Equal(decimal.NewFromInt(90)))
	assert.True(t, list.Accounts[1].Balance.Equal(decimal.NewFromInt(9)))
	assert.True(t, list.Accounts[0].Accrued.Total.Equal(decimal.NewFromInt(90)))

	assert.Positive(t, s.store.Saves())
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, "/api/accounts", map[string]interface{}{"id": "A", "name": "A", "balance": 10})
	s.mustCreate(t, "/api/goals", map[string]interface{}{"id": "G", "name": "Trip", "targetAmount": 100, "currentAmount": 0})

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"malformed json", "{", http.StatusBadRequest},
		{"empty title", map[string]interface{}{"transaction": map[string]interface{}{"amount": 5, "type": "expense", "accountId": "A"}}, http.StatusBadRequest},
		{"zero amount", map[string]interface{}{"transaction": map[string]interface{}{"title": "x", "type": "expense", "accountId": "A"}}, http.StatusBadRequest},
		{"bad expression", map[string]interface{}{"transaction": map[string]interface{}{"title": "x", "type": "expense", "accountId": "A"}, "amountExpr": "5/0"}, http.StatusBadRequest},
		{"transfer to goal", map[string]interface{}{"transaction": map[string]interface{}{"title": "x", "amount": 5, "type": "transfer", "accountId": "A", "toAccountId": "G"}}, http.StatusBadRequest},
		{"bad frequency", map[string]interface{}{"transaction": map[string]interface{}{"title": "x", "amount": 5, "type": "expense", "accountId": "A"}, "recurring": map[string]interface{}{"frequency": "hourly"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/transactions", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			var body map[string]string
			decodeInto(t, rec, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Empty(t, s.ledger.Transactions())
}

func TestDeleteAndUndo(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, "/api/accounts", map[string]interface{}{"id": "A", "name": "A", "balance": 100})
	s.mustCreate(t, "/api/transactions", map[string]interface{}{
		"transaction": map[string]interface{}{"id": "t1", "title": "Pizza", "amount": "12.5", "type": "expense", "accountId": "A"},
	})

	rec := s.do(t, http.MethodDelete, "/api/transactions/t1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/transactions/t1/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tx, err := s.ledger.Transaction("t1")
	require.NoError(t, err)
	assert.Equal(t, "cat_food", tx.Category)

	rec = s.do(t, http.MethodPost, "/api/transactions/t1/undo", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntityErrors(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, "/api/accounts", map[string]interface{}{"id": "A", "name": "A"})

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/api/accounts", map[string]interface{}{"id": "A", "name": "again"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/accounts", map[string]interface{}{"id": "X"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/api/accounts/nope", map[string]interface{}{"name": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/goals/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/budgets/nope/status", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/alerts/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, s.do(t, http.MethodDelete, "/api/settings", nil).Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/accounts/A", nil).Code)
	assert.Empty(t, s.ledger.Accounts())
}

func TestBudgetAndDebtEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, "/api/accounts", map[string]interface{}{"id": "A", "name": "A", "balance": 1000})
	s.mustCreate(t, "/api/budgets", map[string]interface{}{"id": "food", "categoryId": "cat_food", "limit": 100})
	s.mustCreate(t, "/api/transactions", map[string]interface{}{
		"transaction": map[string]interface{}{"title": "Groceries", "amount": 80, "type": "expense", "category": "cat_food", "accountId": "A"},
	})

	rec := s.do(t, http.MethodGet, "/api/budgets/food/status?asOf=2024-03-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]interface{}
	decodeInto(t, rec, &status)
	assert.Equal(t, "warning", status["level"])
	assert.Equal(t, "80", status["spent"])

	s.mustCreate(t, "/api/debts", map[string]interface{}{
		"id": "d1", "personName": "Sam", "amount": 1000, "type": "owes_me",
		"enableInterest": true, "interestRate": 12, "interestFrequency": "yearly", "startDate": "2024-01-01T00:00:00Z",
	})
	rec = s.do(t, http.MethodGet, "/api/debts?asOf=2025-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var debts struct {
		Debts []ledger.DebtView `json:"debts"`
	}
	decodeInto(t, rec, &debts)
	require.Len(t, debts.Debts, 1)
	assert.InDelta(t, 1120, debts.Debts[0].Accrued.Total.InexactFloat64(), 2.5)
}

func TestRecurringEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, "/api/accounts", map[string]interface{}{"id": "A", "name": "A", "balance": 1000})
	s.mustCreate(t, "/api/transactions", map[string]interface{}{
		"transaction": map[string]interface{}{"title": "Coffee", "amount": 3, "type": "expense", "accountId": "A", "date": "2024-03-08T12:00:00Z"},
		"recurring":   map[string]interface{}{"frequency": "daily", "notify": true},
	})

	rec := s.do(t, http.MethodGet, "/api/recurring?lang=en", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rules struct {
		Rules []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"rules"`
	}
	decodeInto(t, rec, &rules)
	require.Len(t, rules.Rules, 1)
	assert.Contains(t, rules.Rules[0].Label, "Every day")

	rec = s.do(t, http.MethodPost, "/api/recurring/run?asOf=2024-03-10T12:00:00Z", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report ledger.RunReport
	decodeInto(t, rec, &report)
	assert.Len(t, report.Generated, 2)

	rec = s.do(t, http.MethodGet, "/api/alerts", nil)
	var active struct {
		Alerts []domain.Alert `json:"alerts"`
	}
	decodeInto(t, rec, &active)
	require.NotEmpty(t, active.Alerts)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/alerts/"+active.Alerts[0].ID, nil).Code)

	ruleID := rules.Rules[0].ID
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/recurring/"+ruleID, map[string]interface{}{}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/recurring/"+ruleID, map[string]interface{}{"active": false}).Code)
	assert.False(t, s.ledger.RecurringRules()[0].Active)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/recurring/"+ruleID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/recurring/"+ruleID, nil).Code)
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/settings", map[string]interface{}{"name": "Ana", "currency": "EUR"})
	require.Equal(t, http.StatusOK, rec.Code)

	settings := s.ledger.Settings()
	assert.Equal(t, "Ana", settings.Name)
	assert.Equal(t, domain.EUR, settings.Currency)
	assert.Equal(t, "es", settings.Language, "fields not sent keep their value")
	assert.True(t, settings.Notifications.LowBalance)
}

func TestExportImport(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, "/api/accounts", map[string]interface{}{"id": "A", "name": "A", "balance": 42})

	rec := s.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "pocket-ledger-")
	exported := rec.Body.String()

	other := newTestServer(t)
	rec = other.do(t, http.MethodPost, "/api/import", `{"accounts": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = other.do(t, http.MethodPost, "/api/import", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	accounts := other.ledger.Accounts()
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].Balance.Equal(decimal.NewFromInt(42)))
}

func TestUtilityEndpoints(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		path  string
		code  int
		key   string
		value string
	}{
		{"convert", "/api/convert?amount=100&from=usd&to=EUR", http.StatusOK, "converted", "90"},
		{"convert bad amount", "/api/convert?amount=abc&from=USD&to=EUR", http.StatusBadRequest, "error", "Invalid amount"},
		{"next month end", "/api/next?date=2024-01-31&frequency=monthly", http.StatusOK, "next", "2024-02-29T12:00:00Z"},
		{"next bad frequency", "/api/next?date=2024-01-31&frequency=hourly", http.StatusBadRequest, "error", "Invalid frequency"},
		{"calc precedence", "/api/calc?expr=2%2B3*4", http.StatusOK, "value", "14"},
		{"calc division by zero", "/api/calc?expr=1/0", http.StatusBadRequest, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.key == "" {
				return
			}
			var body map[string]interface{}
			decodeInto(t, rec, &body)
			assert.Equal(t, tt.value, body[tt.key])
		})
	}
}

func TestOverviewAndCategories(t *testing.T) {
	s := newTestServer(t)
	s.mustCreate(t, "/api/accounts", map[string]interface{}{"id": "A", "name": "A", "balance": 500})

	rec := s.do(t, http.MethodGet, "/api/overview?asOf=2024-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var overview map[string]interface{}
	decodeInto(t, rec, &overview)
	assert.Equal(t, "500", overview["netWorth"])

	rec = s.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cats struct {
		Count int `json:"count"`
	}
	decodeInto(t, rec, &cats)
	assert.Equal(t, len(domain.DefaultCategories), cats.Count)
}

func TestJobsEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/jobs/missing", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodPost, "/api/jobs", map[string]string{"type": "run_recurring"}).Code)
}
