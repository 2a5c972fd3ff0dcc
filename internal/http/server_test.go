package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/core"
	"expenses/internal/services"
	"expenses/internal/storage"
)

type testServer struct {
	srv *Server
	svc *services.ExpenseService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "expenses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := services.NewExpenseService(store)
	srv := NewServer(Options{Addr: ":0", AllowedOrigins: []string{"http://localhost:8501"}}, svc, services.NewReconciler(svc))
	return &testServer{srv: srv, svc: svc}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) seed(t *testing.T, es ...core.Expense) {
	t.Helper()
	for _, e := range es {
		require.NoError(t, ts.svc.InsertExpense(context.Background(), e))
	}
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func exp(m time.Month, day int, cents int64, cat core.Category, notes string) core.Expense {
	return core.Expense{Date: core.NewDate(2024, m, day), Amount: core.Money{Cents: cents}, Category: cat, Notes: notes}
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[statusResponse](t, rr).Status)

	rr = ts.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ready", decode[statusResponse](t, rr).Status)
}

type downLedger struct{ Ledger }

func (downLedger) Ping(context.Context) error { return errors.New("disk gone") }

func TestReadyReportsStorageDown(t *testing.T) {
	srv := NewServer(Options{}, downLedger{}, nil)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestAddAndFetchForDate(t *testing.T) {
	ts := newTestServer(t)

	body := `[
		{"expense_date": "2024-08-01", "amount": 12.5, "category": "food", "notes": "Lunch"},
		{"expense_date": "2024-08-01", "amount": 30, "category": "Transportation", "notes": "Taxi"}
	]`
	rr := ts.do(t, http.MethodPost, "/expenses/addorupdate", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Expenses updated successfully", decode[messageResponse](t, rr).Message)

	rr = ts.do(t, http.MethodGet, "/expenses/2024-08-01", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[[]expenseView](t, rr)
	assert.Equal(t, []expenseView{
		{Date: "2024-08-01", Amount: 12.5, Category: "Food", Notes: "Lunch"},
		{Date: "2024-08-01", Amount: 30, Category: "Transportation", Notes: "Taxi"},
	}, got)
}

func TestAddRejectsWholeBatchOnInvalidEntry(t *testing.T) {
	ts := newTestServer(t)

	body := `[
		{"expense_date": "2024-08-01", "amount": 12.5, "category": "Food", "notes": "Lunch"},
		{"expense_date": "2024-08-01", "amount": 3, "category": "Toys", "notes": "Robot"}
	]`
	rr := ts.do(t, http.MethodPost, "/expenses/addorupdate", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[errorResponse](t, rr).Detail, "invalid category")

	rr = ts.do(t, http.MethodGet, "/expenses/2024-08-01", "")
	assert.Empty(t, decode[[]expenseView](t, rr))
}

func TestBadInputIs400(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"bad date in path", http.MethodGet, "/expenses/2024-13-01", ""},
		{"bad date on delete", http.MethodDelete, "/expenses/yesterday", ""},
		{"malformed json", http.MethodPost, "/expenses/note", `{"wildcard_note":`},
		{"negative amount", http.MethodPost, "/expenses/addorupdate", `[{"expense_date":"2024-08-01","amount":-1,"category":"Food","notes":""}]`},
		{"bad month", http.MethodPost, "/expenses/note", `{"wildcard_note":"x","year":2024,"months":[13]}`},
		{"bad category filter", http.MethodPost, "/analytics/expenses/monthly", `{"year":2024,"category":"Toys"}`},
		{"bad period", http.MethodPost, "/expenses/category/period", `{"category":"all","period_of_week":"someday"}`},
		{"missing date", http.MethodPost, "/expenses/category/date", `{"category":"all"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.NotEmpty(t, decode[errorResponse](t, rr).Detail)
		})
	}
}

func TestDeleteForDate(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t,
		exp(time.August, 1, 100, core.Food, "a"),
		exp(time.August, 1, 200, core.Food, "b"),
		exp(time.August, 2, 300, core.Food, "c"),
	)

	rr := ts.do(t, http.MethodDelete, "/expenses/2024-08-01", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(2), decode[deleteResponse](t, rr).Deleted)

	rr = ts.do(t, http.MethodGet, "/expenses/2024-08-02", "")
	assert.Len(t, decode[[]expenseView](t, rr), 1)
}

func TestMonthlyExpenses(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t,
		exp(time.January, 5, 1000, core.Food, "a"),
		exp(time.January, 6, 550, core.Food, "b"),
		exp(time.March, 1, 4000, core.Housing, "c"),
	)

	rr := ts.do(t, http.MethodPost, "/analytics/expenses/monthly", `{"year":2024,"category":"food"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[[]monthTotalView](t, rr)
	require.Len(t, got, 12)
	assert.Equal(t, monthTotalView{Month: "January", TotalAmount: 15.5}, got[0])
	assert.Equal(t, monthTotalView{Month: "March", TotalAmount: 0}, got[2])

	rr = ts.do(t, http.MethodPost, "/analytics/expenses/monthly", `{"year":2024,"category":"all"}`)
	got = decode[[]monthTotalView](t, rr)
	assert.Equal(t, 40.0, got[2].TotalAmount)
}

func TestCategoryBreakdown(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t,
		exp(time.August, 1, 7500, core.Food, "a"),
		exp(time.August, 2, 2500, core.Misc, "b"),
		exp(time.September, 1, 9900, core.Misc, "outside"),
	)

	rr := ts.do(t, http.MethodPost, "/analytics/getexpensesbydaterange",
		`{"start_date":"2024-08-01","end_date":"2024-08-31"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[map[string]categoryShareView](t, rr)
	assert.Equal(t, map[string]categoryShareView{
		"Food": {Total: 75, Percentage: 75},
		"Misc": {Total: 25, Percentage: 25},
	}, got)
}

func TestSearchEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t,
		exp(time.August, 1, 1200, core.Food, "Lunch with team"),  // Thursday
		exp(time.August, 3, 2000, core.Food, "Brunch"),           // Saturday
		exp(time.August, 3, 9000, core.Entertainment, "Concert"), // Saturday
	)

	rr := ts.do(t, http.MethodPost, "/expenses/note", `{"wildcard_note":"LUNCH","year":2024,"months":[8]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Lunch with team"}, notes(decode[[]expenseView](t, rr)))

	rr = ts.do(t, http.MethodPost, "/expenses/category/date", `{"category":"food","expense_date":"2024-08-03"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Brunch"}, notes(decode[[]expenseView](t, rr)))

	rr = ts.do(t, http.MethodPost, "/expenses/category/period", `{"category":"all","period_of_week":"weekend"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.ElementsMatch(t, []string{"Brunch", "Concert"}, notes(decode[[]expenseView](t, rr)))

	rr = ts.do(t, http.MethodPost, "/expenses/category/period", `{"category":"Food","period_of_week":"thursday"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Lunch with team"}, notes(decode[[]expenseView](t, rr)))
}

func TestUpdateBatch(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t,
		exp(time.August, 1, 1200, core.Food, "Lunch"),
		exp(time.August, 1, 3000, core.Transportation, "Taxi"),
	)

	body := `{
		"updates": [
			{"old_expense_date":"2024-08-01","old_amount":30,"old_category":"Transportation","old_notes":"Taxi",
			 "new_expense_date":"2024-08-01","new_amount":0,"new_category":"Transportation","new_notes":"Taxi"},
			{"old_expense_date":"2024-08-01","old_amount":12,"old_category":"Food","old_notes":"lunch",
			 "new_expense_date":"2024-08-01","new_amount":14.5,"new_category":"Food","new_notes":"Lunch"}
		],
		"additions": [
			{"expense_date":"2024-08-01","amount":3,"category":"Misc","notes":"Stamps"}
		]
	}`
	rr := ts.do(t, http.MethodPost, "/expenses/update", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, updateResponse{Message: "Operation completed successfully", Deleted: 1, Modified: 1, Added: 1},
		decode[updateResponse](t, rr))

	rr = ts.do(t, http.MethodGet, "/expenses/2024-08-01", "")
	got := decode[[]expenseView](t, rr)
	assert.ElementsMatch(t, []expenseView{
		{Date: "2024-08-01", Amount: 14.5, Category: "Food", Notes: "Lunch"},
		{Date: "2024-08-01", Amount: 3, Category: "Misc", Notes: "Stamps"},
	}, got)
}

func TestUpdateDuplicateAdditionIs400(t *testing.T) {
	ts := newTestServer(t)
	ts.seed(t, exp(time.August, 1, 300, core.Misc, "Stamps"))

	body := `{"updates": [], "additions": [
		{"expense_date":"2024-08-01","amount":3,"category":"misc","notes":"STAMPS"}
	]}`
	rr := ts.do(t, http.MethodPost, "/expenses/update", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[errorResponse](t, rr).Detail, "duplicate expense entry")
}

func TestUpdateRequestBatch(t *testing.T) {
	req := updateRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{
		"updates": [
			{"old_expense_date":"2024-08-01","old_amount":"1.10","old_category":"Food","old_notes":"a",
			 "new_expense_date":"2024-08-02","new_amount":2,"new_category":"Misc","new_notes":"b"},
			{"old_expense_date":"2024-08-01","old_amount":5,"old_category":"Food","old_notes":"c",
			 "new_expense_date":"2024-08-01","new_amount":0,"new_category":"Food","new_notes":"c"}
		],
		"additions": [{"expense_date":"2024-08-03","amount":1,"category":"Food","notes":"d"}]
	}`), &req))

	batch, err := req.Batch()
	require.NoError(t, err)
	require.Len(t, batch, 3)

	mod, ok := batch[0].(core.ModifyEdit)
	require.True(t, ok)
	assert.Equal(t, int64(110), mod.Old.Amount.Cents)
	assert.Equal(t, core.Category("Misc"), mod.New.Category)
	assert.Equal(t, "2024-08-02", mod.New.Date.String())

	del, ok := batch[1].(core.DeleteEdit)
	require.True(t, ok)
	assert.Equal(t, "c", del.Target.Notes)

	add, ok := batch[2].(core.AddEdit)
	require.True(t, ok)
	assert.Equal(t, int64(100), add.Expense.Amount.Cents)
}

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/expenses/update", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:8501", rr.Header().Get("Access-Control-Allow-Origin"))
}

func notes(vs []expenseView) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Notes
	}
	return out
}

func TestLegacyPathsAccepted(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(t, http.MethodPost, "/expenses/addorudpate/",
		`[{"expense_date": "2024-08-01", "amount": 40, "category": "Food", "notes": "Dinner"}]`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.do(t, http.MethodGet, "/expenses/2024-08-01/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Dinner"}, notes(decode[[]expenseView](t, rr)))

	rr = ts.do(t, http.MethodPost, "/analytics/getexpensesbydaterange/",
		`{"start_date":"2024-08-01","end_date":"2024-08-31"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, map[string]categoryShareView{
		"Food": {Total: 40, Percentage: 100},
	}, decode[map[string]categoryShareView](t, rr))
}
