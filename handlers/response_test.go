package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unauthorized", utils.ErrUnauthorized, http.StatusUnauthorized, "Not authorized"},
		{"not found", fmt.Errorf("balance: %w", utils.ErrNotFound), http.StatusNotFound, "Not found"},
		{"credentials", utils.ErrInvalidCredentials, http.StatusBadRequest, "invalid username or password"},
		{"user exists", utils.ErrUserExists, http.StatusBadRequest, "user already exists"},
		{"insufficient", utils.ErrInsufficientFunds, http.StatusBadRequest, "insufficient balance"},
		{"invalid wrapped", fmt.Errorf("%w: amount must be greater than zero", utils.ErrInvalidRequest), http.StatusBadRequest, "invalid request: amount must be greater than zero"},
		{"unknown", errors.New("dial tcp: connection refused"), http.StatusBadRequest, genericErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := StatusForError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
		})
	}
}

// authedRouter mounts the routes with a valid token already attached by do.
func authedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"))
	return r
}

func do(t *testing.T, r *gin.Engine, method string, path string, body string, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func testToken(t *testing.T) string {
	t.Helper()
	t.Setenv("JWT_SECRET", "handler-secret")
	token, err := utils.JwtGenerate(1)
	require.NoError(t, err)
	return token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := authedRouter()
	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/incomes"},
		{http.MethodPost, "/api/incomes/all"},
		{http.MethodGet, "/api/incomes/total"},
		{http.MethodPost, "/api/expenses/monthly"},
		{http.MethodGet, "/api/expenses/tags"},
		{http.MethodPost, "/api/balances/all"},
		{http.MethodGet, "/api/balances/total"},
		{http.MethodGet, "/api/users/profile"},
	} {
		w, body := do(t, r, route.method, route.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.Equal(t, "Not authorized, no token", body["message"], route.path)
	}
}

func TestMonthlyReportsRequireDates(t *testing.T) {
	r := authedRouter()
	token := testToken(t)
	for _, path := range []string{"/api/incomes/monthly", "/api/expenses/monthly", "/api/balances/monthly"} {
		w, body := do(t, r, http.MethodPost, path, `{"startDate":"2024-01-01"}`, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Contains(t, body["message"], "start date and end date are required", path)
	}

	w, body := do(t, r, http.MethodPost, "/api/balances/monthly", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["message"], "start date and end date are required")
}

func TestCreateIncomeValidation(t *testing.T) {
	r := authedRouter()
	token := testToken(t)

	w, body := do(t, r, http.MethodPost, "/api/incomes", `{"amount":"100"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request", body["message"])
	assert.Equal(t, map[string]any{"source": "required"}, body["errors"])

	w, body = do(t, r, http.MethodPost, "/api/incomes", `{"source":"Salary","amount":"-5"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request: amount must be greater than zero", body["message"])

	w, _ = do(t, r, http.MethodPost, "/api/incomes", `{not json`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateExpenseValidation(t *testing.T) {
	r := authedRouter()
	token := testToken(t)

	w, body := do(t, r, http.MethodPost, "/api/expenses", `{"tag":"Food","description":"lunch","amount":0}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request: amount must be greater than zero", body["message"])

	w, body = do(t, r, http.MethodPost, "/api/expenses", `{"description":"lunch","amount":"12"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"tag": "required"}, body["errors"])

	w, body = do(t, r, http.MethodPost, "/api/expenses", `{"tag":"Food","amount":"12"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"description": "required"}, body["errors"])

	w, body = do(t, r, http.MethodPost, "/api/expenses", `{"tag":"Food","description":"   ","amount":5}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request: description is required", body["message"])
}

func TestCreateRejectsExtremeExponentAmount(t *testing.T) {
	r := authedRouter()
	token := testToken(t)

	for _, tt := range []struct{ path, body string }{
		{"/api/incomes", `{"source":"x","amount":"1e-50000000"}`},
		{"/api/incomes", `{"source":"x","amount":1e-50000000}`},
		{"/api/expenses", `{"tag":"Food","description":"lunch","amount":"1e-50000000"}`},
	} {
		w, body := do(t, r, http.MethodPost, tt.path, tt.body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.body)
		assert.Equal(t, "invalid request: amount must be greater than zero", body["message"], tt.body)
	}
}

func TestListInvalidDateFilter(t *testing.T) {
	r := authedRouter()
	token := testToken(t)

	w, body := do(t, r, http.MethodPost, "/api/incomes/all?page=1&size=5", `{"startDate":"not-a-date"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["message"], "invalid request")
}

func TestRegisterValidation(t *testing.T) {
	r := authedRouter()

	w, body := do(t, r, http.MethodPost, "/api/users", `{"username":"amy","email":"not-an-email","password":"pw123456"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request", body["message"])
	require.IsType(t, map[string]any{}, body["errors"])
	assert.Equal(t, "email", body["errors"].(map[string]any)["email"])
}

func TestLogoutClearsCookie(t *testing.T) {
	r := authedRouter()

	w, body := do(t, r, http.MethodPost, "/api/users/logout", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully", body["message"])

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "jwt", cookies[0].Name)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}
