package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gqlResult struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (a *api) graphql(token, query string, vars map[string]any) (int, gqlResult) {
	a.t.Helper()

	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(a.t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)

	var res gqlResult
	if rec.Code == http.StatusOK {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	}
	return rec.Code, res
}

func TestGraphQLRequiresSignIn(t *testing.T) {
	a := newAPI(t)
	code, _ := a.graphql("", `{ recipients }`, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestGraphQLQueries(t *testing.T) {
	a := newAPI(t)
	alice := a.login("alice@gmail.com", "IT")
	admin := a.adminLogin()

	code, env := a.do(http.MethodPost, "/api/requests", alice, map[string]any{"name": "Alice", "item": "pen", "quantity": 2})
	require.Equal(t, http.StatusCreated, code, env.Message)
	code, env = a.do(http.MethodPost, "/api/requests", alice, map[string]any{"name": "Alice", "item": "stapler", "quantity": 1})
	require.Equal(t, http.StatusCreated, code, env.Message)
	code, env = a.do(http.MethodPatch, "/api/requests/2/status", admin, map[string]string{"status": "Approved"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, res := a.graphql(admin, `query($s: String) { requests(status: $s) { id email status items } recipients }`,
		map[string]any{"s": "approved"})
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, res.Errors)

	var reqs []struct {
		ID     int      `json:"id"`
		Email  string   `json:"email"`
		Status string   `json:"status"`
		Items  []string `json:"items"`
	}
	require.NoError(t, json.Unmarshal(res.Data["requests"], &reqs))
	require.Len(t, reqs, 1)
	assert.Equal(t, 2, reqs[0].ID)
	assert.Equal(t, "Approved", reqs[0].Status)
	assert.Equal(t, []string{"Item: STAPLER", "Quantity: 1"}, reqs[0].Items)
	assert.JSONEq(t, `["alice@gmail.com"]`, string(res.Data["recipients"]))

	code, res = a.graphql(admin, `{ request(id: 1) { id text structured } }`, nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, res.Errors)
	assert.JSONEq(t, `{"id":1,"text":"Item: PEN, Quantity: 2","structured":false}`, string(res.Data["request"]))
}

func TestGraphQLEnforcesAdmin(t *testing.T) {
	a := newAPI(t)
	alice := a.login("alice@gmail.com", "IT")

	code, res := a.graphql(alice, `{ catalog { departments } recipients }`, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "forbidden")
}

func TestGraphQLUnknownRequest(t *testing.T) {
	a := newAPI(t)
	admin := a.adminLogin()

	code, res := a.graphql(admin, `{ request(id: 9) { id } }`, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "request 9 not found")
	assert.JSONEq(t, `null`, string(res.Data["request"]))
}

func TestGraphQLRequestByIDIsAdminOnly(t *testing.T) {
	a := newAPI(t)
	alice := a.login("alice@gmail.com", "IT")

	code, env := a.do(http.MethodPost, "/api/requests", alice, map[string]any{"name": "Alice", "item": "pen", "quantity": 2})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, res := a.graphql(alice, `{ request(id: 1) { id name status } }`, nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "forbidden")
	assert.JSONEq(t, `null`, string(res.Data["request"]))
}

func TestGraphQLRejectsNonPositiveID(t *testing.T) {
	a := newAPI(t)
	admin := a.adminLogin()

	for _, id := range []string{"0", "-3"} {
		code, res := a.graphql(admin, `{ request(id: `+id+`) { id } }`, nil)
		require.Equal(t, http.StatusOK, code)
		require.Len(t, res.Errors, 1, id)
		assert.Contains(t, res.Errors[0].Message, "invalid id "+id)
		assert.NotContains(t, res.Errors[0].Message, "request 0 not found")
		assert.JSONEq(t, `null`, string(res.Data["request"]))
	}
}

func TestGraphQLMissingQuery(t *testing.T) {
	a := newAPI(t)
	admin := a.adminLogin()

	code, _ := a.do(http.MethodPost, "/api/graphql", admin, map[string]any{"variables": map[string]any{}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}
