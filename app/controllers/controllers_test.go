package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/supplydesk/app/controllers"
	"github.com/shashiranjanraj/supplydesk/app/graphql"
	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/app/notifier"
	"github.com/shashiranjanraj/supplydesk/app/repositories"
	"github.com/shashiranjanraj/supplydesk/app/routes"
	"github.com/shashiranjanraj/supplydesk/app/services"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/cache"
	"github.com/shashiranjanraj/supplydesk/pkg/database"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/mail"
	"github.com/shashiranjanraj/supplydesk/pkg/notification"
	"github.com/shashiranjanraj/supplydesk/pkg/router"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// outbox records every envelope and fails while err is set.
type outbox struct {
	mu   sync.Mutex
	sent []mail.Envelope
	err  error
}

func (o *outbox) Name() string { return "outbox" }

func (o *outbox) Send(_ context.Context, e mail.Envelope) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, e)
	return nil
}

func (o *outbox) last() mail.Envelope {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent[len(o.sent)-1]
}

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type api struct {
	t   *testing.T
	h   http.Handler
	box *outbox
}

func newAPI(t *testing.T) *api {
	t.Helper()

	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "requests.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Request{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	creds, err := auth.NewStaticCredentials("admin", "s3cret")
	require.NoError(t, err)

	box := &outbox{}
	store := repositories.NewRequestRepository(db, cache.NewMemory())
	n := notifier.New(notification.NewDispatcher(box, ""))

	svc := services.NewRequestService(store, n)

	r := router.New()
	routes.RegisterAPI(r, routes.Controllers{
		Auth:     controllers.NewAuthController(services.NewAuthService(creds)),
		Catalog:  controllers.NewCatalogController(),
		Requests: controllers.NewRequestController(svc),
		GraphQL:  controllers.NewGraphQLController(graphql.MustSchema(svc)),
	})
	return &api{t: t, h: r.Handler(), box: box}
}

func (a *api) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (a *api) login(email, department string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/login", "", map[string]string{
		"employee_id": "E-" + email, "email": email, "department": department,
	})
	require.Equal(a.t, http.StatusOK, code, env.Message)
	return token(a.t, env)
}

func (a *api) adminLogin() string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "admin", "password": "s3cret", "admin_email": "admin@ceat.com",
	})
	require.Equal(a.t, http.StatusOK, code, env.Message)
	return token(a.t, env)
}

func token(t *testing.T, env envelope) string {
	var s services.Session
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s.Token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestCatalog(t *testing.T) {
	a := newAPI(t)
	code, env := a.do(http.MethodGet, "/api/catalog", "", nil)

	require.Equal(t, http.StatusOK, code)
	cat := decode[map[string][]string](t, env)
	assert.Len(t, cat["items"], 51)
	assert.Contains(t, cat["departments"], "Finance")
}

func TestRequestLifecycle(t *testing.T) {
	a := newAPI(t)
	alice := a.login("alice@gmail.com", "IT")
	bob := a.login("bob@ceat.com", "HR")
	admin := a.adminLogin()

	code, env := a.do(http.MethodPost, "/api/requests", alice, map[string]any{"name": "Alice", "item": "pen", "quantity": 2})
	require.Equal(t, http.StatusCreated, code, env.Message)
	receipt := decode[services.Receipt](t, env)
	assert.Equal(t, uint(1), receipt.Request.ID)
	assert.Equal(t, models.StatusPending, receipt.Request.Status)
	assert.Equal(t, "alice@gmail.com", receipt.Request.Email)
	assert.True(t, receipt.Notified)
	assert.Equal(t, "Request Submission", a.box.last().Subject)
	assert.Equal(t, []string{"alice@gmail.com"}, a.box.last().To)

	code, _ = a.do(http.MethodPost, "/api/requests", bob, map[string]any{"name": "Bob", "item": "STAPLER", "quantity": 1})
	require.Equal(t, http.StatusCreated, code)

	code, _ = a.do(http.MethodGet, "/api/requests", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodDelete, "/api/requests/1", admin, nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = a.do(http.MethodGet, "/api/requests", admin, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[[]models.Request](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, uint(1), list[0].ID)
	assert.Equal(t, "bob@ceat.com", list[0].Email)

	code, env = a.do(http.MethodPatch, "/api/requests/1/status", admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, code, env.Message)
	receipt = decode[services.Receipt](t, env)
	assert.Equal(t, models.StatusApproved, receipt.Request.Status)
	assert.Equal(t, "Request Approved", a.box.last().Subject)
	assert.Equal(t, []string{"bob@ceat.com"}, a.box.last().To)

	code, env = a.do(http.MethodGet, "/api/recipients", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"bob@ceat.com"}, decode[[]string](t, env))

	code, env = a.do(http.MethodPost, "/api/messages", admin, map[string]string{"email": "bob@ceat.com", "message": "Pick it up at desk 4"})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Message from Admin", a.box.last().Subject)
	assert.Equal(t, "SupplyDesk Admin", a.box.last().FromName)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t)
	alice := a.login("alice@gmail.com", "IT")
	admin := a.adminLogin()

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		code   int
	}{
		{"no token", http.MethodPost, "/api/requests", "", map[string]any{"name": "A", "item": "PEN", "quantity": 1}, http.StatusUnauthorized},
		{"unknown item", http.MethodPost, "/api/requests", alice, map[string]any{"name": "A", "item": "LAPTOP", "quantity": 1}, http.StatusUnprocessableEntity},
		{"zero quantity", http.MethodPost, "/api/requests", alice, map[string]any{"name": "A", "item": "PEN", "quantity": 0}, http.StatusUnprocessableEntity},
		{"empty name", http.MethodPost, "/api/requests", alice, map[string]any{"name": " ", "item": "PEN", "quantity": 1}, http.StatusUnprocessableEntity},
		{"unknown field", http.MethodPost, "/api/requests", alice, map[string]any{"name": "A", "email": "x@gmail.com"}, http.StatusBadRequest},
		{"status of missing id", http.MethodPatch, "/api/requests/9/status", admin, map[string]string{"status": "Rejected"}, http.StatusNotFound},
		{"bad status", http.MethodPatch, "/api/requests/1/status", admin, map[string]string{"status": "Done"}, http.StatusUnprocessableEntity},
		{"missing status", http.MethodPatch, "/api/requests/1/status", admin, map[string]string{}, http.StatusUnprocessableEntity},
		{"delete missing id", http.MethodDelete, "/api/requests/9", admin, nil, http.StatusNotFound},
		{"delete non-numeric id", http.MethodDelete, "/api/requests/abc", admin, nil, http.StatusNotFound},
		{"user cannot delete", http.MethodDelete, "/api/requests/1", alice, nil, http.StatusForbidden},
		{"message to stranger", http.MethodPost, "/api/messages", admin, map[string]string{"email": "x@gmail.com", "message": "hi"}, http.StatusUnprocessableEntity},
		{"login with foreign domain", http.MethodPost, "/api/login", "", map[string]string{"employee_id": "E-9", "email": "x@yahoo.com", "department": "IT"}, http.StatusUnprocessableEntity},
		{"login with unknown department", http.MethodPost, "/api/login", "", map[string]string{"employee_id": "E-9", "email": "x@gmail.com", "department": "Legal"}, http.StatusUnprocessableEntity},
		{"admin wrong password", http.MethodPost, "/api/admin/login", "", map[string]string{"username": "admin", "password": "nope", "admin_email": "admin@ceat.com"}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := a.do(tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.code, code, env.Message)
			assert.Equal(t, tc.code, env.Status)
		})
	}
}

func TestDeliveryFailureKeepsTheRequest(t *testing.T) {
	a := newAPI(t)
	alice := a.login("alice@gmail.com", "IT")
	admin := a.adminLogin()

	a.box.err = errors.New("smtp: 421 service not available")

	code, env := a.do(http.MethodPost, "/api/requests", alice, map[string]any{"name": "Alice", "item": "PEN", "quantity": 1})
	require.Equal(t, http.StatusCreated, code)
	receipt := decode[services.Receipt](t, env)
	assert.False(t, receipt.Notified)
	assert.Contains(t, receipt.NoticeError, "421")

	code, env = a.do(http.MethodGet, "/api/requests", admin, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.Request](t, env), 1)

	code, _ = a.do(http.MethodPost, "/api/messages", admin, map[string]string{"email": "alice@gmail.com", "message": "hello"})
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	code, env := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", decode[map[string]string](t, env)["state"])
}
