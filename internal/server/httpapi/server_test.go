package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mathmystery/internal/common"
	"github.com/dmitrijs2005/mathmystery/internal/dbx"
	"github.com/dmitrijs2005/mathmystery/internal/logging"
	"github.com/dmitrijs2005/mathmystery/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mathmystery/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	server  *Server
	manager *pingManager
}

// pingManager lets tests switch the store's health.
type pingManager struct {
	*repomanager.InMemoryRepositoryManager
	pingErr error
	connErr error
}

func (m *pingManager) Ping(context.Context) error { return m.pingErr }

func (m *pingManager) Conn(ctx context.Context) (dbx.DBTX, error) {
	if m.connErr != nil {
		return nil, m.connErr
	}
	return m.InMemoryRepositoryManager.Conn(ctx)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	m := &pingManager{InMemoryRepositoryManager: repomanager.NewInMemoryRepositoryManager()}
	l := logging.Nop()

	srv := NewServer(
		Options{Address: "127.0.0.1:0", CORSOrigins: []string{"http://localhost:3000"}},
		l,
		services.NewCredentialService(m, l),
		services.NewSessionService(m, "test-secret", 30*time.Minute, l),
		services.NewGameService(m, []string{"npc1", "npc2"}, l),
		services.NewHealthService(m, l),
	)
	return &testEnv{server: srv, manager: m}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, r)
	return w
}

func accessCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == common.AccessTokenCookieName {
			return c
		}
	}
	t.Fatal("no access_token cookie in response")
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) registerAndLogin(t *testing.T, email string) *http.Cookie {
	t.Helper()
	creds := `{"user":"` + email + `","pass":"secret"}`
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/register", creds).Code)
	w := e.do(t, http.MethodPost, "/login", creds)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return accessCookie(t, w)
}

func TestRootAndHealth(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = e.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db_status":"connected"}`, w.Body.String())

	e.manager.pingErr = common.ErrPoolClosed
	w = e.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"db_status":"disconnected"}`, w.Body.String())

	w = e.do(t, http.MethodHead, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/register", `{"user":"a@example.com","pass":"secret"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"message":"Successfully Registered"}`, w.Body.String())

	w = e.do(t, http.MethodPost, "/register", `{"user":"a@example.com","pass":"other"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already in use", decode(t, w)["message"])

	for _, body := range []string{`{"user":"","pass":"x"}`, `{"user":"b@example.com"}`, `not json`} {
		w = e.do(t, http.MethodPost, "/register", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/register", `{"user":"a@example.com","pass":"secret"}`).Code)

	w := e.do(t, http.MethodPost, "/login", `{"user":"a@example.com","pass":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"message":"Successfully Authorized"}`, w.Body.String())

	c := accessCookie(t, w)
	assert.True(t, strings.HasPrefix(c.Value, common.BearerPrefix))
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 1800, c.MaxAge)

	for _, body := range []string{
		`{"user":"a@example.com","pass":"wrong"}`,
		`{"user":"ghost@example.com","pass":"secret"}`,
	} {
		w = e.do(t, http.MethodPost, "/login", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"ok":false,"message":"Invalid email or password"}`, w.Body.String())
	}
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	e := newTestEnv(t)

	bogus := &http.Cookie{Name: common.AccessTokenCookieName, Value: "Bearer nope"}

	for _, rt := range []struct{ method, path, body string }{
		{http.MethodPost, "/logout", ""},
		{http.MethodPost, "/game/save", `{}`},
		{http.MethodPut, "/game/update", `{"type":"problem","id":"p1"}`},
		{http.MethodGet, "/game/sync", ""},
	} {
		w := e.do(t, rt.method, rt.path, rt.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.path)

		w = e.do(t, rt.method, rt.path, rt.body, bogus)
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.path)
	}
}

func TestSingleSession(t *testing.T) {
	e := newTestEnv(t)
	first := e.registerAndLogin(t, "a@example.com")

	w := e.do(t, http.MethodPost, "/login", `{"user":"a@example.com","pass":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	second := accessCookie(t, w)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/game/sync", "", first).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/game/sync", "", second).Code)
}

func TestGameFlow(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.registerAndLogin(t, "a@example.com")

	w := e.do(t, http.MethodGet, "/game/sync", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"location":{"room":"Start","x":0,"y":0},
		"notebook":{},
		"access":{},
		"npc":[{"id":"npc1","state":{}},{"id":"npc2","state":{}}]
	}`, w.Body.String())

	for i := 0; i < 2; i++ {
		w = e.do(t, http.MethodPut, "/game/update", `{"type":"problem","id":"p1"}`, cookie)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	}

	w = e.do(t, http.MethodPut, "/game/update", `{"type":"location","msg":{"room":"Lab","x":"5","y":2.7}}`, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/game/sync", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, map[string]any{"room": "Lab", "x": float64(5), "y": float64(2)}, got["location"])
	assert.Equal(t, []any{"p1"}, got["notebook"].(map[string]any)["completed_problems"])

	saved := `{"location":{"room":"Attic","x":1,"y":1},"notebook":{"k":"v"},"access":{"attic":true},"npc":[{"id":"npc1","state":{"met":true}}]}`
	w = e.do(t, http.MethodPost, "/game/save", saved, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(t, http.MethodGet, "/game/sync", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, saved, w.Body.String())
}

func TestGameValidation(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.registerAndLogin(t, "a@example.com")

	for _, body := range []string{
		`{"type":"teleport"}`,
		`{"type":""}`,
		`{"id":"p1"}`,
		`{"type":"location","msg":{"x":"abc"}}`,
		`{"type":"location","msg":{"room":7}}`,
	} {
		w := e.do(t, http.MethodPut, "/game/update", body, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}

	for _, body := range []string{`[]`, `"{}"`, `{"location":{"x":true}}`, ``} {
		w := e.do(t, http.MethodPost, "/game/save", body, cookie)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}
}

func TestLogout(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.registerAndLogin(t, "a@example.com")

	w := e.do(t, http.MethodPost, "/logout", "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"message":"Successfully logged out"}`, w.Body.String())

	cleared := accessCookie(t, w)
	assert.Equal(t, "", cleared.Value)
	assert.True(t, cleared.MaxAge < 0)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/game/sync", "", cookie).Code)
}

func TestDeleteAccount(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.registerAndLogin(t, "a@example.com")

	w := e.do(t, http.MethodDelete, "/delete", `{"user":"a@example.com","pass":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/game/sync", "", cookie).Code)

	w = e.do(t, http.MethodDelete, "/delete", `{"user":"a@example.com","pass":"secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"message":"Successfully Deleted"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/game/sync", "", cookie).Code)

	w = e.do(t, http.MethodPost, "/login", `{"user":"a@example.com","pass":"secret"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	e := newTestEnv(t)
	cookie := e.registerAndLogin(t, "a@example.com")

	e.manager.connErr = common.ErrPoolClosed

	w := e.do(t, http.MethodGet, "/game/sync", "", cookie)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"message":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "pool")
}

func TestCORS(t *testing.T) {
	e := newTestEnv(t)

	r := httptest.NewRequest(http.MethodOptions, "/login", bytes.NewReader(nil))
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, r)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	e := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
