package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderbell/internal/app"
	appctx "orderbell/internal/core/context"
	"orderbell/internal/domain/notification"
	v1 "orderbell/internal/infrastructure/http/v1"
	"orderbell/internal/infrastructure/metrics"
	"orderbell/internal/infrastructure/push"
	"orderbell/pkg/logger"
)

const (
	adminHeader = "Bearer admin"
	userHeader  = "Bearer user"
	token       = "ExponentPushToken[abc123]"
)

// headerAuthorizer maps fixed bearer values to callers.
type headerAuthorizer struct{}

func (headerAuthorizer) Authorize(_ context.Context, header string) *appctx.UserContext {
	switch header {
	case adminHeader:
		return &appctx.UserContext{UserID: "admin", Roles: []string{"dsek", "dsek.sexm"}, IsAdmin: true}
	case userHeader:
		return &appctx.UserContext{UserID: "user", Roles: []string{"dsek"}}
	}
	return nil
}

// countingAuthorizer records how often the identity provider is consulted.
type countingAuthorizer struct {
	headerAuthorizer
	mu    sync.Mutex
	calls int
}

func (a *countingAuthorizer) Authorize(ctx context.Context, header string) *appctx.UserContext {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	return a.headerAuthorizer.Authorize(ctx, header)
}

func (a *countingAuthorizer) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// expoServer captures push requests.
type expoServer struct {
	mu       sync.Mutex
	messages []notification.Message
	srv      *httptest.Server
}

func newExpoServer(t *testing.T) *expoServer {
	t.Helper()
	e := &expoServer{}
	e.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []notification.Message
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		e.mu.Lock()
		e.messages = append(e.messages, batch...)
		e.mu.Unlock()

		tickets := make([]map[string]string, len(batch))
		for i := range batch {
			tickets[i] = map[string]string{"status": "ok", "id": "ticket"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": tickets})
	}))
	t.Cleanup(e.srv.Close)
	return e
}

func (e *expoServer) received() []notification.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notification.Message(nil), e.messages...)
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	expo    *expoServer
	state   *app.State
}

func newTestAPI(t *testing.T, mutate ...func(*v1.RouterConfig)) *testAPI {
	t.Helper()
	expo := newExpoServer(t)
	m := metrics.New()
	state := app.NewState(push.New(push.Config{BaseURL: expo.srv.URL}), m, time.Second)

	cfg := v1.RouterConfig{
		State:      state,
		Logger:     logger.Nop(),
		Authorizer: headerAuthorizer{},
		Metrics:    m,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	return &testAPI{t: t, handler: v1.NewRouter(cfg), expo: expo, state: state}
}

func (a *testAPI) do(method, path, auth string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type orderBody struct {
	ID     int      `json:"id"`
	Orders []string `json:"orders"`
	IsDone bool     `json:"isDone"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func TestRouter_OrderLifecycle(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/order", adminHeader, map[string]any{"orders": []string{"Burger", "Fries"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[orderBody](t, w)
	assert.Equal(t, orderBody{ID: 0, Orders: []string{"Burger", "Fries"}}, created)

	w = api.do(http.MethodGet, "/orders", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []orderBody{created}, decode[[]orderBody](t, w))

	w = api.do(http.MethodPost, "/order/subscribe", "", map[string]any{"id": 0, "token": token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t,
		"Successfully subscribed to order #0 with token "+token,
		decode[map[string]string](t, w)["message"])

	w = api.do(http.MethodPut, "/order", adminHeader, map[string]any{"id": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[orderBody](t, w).IsDone)

	msgs := api.expo.received()
	require.Len(t, msgs, 1)
	assert.Equal(t, token, msgs[0].To)
	assert.Equal(t, "Nu kan du gå och hämta beställning #0", msgs[0].Body)

	// subscriptions were drained by the completion
	w = api.do(http.MethodPost, "/order/unsubscribe", "", map[string]any{"id": 0, "token": token})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_SUBSCRIPTIONS", decode[errorBody](t, w).Code)

	w = api.do(http.MethodDelete, "/order", adminHeader, map[string]any{"id": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/orders", "", nil)
	assert.Empty(t, decode[[]orderBody](t, w))

	w = api.do(http.MethodGet, "/history", "", nil)
	history := decode[[]orderBody](t, w)
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].ID)
	assert.True(t, history[0].IsDone)
}

func TestRouter_AdminRoutesRequireAdmin(t *testing.T) {
	api := newTestAPI(t)

	routes := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/menuItem", map[string]any{"name": "Burger"}},
		{http.MethodDelete, "/menuItem", map[string]any{"name": "Burger"}},
		{http.MethodPost, "/order", map[string]any{"orders": []string{"Burger"}}},
		{http.MethodPut, "/order", map[string]any{"id": 0}},
		{http.MethodPut, "/order/done", map[string]any{"id": 0}},
		{http.MethodDelete, "/order", map[string]any{"id": 0}},
	}

	for _, rt := range routes {
		for _, auth := range []string{"", userHeader, "Bearer garbage"} {
			t.Run(rt.method+" "+rt.path+" "+auth, func(t *testing.T) {
				w := api.do(rt.method, rt.path, auth, rt.body)
				require.Equal(t, http.StatusForbidden, w.Code)
				body := decode[errorBody](t, w)
				assert.Equal(t, "FORBIDDEN", body.Code)
				assert.Equal(t, "Forbidden", body.Message)
				assert.Empty(t, body.Details)
			})
		}
	}

	assert.Empty(t, api.state.Orders.List())
	assert.Empty(t, api.state.Menu.List())
}

func TestRouter_ExplicitOrderID(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/order", adminHeader, map[string]any{"orders": []string{}, "id": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, orderBody{ID: 5, Orders: []string{}}, decode[orderBody](t, w))

	w = api.do(http.MethodPost, "/order", adminHeader, map[string]any{"orders": []string{"Soup"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 6, decode[orderBody](t, w).ID)

	w = api.do(http.MethodPost, "/order", adminHeader, map[string]any{"orders": []string{"Soup"}, "id": 5})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DUPLICATE_ID", decode[errorBody](t, w).Code)
}

func TestRouter_LegacyDoneRoute(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/order", adminHeader, map[string]any{"orders": []string{"Tea"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPut, "/order/done", adminHeader, map[string]any{"id": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[orderBody](t, w).IsDone)
}

func TestRouter_UnknownOrder(t *testing.T) {
	api := newTestAPI(t)

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		w := api.do(method, "/order", adminHeader, map[string]any{"id": 7})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[errorBody](t, w)
		assert.Equal(t, "NOT_FOUND", body.Code)
		assert.Equal(t, "There is no order with the id 7", body.Message)
	}
}

func TestRouter_Menu(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/menuItem", adminHeader, map[string]any{"name": "Burger", "imageUrl": "http://img/b.png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]string{"name": "Burger", "imageUrl": "http://img/b.png"}, decode[map[string]string](t, w))

	w = api.do(http.MethodPost, "/menuItem", adminHeader, map[string]any{"name": "Burger"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", decode[errorBody](t, w).Code)

	w = api.do(http.MethodGet, "/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]string](t, w), 1)

	w = api.do(http.MethodDelete, "/menuItem", adminHeader, map[string]any{"name": "Pizza"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Equal(t, "There is no menu item with the name Pizza", body.Message)

	w = api.do(http.MethodDelete, "/menuItem", adminHeader, map[string]any{"name": "Burger"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/menu", "", nil)
	assert.Empty(t, decode[[]map[string]string](t, w))
}

func TestRouter_Subscriptions(t *testing.T) {
	api := newTestAPI(t)

	t.Run("invalid token", func(t *testing.T) {
		w := api.do(http.MethodPost, "/order/subscribe", "", map[string]any{"id": 1, "token": "nope"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[errorBody](t, w)
		assert.Equal(t, "INVALID_TOKEN", body.Code)
		assert.Equal(t, "nope is not a valid expo token", body.Message)
	})

	t.Run("subscribe via PUT, then unsubscribe", func(t *testing.T) {
		w := api.do(http.MethodPut, "/order/subscribe", "", map[string]any{"id": 3, "token": token})
		require.Equal(t, http.StatusOK, w.Code)

		w = api.do(http.MethodPost, "/order/unsubscribe", "", map[string]any{"id": 3, "token": "ExpoPushToken[other]"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "TOKEN_NOT_SUBSCRIBED", decode[errorBody](t, w).Code)

		w = api.do(http.MethodPost, "/order/unsubscribe", "", map[string]any{"id": 3, "token": token})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t,
			"Successfully unsubscribed from order #3 with token "+token,
			decode[map[string]string](t, w)["message"])
	})
}

func TestRouter_MalformedBody(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		method, path, auth string
		body               any
	}{
		{http.MethodPost, "/order", adminHeader, "{not json"},
		{http.MethodPost, "/order", adminHeader, map[string]any{"id": 1}},
		{http.MethodPut, "/order", adminHeader, map[string]any{}},
		{http.MethodPost, "/menuItem", adminHeader, map[string]any{"imageUrl": "x"}},
		{http.MethodPost, "/order/subscribe", "", map[string]any{"token": token}},
	}
	for _, tc := range cases {
		w := api.do(tc.method, tc.path, tc.auth, tc.body)
		require.Equal(t, http.StatusBadRequest, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, w).Code)
	}
}

func TestRouter_CORS(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodOptions, "/order", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = api.do(http.MethodGet, "/orders", "", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_CORSRestrictedOrigins(t *testing.T) {
	api := newTestAPI(t, func(cfg *v1.RouterConfig) {
		cfg.CORSOrigins = []string{"https://app.example"}
	})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimitsSubscriptions(t *testing.T) {
	api := newTestAPI(t, func(cfg *v1.RouterConfig) {
		cfg.RateLimitRPS = 0.001
		cfg.RateLimitBurst = 2
	})

	body := map[string]any{"id": 1, "token": token}
	for range 2 {
		require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/order/subscribe", "", body).Code)
	}

	w := api.do(http.MethodPost, "/order/subscribe", "", body)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", decode[errorBody](t, w).Code)

	// reads are not throttled
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/orders", "", nil).Code)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		w := api.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode[map[string]any](t, w)["status"])
	}

	api.do(http.MethodPost, "/order", adminHeader, map[string]any{"orders": []string{"Tea"}})

	w := api.do(http.MethodGet, "/health/info", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[map[string]any](t, w)
	state := info["state"].(map[string]any)
	assert.EqualValues(t, 1, state["active_orders"])
	assert.EqualValues(t, 1, state["next_order_id"])

	w = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "orderbell_orders_created_total 1")
	assert.Contains(t, w.Body.String(), `orderbell_http_requests_total{`)
}

func TestRouter_PublicRoutesSkipIdentityProvider(t *testing.T) {
	authz := &countingAuthorizer{}
	api := newTestAPI(t, func(cfg *v1.RouterConfig) {
		cfg.Authorizer = authz
	})

	for _, path := range []string{"/orders", "/menu", "/history", "/health/live"} {
		require.Equal(t, http.StatusOK, api.do(http.MethodGet, path, "Bearer stale", nil).Code, path)
	}
	w := api.do(http.MethodPost, "/order/subscribe", "Bearer stale", map[string]any{"id": 1, "token": token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, authz.count())

	w = api.do(http.MethodPost, "/order", adminHeader, map[string]any{"orders": []string{"Tea"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, authz.count())
}
