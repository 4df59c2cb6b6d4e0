package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/adapters/config"
	"studiodesk/internal/adapters/redis"
	"studiodesk/internal/api"
	"studiodesk/internal/api/health"
	"studiodesk/internal/testsupport/studiotest"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

type call struct {
	agent, session, prompt string
}

type stubAssistant struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (s *stubAssistant) record(agent, sessionID, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{agent, sessionID, prompt})
	if s.err != nil {
		return "", s.err
	}
	return agent + " answer to " + prompt, nil
}

func (s *stubAssistant) Support(_ context.Context, sessionID, prompt string) (string, error) {
	return s.record("support", sessionID, prompt)
}

func (s *stubAssistant) Dashboard(_ context.Context, sessionID, prompt string) (string, error) {
	return s.record("dashboard", sessionID, prompt)
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *mapCache) GetBytes(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, redis.ErrCacheMiss
}

func (m *mapCache) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = value
	return nil
}

type fixture struct {
	env       *studiotest.Env
	assistant *stubAssistant
	handler   http.Handler
}

func newFixture(t *testing.T, deps api.Deps) *fixture {
	t.Helper()

	env := studiotest.Seeded(t)
	assistant := &stubAssistant{}
	deps.Assistant = assistant
	deps.Support = env.Support
	deps.Dashboard = env.Dashboard

	server := api.NewServer(api.ServerConfig{
		HTTP: config.HTTPConfig{
			Port:           0,
			RequestTimeout: 5 * time.Second,
			SessionHeader:  "X-Session-ID",
			DefaultSession: "default_user",
		},
		RateLimit: config.RateLimitConfig{AgentPerMinute: 10, Burst: 5},
		CacheTTL:  time.Minute,
	}, deps, logger.Nop())

	return &fixture{env: env, assistant: assistant, handler: server.Handler()}
}

func (f *fixture) do(t *testing.T, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAgentRoutes(t *testing.T) {
	f := newFixture(t, api.Deps{})

	rec := f.do(t, http.MethodPost, "/support/query", `{"prompt":"What are my dues?"}`, map[string]string{"X-Session-ID": "s-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"support answer to What are my dues?"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/dashboard/query", `{"prompt":"Revenue?","session_id":"body-session"}`, map[string]string{"X-Session-ID": "header-session"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/support/query", `{"prompt":"hello"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, f.assistant.calls, 3)
	assert.Equal(t, call{"support", "s-1", "What are my dues?"}, f.assistant.calls[0])
	assert.Equal(t, "body-session", f.assistant.calls[1].session)
	assert.Equal(t, "default_user", f.assistant.calls[2].session)
}

func TestAgentRoutes_Errors(t *testing.T) {
	f := newFixture(t, api.Deps{})

	rec := f.do(t, http.MethodPost, "/support/query", `{"prompt":"   "}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "prompt is required", decode(t, rec)["error"])

	rec = f.do(t, http.MethodPost, "/support/query", `{"prompt":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.assistant.err = errors.Wrap(errors.ErrProviderFailure, "support agent")
	rec = f.do(t, http.MethodPost, "/dashboard/query", `{"prompt":"Revenue?"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "language model provider failure")
}

func TestSupportQueryRoutes(t *testing.T) {
	f := newFixture(t, api.Deps{})

	rec := f.do(t, http.MethodGet, "/test/order_by_id?order_id=ORDER_2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ORDER_2", body["order_id"])
	assert.Equal(t, "pending", body["status"])

	rec = f.do(t, http.MethodGet, "/test/order_by_id?order_id=NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/test/payment_details?order_id=ORDER_2", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Payment not found"}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/test/pending_dues?client_id=CLIENT_A", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"client_id":"CLIENT_A","pending_dues":1500.5}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/test/orders_by_client?client_id=CLIENT_Z", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/test/orders_by_client", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "client_id")

	rec = f.do(t, http.MethodGet, "/test/search_clients?name=priya", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var clients []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "CLIENT_A", clients[0]["client_id"])

	rec = f.do(t, http.MethodGet, "/test/upcoming_classes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var classes []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &classes))
	require.Len(t, classes, 1)
	assert.Equal(t, "CLASS_002", classes[0]["class_id"])
}

func TestDashboardQueryRoutes(t *testing.T) {
	f := newFixture(t, api.Deps{})

	rec := f.do(t, http.MethodGet, "/test/total_revenue", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `2500`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/test/outstanding_payments", "", nil)
	assert.JSONEq(t, `1500.5`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/test/client_counts", "", nil)
	assert.JSONEq(t, `{"active":2,"inactive":1}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/test/new_clients_this_month", "", nil)
	assert.JSONEq(t, `{"new_clients_this_month":1}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/test/attendance_percentage?class_name=Morning%20Yoga", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"class":"Morning Yoga","attendance_percentage":75}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/test/attendance_percentage?class_name=Boxing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Class not found"}`, rec.Body.String())
}

func TestDashboardRoutesAreCached(t *testing.T) {
	cache := &mapCache{}
	f := newFixture(t, api.Deps{Cache: cache})

	rec := f.do(t, http.MethodGet, "/test/total_revenue", "", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec = f.do(t, http.MethodGet, "/test/total_revenue", "", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `2500`, rec.Body.String())

	// support lookups are never cached
	rec = f.do(t, http.MethodGet, "/test/pending_dues?client_id=CLIENT_A", "", nil)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestWriteRoutes(t *testing.T) {
	f := newFixture(t, api.Deps{})

	rec := f.do(t, http.MethodPost, "/test/create_client_enquiry",
		`{"client_data":{"name":"Kavya Nair","email":"kavya@example.com","phone":"+91 90000 11111","birthday":"1994-06-02"}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Client enquiry created", body["message"])
	clientID, _ := body["client_id"].(string)
	assert.True(t, strings.HasPrefix(clientID, "CLIENT_"))

	stored, err := f.env.Studio.Clients.GetByID(context.Background(), clientID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, stored.EnrolledServices)

	rec = f.do(t, http.MethodPost, "/test/create_client_enquiry",
		`{"client_data":{"name":"Ishaan Roy","email":"ishaan@example.com","phone":"+91 90000 33333","enrolled_services":["COURSE_001"]}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	enrolledID, _ := decode(t, rec)["client_id"].(string)
	stored, err = f.env.Studio.Clients.GetByID(context.Background(), enrolledID)
	require.NoError(t, err)
	assert.Equal(t, []string{"COURSE_001"}, stored.EnrolledServices)

	rec = f.do(t, http.MethodPost, "/test/create_client_enquiry", `{"name":"No Contact"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/test/create_order",
		`{"client_id":"`+clientID+`","service_info":{"service_id":"COURSE_001","service_type":"course","service_name":"Yoga Beginner","amount":2500}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decode(t, rec)
	assert.Equal(t, "Order created", body["message"])
	assert.NotEmpty(t, body["order_id"])

	rec = f.do(t, http.MethodPost, "/test/create_order",
		`{"client_id":"CLIENT_MISSING","service_info":{"service_id":"COURSE_001","service_type":"course","service_name":"Yoga Beginner","amount":2500}}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOperationalRoutes(t *testing.T) {
	f := newFixture(t, api.Deps{
		Health: health.New(logger.Nop(), "studiodesk", "test",
			health.Check{Name: "mongo", Required: true, Ping: func(context.Context) error { return nil }}),
	})

	rec := f.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/query")

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/metrics", "", nil).Code)

	rec = f.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode(t, rec), "error")
}
