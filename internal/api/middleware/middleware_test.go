package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiodesk/internal/adapters/redis"
	"studiodesk/pkg/errors"
	"studiodesk/pkg/logger"
)

type fakeBucket struct {
	mu     sync.Mutex
	tokens map[string]int
	keys   []string
	err    error
}

func (b *fakeBucket) TakeToken(_ context.Context, key string, capacity int, _ time.Duration) (redis.BucketResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, key)
	if b.err != nil {
		return redis.BucketResult{}, b.err
	}
	if b.tokens == nil {
		b.tokens = make(map[string]int)
	}
	used := b.tokens[key]
	if used >= capacity {
		return redis.BucketResult{Allowed: false, RetryAfter: 1500 * time.Millisecond}, nil
	}
	b.tokens[key] = used + 1
	return redis.BucketResult{Allowed: true, Remaining: int64(capacity - used - 1)}, nil
}

type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
	err  error
}

func (s *fakeStore) GetBytes(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	v, ok := s.data[key]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return v, nil
}

func (s *fakeStore) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	s.data[key] = value
	s.sets++
	return nil
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	bucket := &fakeBucket{}
	e := echo.New()
	e.POST("/support/query", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, RateLimit(bucket, RateLimitConfig{PerMinute: 10, Burst: 2}, logger.Nop()))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/support/query").Code)
	rec := serve(e, http.MethodPost, "/support/query")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodPost, "/support/query")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded","retry_after":2}`, rec.Body.String())

	require.NotEmpty(t, bucket.keys)
	assert.Equal(t, "rl:ip:10.0.0.1:route:POST /support/query", bucket.keys[0])
}

func TestRateLimit_FailsOpen(t *testing.T) {
	bucket := &fakeBucket{err: errors.ErrUnavailable}
	e := echo.New()
	e.POST("/q", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, RateLimit(bucket, RateLimitConfig{PerMinute: 1, Burst: 1}, logger.Nop()))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/q").Code)
	}
}

func TestRateLimit_DisabledWithoutBucket(t *testing.T) {
	e := echo.New()
	e.POST("/q", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, RateLimit(nil, RateLimitConfig{PerMinute: 1, Burst: 1}, logger.Nop()))

	rec := serve(e, http.MethodPost, "/q")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestResponseCache_HitAfterMiss(t *testing.T) {
	store := &fakeStore{}
	calls := 0
	e := echo.New()
	e.GET("/test/total_revenue", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]float64{"total_revenue": 1500.5})
	}, ResponseCache(store, time.Minute, logger.Nop()))

	first := serve(e, http.MethodGet, "/test/total_revenue")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := serve(e, http.MethodGet, "/test/total_revenue")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get(echo.HeaderContentType), "application/json")
	assert.Equal(t, 1, calls)
}

func TestResponseCache_KeyIncludesQuery(t *testing.T) {
	store := &fakeStore{}
	e := echo.New()
	e.GET("/test/attendance", func(c echo.Context) error {
		return c.String(http.StatusOK, c.QueryParam("class_name"))
	}, ResponseCache(store, time.Minute, logger.Nop()))

	assert.Equal(t, "Yoga", serve(e, http.MethodGet, "/test/attendance?class_name=Yoga").Body.String())
	assert.Equal(t, "Pilates", serve(e, http.MethodGet, "/test/attendance?class_name=Pilates").Body.String())
	assert.Equal(t, 2, store.sets)
}

func TestResponseCache_SkipsNonOKAndStoreErrors(t *testing.T) {
	store := &fakeStore{}
	e := echo.New()
	e.GET("/missing", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Class not found"})
	}, ResponseCache(store, time.Minute, logger.Nop()))

	serve(e, http.MethodGet, "/missing")
	serve(e, http.MethodGet, "/missing")
	assert.Zero(t, store.sets)

	broken := &fakeStore{err: errors.ErrUnavailable}
	e2 := echo.New()
	e2.GET("/ok", func(c echo.Context) error {
		return c.String(http.StatusOK, "fresh")
	}, ResponseCache(broken, time.Minute, logger.Nop()))
	rec := serve(e2, http.MethodGet, "/ok")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh", rec.Body.String())
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	hdr.Set("X-Cache", "MISS")

	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Empty(t, got.Get("X-Cache"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
