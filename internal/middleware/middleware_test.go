package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/alchemorsel-planner/backend/internal/types"
)

type stubValidator struct {
	claims *types.TokenClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*types.TokenClaims, error) {
	return s.claims, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	ok := stubValidator{claims: &types.TokenClaims{UserID: userID, Username: "cook"}}

	tests := []struct {
		name      string
		validator TokenValidator
		header    string
		want      int
	}{
		{"missing header", ok, "", http.StatusUnauthorized},
		{"wrong scheme", ok, "Basic abc", http.StatusUnauthorized},
		{"too many parts", ok, "Bearer a b", http.StatusUnauthorized},
		{"invalid token", stubValidator{err: errors.New("bad")}, "Bearer abc", http.StatusUnauthorized},
		{"valid token", ok, "Bearer abc", http.StatusOK},
		{"lowercase scheme", ok, "bearer abc", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", AuthMiddleware(tt.validator), func(c *gin.Context) {
				id, found := UserID(c)
				require.True(t, found)
				assert.Equal(t, userID, id)
				assert.Equal(t, "cook", c.GetString("username"))
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(ErrorHandler(zap.New(core)))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/error", func(c *gin.Context) {
		_ = c.Error(errors.New("store unavailable"))
		c.Status(http.StatusServiceUnavailable)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/error", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"store unavailable"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
}

func TestLocalRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocalRateLimiter(1, 2)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	d, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d, _ = l.Allow(ctx, "a")
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, _ = l.Allow(ctx, "a")
	assert.False(t, d.Allowed)
	assert.Equal(t, 2, d.Limit)

	d, _ = l.Allow(ctx, "b")
	assert.True(t, d.Allowed, "keys are independent")

	now = now.Add(time.Second)
	d, _ = l.Allow(ctx, "a")
	assert.True(t, d.Allowed, "bucket refills over time")
}

func TestLocalRateLimiterEvictsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLocalRateLimiter(1, 2)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, err := l.Allow(ctx, fmt.Sprintf("ip:10.0.0.%d", i))
		require.NoError(t, err)
	}
	assert.Len(t, l.buckets, 100)

	now = now.Add(30 * time.Second)
	_, _ = l.Allow(ctx, "ip:10.0.0.1")
	assert.Len(t, l.buckets, 100, "buckets stay until idle long enough")

	// 70s after the first sweep mark: the untouched keys have been idle past
	// the limit, 10.0.0.1 only for 40s.
	now = now.Add(minLocalIdle - 20*time.Second)
	d, _ := l.Allow(ctx, "ip:10.0.0.200")
	assert.True(t, d.Allowed)
	assert.Len(t, l.buckets, 2, "only the recently used key and the new one remain")
	assert.Contains(t, l.buckets, "ip:10.0.0.1")
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (LimitDecision, error) {
	return LimitDecision{}, errors.New("redis down")
}

func TestRateLimitMiddleware(t *testing.T) {
	userID := uuid.New()
	r := gin.New()
	r.POST("/plans",
		AuthMiddleware(stubValidator{claims: &types.TokenClaims{UserID: userID}}),
		RateLimitMiddleware(NewLocalRateLimiter(0.001, 1), zap.NewNop()),
		func(c *gin.Context) { c.Status(http.StatusCreated) },
	)

	req := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/plans", nil)
		req.Header.Set("Authorization", "Bearer t")
		return req
	}

	w := serve(r, req())
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(r, req())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(failingLimiter{}, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}
