package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/stylehub/internal/config"
	"github.com/iliyamo/stylehub/internal/utils"
)

const secret = "test-secret"

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	tok, err := utils.SignIdentity(secret, sub, sub+"@example.com", "Ada", time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func serve(e *echo.Echo, method, target, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func whoami(c echo.Context) error {
	id := Identity(c)
	if id == nil {
		return c.String(http.StatusOK, "anon")
	}
	return c.String(http.StatusOK, id.Subject+" "+id.Email)
}

func TestIdentityJWT(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, IdentityJWT(secret))
	e.GET("/public", whoami, OptionalIdentityJWT(secret))

	rec := serve(e, http.MethodGet, "/me", bearer(t, "user_1"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_1 user_1@example.com", rec.Body.String())

	rec = serve(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.SignIdentity("other-secret", "user_1", "", "", time.Hour)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/me", "Bearer "+other.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := utils.SignIdentity(secret, "user_1", "", "", -time.Minute)
	require.NoError(t, err)
	rec = serve(e, http.MethodGet, "/me", "Bearer "+expired.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, http.MethodGet, "/public", "")
	assert.Equal(t, "anon", rec.Body.String())
	rec = serve(e, http.MethodGet, "/public", "Bearer junk")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFixedWindowLimitsPerWindow(t *testing.T) {
	_, rdb := newRedis(t)
	now := time.UnixMilli(1_700_000_000_000)
	clock := func() time.Time { return now }
	cfg := config.RateLimitConfig{Enabled: true, Limit: 5, Window: time.Minute, KeyStrategy: "ip", Prefix: "rl"}

	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewFixedWindow(cfg, rdb, zap.NewNop(), clock))

	for i := 0; i < 5; i++ {
		rec := serve(e, http.MethodGet, "/x", "")
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i+1)
	}
	rec := serve(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	now = now.Add(time.Minute)
	rec = serve(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestFixedWindowFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl"}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewFixedWindow(cfg, rdb, zap.NewNop(), nil))

	mr.Close()
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/x", "").Code)
	}
}

func TestBuildRateKeySeparatesUsers(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, KeyStrategy: "user", Prefix: "rl"}
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		IdentityJWT(secret), NewFixedWindow(cfg, rdb, zap.NewNop(), nil))

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/x", bearer(t, "a")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/x", bearer(t, "a")).Code)
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/x", bearer(t, "b")).Code)
}

func TestRedisCacheServesRepeatedGets(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache"}
	calls := 0
	e := echo.New()
	e.GET("/styles/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id")})
	}, NewRedisCache(cfg, rdb))

	first := serve(e, http.MethodGet, "/styles/1", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, http.MethodGet, "/styles/1", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))

	other := serve(e, http.MethodGet, "/styles/2", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)
}

func TestRedisCacheSkipsErrorsAndLargeBodies(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 4}
	e := echo.New()
	e.GET("/missing", func(c echo.Context) error { return c.NoContent(http.StatusNotFound) }, NewRedisCache(cfg, rdb))
	e.GET("/big", func(c echo.Context) error { return c.String(http.StatusOK, "too large") }, NewRedisCache(cfg, rdb))

	serve(e, http.MethodGet, "/missing", "")
	assert.Equal(t, "MISS", serve(e, http.MethodGet, "/missing", "").Header().Get("X-Cache"))
	serve(e, http.MethodGet, "/big", "")
	rec := serve(e, http.MethodGet, "/big", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, "too large", rec.Body.String())
}

func TestPayloadRoundTripRejectsShortInput(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 1})
	assert.False(t, ok)

	bs, err := encodePayload(http.StatusOK, http.Header{"X-A": {"1"}}, []byte("body"))
	require.NoError(t, err)
	status, hdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "1", hdr.Get("X-A"))
	assert.Equal(t, "body", string(body))
}
