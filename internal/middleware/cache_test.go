package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/config"
)

func TestCacheKeyFrom(t *testing.T) {
	e := echo.New()
	key := func(strategy, target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/ghats")
		return cacheKeyFrom(config.CacheConfig{Prefix: "kumbh", KeyStrategy: strategy}, c)
	}

	assert.Regexp(t, `^kumbh:[0-9a-f]{32}$`, key("", "/v1/ghats"))
	assert.NotEqual(t, key("route_query", "/v1/ghats?a=1"), key("route_query", "/v1/ghats?a=2"))
	assert.Equal(t, key("route", "/v1/ghats?a=1"), key("route", "/v1/ghats?a=2"))
	assert.NotEqual(t, key("route", "/v1/ghats"), key("method_route", "/v1/ghats"))
}

func TestNewRedisCache_DisabledWithoutRedis(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{http.MethodGet: true}}
	e := echo.New()
	e.Use(NewRedisCache(cfg, nil, zap.NewNop()))
	e.GET("/v1/ghats", func(c echo.Context) error { return c.String(http.StatusOK, "fresh") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ghats", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
