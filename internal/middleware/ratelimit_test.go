package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumbhsaathi/kumbhsaathi/internal/config"
	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
)

func TestParseBucketResult(t *testing.T) {
	res, err := parseBucketResult([]interface{}{int64(1), int64(4), int64(0)})
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(4), res.Remaining)

	res, err = parseBucketResult([]interface{}{int64(0), int64(0), "1500"})
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 1500*time.Millisecond, res.RetryAfter)

	_, err = parseBucketResult("OK")
	assert.Error(t, err)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/registrations", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/registrations")

	cfg := config.RateLimitConfig{Prefix: "ks:rl", KeyStrategy: "ip_route"}
	assert.Equal(t, "ks:rl:ip:10.0.0.7:route:POST /v1/registrations", buildRateKey(cfg, c))

	cfg.KeyStrategy = "caller"
	assert.Equal(t, "ks:rl:caller:anon", buildRateKey(cfg, c))
	WithPrincipal(c, model.Principal{Subject: "admin-console", Role: model.RoleAdmin})
	assert.Equal(t, "ks:rl:caller:admin-console", buildRateKey(cfg, c))
}
