package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/config"
	"github.com/kumbhsaathi/kumbhsaathi/internal/handler"
	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
	"github.com/kumbhsaathi/kumbhsaathi/internal/notify"
	"github.com/kumbhsaathi/kumbhsaathi/internal/repository"
	"github.com/kumbhsaathi/kumbhsaathi/internal/service"
	"github.com/kumbhsaathi/kumbhsaathi/internal/utils"
)

const secret = "router-test-secret"

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	log := zap.NewNop()
	store := repository.NewMemoryStore(0)
	_, err := service.SeedGhats(context.Background(), store, log)
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e, nil)
	RegisterAuth(e, handler.NewAuthHandler(config.Config{JWTSecret: secret, AccessTTLMin: 5}, log))
	RegisterBooking(e, handler.NewBookingHandler(
		service.NewReservationService(store, notify.Nop{}, log), service.NewCrowdService(store), log),
		secret, passthrough, passthrough)
	ih := handler.NewIncidentHandler(service.NewIncidentService(store, log), log)
	RegisterIncidents(e, ih, passthrough)
	RegisterConsole(e, ih, handler.NewAlertHandler(service.NewAlertService(nil, log), log), secret)
	return e
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, strings.ToLower(role)+"-console", role, 5)
	require.NoError(t, err)
	return tok.Token
}

func call(e *echo.Echo, method, path, bearer, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestPublicRoutes(t *testing.T) {
	e := newServer(t)
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/healthz", "", ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/readyz", "", ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/ghats", "", ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/crowd", "", ""))
	assert.Equal(t, http.StatusCreated, call(e, http.MethodPost, "/v1/emergencies", "", `{"issueType":"Injury","location":"Ram Kund"}`))
	assert.Equal(t, http.StatusCreated, call(e, http.MethodPost, "/v1/registrations", "",
		`{"fullName":"Asha","mobileNumber":"9876543210","numberOfPeople":1,"date":"2027-08-14","ghat":"RK","timeSlot":"6 AM - 9 AM"}`))
}

func TestConsoleRequiresToken(t *testing.T) {
	e := newServer(t)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/v1/console/missing-persons", "", ""))
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/v1/console/emergencies", "garbage", ""))
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/v1/registrations/KM-27-RK-AAAA", "", ""))
}

func TestConsoleRoles(t *testing.T) {
	e := newServer(t)
	police := token(t, model.RolePolice)
	admin := token(t, model.RoleAdmin)
	alert := `{"ghat":"Ram Kund","zone":"North","message":"Crowd surge near gate 3"}`

	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/console/missing-persons", police, ""))
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/v1/console/emergencies", admin, ""))
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodGet, "/v1/registrations/KM-27-RK-AAAA", police, ""))

	assert.Equal(t, http.StatusForbidden, call(e, http.MethodPost, "/v1/console/alerts", police, alert))
	assert.Equal(t, http.StatusOK, call(e, http.MethodPost, "/v1/console/alerts", admin, alert))

	pilgrim := token(t, "PILGRIM")
	assert.Equal(t, http.StatusForbidden, call(e, http.MethodGet, "/v1/console/missing-persons", pilgrim, ""))
}
