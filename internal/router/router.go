package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/kumbhsaathi/kumbhsaathi/internal/handler"    // handlers that translate HTTP into service calls
	"github.com/kumbhsaathi/kumbhsaathi/internal/middleware" // JWT authentication and role enforcement
	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
)

// RegisterRoutes registers the probes that do not require authentication.
// /healthz is pure liveness, /readyz also pings the database when one is
// configured.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth exposes console login under /v1/auth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
}

// RegisterBooking registers the pilgrim facing catalog and booking routes.
// cache wraps the advisory reads; limiter guards the booking write.  The
// ticket lookup needs a console token.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limiter, cache echo.MiddlewareFunc) {
	e.GET("/v1/ghats", h.ListGhats, cache)
	e.GET("/v1/crowd", h.CrowdSummary, cache)
	e.POST("/v1/registrations", h.Register, limiter)
	e.GET("/v1/registrations/:id", h.GetRegistration,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RolePolice))
}
