package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kumbhsaathi/kumbhsaathi/internal/handler"
	"github.com/kumbhsaathi/kumbhsaathi/internal/middleware"
	"github.com/kumbhsaathi/kumbhsaathi/internal/model"
)

// RegisterIncidents registers the public forms for missing persons and
// medical emergencies, rate limited like bookings.
func RegisterIncidents(e *echo.Echo, h *handler.IncidentHandler, limiter echo.MiddlewareFunc) {
	e.POST("/v1/missing-persons", h.ReportMissingPerson, limiter)
	e.POST("/v1/emergencies", h.ReportEmergency, limiter)
}

// RegisterConsole registers the control room routes under /v1/console.
// Every route requires a valid access token; ADMIN and POLICE may work the
// incident queues, only ADMIN may broadcast alerts.
func RegisterConsole(e *echo.Echo, ih *handler.IncidentHandler, ah *handler.AlertHandler, jwtSecret string) {
	g := e.Group("/v1/console")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RolePolice))

	g.GET("/missing-persons", ih.ListMissingPersons)
	g.PATCH("/missing-persons/:id", ih.UpdateMissingPersonStatus)
	g.GET("/emergencies", ih.ListEmergencies)
	g.PATCH("/emergencies/:id", ih.UpdateEmergencyStatus)

	g.POST("/alerts", ah.Broadcast, middleware.RequireRole(model.RoleAdmin))
}
