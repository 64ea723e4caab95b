package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/middleware"
	"github.com/kumbhsaathi/kumbhsaathi/internal/service"
)

// BookingHandler serves the pilgrim facing ghat catalog, the crowd
// dashboard and slot registration.
type BookingHandler struct {
	Reservations *service.ReservationService
	Crowd        *service.CrowdService
	Log          *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(r *service.ReservationService, c *service.CrowdService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{Reservations: r, Crowd: c, Log: log}
}

// ListGhats handles GET /v1/ghats.  Slot counts are a snapshot and only
// advisory; the booking transaction re-reads them.
func (h *BookingHandler) ListGhats(c echo.Context) error {
	ghats, err := h.Crowd.Ghats(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return ok(c, http.StatusOK, ghats)
}

// CrowdSummary handles GET /v1/crowd.
func (h *BookingHandler) CrowdSummary(c echo.Context) error {
	sum, err := h.Crowd.Summary(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return ok(c, http.StatusOK, sum)
}

// Register handles POST /v1/registrations.  On success it answers 201 with
// the ticket; capacity and validation failures come back as 409 and 400.
func (h *BookingHandler) Register(c echo.Context) error {
	var req service.RegistrationRequest
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid request body")
	}
	res, err := h.Reservations.Register(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, res)
}

// GetRegistration handles GET /v1/registrations/:id for ticket
// verification at the ghat entry.  Console roles only.
func (h *BookingHandler) GetRegistration(c echo.Context) error {
	reg, err := h.Reservations.Lookup(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	if p, found := middleware.PrincipalFrom(c); found {
		h.Log.Info("ticket verified", zap.String("ticket", reg.TicketID), zap.String("by", p.Subject))
	}
	return ok(c, http.StatusOK, reg)
}
