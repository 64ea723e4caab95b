package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/middleware"
	"github.com/kumbhsaathi/kumbhsaathi/internal/service"
)

// AlertHandler lets the admin console broadcast crowd alerts.
type AlertHandler struct {
	Alerts *service.AlertService
	Log    *zap.Logger
}

func NewAlertHandler(s *service.AlertService, log *zap.Logger) *AlertHandler {
	return &AlertHandler{Alerts: s, Log: log}
}

// Broadcast handles POST /v1/console/alerts.  Delivery is best effort: the
// rendered alert and share link are returned even when the notifier fails.
func (h *AlertHandler) Broadcast(c echo.Context) error {
	var req service.AlertRequest
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid request body")
	}
	res, err := h.Alerts.Broadcast(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if p, found := middleware.PrincipalFrom(c); found {
		h.Log.Info("crowd alert sent", zap.String("by", p.Subject), zap.String("ghat", req.Ghat), zap.Bool("delivered", res.Delivered))
	}
	return ok(c, http.StatusOK, res)
}
