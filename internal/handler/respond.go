package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/service"
)

// ok writes the success envelope {success: true, data}.
func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

// failMsg writes the failure envelope {success: false, error}.
func failMsg(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// fail maps a service error onto a status code and a human readable
// message.  Unexpected errors are logged and hidden behind a generic text.
func fail(c echo.Context, log *zap.Logger, err error) error {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
		ce *service.CapacityExceededError
		te *service.TransactionConflictError
	)
	switch {
	case errors.As(err, &ve):
		return failMsg(c, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		return failMsg(c, http.StatusNotFound, nf.Error())
	case errors.As(err, &ce):
		return failMsg(c, http.StatusConflict, ce.Error())
	case errors.As(err, &te):
		log.Warn("transaction retries exhausted", zap.Error(err))
		return failMsg(c, http.StatusServiceUnavailable, te.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return failMsg(c, http.StatusGatewayTimeout, "The request timed out. Please try again.")
	}
	log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return failMsg(c, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
