package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kumbhsaathi/kumbhsaathi/internal/service"
)

// IncidentHandler exposes missing person reports and health emergencies.
// Filing is public, listing and status changes are console only.
type IncidentHandler struct {
	Incidents *service.IncidentService
	Log       *zap.Logger
}

func NewIncidentHandler(s *service.IncidentService, log *zap.Logger) *IncidentHandler {
	return &IncidentHandler{Incidents: s, Log: log}
}

type statusReq struct {
	Status string `json:"status"`
}

// limitParam reads ?limit=; anything unparsable becomes 0 and the store
// applies its default.
func limitParam(c echo.Context) int {
	n, _ := strconv.Atoi(c.QueryParam("limit"))
	return n
}

// ReportMissingPerson handles POST /v1/missing-persons.
func (h *IncidentHandler) ReportMissingPerson(c echo.Context) error {
	var req service.MissingPersonRequest
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid request body")
	}
	rep, err := h.Incidents.ReportMissingPerson(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, rep)
}

// ReportEmergency handles POST /v1/emergencies.
func (h *IncidentHandler) ReportEmergency(c echo.Context) error {
	var req service.EmergencyRequest
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid request body")
	}
	em, err := h.Incidents.ReportEmergency(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, em)
}

// ListMissingPersons handles GET /v1/console/missing-persons.
func (h *IncidentHandler) ListMissingPersons(c echo.Context) error {
	items, err := h.Incidents.MissingPersons(c.Request().Context(), limitParam(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return ok(c, http.StatusOK, items)
}

// ListEmergencies handles GET /v1/console/emergencies.
func (h *IncidentHandler) ListEmergencies(c echo.Context) error {
	items, err := h.Incidents.Emergencies(c.Request().Context(), limitParam(c))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return ok(c, http.StatusOK, items)
}

// UpdateMissingPersonStatus handles PATCH /v1/console/missing-persons/:id.
func (h *IncidentHandler) UpdateMissingPersonStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid request body")
	}
	id := c.Param("id")
	if err := h.Incidents.SetMissingPersonStatus(c.Request().Context(), id, req.Status); err != nil {
		return fail(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

// UpdateEmergencyStatus handles PATCH /v1/console/emergencies/:id.
func (h *IncidentHandler) UpdateEmergencyStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid request body")
	}
	id := c.Param("id")
	if err := h.Incidents.SetEmergencyStatus(c.Request().Context(), id, req.Status); err != nil {
		return fail(c, h.Log, err)
	}
	return ok(c, http.StatusOK, echo.Map{"id": id, "status": req.Status})
}
