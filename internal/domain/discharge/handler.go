package discharge

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hims/hims/internal/domain/admission"
	"github.com/hims/hims/internal/platform/auth"
	"github.com/hims/hims/pkg/pagination"
)

type Handler struct {
	processor *Processor
}

func NewHandler(processor *Processor) *Handler {
	return &Handler{processor: processor}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	readGroup.GET("/discharges", h.List)
	readGroup.GET("/admissions/:id/discharge", h.Record)

	writeGroup := api.Group("", auth.RequireRole("admin", "physician"))
	writeGroup.POST("/admissions/:id/discharge", h.Discharge)
}

func (h *Handler) Discharge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	d, err := h.processor.Discharge(c.Request().Context(), id, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) Record(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.processor.Record(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	discharges, total, err := h.processor.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(discharges, total, p.Limit, p.Offset))
}

func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrDischargeNotFound), errors.Is(err, admission.ErrAdmissionNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyDischarged), errors.Is(err, admission.ErrAdmissionDischarged):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
