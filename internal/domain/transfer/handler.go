package transfer

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hims/hims/internal/domain/admission"
	"github.com/hims/hims/internal/domain/ward"
	"github.com/hims/hims/internal/platform/auth"
)

type Handler struct {
	coordinator *Coordinator
}

func NewHandler(coordinator *Coordinator) *Handler {
	return &Handler{coordinator: coordinator}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	readGroup.GET("/admissions/:id/transfers", h.History)

	writeGroup := api.Group("", auth.RequireRole("admin", "physician"))
	writeGroup.POST("/admissions/:id/transfers", h.Transfer)
}

func (h *Handler) Transfer(c echo.Context) error {
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
	t, err := h.coordinator.Transfer(c.Request().Context(), id, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) History(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	transfers, err := h.coordinator.History(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	if transfers == nil {
		transfers = []*Transfer{}
	}
	return c.JSON(http.StatusOK, transfers)
}

func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, admission.ErrAdmissionNotFound),
		errors.Is(err, ward.ErrWardNotFound), errors.Is(err, ward.ErrBedNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, admission.ErrAdmissionDischarged),
		errors.Is(err, ward.ErrNoBedsAvailable), errors.Is(err, ward.ErrBedNotAvailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalid), errors.Is(err, admission.ErrInvalid):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
