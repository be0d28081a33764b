package admission

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hims/hims/internal/domain/ward"
	"github.com/hims/hims/internal/platform/auth"
	"github.com/hims/hims/pkg/pagination"
)

type Handler struct {
	ledger *Ledger
}

func NewHandler(ledger *Ledger) *Handler {
	return &Handler{ledger: ledger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	readGroup.GET("/admissions", h.ListAdmissions)
	readGroup.GET("/admissions/:id", h.GetAdmission)

	writeGroup := api.Group("", auth.RequireRole("admin", "physician", "registrar"))
	writeGroup.POST("/admissions", h.Admit)

	// Clinical status is set at the bedside.
	clinicalGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	clinicalGroup.PATCH("/admissions/:id/status", h.SetStatus)
}

func (h *Handler) Admit(c echo.Context) error {
	var req AdmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.ledger.Admit(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAdmissions(c echo.Context) error {
	var f Filter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = id
	}
	if v := c.QueryParam("ward_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid ward_id")
		}
		f.WardID = id
	}
	f.ActiveOnly = c.QueryParam("active") == "true"

	p := pagination.FromContext(c)
	admissions, total, err := h.ledger.ListAdmissions(c.Request().Context(), f, p.Limit, p.Offset)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(admissions, total, p.Limit, p.Offset))
}

func (h *Handler) GetAdmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.ledger.GetAdmission(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

type setStatusRequest struct {
	Status Status `json:"status" validate:"required,clinical_status"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.ledger.SetClinicalStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrAdmissionNotFound),
		errors.Is(err, ward.ErrWardNotFound), errors.Is(err, ward.ErrBedNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAdmissionDischarged),
		errors.Is(err, ward.ErrNoBedsAvailable), errors.Is(err, ward.ErrBedNotAvailable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
