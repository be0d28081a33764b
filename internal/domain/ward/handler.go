package ward

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hims/hims/internal/platform/auth"
)

type Handler struct {
	registry  *Registry
	allocator *Allocator
}

func NewHandler(registry *Registry, allocator *Allocator) *Handler {
	return &Handler{registry: registry, allocator: allocator}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse", "registrar"))
	readGroup.GET("/wards", h.ListWards)
	readGroup.GET("/wards/:id", h.GetWard)
	readGroup.GET("/wards/:id/beds", h.ListBeds)
	readGroup.GET("/beds/:id", h.GetBed)

	// Bed status changes are day-to-day front-desk work; ward setup is not.
	bedGroup := api.Group("", auth.RequireRole("admin", "nurse", "registrar"))
	bedGroup.PATCH("/beds/:id/status", h.SetBedStatus)

	adminGroup := api.Group("", auth.RequireRole("admin"))
	adminGroup.POST("/wards", h.CreateWard)
	adminGroup.PATCH("/wards/:id/capacity", h.ResizeWard)
}

func (h *Handler) ListWards(c echo.Context) error {
	wards, err := h.registry.ListWards(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, wards)
}

func (h *Handler) GetWard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	w, err := h.registry.GetWard(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) ListBeds(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	beds, err := h.registry.ListBeds(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, beds)
}

func (h *Handler) GetBed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	bed, err := h.registry.GetBed(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, bed)
}

type createWardRequest struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"required,alphanum,max=8"`
	BedCount int    `json:"bed_count" validate:"min=0"`
}

func (h *Handler) CreateWard(c echo.Context) error {
	var req createWardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	w, err := h.allocator.CreateWard(c.Request().Context(), req.Name, req.Code, req.BedCount)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, w)
}

type resizeWardRequest struct {
	TotalBeds int `json:"total_beds" validate:"min=0"`
}

func (h *Handler) ResizeWard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req resizeWardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.allocator.Resize(c.Request().Context(), id, req.TotalBeds); err != nil {
		return toHTTPError(err)
	}
	w, err := h.registry.GetWard(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, w)
}

type setBedStatusRequest struct {
	Status BedStatus `json:"status" validate:"required,bed_status"`
}

func (h *Handler) SetBedStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req setBedStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.allocator.SetBedStatus(c.Request().Context(), id, req.Status); err != nil {
		return toHTTPError(err)
	}
	bed, err := h.registry.GetBed(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, bed)
}

func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrWardNotFound), errors.Is(err, ErrBedNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoBedsAvailable), errors.Is(err, ErrBedNotAvailable),
		errors.Is(err, ErrBedNotOccupied), errors.Is(err, ErrBedOccupied),
		errors.Is(err, ErrBedsInUse):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
