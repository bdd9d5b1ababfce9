package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "doctor", "reception", "billing"))
	read.GET("/appointments", h.List)
	read.GET("/appointments/:id", h.Get)

	write := api.Group("", auth.RequireRole("admin", "doctor", "reception"))
	write.POST("/appointments", h.Create)
	write.PUT("/appointments/:id", h.Update)
	write.POST("/appointments/:id/complete", h.Complete)
	write.POST("/appointments/:id/cancel", h.Cancel)
	write.DELETE("/appointments/:id", h.Delete)
}

type appointmentRequest struct {
	PatientID      string  `json:"patient_id" validate:"required,uuid"`
	PractitionerID string  `json:"practitioner_id" validate:"required,uuid"`
	Reason         string  `json:"reason" validate:"required,max=500"`
	ScheduledAt    string  `json:"scheduled_at" validate:"required"`
	FeeCents       int64   `json:"fee_cents" validate:"gte=0"`
	Note           *string `json:"note" validate:"omitempty,max=1000"`
}

type updateRequest struct {
	Reason      string  `json:"reason" validate:"required,max=500"`
	ScheduledAt string  `json:"scheduled_at" validate:"omitempty"`
	FeeCents    int64   `json:"fee_cents" validate:"gte=0"`
	Note        *string `json:"note" validate:"omitempty,max=1000"`
}

type completeRequest struct {
	FeeCents int64 `json:"fee_cents" validate:"gte=0"`
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (h *Handler) Create(c echo.Context) error {
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	scheduledAt, err := parseTime(req.ScheduledAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid scheduled_at")
	}

	a := &Appointment{
		PatientID:      uuid.MustParse(req.PatientID),
		PractitionerID: uuid.MustParse(req.PractitionerID),
		Reason:         req.Reason,
		ScheduledAt:    scheduledAt,
		FeeCents:       req.FeeCents,
		Note:           req.Note,
	}
	if err := h.svc.Create(c.Request().Context(), a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if pid := c.QueryParam("patient_id"); pid != "" {
		id, err := uuid.Parse(pid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		items, total, err := h.svc.ListByPatient(ctx, id, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return listResponse(c, items, total, pg)
	}
	if prid := c.QueryParam("practitioner_id"); prid != "" {
		id, err := uuid.Parse(prid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid practitioner_id")
		}
		items, total, err := h.svc.ListByPractitioner(ctx, id, pg.Limit, pg.Offset)
		if err != nil {
			return httpError(err)
		}
		return listResponse(c, items, total, pg)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "patient_id or practitioner_id is required")
}

func listResponse(c echo.Context, items []*Appointment, total int, pg pagination.Params) error {
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var scheduledAt time.Time
	if req.ScheduledAt != "" {
		if scheduledAt, err = parseTime(req.ScheduledAt); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid scheduled_at")
		}
	}

	a, err := h.svc.Update(c.Request().Context(), id, req.Reason, scheduledAt, req.FeeCents, req.Note)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	a, err := h.svc.Complete(c.Request().Context(), id, req.FeeCents)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func httpError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
