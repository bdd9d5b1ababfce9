package ledger

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "billing", "reception", "doctor"))
	read.GET("/patients/:id/balance", h.GetBalance)
	read.GET("/patients/:id/payments", h.ListPayments)
	read.GET("/patients/:id/statement", h.GetStatement)

	write := api.Group("", auth.RequireRole("admin", "billing"))
	write.POST("/patients/:id/payments", h.AddPayment)
	write.DELETE("/patients/:id/payments/:paymentID", h.RemovePayment)
}

type addPaymentRequest struct {
	AmountCents int64   `json:"amount_cents" validate:"required,gt=0"`
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Note        *string `json:"note" validate:"omitempty,max=500"`
}

func (h *Handler) AddPayment(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	var req addPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var date time.Time
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}

	p, err := h.svc.AddPayment(c.Request().Context(), patientID, Amount(req.AmountCents), date, req.Note)
	if err != nil {
		return ledgerHTTPError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) RemovePayment(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	paymentID, err := uuid.Parse(c.Param("paymentID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment id")
	}

	if err := h.svc.RemovePayment(c.Request().Context(), patientID, paymentID); err != nil {
		return ledgerHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListPayments(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	payments, err := h.svc.ListPayments(c.Request().Context(), patientID)
	if err != nil {
		return ledgerHTTPError(err)
	}
	if payments == nil {
		payments = []Payment{}
	}
	return c.JSON(http.StatusOK, payments)
}

func (h *Handler) GetBalance(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	balance, err := h.svc.GetBalance(c.Request().Context(), patientID)
	if err != nil {
		return ledgerHTTPError(err)
	}
	return c.JSON(http.StatusOK, balance)
}

func (h *Handler) GetStatement(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	st, err := h.svc.GetStatement(c.Request().Context(), patientID)
	if err != nil {
		return ledgerHTTPError(err)
	}
	if st.Items == nil {
		st.Items = []BillableItem{}
	}
	if st.Payments == nil {
		st.Payments = []Payment{}
	}
	return c.JSON(http.StatusOK, st)
}

func ledgerHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return echo.NewHTTPError(http.StatusBadRequest, ErrInvalidAmount.Error())
	case errors.Is(err, ErrExceedsBalance):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, ErrExceedsBalance.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, ErrConflict.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
