package lab

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "nurse", "lab_tech"))
	readGroup.GET("/lab-orders", h.List)
	readGroup.GET("/lab-orders/:id", h.Get)
	readGroup.GET("/lab-orders/number/:number", h.GetByNumber)
	readGroup.GET("/lab-orders/:id/summary", h.Summary)
	readGroup.GET("/lab-orders/:id/report", h.Report)

	orderGroup := api.Group("", auth.RequireRole("admin", "physician"))
	orderGroup.POST("/lab-orders", h.Create)

	techGroup := api.Group("", auth.RequireRole("admin", "lab_tech"))
	techGroup.POST("/lab-orders/:id/results", h.RecordResult)
	techGroup.POST("/lab-orders/:id/status", h.Transition)
	techGroup.POST("/lab-orders/:id/complete", h.Complete)

	adminGroup := api.Group("", auth.RequireRole("admin", "physician", "lab_tech"))
	adminGroup.POST("/lab-orders/:id/cancel", h.Cancel)
	adminGroup.POST("/lab-orders/:id/pay", h.MarkPaid)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateOrderInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	order, err := h.svc.CreateOrder(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrEmptyTestSelection) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	order, err := h.svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "lab order not found")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) GetByNumber(c echo.Context) error {
	order, err := h.svc.GetByOrderNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "lab order not found")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if p := c.QueryParam("patient_id"); p != "" {
		patientID, err := uuid.Parse(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		orders, total, err := h.svc.ListByPatient(ctx, patientID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, pg.Limit, pg.Offset))
	}

	status := Status(c.QueryParam("status"))
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	orders, total, err := h.svc.ListByStatus(ctx, status, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, pg.Limit, pg.Offset))
}

// recordResultResponse returns the updated order alongside the computed
// classification so clients can flag the value without re-deriving it.
type recordResultResponse struct {
	Classification Classification `json:"classification"`
	Order          *LabOrder      `json:"order"`
}

func (h *Handler) RecordResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in RecordResultInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cls, order, err := h.svc.RecordResult(c.Request().Context(), id, in)
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusOK, recordResultResponse{Classification: cls, Order: order})
}

type transitionRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) Transition(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	order, err := h.svc.TransitionStatus(ctx, id, req.Status, auth.UserIDFromContext(ctx))
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	order, err := h.svc.Complete(ctx, id, auth.UserIDFromContext(ctx))
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	order, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) MarkPaid(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	order, err := h.svc.MarkPaid(c.Request().Context(), id)
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *Handler) Summary(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	summary, err := h.svc.Summarize(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "lab order not found")
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) Report(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	report, err := h.svc.BuildReport(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "lab order not found")
	}
	return c.JSON(http.StatusOK, report)
}

// orderError maps domain sentinels onto HTTP codes.
func orderError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrOrderAlreadyFinalized), errors.Is(err, ErrConcurrentModification):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownDetail), errors.Is(err, ErrUnknownParameter):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrIllegalTransition), errors.Is(err, ErrParameterRequired), errors.Is(err, ErrEmptyTestSelection):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
