package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velizhanin/scriptshop/internal/delivery"
)

// DeliveryHandler exposes the gated delivery pipeline over HTTP.
type DeliveryHandler struct {
	Pipeline *delivery.Pipeline
}

// NewDeliveryHandler constructs a DeliveryHandler and panics if the pipeline is nil.
func NewDeliveryHandler(p *delivery.Pipeline) *DeliveryHandler {
	if p == nil {
		panic("nil pipeline passed to NewDeliveryHandler")
	}
	return &DeliveryHandler{Pipeline: p}
}

// Deliver handles POST /v1/deliver. The response always carries the terminal
// outcome kind and the stage it was decided at, so a caller can distinguish
// "never charged" from "charged and refunded" from "charged, refund failed".
func (h *DeliveryHandler) Deliver(c echo.Context) error {
	var body struct {
		UserID   string `json:"user_id"`
		ScriptID uint64 `json:"script_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.UserID = strings.TrimSpace(body.UserID)
	if body.UserID == "" || body.ScriptID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and script_id are required"})
	}

	res := h.Pipeline.Deliver(c.Request().Context(), body.UserID, body.ScriptID)
	if res.Err == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status":    "delivered",
			"script_id": body.ScriptID,
		})
	}

	payload := echo.Map{
		"status":   "failed",
		"kind":     failureKind(res.Err),
		"stage":    string(res.Stage),
		"refunded": res.Refunded,
	}
	return c.JSON(failureStatus(res.Err), payload)
}

// failureKind maps a pipeline error to the stable machine-readable kind the
// front end switches on. Internal details never leak into the response.
func failureKind(err error) string {
	switch {
	case errors.Is(err, delivery.ErrNotAMember):
		return "not_a_member"
	case errors.Is(err, delivery.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, delivery.ErrScriptNotFound):
		return "script_not_found"
	case errors.Is(err, delivery.ErrStagingFailed):
		return "staging_failed"
	case errors.Is(err, delivery.ErrDeliveryFailed):
		return "delivery_failed"
	case errors.Is(err, delivery.ErrReconciliationRequired):
		return "reconciliation_required"
	default:
		return "internal_error"
	}
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, delivery.ErrNotAMember):
		return http.StatusForbidden
	case errors.Is(err, delivery.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	case errors.Is(err, delivery.ErrScriptNotFound):
		return http.StatusNotFound
	case errors.Is(err, delivery.ErrStagingFailed),
		errors.Is(err, delivery.ErrDeliveryFailed),
		errors.Is(err, delivery.ErrReconciliationRequired):
		// Upstream dependencies (filesystem staging, Telegram) failed us.
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
