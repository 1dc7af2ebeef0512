package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velizhanin/scriptshop/internal/repository"
)

// UserHandler exposes direct balance access for non-gated flows such as
// top-ups. Gated spending goes through the delivery pipeline instead.
type UserHandler struct {
	UserRepo *repository.UserRepo
}

// NewUserHandler constructs a UserHandler and panics if the repository is nil.
func NewUserHandler(userRepo *repository.UserRepo) *UserHandler {
	if userRepo == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{UserRepo: userRepo}
}

// GetCoins handles GET /v1/users/:id/coins. Unknown users read as zero and
// the query creates nothing.
func (h *UserHandler) GetCoins(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	coins, err := h.UserRepo.Balance(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "coins": coins})
}

// AddCoins handles POST /v1/users/:id/coins and credits the balance,
// creating the user on first contact.
func (h *UserHandler) AddCoins(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	coins, err := h.UserRepo.Credit(c.Request().Context(), userID, body.Amount)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidAmount) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "coins": coins})
}

// DeductCoins handles POST /v1/users/:id/coins/deduct. The debit is refused
// outright when the balance does not cover it; no partial deduction exists.
func (h *UserHandler) DeductCoins(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("id"))
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	coins, err := h.UserRepo.Debit(c.Request().Context(), userID, body.Amount)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidAmount) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
		}
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "insufficient balance"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "coins": coins})
}
