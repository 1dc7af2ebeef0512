package handler // handler package contains admin-only script and coin handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/velizhanin/scriptshop/internal/repository"
)

// AdminHandler bundles the repositories the admin surface passes through
// to. Authorization has already happened in middleware; every method here
// assumes the caller is in the admin set.
type AdminHandler struct {
	ScriptRepo *repository.ScriptRepo
	UserRepo   *repository.UserRepo
}

// NewAdminHandler constructs an AdminHandler and panics if any dependency is nil.
func NewAdminHandler(scriptRepo *repository.ScriptRepo, userRepo *repository.UserRepo) *AdminHandler {
	if scriptRepo == nil || userRepo == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{ScriptRepo: scriptRepo, UserRepo: userRepo}
}

// scriptBody is the JSON payload for create and update.
type scriptBody struct {
	Name        string `json:"name"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Enabled     *bool  `json:"enabled"`
}

func (b *scriptBody) validate() string {
	b.Name = strings.TrimSpace(b.Name)
	b.Filename = strings.TrimSpace(b.Filename)
	if b.Name == "" {
		return "name is required"
	}
	if b.Filename == "" {
		return "filename is required"
	}
	if b.Content == "" {
		return "content is required"
	}
	return ""
}

// ListScripts handles GET /v1/admin/scripts and returns every script,
// disabled ones included.
func (h *AdminHandler) ListScripts(c echo.Context) error {
	items, err := h.ScriptRepo.List(c.Request().Context(), false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, items)
}

// CreateScript handles POST /v1/admin/scripts.
func (h *AdminHandler) CreateScript(c echo.Context) error {
	var body scriptBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	enabled := true
	if body.Enabled != nil {
		enabled = *body.Enabled
	}
	s := &repository.Script{
		Name:        body.Name,
		Filename:    body.Filename,
		Description: body.Description,
		Content:     body.Content,
		Enabled:     enabled,
	}
	if err := h.ScriptRepo.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create script"})
	}
	return c.JSON(http.StatusCreated, s)
}

// UpdateScript handles PUT /v1/admin/scripts/:id.
func (h *AdminHandler) UpdateScript(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid script id"})
	}
	var body scriptBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	s := &repository.Script{
		ID:          id,
		Name:        body.Name,
		Filename:    body.Filename,
		Description: body.Description,
		Content:     body.Content,
	}
	ctx := c.Request().Context()
	if err := h.ScriptRepo.Update(ctx, s); err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "script not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.ScriptRepo.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteScript handles DELETE /v1/admin/scripts/:id.
func (h *AdminHandler) DeleteScript(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid script id"})
	}
	if err := h.ScriptRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "script not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SetEnabled handles PATCH /v1/admin/scripts/:id/enabled and toggles the
// script's visibility.
func (h *AdminHandler) SetEnabled(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid script id"})
	}
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.Bind(&body); err != nil || body.Enabled == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enabled is required"})
	}
	if err := h.ScriptRepo.SetEnabled(c.Request().Context(), id, *body.Enabled); err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "script not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "enabled": *body.Enabled})
}

// GrantCoins handles POST /v1/admin/coins and credits any user's balance.
func (h *AdminHandler) GrantCoins(c echo.Context) error {
	var body struct {
		UserID string `json:"user_id"`
		Amount int64  `json:"amount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.UserID = strings.TrimSpace(body.UserID)
	if body.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	coins, err := h.UserRepo.Credit(c.Request().Context(), body.UserID, body.Amount)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidAmount) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be positive"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": body.UserID, "coins": coins})
}

// Stats handles GET /v1/admin/stats. Totals are derived reads over the
// stores, not in-process counters.
func (h *AdminHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.UserRepo.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	scripts, err := h.ScriptRepo.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	downloads, err := h.ScriptRepo.TotalDownloads(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":           users,
		"scripts":         scripts,
		"total_downloads": downloads,
	})
}
