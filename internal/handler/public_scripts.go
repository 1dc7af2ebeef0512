package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velizhanin/scriptshop/internal/repository"
)

// PublicHandler exposes the guest-facing script listing and download
// endpoints. Disabled scripts are invisible here; only the admin surface
// sees them.
type PublicHandler struct {
	ScriptRepo *repository.ScriptRepo
}

// NewPublicHandler constructs a PublicHandler and panics if the repository is nil.
func NewPublicHandler(scriptRepo *repository.ScriptRepo) *PublicHandler {
	if scriptRepo == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{ScriptRepo: scriptRepo}
}

// scriptView is the sanitized listing shape: no content blob, no enabled
// flag. Content is only reachable through download and delivery.
type scriptView struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Downloads   uint64 `json:"downloads"`
	CreatedAt   string `json:"created_at"`
}

func toView(s repository.Script) scriptView {
	return scriptView{
		ID:          s.ID,
		Name:        s.Name,
		Filename:    s.Filename,
		Description: s.Description,
		Downloads:   s.Downloads,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListScripts handles GET /v1/scripts and returns enabled scripts in
// insertion order.
func (h *PublicHandler) ListScripts(c echo.Context) error {
	items, err := h.ScriptRepo.List(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	views := make([]scriptView, 0, len(items))
	for _, s := range items {
		views = append(views, toView(s))
	}
	return c.JSON(http.StatusOK, views)
}

// DownloadScript handles GET /v1/download/:id. It streams the script
// content with a filename header and bumps the advisory download counter.
// Missing and disabled scripts both return 404.
func (h *PublicHandler) DownloadScript(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid script id"})
	}
	ctx := c.Request().Context()
	s, err := h.ScriptRepo.GetEnabledByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScriptNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "script not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	// Counter drift is tolerated; the download itself must not fail on it.
	if err := h.ScriptRepo.IncrementDownloads(ctx, id); err != nil {
		c.Logger().Warnf("download counter increment failed for script %d: %v", id, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, s.Filename))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(s.Content))
}
