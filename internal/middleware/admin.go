package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminAuthorizer answers whether a caller identifier belongs to the
// persisted admin set. The check is deliberately the only authorization
// signal: no sessions, no tokens, no roles.
type AdminAuthorizer interface {
	IsAuthorized(ctx context.Context, callerID string) (bool, error)
}

// AdminIDHeader carries the caller's identifier on admin requests.
const AdminIDHeader = "X-Admin-ID"

// RequireAdmin returns a middleware that rejects a request before any
// handler (and therefore any store mutation) runs unless the caller
// identifier in the X-Admin-ID header is present in the admin set. The
// authorized identifier is stored in the context under "admin_id".
func RequireAdmin(auth AdminAuthorizer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			callerID := c.Request().Header.Get(AdminIDHeader)
			if callerID == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}
			ok, err := auth.IsAuthorized(c.Request().Context(), callerID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "authorization check failed"})
			}
			if !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			c.Set("admin_id", callerID)
			return next(c)
		}
	}
}
