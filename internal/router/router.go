package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/velizhanin/scriptshop/internal/handler"    // handlers implementing the endpoints
	"github.com/velizhanin/scriptshop/internal/middleware" // admin gate and rate limiting
)

// RegisterRoutes registers routes that do not touch any store on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the guest-facing script listing and download
// endpoints plus direct balance access for non-gated flows. No auth is
// applied; these routes only ever expose enabled scripts and the caller's
// own balance semantics.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, u *handler.UserHandler) {
	e.GET("/v1/scripts", p.ListScripts)
	e.GET("/v1/download/:id", p.DownloadScript)

	e.GET("/v1/users/:id/coins", u.GetCoins)
	e.POST("/v1/users/:id/coins", u.AddCoins)
	e.POST("/v1/users/:id/coins/deduct", u.DeductCoins)
}

// RegisterDelivery registers the gated delivery endpoint. The rate limiter
// sits in front because each request fans out to two external systems.
func RegisterDelivery(e *echo.Echo, d *handler.DeliveryHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if limit != nil {
		g.Use(limit)
	}
	g.POST("/deliver", d.Deliver)
}

// RegisterAdmin registers the admin surface under /v1/admin. Every route
// passes the RequireAdmin gate before reaching a handler, so an
// unauthorized caller is rejected before any store mutation.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, auth middleware.AdminAuthorizer, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/admin")
	g.Use(middleware.RequireAdmin(auth))
	if limit != nil {
		g.Use(limit)
	}

	g.GET("/scripts", a.ListScripts)
	g.POST("/scripts", a.CreateScript)
	g.PUT("/scripts/:id", a.UpdateScript)
	g.DELETE("/scripts/:id", a.DeleteScript)
	g.PATCH("/scripts/:id/enabled", a.SetEnabled)

	g.POST("/coins", a.GrantCoins)
	g.GET("/stats", a.Stats)
}
