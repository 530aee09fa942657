package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/middleware"
)

type HttpRouter struct {
	deps Deps
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContext(h.deps.Sessions, h.deps.Users, h.deps.Entitlements, h.deps.Logger))

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter(d Deps) *HttpRouter {
	return &HttpRouter{deps: d}
}
