package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/ManuelReschke/ScrapMarket/internal/api/v1"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Deps
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: h.deps.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Authorization, X-API-Key, Content-Type",
	}), limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "ScrapMarket API",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, h.deps.API, apiv1.Auth{
		Bearer:  middleware.APIKeyAuth(h.deps.Users, h.deps.Entitlements, h.deps.Logger),
		Session: middleware.RequireAPISessionAuth,
		Premium: middleware.RequirePremiumAPI,
	})
}

func NewApiRouter(d Deps) *ApiRouter {
	return &ApiRouter{deps: d}
}
