package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/apidocs"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/metrics"
)

const healthTimeout = 2 * time.Second

// OpsRouter serves health, metrics and the API docs.
type OpsRouter struct {
	deps Deps
}

func NewOpsRouter(d Deps) *OpsRouter {
	return &OpsRouter{deps: d}
}

func (o OpsRouter) InstallRouter(app *fiber.App) {
	app.Get("/healthz", o.handleHealth)
	if o.deps.Registry != nil {
		app.Get("/metrics", metrics.Handler(o.deps.Registry))
	}
	app.Use(apidocs.Handler())
}

func (o OpsRouter) handleHealth(c *fiber.Ctx) error {
	status := fiber.Map{}
	healthy := true
	for name, check := range o.deps.Checks {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			healthy = false
			status[name] = err.Error()
			o.deps.Logger.Warn().Err(err).Str("check", name).Msg("health check failed")
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "checks": status})
	}
	return c.JSON(fiber.Map{"status": "ok", "checks": status})
}
