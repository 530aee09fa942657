package router

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ManuelReschke/ScrapMarket/app/controllers"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
	apiv1 "github.com/ManuelReschke/ScrapMarket/internal/api/v1"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/middleware"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/session"
)

// Router installs a set of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Deps is everything the routes are wired to.
type Deps struct {
	Pages        *controllers.Controller
	API          *apiv1.APIServer
	Sessions     *session.Store
	Users        repository.UserRepository
	Entitlements middleware.Entitlements
	// Checks are run by /healthz, keyed by dependency name.
	Checks   map[string]func(ctx context.Context) error
	Registry *prometheus.Registry
	// CORSOrigins is the cors AllowOrigins list of the JSON API.
	CORSOrigins string
	IsDev       bool
	Logger      zerolog.Logger
}

func InstallRouter(app *fiber.App, d Deps) {
	// The http router installs the user context middleware the api routes rely on.
	setup(app, NewOpsRouter(d), NewHttpRouter(d), NewApiRouter(d))
	app.Use(d.Pages.HandleNotFound)
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
