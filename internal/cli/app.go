package cli

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ScrapMarket/app/controllers"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
	apiv1 "github.com/ManuelReschke/ScrapMarket/internal/api/v1"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/billing"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/cache"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/config"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/hcaptcha"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/mail"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/marketplace"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/metrics"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/oauth"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/photostore"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/push"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/router"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/session"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/statistics"
	"github.com/ManuelReschke/ScrapMarket/views"
)

// bodyLimit leaves room for one photo plus the form fields.
const bodyLimit = photostore.MaxUploadBytes + 1<<20

// application is the wired HTTP server and its background workers.
type application struct {
	Fiber *fiber.App
	Views *counter.ListingViews
}

// newApplication wires every component onto db and rdb.
func newApplication(ctx context.Context, cfg config.Config, db *gorm.DB, rdb *redis.Client, log zerolog.Logger) (*application, error) {
	reg := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTP(reg)

	repos := repository.NewRepositories(db)
	bill := billing.NewServiceFromDB(db, cfg.Stripe, log, billing.NewMetrics(reg))
	viewCounter := counter.NewListingViews(rdb, repos.Listing, log)

	var photos marketplace.Photos
	if cfg.S3.Enabled() {
		objects, err := photostore.NewS3(ctx, photostore.S3Config{
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Endpoint:        cfg.S3.Endpoint,
		}, log)
		if err != nil {
			return nil, err
		}
		photos = photostore.New(objects)
	} else {
		log.Warn().Msg("S3 is not configured, photo uploads are disabled")
	}

	var notifier push.Notifier = push.Nop{}
	if cfg.Push.ServiceAccountJSON != "" {
		fcm, err := push.NewFCM(ctx, cfg.Push.ServiceAccountJSON, log)
		if err != nil {
			return nil, err
		}
		notifier = fcm
	}

	market := marketplace.New(marketplace.Deps{
		Repos:        repos,
		Entitlements: bill,
		Views:        viewCounter,
		Photos:       photos,
		Push:         notifier,
		Logger:       log,
	})

	redisPort, _ := strconv.Atoi(cfg.Redis.Port)
	sessions := session.New(session.Config{
		Host:     cfg.Redis.Host,
		Port:     redisPort,
		Password: cfg.Redis.Password,
		Secure:   !cfg.IsDev(),
	})
	oauthEnabled := oauth.Setup(oauth.Config{
		BaseURL:      cfg.App.BaseURL,
		ClientID:     cfg.OAuth.GoogleClientID,
		ClientSecret: cfg.OAuth.GoogleClientSecret,
		RedisHost:    cfg.Redis.Host,
		RedisPort:    redisPort,
		RedisPass:    cfg.Redis.Password,
		Secure:       !cfg.IsDev(),
	})

	var mailer mail.Sender = mail.LogMailer{Log: log}
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, log)
	}

	var prices controllers.Prices
	if len(cfg.Stripe.PriceIDs) > 0 {
		prices.Monthly = cfg.Stripe.PriceIDs[0]
	}
	if len(cfg.Stripe.PriceIDs) > 1 {
		prices.Yearly = cfg.Stripe.PriceIDs[1]
	}

	pages := controllers.New(controllers.Deps{
		Users:        repos.User,
		Billing:      bill,
		Market:       market,
		Sessions:     sessions,
		Mailer:       mailer,
		Captcha:      hcaptcha.New(cfg.HCaptcha.SiteKey, cfg.HCaptcha.Secret),
		Stats:        statistics.New(statistics.DBSource{DB: db}, rdb, log),
		BaseURL:      cfg.App.BaseURL,
		Prices:       prices,
		OAuthEnabled: oauthEnabled,
		IsDev:        cfg.IsDev(),
		Logger:       log,
	})

	engine := html.NewFileSystem(http.FS(views.FS), ".html")
	engine.AddFuncMap(views.Funcs())
	engine.Reload(cfg.IsDev())

	app := fiber.New(fiber.Config{
		Views:     engine,
		BodyLimit: bodyLimit,
	})
	app.Use(recover.New(), logger.New(), httpMetrics.Middleware())

	router.InstallRouter(app, router.Deps{
		Pages:        pages,
		API:          apiv1.NewAPIServer(bill, market, log),
		Sessions:     sessions,
		Users:        repos.User,
		Entitlements: bill,
		Checks: map[string]func(context.Context) error{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error {
				return cache.Ping(ctx, rdb, 2*time.Second)
			},
		},
		Registry:    reg,
		CORSOrigins: cfg.App.CORSOrigins,
		IsDev:       cfg.IsDev(),
		Logger:      log,
	})

	return &application{Fiber: app, Views: viewCounter}, nil
}
