package config

import (
	"fmt"
	"strings"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/billing"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/env"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/logging"
)

type App struct {
	Env     string
	Host    string
	Port    string
	BaseURL string
	Secret  string

	// CORSOrigins lists the origins allowed to call /api.
	CORSOrigins string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN returns the go-sql-driver/mysql data source name.
func (d Database) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type Redis struct {
	Host     string
	Port     string
	Password string
}

func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

type S3 struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether photo storage can be used.
func (s S3) Enabled() bool {
	return s.Bucket != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

type SMTP struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type OAuth struct {
	GoogleClientID     string
	GoogleClientSecret string
}

type HCaptcha struct {
	SiteKey string
	Secret  string
}

type Push struct {
	ServiceAccountJSON string
}

// Config is the typed process configuration.
type Config struct {
	App         App
	Log         logging.Config
	DB          Database
	Redis       Redis
	Stripe      billing.Config
	S3          S3
	SMTP        SMTP
	OAuth       OAuth
	Push        Push
	HCaptcha    HCaptcha
	BackfillRPS float64
}

// Load reads configuration from the loaded .env map and the process
// environment.
func Load() Config {
	var prices []string
	for _, p := range []string{env.GetEnv("STRIPE_PRICE_ID", ""), env.GetEnv("STRIPE_PRICE_ID_YEARLY", "")} {
		if p = strings.TrimSpace(p); p != "" {
			prices = append(prices, p)
		}
	}

	cfg := Config{
		App: App{
			Env:     env.GetEnv("APP_ENV", "prod"),
			Host:    env.GetEnv("APP_HOST", "localhost"),
			Port:    env.GetEnv("APP_PORT", "4000"),
			BaseURL: strings.TrimRight(env.GetEnv("APP_BASE_URL", ""), "/"),
			Secret:  env.GetEnv("APP_SECRET", ""),

			CORSOrigins: env.GetEnv("APP_CORS_ORIGINS", "*"),
		},
		Log: logging.Config{
			Level:  env.GetEnv("LOG_LEVEL", "info"),
			Format: env.GetEnv("LOG_FORMAT", "auto"),
		},
		DB: Database{
			Host:     env.GetEnv("DB_HOST", "127.0.0.1"),
			Port:     env.GetEnv("DB_PORT", "3306"),
			User:     env.GetEnv("DB_USER", ""),
			Password: env.GetEnv("DB_PASSWORD", ""),
			Name:     env.GetEnv("DB_NAME", ""),
		},
		Redis: Redis{
			Host:     env.GetEnv("REDIS_HOST", "localhost"),
			Port:     env.GetEnv("REDIS_PORT", "6379"),
			Password: env.GetEnv("REDIS_PASSWORD", ""),
		},
		Stripe: billing.Config{
			SecretKey:     env.GetEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceIDs:      prices,
		},
		S3: S3{
			Endpoint:        env.GetEnv("S3_ENDPOINT", ""),
			Region:          env.GetEnv("S3_REGION", "eu-central-1"),
			Bucket:          env.GetEnv("S3_BUCKET", ""),
			AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		},
		SMTP: SMTP{
			Host:     env.GetEnv("SMTP_HOST", ""),
			Port:     env.GetEnv("SMTP_PORT", "587"),
			User:     env.GetEnv("SMTP_USER", ""),
			Password: env.GetEnv("SMTP_PASSWORD", ""),
			From:     env.GetEnv("SMTP_FROM", "no-reply@scrapmarket.local"),
		},
		OAuth: OAuth{
			GoogleClientID:     env.GetEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: env.GetEnv("GOOGLE_CLIENT_SECRET", ""),
		},
		Push: Push{
			ServiceAccountJSON: env.GetEnv("FCM_SERVICE_ACCOUNT_JSON", ""),
		},
		HCaptcha: HCaptcha{
			SiteKey: env.GetEnv("HCAPTCHA_SITEKEY", ""),
			Secret:  env.GetEnv("HCAPTCHA_SECRET", ""),
		},
		BackfillRPS: env.GetFloat("BACKFILL_RPS", 5),
	}
	cfg.Stripe.BaseURL = cfg.App.BaseURL
	return cfg
}

// IsDev reports whether the process runs in development mode.
func (c Config) IsDev() bool {
	return c.App.Env == "dev"
}

// Missing lists the required keys that are not set, billing keys included.
func (c Config) Missing() []string {
	var missing []string
	if c.App.Secret == "" {
		missing = append(missing, "APP_SECRET")
	}
	if c.DB.User == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DB.Name == "" {
		missing = append(missing, "DB_NAME")
	}
	return append(missing, c.BillingMissing()...)
}

// BillingMissing lists the absent billing platform keys.
func (c Config) BillingMissing() []string {
	return c.Stripe.Missing()
}
