package billing

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Config holds the billing platform settings the service needs.
type Config struct {
	SecretKey     string
	WebhookSecret string
	// PriceIDs lists the prices a checkout may use; the first is the default.
	PriceIDs []string
	BaseURL  string
}

// Missing lists the configuration keys that are not set.
func (c Config) Missing() []string {
	var missing []string
	if c.SecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.WebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(c.PriceIDs) == 0 || c.PriceIDs[0] == "" {
		missing = append(missing, "STRIPE_PRICE_ID")
	}
	if c.BaseURL == "" {
		missing = append(missing, "APP_BASE_URL")
	}
	return missing
}

// Service keeps user entitlements in sync with the billing platform.
type Service struct {
	repo    Repository
	gateway Gateway
	cfg     Config
	log     zerolog.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewService creates a billing service. gateway may be nil when the billing
// platform is not configured; reads keep working and billing calls return
// ErrMissingConfig.
func NewService(repo Repository, gateway Gateway, cfg Config, logger zerolog.Logger, metrics *Metrics) *Service {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Service{
		repo:    repo,
		gateway: gateway,
		cfg:     cfg,
		log:     logger.With().Str("component", "billing").Logger(),
		metrics: metrics,
		now:     time.Now,
	}
}

// NewServiceFromDB wires the GORM repository and a stripe-go gateway from cfg.
func NewServiceFromDB(db *gorm.DB, cfg Config, logger zerolog.Logger, metrics *Metrics) *Service {
	var gw Gateway
	if cfg.SecretKey != "" {
		gw = NewStripeGateway(cfg.SecretKey)
	}
	return NewService(NewRepository(db), gw, cfg, logger, metrics)
}

// Configured reports whether billing platform calls can be made.
func (s *Service) Configured() bool {
	return s.gateway != nil && len(s.cfg.Missing()) == 0
}

func (s *Service) requireConfigured() error {
	if !s.Configured() {
		return ErrMissingConfig
	}
	return nil
}

func (s *Service) resolvePrice(priceID string) (string, error) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return s.cfg.PriceIDs[0], nil
	}
	for _, p := range s.cfg.PriceIDs {
		if p == priceID {
			return p, nil
		}
	}
	return "", ErrUnknownPrice
}
