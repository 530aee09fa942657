package marketplace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"github.com/ManuelReschke/ScrapMarket/app/repository"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/entitlements"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/push"
)

const PageSize = 24

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalid         = errors.New("invalid input")
	ErrPremiumRequired = errors.New("premium required")
	ErrPhotosDisabled  = errors.New("photo uploads are not configured")
)

// Steps of a multi-step flow that can fail after an earlier step succeeded.
const (
	StepConversation = "conversation"
	StepMessage      = "message"
	StepNotify       = "notify"
)

// StepError reports that a flow stopped at Step. Earlier steps stay committed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Entitlements answers the premium question for a user.
type Entitlements interface {
	IsPremium(ctx context.Context, userID uint) bool
}

// ViewCounter buffers listing views.
type ViewCounter interface {
	AddListingView(ctx context.Context, listingID uint) error
}

// Photos stores listing photos.
type Photos interface {
	Upload(ctx context.Context, listing *models.Listing, r io.Reader) (*models.ListingPhoto, error)
	URLs(ctx context.Context, photo models.ListingPhoto) (full, thumb string, err error)
}

// Deps wires a Service. Views, Photos and Push are optional.
type Deps struct {
	Repos        *repository.Repositories
	Entitlements Entitlements
	Views        ViewCounter
	Photos       Photos
	Push         push.Notifier
	Logger       zerolog.Logger
}

// Service runs the marketplace flows on top of the repositories.
type Service struct {
	repos  *repository.Repositories
	ent    Entitlements
	views  ViewCounter
	photos Photos
	push   push.Notifier
	log    zerolog.Logger
	now    func() time.Time
}

func New(d Deps) *Service {
	n := d.Push
	if n == nil {
		n = push.Nop{}
	}
	return &Service{
		repos:  d.Repos,
		ent:    d.Entitlements,
		views:  d.Views,
		photos: d.Photos,
		push:   n,
		log:    d.Logger.With().Str("component", "marketplace").Logger(),
		now:    time.Now,
	}
}

func (s *Service) isPremium(ctx context.Context, userID uint) bool {
	return s.ent != nil && s.ent.IsPremium(ctx, userID)
}

func (s *Service) allows(ctx context.Context, userID uint, feature entitlements.Feature) bool {
	return entitlements.Allows(entitlements.PlanFor(s.isPremium(ctx, userID)), feature)
}

func (s *Service) requireFeature(ctx context.Context, userID uint, feature entitlements.Feature) error {
	if !s.allows(ctx, userID, feature) {
		return ErrPremiumRequired
	}
	return nil
}

func offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

// notFound maps a repository miss to ErrNotFound.
func notFound(err error) error {
	if repository.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

var validate = validator.New()

func validateStruct(v any) error {
	return validate.Struct(v)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// notify stores a notification and pushes it to the user's devices. Push
// failures are logged; only the database write is reported.
func (s *Service) notify(ctx context.Context, userID uint, kind, title, content, link string) error {
	n := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Content: content,
		Link:    link,
	}
	if err := s.repos.Notification.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	tokens, err := s.repos.Notification.ListDeviceTokens(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("list device tokens failed")
		return nil
	}
	if len(tokens) == 0 {
		return nil
	}
	stale, err := s.push.Send(ctx, tokens, push.Message{Title: title, Body: content, Link: link})
	if err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("push delivery failed")
	}
	for _, t := range stale {
		if err := s.repos.Notification.DeleteDeviceToken(ctx, t); err != nil {
			s.log.Warn().Err(err).Msg("delete stale device token failed")
		}
	}
	return nil
}

// HTTPStatus maps a marketplace error to a response status and a
// client-safe message.
func HTTPStatus(err error) (int, string) {
	var stepErr *StepError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, ErrNotFound.Error()
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrForbidden.Error()
	case errors.Is(err, ErrPremiumRequired):
		return http.StatusPaymentRequired, ErrPremiumRequired.Error()
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrPhotosDisabled):
		return http.StatusServiceUnavailable, ErrPhotosDisabled.Error()
	case errors.As(err, &stepErr):
		return http.StatusInternalServerError, stepErr.Step + " step failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
