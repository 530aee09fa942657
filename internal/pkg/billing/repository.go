package billing

import (
	"context"
	"errors"
	"time"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetEntitlement(ctx context.Context, userID uint) (*models.UserEntitlement, error)
	UpsertEntitlement(ctx context.Context, ent *models.UserEntitlement) error
	GetCustomerLink(ctx context.Context, userID uint) (*models.StripeCustomer, error)
	FindUserIDByCustomer(ctx context.Context, stripeCustomerID string) (uint, error)
	UpsertCustomerLink(ctx context.Context, userID uint, stripeCustomerID string) error
	// RecordEvent inserts the event id into the ledger and returns
	// ErrDuplicateEvent when it is already present.
	RecordEvent(ctx context.Context, eventID, eventType string) error
	// ForgetEvent removes a ledger row so a redelivery is applied again.
	ForgetEvent(ctx context.Context, eventID string) error
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	ListUsersAfter(ctx context.Context, afterID uint, limit int) ([]models.User, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM. The handle must
// be opened with TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetEntitlement(ctx context.Context, userID uint) (*models.UserEntitlement, error) {
	var ent models.UserEntitlement
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&ent).Error; err != nil {
		return nil, err
	}
	return &ent, nil
}

func (r *gormRepository) UpsertEntitlement(ctx context.Context, ent *models.UserEntitlement) error {
	if ent.UpdatedAt.IsZero() {
		ent.UpdatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_premium",
			"status",
			"stripe_customer_id",
			"stripe_subscription_id",
			"current_period_end",
			"premium_until",
			"updated_at",
		}),
	}).Create(ent).Error
}

func (r *gormRepository) GetCustomerLink(ctx context.Context, userID uint) (*models.StripeCustomer, error) {
	var link models.StripeCustomer
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *gormRepository) FindUserIDByCustomer(ctx context.Context, stripeCustomerID string) (uint, error) {
	var link models.StripeCustomer
	err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", stripeCustomerID).
		Order("updated_at DESC").First(&link).Error
	if err != nil {
		return 0, err
	}
	return link.UserID, nil
}

func (r *gormRepository) UpsertCustomerLink(ctx context.Context, userID uint, stripeCustomerID string) error {
	link := &models.StripeCustomer{UserID: userID, StripeCustomerID: stripeCustomerID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stripe_customer_id", "updated_at"}),
	}).Create(link).Error
}

func (r *gormRepository) RecordEvent(ctx context.Context, eventID, eventType string) error {
	err := r.db.WithContext(ctx).Create(&models.StripeEvent{ID: eventID, Type: eventType}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEvent
	}
	return err
}

func (r *gormRepository) ForgetEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Delete(&models.StripeEvent{ID: eventID}).Error
}

func (r *gormRepository) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepository) ListUsersAfter(ctx context.Context, afterID uint, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("id > ?", afterID).Order("id ASC").Limit(limit).Find(&users).Error
	return users, err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
