package repository

import (
	"context"
	"strings"
	"time"

	"github.com/ManuelReschke/ScrapMarket/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByActivationToken retrieves a user by their activation token
func (r *userRepository) GetByActivationToken(ctx context.Context, token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var user models.User
	err := r.db.WithContext(ctx).Where("activation_token = ?", token).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByAPIKeyHash resolves an active API key hash to its user and key record.
func (r *userRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*models.User, *models.APIKey, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, nil, gorm.ErrRecordNotFound
	}
	db := r.db.WithContext(ctx)
	var key models.APIKey
	if err := db.Where("key_hash = ? AND key_hash <> '' AND revoked_at IS NULL", trimmed).First(&key).Error; err != nil {
		return nil, nil, err
	}
	var user models.User
	if err := db.First(&user, key.UserID).Error; err != nil {
		return nil, nil, err
	}
	now := time.Now()
	_ = db.Model(&key).UpdateColumn("last_used_at", now).Error
	key.LastUsedAt = &now
	return &user, &key, nil
}

// GetAPIKey returns the key record of a user, or ErrNotFound.
func (r *userRepository) GetAPIKey(ctx context.Context, userID uint) (*models.APIKey, error) {
	var key models.APIKey
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&key).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

// SaveAPIKey inserts or replaces the key of a user.
func (r *userRepository) SaveAPIKey(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"key_hash", "key_prefix", "last_used_at", "revoked_at", "updated_at"}),
	}).Create(key).Error
}

// Update updates an existing user in the database
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_login_at", time.Now()).Error
}

// ListAfterID pages through users in id order.
func (r *userRepository) ListAfterID(ctx context.Context, afterID uint, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("id > ?", afterID).Order("id ASC").Limit(limit).Find(&users).Error
	return users, err
}

func (r *userRepository) GetProviderAccount(ctx context.Context, provider, providerUserID string) (*models.ProviderAccount, error) {
	var pa models.ProviderAccount
	err := r.db.WithContext(ctx).Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&pa).Error
	if err != nil {
		return nil, err
	}
	return &pa, nil
}

func (r *userRepository) SaveProviderAccount(ctx context.Context, pa *models.ProviderAccount) error {
	return r.db.WithContext(ctx).Save(pa).Error
}
