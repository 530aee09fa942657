// Package statistics serves the marketplace counters shown on the start page.
package statistics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

const (
	CacheKey        = "statistics:marketplace"
	CacheExpiration = 5 * time.Minute
)

// Data is the start page summary.
type Data struct {
	ActiveListings int64 `json:"active_listings"`
	TodayListings  int64 `json:"today_listings"`
	TotalUsers     int64 `json:"total_users"`
}

// Source computes fresh statistics.
type Source interface {
	Stats(ctx context.Context) (Data, error)
}

// Service caches Source results in redis.
type Service struct {
	src Source
	rdb redis.Cmdable
	ttl time.Duration
	log zerolog.Logger
}

func New(src Source, rdb redis.Cmdable, log zerolog.Logger) *Service {
	return &Service{src: src, rdb: rdb, ttl: CacheExpiration, log: log.With().Str("component", "statistics").Logger()}
}

// Get returns cached statistics, recomputing them when the cache is cold.
// Failures are logged and yield zero values.
func (s *Service) Get(ctx context.Context) Data {
	var d Data
	raw, err := s.rdb.Get(ctx, CacheKey).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			return d
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("read statistics cache failed")
	}

	d, err = s.src.Stats(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("compute statistics failed")
		return Data{}
	}
	if b, err := json.Marshal(d); err == nil {
		if err := s.rdb.Set(ctx, CacheKey, b, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Msg("write statistics cache failed")
		}
	}
	return d
}

// DBSource counts rows with gorm.
type DBSource struct {
	DB  *gorm.DB
	Now func() time.Time
}

func (s DBSource) Stats(ctx context.Context) (Data, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	var d Data
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.Listing{}).Where("status = ?", models.LISTING_STATUS_ACTIVE).Count(&d.ActiveListings).Error; err != nil {
		return d, fmt.Errorf("count active listings: %w", err)
	}
	y, m, day := now().UTC().Date()
	todayStart := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	if err := db.Model(&models.Listing{}).Where("created_at >= ?", todayStart).Count(&d.TodayListings).Error; err != nil {
		return d, fmt.Errorf("count today's listings: %w", err)
	}
	if err := db.Model(&models.User{}).Count(&d.TotalUsers).Error; err != nil {
		return d, fmt.Errorf("count users: %w", err)
	}
	return d, nil
}
