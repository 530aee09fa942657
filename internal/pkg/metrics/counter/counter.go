package counter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const listingViewsKey = "listing:counters:views"

// Sink applies drained increments, e.g. ListingRepository.AddViews.
type Sink interface {
	AddViews(ctx context.Context, increments map[uint]int64) error
}

// ListingViews buffers listing view counts in a redis hash and periodically
// folds them into the database.
type ListingViews struct {
	rdb  redis.Cmdable
	sink Sink
	log  zerolog.Logger
}

func NewListingViews(rdb redis.Cmdable, sink Sink, log zerolog.Logger) *ListingViews {
	return &ListingViews{rdb: rdb, sink: sink, log: log.With().Str("component", "view_counter").Logger()}
}

// AddListingView increments the pending view counter for a listing.
func (v *ListingViews) AddListingView(ctx context.Context, listingID uint) error {
	field := strconv.FormatUint(uint64(listingID), 10)
	return v.rdb.HIncrBy(ctx, listingViewsKey, field, 1).Err()
}

// Flush drains the hash and applies it to the sink. The hash is renamed
// first so views arriving during the flush land in a fresh key.
func (v *ListingViews) Flush(ctx context.Context) error {
	tmpKey := fmt.Sprintf("%s:tmp:%d", listingViewsKey, time.Now().UnixNano())
	if err := v.rdb.Rename(ctx, listingViewsKey, tmpKey).Err(); err != nil {
		if isNoSuchKey(err) {
			return nil
		}
		return err
	}
	defer v.rdb.Del(context.WithoutCancel(ctx), tmpKey)

	data, err := v.rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	increments := parseIncrements(data)
	if len(increments) == 0 {
		return nil
	}
	if err := v.sink.AddViews(ctx, increments); err != nil {
		return fmt.Errorf("apply view counts: %w", err)
	}
	return nil
}

// Run flushes every interval until ctx is done, then flushes once more.
func (v *ListingViews) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := v.Flush(context.WithoutCancel(ctx)); err != nil {
				v.log.Warn().Err(err).Msg("final view flush failed")
			}
			return
		case <-ticker.C:
			if err := v.Flush(ctx); err != nil {
				v.log.Warn().Err(err).Msg("view flush failed")
			}
		}
	}
}

func isNoSuchKey(err error) bool {
	return err == redis.Nil || strings.Contains(strings.ToLower(err.Error()), "no such key")
}

// parseIncrements converts hash fields to listing ids, dropping junk and zeros.
func parseIncrements(data map[string]string) map[uint]int64 {
	out := make(map[uint]int64, len(data))
	for k, val := range data {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		inc, err := strconv.ParseInt(val, 10, 64)
		if err != nil || inc <= 0 {
			continue
		}
		out[uint(id)] = inc
	}
	return out
}
