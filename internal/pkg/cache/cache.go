package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Logical databases on the shared redis server.
const (
	DBCache    = 0
	DBSessions = 1
	DBOAuth    = 2
)

// Options selects the redis server.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New connects to redis. An unreachable server is logged, not fatal; callers
// that need it check Ping.
func New(ctx context.Context, opts Options, log zerolog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if pong, err := client.Ping(pingCtx).Result(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("could not connect to redis")
	} else {
		log.Info().Str("addr", opts.Addr).Str("reply", pong).Msg("connected to redis")
	}
	return client
}

// Ping reports whether the server answers within timeout.
func Ping(ctx context.Context, client redis.UniversalClient, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
