package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/cache"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/database"
)

const (
	viewFlushInterval = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	SkipMigrate bool
}

// NewServeCommand creates the HTTP server command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.SkipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	return cmd
}

func runServe(parent context.Context, opts *ServeOptions) error {
	cfg, log := opts.Config, opts.Log
	if missing := cfg.Missing(); len(missing) > 0 {
		if !cfg.IsDev() {
			return fmt.Errorf("missing configuration: %v", missing)
		}
		log.Warn().Strs("missing", missing).Msg("running with incomplete configuration")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !opts.SkipMigrate {
		mg, err := database.NewMigrator(cfg.DB.DSN(), log)
		if err != nil {
			return err
		}
		err = mg.Up()
		mg.Close()
		if err != nil {
			return err
		}
	}

	db, err := database.Open(cfg.DB.DSN(), log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	rdb := cache.New(ctx, cache.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cache.DBCache}, log)
	defer rdb.Close()

	app, err := newApplication(ctx, cfg, db, rdb, log)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := cfg.App.Host + ":" + cfg.App.Port
		log.Info().Str("addr", addr).Str("version", Version).Msg("listening")
		return app.Fiber.Listen(addr)
	})
	g.Go(func() error {
		app.Views.Run(gctx, viewFlushInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Fiber.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
