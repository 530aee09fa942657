package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/ScrapMarket/internal/pkg/billing"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/database"
	"github.com/ManuelReschke/ScrapMarket/internal/pkg/metrics"
)

// BackfillOptions holds flags for the backfill command.
type BackfillOptions struct {
	*RootOptions
	DryRun bool
	Limit  int
	Batch  int
	RPS    float64
}

// NewBackfillCommand creates the entitlement backfill command.
func NewBackfillCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackfillOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Reconcile every user's premium entitlement with Stripe",
		Long: `Walk all users, find their Stripe customer (stored link or email search)
and rewrite the entitlement from the best subscription.

Examples:
  scrapmarket backfill --dry-run
  scrapmarket backfill --limit 500 --rps 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report without writing")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many users (0 = all)")
	cmd.Flags().IntVar(&opts.Batch, "batch", 100, "users loaded per query")
	cmd.Flags().Float64Var(&opts.RPS, "rps", 0, "max Stripe requests per second (default BACKFILL_RPS)")

	return cmd
}

func runBackfill(cmd *cobra.Command, opts *BackfillOptions) error {
	cfg := opts.Config
	if missing := cfg.BillingMissing(); len(missing) > 0 {
		return fmt.Errorf("missing configuration: %v", missing)
	}
	rps := opts.RPS
	if rps <= 0 {
		rps = cfg.BackfillRPS
	}

	db, err := database.Open(cfg.DB.DSN(), opts.Log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	svc := billing.NewServiceFromDB(db, cfg.Stripe, opts.Log, billing.NewMetrics(metrics.NewRegistry()))
	report, err := svc.Backfill(cmd.Context(), billing.BackfillOptions{
		DryRun:    opts.DryRun,
		Limit:     opts.Limit,
		BatchSize: opts.Batch,
		RPS:       rps,
	})
	out, _ := json.Marshal(report)
	cmd.Println(string(out))
	if err != nil {
		return err
	}
	opts.Log.Info().
		Bool("dry_run", opts.DryRun).
		Int("scanned", report.Scanned).
		Int("updated", report.Updated).
		Int("failed", report.Failed).
		Msg("backfill finished")
	return nil
}
