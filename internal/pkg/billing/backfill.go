package billing

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

const defaultBackfillBatch = 100

// Backfill reconciles every user's entitlement with the billing platform.
// Users without a discoverable customer are skipped; per-user failures are
// counted and do not stop the run.
func (s *Service) Backfill(ctx context.Context, opts BackfillOptions) (BackfillReport, error) {
	var report BackfillReport
	if err := s.requireConfigured(); err != nil {
		return report, err
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultBackfillBatch
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}

	var after uint
	for {
		users, err := s.repo.ListUsersAfter(ctx, after, batch)
		if err != nil {
			return report, fmt.Errorf("list users: %w", err)
		}
		if len(users) == 0 {
			return report, nil
		}
		for i := range users {
			u := &users[i]
			after = u.ID
			if opts.Limit > 0 && report.Scanned >= opts.Limit {
				return report, nil
			}
			report.Scanned++

			updated, err := s.backfillUser(ctx, limiter, u, opts.DryRun)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				report.Failed++
				s.log.Warn().Err(err).Str("user", redactUser(u.ID)).Msg("backfill failed for user")
			case updated:
				report.Updated++
			default:
				report.Skipped++
			}
		}
	}
}

func (s *Service) backfillUser(ctx context.Context, limiter *rate.Limiter, u *models.User, dryRun bool) (bool, error) {
	customer := ""
	link, err := s.repo.GetCustomerLink(ctx, u.ID)
	switch {
	case err == nil:
		customer = link.StripeCustomerID
	case isNotFound(err):
	default:
		return false, err
	}

	if customer == "" {
		if err := limiter.Wait(ctx); err != nil {
			return false, err
		}
		var res ResolvedCustomer
		if dryRun {
			res, err = s.findCustomerByEmail(ctx, u.Email)
		} else {
			res, err = s.ResolveCustomerByEmail(ctx, u.ID, u.Email)
		}
		if err != nil {
			return false, err
		}
		customer = deref(res.StripeCustomerID)
	}
	if customer == "" {
		return false, nil
	}

	if err := limiter.Wait(ctx); err != nil {
		return false, err
	}
	subs, err := s.gateway.ListSubscriptions(ctx, customer)
	if err != nil {
		s.metrics.gatewayError("list_subscriptions")
		return false, err
	}
	sub := PreferredSubscription(subs)
	if sub == nil {
		return false, nil
	}
	if dryRun {
		s.log.Info().Str("user", redactUser(u.ID)).Str("status", string(sub.Status)).Msg("backfill dry run")
		return true, nil
	}
	if err := s.WriteEntitlement(ctx, updateFromSubscription(u.ID, customer, sub)); err != nil {
		return false, err
	}
	return true, nil
}
