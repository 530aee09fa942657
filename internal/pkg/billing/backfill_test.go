package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

func backfillFixture() (*fakeRepo, *fakeGateway) {
	repo := newFakeRepo()
	repo.users = []models.User{
		{ID: 1, Email: "linked@scrap.example"},
		{ID: 2, Email: "byemail@scrap.example"},
		{ID: 3, Email: "nobody@scrap.example"},
	}
	repo.links[1] = "cus_1"
	gw := newFakeGateway()
	gw.addSubscription(testSub("sub_1", "cus_1", stripe.SubscriptionStatusActive, 100))
	gw.byEmail["byemail@scrap.example"] = []*stripe.Customer{{ID: "cus_2"}}
	gw.addSubscription(testSub("sub_2", "cus_2", stripe.SubscriptionStatusPastDue, 100))
	return repo, gw
}

func TestBackfill(t *testing.T) {
	repo, gw := backfillFixture()
	svc := newTestService(repo, gw)

	report, err := svc.Backfill(context.Background(), BackfillOptions{BatchSize: 2})
	require.NoError(t, err)
	assert.Equal(t, BackfillReport{Scanned: 3, Updated: 2, Skipped: 1}, report)

	assert.True(t, repo.entitlement(t, 1).IsPremium)
	ent2 := repo.entitlement(t, 2)
	assert.False(t, ent2.IsPremium)
	assert.Equal(t, "past_due", ent2.Status)
	assert.Equal(t, "cus_2", repo.links[2])
}

func TestBackfillDryRunWritesNothing(t *testing.T) {
	repo, gw := backfillFixture()
	svc := newTestService(repo, gw)

	report, err := svc.Backfill(context.Background(), BackfillOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Updated)
	assert.Zero(t, repo.writes)
	_, linked := repo.links[2]
	assert.False(t, linked)
}

func TestBackfillLimit(t *testing.T) {
	repo, gw := backfillFixture()
	svc := newTestService(repo, gw)

	report, err := svc.Backfill(context.Background(), BackfillOptions{Limit: 1, RPS: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, repo.writes)
}

func TestBackfillRequiresConfig(t *testing.T) {
	_, err := newTestService(newFakeRepo(), nil).Backfill(context.Background(), BackfillOptions{})
	assert.ErrorIs(t, err, ErrMissingConfig)
}
