package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

func TestReadEntitlementFailsClosed(t *testing.T) {
	ctx := context.Background()

	t.Run("no viewer", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), nil)
		view := svc.ReadEntitlement(ctx, nil)
		assert.Nil(t, view.UserID)
		assert.False(t, view.IsPremium)
	})

	t.Run("no row", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), nil)
		view := svc.ReadEntitlement(ctx, &Viewer{UserID: 3})
		require.NotNil(t, view.UserID)
		assert.Equal(t, uint(3), *view.UserID)
		assert.False(t, view.IsPremium)
	})

	t.Run("query error", func(t *testing.T) {
		repo := newFakeRepo()
		repo.entitlements[3] = models.UserEntitlement{UserID: 3, IsPremium: true}
		repo.entitlementErr = errors.New("connection refused")
		svc := newTestService(repo, nil)
		assert.False(t, svc.ReadEntitlement(ctx, &Viewer{UserID: 3}).IsPremium)
	})

	t.Run("premium row", func(t *testing.T) {
		repo := newFakeRepo()
		repo.entitlements[3] = models.UserEntitlement{UserID: 3, IsPremium: true, Status: "active"}
		svc := newTestService(repo, nil)
		assert.True(t, svc.ReadEntitlement(ctx, &Viewer{UserID: 3}).IsPremium)
		assert.True(t, svc.IsPremium(ctx, 3))
		assert.False(t, svc.IsPremium(ctx, 0))
	})
}

type panickingRepo struct{ *fakeRepo }

func (panickingRepo) GetEntitlement(context.Context, uint) (*models.UserEntitlement, error) {
	panic("boom")
}

func TestReadEntitlementRecoversFromPanic(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	svc.repo = panickingRepo{newFakeRepo()}

	assert.NotPanics(t, func() {
		view := svc.ReadEntitlement(context.Background(), &Viewer{UserID: 1})
		assert.False(t, view.IsPremium)
	})
}

func TestResolveContext(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated", func(t *testing.T) {
		bc, err := newTestService(newFakeRepo(), nil).ResolveContext(ctx, nil)
		assert.NoError(t, err)
		assert.Nil(t, bc)
	})

	t.Run("entitlement row", func(t *testing.T) {
		repo := newFakeRepo()
		cus, subID := "cus_1", "sub_1"
		repo.entitlements[5] = models.UserEntitlement{UserID: 5, IsPremium: true, StripeCustomerID: &cus, StripeSubscriptionID: &subID}
		bc, err := newTestService(repo, nil).ResolveContext(ctx, &Viewer{UserID: 5, Email: "a@b.c"})
		require.NoError(t, err)
		assert.Equal(t, "a@b.c", bc.Email)
		assert.Equal(t, "cus_1", *bc.StripeCustomerID)
		assert.Equal(t, "sub_1", *bc.StripeSubscriptionID)
		assert.True(t, bc.IsPremium)
	})

	t.Run("customer from link", func(t *testing.T) {
		repo := newFakeRepo()
		repo.links[5] = "cus_link"
		bc, err := newTestService(repo, nil).ResolveContext(ctx, &Viewer{UserID: 5})
		require.NoError(t, err)
		assert.Equal(t, "cus_link", *bc.StripeCustomerID)
		assert.Nil(t, bc.StripeSubscriptionID)
		assert.False(t, bc.IsPremium)
	})

	t.Run("lookup error propagates", func(t *testing.T) {
		repo := newFakeRepo()
		repo.entitlementErr = errors.New("timeout")
		_, err := newTestService(repo, nil).ResolveContext(ctx, &Viewer{UserID: 5})
		assert.ErrorContains(t, err, "timeout")
	})
}

func TestWriteEntitlement(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	end := unixTime(1_700_000_000)

	require.NoError(t, svc.WriteEntitlement(context.Background(), EntitlementUpdate{
		UserID: 9, Status: "trialing", CurrentPeriodEnd: end, StripeCustomerID: strPtr("cus_9"),
	}))
	ent := repo.entitlement(t, 9)
	assert.True(t, ent.IsPremium)
	assert.Equal(t, "trialing", ent.Status)
	assert.Equal(t, end, ent.PremiumUntil)
	assert.Equal(t, end, ent.CurrentPeriodEnd)

	require.NoError(t, svc.WriteEntitlement(context.Background(), EntitlementUpdate{UserID: 9, Status: "active", ForceNotPremium: true}))
	ent = repo.entitlement(t, 9)
	assert.False(t, ent.IsPremium)
	assert.Nil(t, ent.StripeCustomerID)
	assert.Nil(t, ent.CurrentPeriodEnd)

	require.NoError(t, svc.WriteEntitlement(context.Background(), EntitlementUpdate{UserID: 9}))
	assert.Equal(t, "unknown", repo.entitlement(t, 9).Status)

	assert.Error(t, svc.WriteEntitlement(context.Background(), EntitlementUpdate{Status: "active"}))
}
