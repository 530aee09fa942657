package marketplace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

func TestFollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Follow(ctx, f.buyer.ID, f.buyer.ID), ErrInvalid)
	assert.ErrorIs(t, f.svc.Follow(ctx, f.buyer.ID, 999), ErrNotFound)

	require.NoError(t, f.svc.Follow(ctx, f.buyer.ID, f.seller.ID))
	require.NoError(t, f.svc.Follow(ctx, f.buyer.ID, f.seller.ID))
	following, err := f.svc.Following(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, following, 1)
	notes, _ := f.svc.Notifications(ctx, f.seller.ID)
	assert.Len(t, notes, 1, "repeat follows notify once")

	f.db.addListing(f.seller.ID, models.LISTING_STATUS_ACTIVE)
	feed, err := f.svc.FollowingFeed(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	require.NoError(t, f.svc.Unfollow(ctx, f.buyer.ID, f.seller.ID))
	following, _ = f.svc.Following(ctx, f.buyer.ID)
	assert.Empty(t, following)
}

func TestSavedListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.db.addListing(f.seller.ID, models.LISTING_STATUS_ACTIVE)

	require.NoError(t, f.svc.SaveListing(ctx, f.buyer.ID, l.UUID))
	require.NoError(t, f.svc.SaveListing(ctx, f.buyer.ID, l.UUID))
	saved, err := f.svc.SavedListings(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, saved, 1)

	d, err := f.svc.GetListing(ctx, f.buyer.ID, l.UUID)
	require.NoError(t, err)
	assert.True(t, d.IsSaved)

	require.NoError(t, f.svc.UnsaveListing(ctx, f.buyer.ID, l.UUID))
	saved, _ = f.svc.SavedListings(ctx, f.buyer.ID)
	assert.Empty(t, saved)
	assert.ErrorIs(t, f.svc.SaveListing(ctx, f.buyer.ID, "missing"), ErrNotFound)
}

func TestNotificationsReadState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.svc.notify(ctx, f.buyer.ID, models.NOTIFICATION_SYSTEM, "a", "", ""))
	require.NoError(t, f.svc.notify(ctx, f.buyer.ID, models.NOTIFICATION_SYSTEM, "b", "", ""))

	n, err := f.svc.UnreadCount(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	notes, _ := f.svc.Notifications(ctx, f.buyer.ID)
	require.NoError(t, f.svc.MarkNotificationRead(ctx, f.buyer.ID, notes[0].ID))
	n, _ = f.svc.UnreadCount(ctx, f.buyer.ID)
	assert.Equal(t, int64(1), n)

	assert.ErrorIs(t, f.svc.MarkNotificationRead(ctx, f.seller.ID, notes[1].ID), ErrNotFound)

	require.NoError(t, f.svc.MarkAllNotificationsRead(ctx, f.buyer.ID))
	n, _ = f.svc.UnreadCount(ctx, f.buyer.ID)
	assert.Zero(t, n)
}

func TestRegisterDevice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.svc.RegisterDevice(ctx, f.buyer.ID, " fcm-token ", "")
	require.NoError(t, err)
	assert.Equal(t, "web", d.Platform)
	assert.Contains(t, f.db.devices, "fcm-token")

	_, err = f.svc.RegisterDevice(ctx, f.buyer.ID, "", "android")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = f.svc.RegisterDevice(ctx, f.buyer.ID, "tok", "symbian")
	assert.ErrorIs(t, err, ErrInvalid)
}
