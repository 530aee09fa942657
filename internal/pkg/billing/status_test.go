package billing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v76"
)

func TestIsPremiumStatus(t *testing.T) {
	cases := map[string]bool{
		"active":             true,
		"trialing":           true,
		"past_due":           false,
		"unpaid":             false,
		"canceled":           false,
		"incomplete":         false,
		"incomplete_expired": false,
		"paused":             false,
		"unknown":            false,
		"":                   false,
		"ACTIVE":             false,
		"something-else":     false,
	}
	for status, want := range cases {
		if got := IsPremiumStatus(status); got != want {
			t.Fatalf("IsPremiumStatus(%q)=%v want %v", status, got, want)
		}
	}
}

func TestBestSubscriptionStatusRankDominatesRecency(t *testing.T) {
	pastDueNewer := testSub("sub_pd", "cus_1", stripe.SubscriptionStatusPastDue, 200)
	activeOlder := testSub("sub_act", "cus_2", stripe.SubscriptionStatusActive, 100)

	best := BestSubscription([]*stripe.Subscription{pastDueNewer, activeOlder})

	assert.Equal(t, "sub_act", best.ID)
}

func TestBestSubscriptionTieBreaks(t *testing.T) {
	older := testSub("sub_old", "cus_1", stripe.SubscriptionStatusActive, 100)
	newer := testSub("sub_new", "cus_1", stripe.SubscriptionStatusActive, 200)
	assert.Equal(t, "sub_new", BestSubscription([]*stripe.Subscription{older, newer}).ID)

	cancelling := testSub("sub_cancel", "cus_1", stripe.SubscriptionStatusActive, 100)
	cancelling.CancelAtPeriodEnd = true
	staying := testSub("sub_stay", "cus_1", stripe.SubscriptionStatusActive, 100)
	assert.Equal(t, "sub_stay", BestSubscription([]*stripe.Subscription{cancelling, staying}).ID)
	assert.Equal(t, "sub_stay", BestSubscription([]*stripe.Subscription{staying, cancelling}).ID)

	assert.Nil(t, BestSubscription(nil))
}

func TestStatusRank(t *testing.T) {
	ordered := []stripe.SubscriptionStatus{
		stripe.SubscriptionStatusActive,
		stripe.SubscriptionStatusTrialing,
		stripe.SubscriptionStatusPastDue,
		stripe.SubscriptionStatusUnpaid,
		stripe.SubscriptionStatusCanceled,
		stripe.SubscriptionStatusIncompleteExpired,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, statusRank(ordered[i-1]), statusRank(ordered[i]), "%s should outrank %s", ordered[i-1], ordered[i])
	}
	assert.Equal(t, 0, statusRank("paused"))
}

func TestPreferredSubscription(t *testing.T) {
	tests := []struct {
		name string
		subs []*stripe.Subscription
		want string
	}{
		{
			name: "none",
			subs: nil,
			want: "",
		},
		{
			name: "active preferred over newer canceled",
			subs: []*stripe.Subscription{
				testSub("sub_canceled", "c", stripe.SubscriptionStatusCanceled, 100),
				testSub("sub_active", "c", stripe.SubscriptionStatusActive, 50),
			},
			want: "sub_active",
		},
		{
			name: "newest relevant wins regardless of list order",
			subs: []*stripe.Subscription{
				testSub("sub_old_past_due", "c", stripe.SubscriptionStatusPastDue, 10),
				testSub("sub_new_active", "c", stripe.SubscriptionStatusActive, 90),
			},
			want: "sub_new_active",
		},
		{
			name: "falls back to newest overall",
			subs: []*stripe.Subscription{
				testSub("sub_c1", "c", stripe.SubscriptionStatusCanceled, 10),
				testSub("sub_c2", "c", stripe.SubscriptionStatusIncompleteExpired, 20),
			},
			want: "sub_c2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreferredSubscription(tt.subs)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestRedactID(t *testing.T) {
	assert.Equal(t, "…5678", RedactID("cus_12345678"))
	assert.Equal(t, "…12", RedactID("12"))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{ErrMissingConfig, 500, "missing configuration"},
		{fmt.Errorf("%w: bad", ErrInvalidSignature), 400, "invalid webhook signature"},
		{ErrUnauthenticated, 401, "unauthenticated"},
		{ErrEmailNotConfirmed, 403, "email not confirmed"},
		{ErrForbidden, 403, "forbidden"},
		{ErrUnknownPrice, 400, "unknown price"},
		{fmt.Errorf("%w: session_id is required", ErrInvalidRequest), 400, "invalid request: session_id is required"},
		{ErrNoSubscription, 404, "no subscription"},
		{errors.New("stripe down"), 500, "internal error"},
	}
	for _, tt := range tests {
		status, msg := HTTPStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.msg, msg)
	}
}
