package billing

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

// IsPremiumStatus reports whether a subscription status grants premium.
func IsPremiumStatus(status string) bool {
	switch status {
	case models.BillingStatusActive, models.BillingStatusTrialing:
		return true
	default:
		return false
	}
}

func statusRank(status stripe.SubscriptionStatus) int {
	switch string(status) {
	case models.BillingStatusActive:
		return 5
	case models.BillingStatusTrialing:
		return 4
	case models.BillingStatusPastDue:
		return 3
	case models.BillingStatusUnpaid:
		return 2
	case models.BillingStatusCanceled:
		return 1
	default:
		return 0
	}
}

func isRelevantStatus(status stripe.SubscriptionStatus) bool {
	switch string(status) {
	case models.BillingStatusActive, models.BillingStatusTrialing, models.BillingStatusPastDue, models.BillingStatusUnpaid:
		return true
	default:
		return false
	}
}

// PreferredSubscription picks the subscription shown to the customer: the
// newest one in an actionable status, else the newest overall, else nil.
func PreferredSubscription(subs []*stripe.Subscription) *stripe.Subscription {
	sorted := make([]*stripe.Subscription, 0, len(subs))
	for _, s := range subs {
		if s != nil {
			sorted = append(sorted, s)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Created > sorted[j].Created })
	for _, s := range sorted {
		if isRelevantStatus(s.Status) {
			return s
		}
	}
	return sorted[0]
}

// betterSubscription orders candidates by status rank, then recency, then
// not cancelling at period end.
func betterSubscription(a, b *stripe.Subscription) bool {
	if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
		return ra > rb
	}
	if a.Created != b.Created {
		return a.Created > b.Created
	}
	return !a.CancelAtPeriodEnd && b.CancelAtPeriodEnd
}

// BestSubscription returns the highest ranked candidate, or nil.
func BestSubscription(subs []*stripe.Subscription) *stripe.Subscription {
	var best *stripe.Subscription
	for _, s := range subs {
		if s == nil {
			continue
		}
		if best == nil || betterSubscription(s, best) {
			best = s
		}
	}
	return best
}

func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return models.BillingStatusUnknown
	}
	return s
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func subscriptionID(s *stripe.Subscription) string {
	if s == nil {
		return ""
	}
	return s.ID
}

func parseUserID(raw string) uint {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// RedactID keeps only the last four characters of an identifier for logs.
func RedactID(id string) string {
	if len(id) <= 4 {
		return "…" + id
	}
	return "…" + id[len(id)-4:]
}

func redactUser(id uint) string {
	return RedactID(strconv.FormatUint(uint64(id), 10))
}
