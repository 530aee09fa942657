package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ScrapMarket/app/models"
)

const testWebhookSecret = "whsec_test"

type fakeRepo struct {
	mu           sync.Mutex
	entitlements map[uint]models.UserEntitlement
	links        map[uint]string
	events       map[string]string
	users        []models.User
	writes       int

	entitlementErr error
	recordErr      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		entitlements: map[uint]models.UserEntitlement{},
		links:        map[uint]string{},
		events:       map[string]string{},
	}
}

func (r *fakeRepo) GetEntitlement(_ context.Context, userID uint) (*models.UserEntitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entitlementErr != nil {
		return nil, r.entitlementErr
	}
	ent, ok := r.entitlements[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &ent, nil
}

func (r *fakeRepo) UpsertEntitlement(_ context.Context, ent *models.UserEntitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entitlements[ent.UserID] = *ent
	r.writes++
	return nil
}

func (r *fakeRepo) GetCustomerLink(_ context.Context, userID uint) (*models.StripeCustomer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.links[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.StripeCustomer{UserID: userID, StripeCustomerID: id}, nil
}

func (r *fakeRepo) FindUserIDByCustomer(_ context.Context, customer string) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, c := range r.links {
		if c == customer {
			return uid, nil
		}
	}
	return 0, gorm.ErrRecordNotFound
}

func (r *fakeRepo) UpsertCustomerLink(_ context.Context, userID uint, customer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[userID] = customer
	return nil
}

func (r *fakeRepo) RecordEvent(_ context.Context, id, eventType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return r.recordErr
	}
	if _, ok := r.events[id]; ok {
		return ErrDuplicateEvent
	}
	r.events[id] = eventType
	return nil
}

func (r *fakeRepo) ForgetEvent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.events, id)
	return nil
}

func (r *fakeRepo) GetUser(_ context.Context, userID uint) (*models.User, error) {
	for i := range r.users {
		if r.users[i].ID == userID {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) ListUsersAfter(_ context.Context, afterID uint, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.ID > afterID {
			out = append(out, u)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) entitlement(t *testing.T, userID uint) models.UserEntitlement {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	ent, ok := r.entitlements[userID]
	require.True(t, ok, "no entitlement for user %d", userID)
	return ent
}

type fakeGateway struct {
	mu            sync.Mutex
	subscriptions map[string]*stripe.Subscription
	byCustomer    map[string][]*stripe.Subscription
	customers     map[string]*stripe.Customer
	byEmail       map[string][]*stripe.Customer
	invoices      map[string][]*stripe.Invoice
	sessions      map[string]*stripe.CheckoutSession

	listErr error

	created       []string
	checkouts     []CheckoutRequest
	attached      []string
	defaults      []string
	cancelled     []string
	getSubCalls   int
	nextCustomer  int
	setupIntentCS string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		subscriptions: map[string]*stripe.Subscription{},
		byCustomer:    map[string][]*stripe.Subscription{},
		customers:     map[string]*stripe.Customer{},
		byEmail:       map[string][]*stripe.Customer{},
		invoices:      map[string][]*stripe.Invoice{},
		sessions:      map[string]*stripe.CheckoutSession{},
		setupIntentCS: "seti_secret",
	}
}

func (g *fakeGateway) addSubscription(sub *stripe.Subscription) {
	g.subscriptions[sub.ID] = sub
	c := customerID(sub.Customer)
	g.byCustomer[c] = append(g.byCustomer[c], sub)
}

func (g *fakeGateway) ListSubscriptions(_ context.Context, customer string) ([]*stripe.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.byCustomer[customer], nil
}

func (g *fakeGateway) GetSubscription(_ context.Context, id string) (*stripe.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getSubCalls++
	sub, ok := g.subscriptions[id]
	if !ok {
		return nil, fmt.Errorf("no such subscription: %s", id)
	}
	return sub, nil
}

func (g *fakeGateway) GetCustomer(_ context.Context, id string) (*stripe.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.customers[id]
	if !ok {
		return &stripe.Customer{ID: id}, nil
	}
	return c, nil
}

func (g *fakeGateway) ListInvoices(_ context.Context, customer string, limit int64) ([]*stripe.Invoice, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	inv := g.invoices[customer]
	if int64(len(inv)) > limit {
		inv = inv[:limit]
	}
	return inv, nil
}

func (g *fakeGateway) SearchCustomersByEmail(_ context.Context, email string) ([]*stripe.Customer, error) {
	return g.byEmail[email], nil
}

func (g *fakeGateway) CreateCustomer(_ context.Context, email string, userID uint) (*stripe.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextCustomer++
	id := fmt.Sprintf("cus_new%d", g.nextCustomer)
	g.created = append(g.created, id)
	c := &stripe.Customer{ID: id, Email: email, Metadata: map[string]string{"user_id": fmt.Sprint(userID)}}
	g.customers[id] = c
	return c, nil
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req CheckoutRequest) (*stripe.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkouts = append(g.checkouts, req)
	id := fmt.Sprintf("cs_%d", len(g.checkouts))
	sess := &stripe.CheckoutSession{
		ID:                id,
		URL:               "https://checkout.example/" + id,
		Customer:          &stripe.Customer{ID: req.CustomerID},
		ClientReferenceID: fmt.Sprint(req.UserID),
		Metadata:          map[string]string{"user_id": fmt.Sprint(req.UserID)},
	}
	g.sessions[id] = sess
	return sess, nil
}

func (g *fakeGateway) GetCheckoutSession(_ context.Context, id string) (*stripe.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[id]
	if !ok {
		return nil, errors.New("no such checkout session")
	}
	return s, nil
}

func (g *fakeGateway) CreateSetupIntent(_ context.Context, customer string) (*stripe.SetupIntent, error) {
	return &stripe.SetupIntent{ID: "seti_1", ClientSecret: g.setupIntentCS, Customer: &stripe.Customer{ID: customer}}, nil
}

func (g *fakeGateway) AttachPaymentMethod(_ context.Context, pm, customer string) (*stripe.PaymentMethod, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.attached = append(g.attached, pm+"@"+customer)
	return &stripe.PaymentMethod{ID: pm}, nil
}

func (g *fakeGateway) SetDefaultPaymentMethod(_ context.Context, customer, sub, pm string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.defaults = append(g.defaults, customer+"/"+sub+"/"+pm)
	return nil
}

func (g *fakeGateway) CancelAtPeriodEnd(_ context.Context, id string) (*stripe.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelled = append(g.cancelled, id)
	sub, ok := g.subscriptions[id]
	if !ok {
		return nil, errors.New("no such subscription")
	}
	sub.CancelAtPeriodEnd = true
	return sub, nil
}

func testConfig() Config {
	return Config{
		SecretKey:     "sk_test",
		WebhookSecret: testWebhookSecret,
		PriceIDs:      []string{"price_monthly", "price_yearly"},
		BaseURL:       "https://scrap.example/",
	}
}

func newTestService(repo *fakeRepo, gw *fakeGateway) *Service {
	var g Gateway
	if gw != nil {
		g = gw
	}
	svc := NewService(repo, g, testConfig(), zerolog.Nop(), nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

// signedEvent builds a webhook payload wrapping object and signs it.
func signedEvent(t *testing.T, id, eventType string, object any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":     id,
		"object": "event",
		"type":   eventType,
		"data":   map[string]any{"object": object},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  testWebhookSecret,
	})
	return payload, signed.Header
}

func testSub(id, customer string, status stripe.SubscriptionStatus, created int64) *stripe.Subscription {
	return &stripe.Subscription{
		ID:               id,
		Customer:         &stripe.Customer{ID: customer},
		Status:           status,
		Created:          created,
		CurrentPeriodEnd: created + 30*24*3600,
	}
}
