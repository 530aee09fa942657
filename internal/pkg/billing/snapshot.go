package billing

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"golang.org/x/sync/errgroup"
)

// LoadSnapshot fetches the preferred subscription, the default payment method
// and recent invoices of a customer. It returns nil on any failure.
func (s *Service) LoadSnapshot(ctx context.Context, customerID string) (snap *Snapshot) {
	if customerID == "" || s.gateway == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("customer", RedactID(customerID)).Msg("snapshot load panicked")
			snap = nil
		}
	}()

	var (
		subs     []*stripe.Subscription
		customer *stripe.Customer
		invoices []*stripe.Invoice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subs, err = s.gateway.ListSubscriptions(gctx, customerID)
		return err
	})
	g.Go(func() error {
		var err error
		customer, err = s.gateway.GetCustomer(gctx, customerID)
		return err
	})
	g.Go(func() error {
		var err error
		invoices, err = s.gateway.ListInvoices(gctx, customerID, invoiceHistoryLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.gatewayError("snapshot")
		s.log.Warn().Err(err).Str("customer", RedactID(customerID)).Msg("snapshot load failed")
		return nil
	}

	if len(invoices) > invoiceHistoryLimit {
		invoices = invoices[:invoiceHistoryLimit]
	}
	sub := PreferredSubscription(subs)
	return &Snapshot{
		Subscription:  sub,
		PaymentMethod: defaultPaymentMethod(sub, customer),
		Invoices:      invoices,
	}
}

func defaultPaymentMethod(sub *stripe.Subscription, customer *stripe.Customer) *stripe.PaymentMethod {
	if sub != nil && sub.DefaultPaymentMethod != nil && sub.DefaultPaymentMethod.ID != "" {
		return sub.DefaultPaymentMethod
	}
	if customer != nil && customer.InvoiceSettings != nil &&
		customer.InvoiceSettings.DefaultPaymentMethod != nil && customer.InvoiceSettings.DefaultPaymentMethod.ID != "" {
		return customer.InvoiceSettings.DefaultPaymentMethod
	}
	return nil
}
