package payments

import (
	"context"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"github.com/stripe/stripe-go/v76"
)

// CheckoutService opens (or resumes) a gateway checkout session for an
// invoice.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, invoiceID, userID string) (*models.CheckoutSession, error)
}

// ReconcilerService applies verified gateway notifications to the local
// ledger. It is the only component that mutates invoice payment state.
type ReconcilerService interface {
	ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

// StatusService answers settlement queries for redirect pages and owner
// dashboards.
type StatusService interface {
	GetSessionStatus(ctx context.Context, sessionID string) (*models.SessionStatus, error)
	GetInvoiceStatus(ctx context.Context, invoiceID, userID string) (*models.InvoiceStatus, error)
}

// GatewaySession is the result of opening a hosted checkout session.
type GatewaySession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

// GatewayClient is the boundary to the external payment provider.
type GatewayClient interface {
	CreateCheckoutSession(ctx context.Context, inv *models.Invoice, p *models.Payment, customerEmail string) (*GatewaySession, error)
}

// EventVerifier authenticates a raw webhook payload and returns the parsed
// event. Verification always runs over the unparsed body bytes.
type EventVerifier interface {
	VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// EffectDispatcher receives the settled invoice strictly after the ledger
// commit. Implementations must absorb their own failures; by the time they
// run, the reconciliation result is already durable.
type EffectDispatcher interface {
	PaymentSettled(ctx context.Context, inv *models.Invoice, p *models.Payment)
}
