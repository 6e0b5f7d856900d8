package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeGateway implements GatewayClient and EventVerifier against the
// Stripe API. The package-level stripe.Key is set during startup.
type StripeGateway struct {
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	SessionTTL    time.Duration
	Timeout       time.Duration
	Logger        *zap.Logger
}

// NewStripeGateway builds a gateway client with the given redirect URLs and
// call timeout.
func NewStripeGateway(webhookSecret, successURL, cancelURL string, sessionTTL, timeout time.Duration, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{
		WebhookSecret: webhookSecret,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
		SessionTTL:    sessionTTL,
		Timeout:       timeout,
		Logger:        logger,
	}
}

// CreateCheckoutSession opens a hosted checkout session for the invoice
// amount. The payment and invoice ids travel as metadata on both the
// session and its payment intent, so every later notification can be
// correlated back to the local attempt.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, inv *models.Invoice, p *models.Payment, customerEmail string) (*GatewaySession, error) {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(g.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(g.CancelURL),
		ClientReferenceID:  stripe.String(inv.ID),
		ExpiresAt:          stripe.Int64(time.Now().Add(g.SessionTTL).Unix()),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(inv.Currency),
					UnitAmount: stripe.Int64(inv.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Hotel reservation %s", inv.InvoiceNumber)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"invoice_id": inv.ID,
				"payment_id": p.ID,
			},
		},
	}
	params.Context = ctx
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}
	params.AddMetadata("invoice_id", inv.ID)
	params.AddMetadata("payment_id", p.ID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, g.classifyErr(err, inv.ID)
	}

	gs := &GatewaySession{ID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		gs.PaymentIntentID = sess.PaymentIntent.ID
	}
	return gs, nil
}

// classifyErr maps transport-level gateway failures onto
// ErrGatewayUnavailable so callers can answer with a retryable status.
func (g *StripeGateway) classifyErr(err error, invoiceID string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		g.Logger.Warn("stripe session creation timed out", zap.String("invoiceID", invoiceID))
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 500 {
		g.Logger.Warn("stripe session creation failed upstream",
			zap.String("invoiceID", invoiceID),
			zap.Int("status", stripeErr.HTTPStatusCode))
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	return fmt.Errorf("failed to create checkout session for invoice %s: %w", invoiceID, err)
}

// VerifyEvent authenticates the raw payload against the Stripe-Signature
// header. API version drift between the dashboard and the pinned SDK
// version is tolerated; a bad signature is not.
func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, g.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
