package payments_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

type reconcilerMocks struct {
	invoices *MockInvoiceRepo
	payments *MockPaymentRepo
	events   *MockEventRepo
	verifier *MockVerifier
	effects  *MockEffects
}

func newReconciler() (*payments.DefaultReconciler, *reconcilerMocks) {
	m := &reconcilerMocks{
		invoices: new(MockInvoiceRepo),
		payments: new(MockPaymentRepo),
		events:   new(MockEventRepo),
		verifier: new(MockVerifier),
		effects:  new(MockEffects),
	}
	r := &payments.DefaultReconciler{
		Invoices: m.invoices,
		Payments: m.payments,
		Events:   m.events,
		Verifier: m.verifier,
		Effects:  m.effects,
		Logger:   zap.NewNop(),
	}
	return r, m
}

func verifiedEvent(id string, typ stripe.EventType, raw string) stripe.Event {
	return stripe.Event{
		ID:   id,
		Type: typ,
		Data: &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

func recordedOutcome(eventID, outcome string) interface{} {
	return mock.MatchedBy(func(ev *models.WebhookEvent) bool {
		return ev.EventID == eventID && ev.Outcome == outcome
	})
}

const completedSessionRaw = `{"id":"cs_123","payment_method_types":["card"],"payment_intent":"pi_777"}`

func pendingAttempt() *models.Payment {
	return &models.Payment{
		ID:                "pay-1",
		InvoiceID:         "inv-1",
		UserID:            "usr-1",
		Amount:            250000,
		Currency:          "SAR",
		Status:            models.PaymentStatusPending,
		CheckoutSessionID: "cs_123",
	}
}

func settledInvoice(paymentID string) *models.Invoice {
	return &models.Invoice{
		ID:            "inv-1",
		UserID:        "usr-1",
		InvoiceNumber: "INV-1001",
		Amount:        250000,
		Currency:      "SAR",
		PaymentStatus: models.InvoiceStatusPaid,
		PaymentID:     paymentID,
	}
}

func TestReconcilerSessionCompleted(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{}`)
	sig := "t=1,v1=abc"

	t.Run("settles the invoice and fires effects once", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_1", stripe.EventTypeCheckoutSessionCompleted, completedSessionRaw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_123").Return(pendingAttempt(), nil)
		m.payments.On("CompleteIfPending", ctx, "pay-1", "pi_777", "card", mock.Anything).Return(true, nil)
		m.invoices.On("MarkPaid", ctx, "inv-1", "pay-1", mock.Anything).Return(true, nil)
		m.events.On("Record", ctx, recordedOutcome("evt_1", models.WebhookOutcomeApplied)).Return(nil)
		m.invoices.On("GetByID", ctx, "inv-1").Return(settledInvoice("pay-1"), nil)
		m.effects.On("PaymentSettled", ctx, mock.Anything, mock.Anything).Return()

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.effects.AssertNumberOfCalls(t, "PaymentSettled", 1)
		m.invoices.AssertExpectations(t)
		m.payments.AssertExpectations(t)
		m.events.AssertExpectations(t)
	})

	t.Run("redelivery of a settled session is a recorded no-op", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_2", stripe.EventTypeCheckoutSessionCompleted, completedSessionRaw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		done := pendingAttempt()
		done.Status = models.PaymentStatusCompleted
		processed := time.Now().Add(-time.Minute)
		done.ProcessedAt = &processed

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_123").Return(done, nil)
		m.payments.On("CompleteIfPending", ctx, "pay-1", "pi_777", "card", mock.Anything).Return(false, nil)
		m.payments.On("GetByID", ctx, "pay-1").Return(done, nil)
		// Invoice election re-runs and reports it was already won by this attempt.
		m.invoices.On("MarkPaid", ctx, "inv-1", "pay-1", processed).Return(false, nil)
		m.invoices.On("GetByID", ctx, "inv-1").Return(settledInvoice("pay-1"), nil)
		m.events.On("Record", ctx, recordedOutcome("evt_2", models.WebhookOutcomeDuplicate)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.effects.AssertNotCalled(t, "PaymentSettled", mock.Anything, mock.Anything, mock.Anything)
		m.events.AssertExpectations(t)
	})

	t.Run("replay after a crash finishes the interrupted settlement", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_3", stripe.EventTypeCheckoutSessionCompleted, completedSessionRaw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		// The previous delivery completed the attempt but crashed before the
		// invoice write: the attempt is completed, the invoice still open.
		done := pendingAttempt()
		done.Status = models.PaymentStatusCompleted
		processed := time.Now().Add(-time.Minute)
		done.ProcessedAt = &processed

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_123").Return(done, nil)
		m.payments.On("CompleteIfPending", ctx, "pay-1", "pi_777", "card", mock.Anything).Return(false, nil)
		m.payments.On("GetByID", ctx, "pay-1").Return(done, nil)
		m.invoices.On("MarkPaid", ctx, "inv-1", "pay-1", processed).Return(true, nil)
		m.events.On("Record", ctx, recordedOutcome("evt_3", models.WebhookOutcomeApplied)).Return(nil)
		m.invoices.On("GetByID", ctx, "inv-1").Return(settledInvoice("pay-1"), nil)
		m.effects.On("PaymentSettled", ctx, mock.Anything, mock.Anything).Return()

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.effects.AssertNumberOfCalls(t, "PaymentSettled", 1)
		m.invoices.AssertExpectations(t)
	})

	t.Run("completion after another attempt settled records a conflict", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_4", stripe.EventTypeCheckoutSessionCompleted, completedSessionRaw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_123").Return(pendingAttempt(), nil)
		m.payments.On("CompleteIfPending", ctx, "pay-1", "pi_777", "card", mock.Anything).Return(true, nil)
		m.invoices.On("MarkPaid", ctx, "inv-1", "pay-1", mock.Anything).Return(false, nil)
		m.invoices.On("GetByID", ctx, "inv-1").Return(settledInvoice("pay-other"), nil)
		m.events.On("Record", ctx, recordedOutcome("evt_4", models.WebhookOutcomeSettledConflict)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.effects.AssertNotCalled(t, "PaymentSettled", mock.Anything, mock.Anything, mock.Anything)
		m.events.AssertExpectations(t)
	})

	t.Run("completion for an expired attempt never re-opens it", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_5", stripe.EventTypeCheckoutSessionCompleted, completedSessionRaw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		expired := pendingAttempt()
		expired.Status = models.PaymentStatusExpired

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_123").Return(expired, nil)
		m.payments.On("CompleteIfPending", ctx, "pay-1", "pi_777", "card", mock.Anything).Return(false, nil)
		m.payments.On("GetByID", ctx, "pay-1").Return(expired, nil)
		m.events.On("Record", ctx, mock.MatchedBy(func(ev *models.WebhookEvent) bool {
			return ev.Outcome == models.WebhookOutcomeDuplicate && ev.Detail == "attempt already expired"
		})).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.invoices.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.effects.AssertNotCalled(t, "PaymentSettled", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown session is recorded as unmatched and acknowledged", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_6", stripe.EventTypeCheckoutSessionCompleted, completedSessionRaw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_123").Return(nil, nil)
		m.events.On("Record", ctx, recordedOutcome("evt_6", models.WebhookOutcomeUnmatched)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.events.AssertExpectations(t)
	})
}

func TestReconcilerSessionExpired(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{}`)
	sig := "t=1,v1=abc"
	expiredRaw := `{"id":"cs_123"}`

	t.Run("expires the pending attempt and leaves the invoice open", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_10", stripe.EventTypeCheckoutSessionExpired, expiredRaw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_123").Return(pendingAttempt(), nil)
		m.payments.On("ExpireIfPending", ctx, "pay-1").Return(true, nil)
		m.events.On("Record", ctx, recordedOutcome("evt_10", models.WebhookOutcomeApplied)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.invoices.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.payments.AssertExpectations(t)
	})

	t.Run("expiry arriving after completion is a no-op", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_11", stripe.EventTypeCheckoutSessionExpired, expiredRaw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		done := pendingAttempt()
		done.Status = models.PaymentStatusCompleted

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_123").Return(done, nil)
		m.payments.On("ExpireIfPending", ctx, "pay-1").Return(false, nil)
		m.events.On("Record", ctx, recordedOutcome("evt_11", models.WebhookOutcomeDuplicate)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.events.AssertExpectations(t)
	})
}

func TestReconcilerIntentFailed(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{}`)
	sig := "t=1,v1=abc"

	t.Run("records the gateway reason on the attempt", func(t *testing.T) {
		r, m := newReconciler()
		raw := `{"id":"pi_777","metadata":{"invoice_id":"inv-1","payment_id":"pay-1"},"last_payment_error":{"message":"Your card was declined."}}`
		event := verifiedEvent("evt_20", stripe.EventTypePaymentIntentPaymentFailed, raw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.payments.On("GetByID", ctx, "pay-1").Return(pendingAttempt(), nil)
		m.payments.On("FailIfPending", ctx, "pay-1", "Your card was declined.").Return(true, nil)
		m.events.On("Record", ctx, recordedOutcome("evt_20", models.WebhookOutcomeApplied)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.invoices.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		m.payments.AssertExpectations(t)
	})

	t.Run("intent without payment metadata is unmatched", func(t *testing.T) {
		r, m := newReconciler()
		raw := `{"id":"pi_888","metadata":{}}`
		event := verifiedEvent("evt_21", stripe.EventTypePaymentIntentPaymentFailed, raw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.events.On("Record", ctx, recordedOutcome("evt_21", models.WebhookOutcomeUnmatched)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.payments.AssertNotCalled(t, "FailIfPending", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReconcilerIntentProcessing(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{}`)
	sig := "t=1,v1=abc"
	raw := `{"id":"pi_777","metadata":{"invoice_id":"inv-1","payment_id":"pay-1"}}`

	t.Run("moves the invoice to processing", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_30", stripe.EventTypePaymentIntentProcessing, raw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.payments.On("GetByID", ctx, "pay-1").Return(pendingAttempt(), nil)
		m.invoices.On("MarkProcessing", ctx, "inv-1").Return(true, nil)
		m.events.On("Record", ctx, recordedOutcome("evt_30", models.WebhookOutcomeApplied)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.invoices.AssertExpectations(t)
	})

	t.Run("repeated processing notification is a duplicate", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_31", stripe.EventTypePaymentIntentProcessing, raw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.payments.On("GetByID", ctx, "pay-1").Return(pendingAttempt(), nil)
		m.invoices.On("MarkProcessing", ctx, "inv-1").Return(false, nil)
		m.events.On("Record", ctx, recordedOutcome("evt_31", models.WebhookOutcomeDuplicate)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.events.AssertExpectations(t)
	})
}

func TestReconcilerProcessWebhook(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{}`)
	sig := "t=1,v1=abc"

	t.Run("rejects an invalid signature without touching the ledger", func(t *testing.T) {
		r, m := newReconciler()
		m.verifier.On("VerifyEvent", payload, sig).Return(stripe.Event{}, errors.New("signature mismatch"))

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.ErrorIs(t, err, payments.ErrInvalidSignature)
		m.events.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		m.payments.AssertNotCalled(t, "GetByCheckoutSessionID", mock.Anything, mock.Anything)
	})

	t.Run("acknowledges unhandled event types", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_40", stripe.EventType("customer.created"), `{}`)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.events.On("Record", ctx, recordedOutcome("evt_40", models.WebhookOutcomeIgnored)).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.events.AssertExpectations(t)
	})

	t.Run("audit failure on a no-op path bounces for redelivery", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_41", stripe.EventTypeCheckoutSessionCompleted, completedSessionRaw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_123").Return(nil, nil)
		m.events.On("Record", ctx, mock.Anything).Return(errors.New("mongo down"))

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, payments.ErrInvalidSignature)
	})

	t.Run("malformed payload is recorded and acknowledged", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_42", stripe.EventTypeCheckoutSessionCompleted, `"not an object"`)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		m.events.On("Record", ctx, mock.MatchedBy(func(ev *models.WebhookEvent) bool {
			return ev.Outcome == models.WebhookOutcomeIgnored && ev.Detail == "malformed payload"
		})).Return(nil)

		err := r.ProcessWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		m.events.AssertExpectations(t)
	})
}

// TestReconcilerDoubleDelivery runs the same completed notification through
// the reconciler twice, the way the gateway redelivers after a missed ack.
func TestReconcilerDoubleDelivery(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{}`)
	sig := "t=1,v1=abc"
	raw := `{"id":"cs_555","payment_method_types":["card"],"payment_intent":"pi_555"}`

	t.Run("the invoice settles exactly once across both deliveries", func(t *testing.T) {
		r, m := newReconciler()
		event := verifiedEvent("evt_50", stripe.EventTypeCheckoutSessionCompleted, raw)
		m.verifier.On("VerifyEvent", payload, sig).Return(event, nil)

		attempt := &models.Payment{
			ID:                "pay_1",
			InvoiceID:         "inv-10",
			UserID:            "usr-1",
			Amount:            50000,
			Currency:          "USD",
			Status:            models.PaymentStatusPending,
			CheckoutSessionID: "cs_555",
		}
		processed := time.Now().Add(-time.Second)
		done := *attempt
		done.Status = models.PaymentStatusCompleted
		done.ProcessedAt = &processed
		paid := &models.Invoice{
			ID:            "inv-10",
			UserID:        "usr-1",
			InvoiceNumber: "INV-1001",
			Amount:        50000,
			Currency:      "USD",
			PaymentStatus: models.InvoiceStatusPaid,
			PaymentID:     "pay_1",
		}

		m.payments.On("GetByCheckoutSessionID", ctx, "cs_555").Return(attempt, nil).Once()
		m.payments.On("GetByCheckoutSessionID", ctx, "cs_555").Return(&done, nil).Once()
		m.payments.On("CompleteIfPending", ctx, "pay_1", "pi_555", "card", mock.Anything).Return(true, nil).Once()
		m.payments.On("CompleteIfPending", ctx, "pay_1", "pi_555", "card", mock.Anything).Return(false, nil).Once()
		m.payments.On("GetByID", ctx, "pay_1").Return(&done, nil)
		m.invoices.On("MarkPaid", ctx, "inv-10", "pay_1", mock.Anything).Return(true, nil).Once()
		m.invoices.On("MarkPaid", ctx, "inv-10", "pay_1", processed).Return(false, nil).Once()
		m.invoices.On("GetByID", ctx, "inv-10").Return(paid, nil)
		m.events.On("Record", ctx, recordedOutcome("evt_50", models.WebhookOutcomeApplied)).Return(nil).Once()
		m.events.On("Record", ctx, recordedOutcome("evt_50", models.WebhookOutcomeDuplicate)).Return(nil).Once()
		m.effects.On("PaymentSettled", ctx, mock.Anything, mock.Anything).Return()

		assert.NoError(t, r.ProcessWebhook(ctx, payload, sig))
		assert.NoError(t, r.ProcessWebhook(ctx, payload, sig))

		m.effects.AssertNumberOfCalls(t, "PaymentSettled", 1)
		m.invoices.AssertExpectations(t)
		m.payments.AssertExpectations(t)
		m.events.AssertExpectations(t)
	})
}
