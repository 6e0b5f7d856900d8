package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	invoiceRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/invoice"
	paymentRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/payment"
	webhookeventRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/webhookevent"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// DefaultReconciler folds verified gateway notifications into the ledger.
// Every transition is a guarded update keyed on the current status, so a
// delivery can be duplicated, reordered or replayed after a crash and the
// ledger still converges on the same state. Returned errors are limited to
// signature failures and storage faults; everything the guards reject is a
// recorded no-op.
type DefaultReconciler struct {
	Invoices invoiceRepo.InvoiceRepository
	Payments paymentRepo.PaymentRepository
	Events   webhookeventRepo.WebhookEventRepository
	Verifier EventVerifier
	Effects  EffectDispatcher
	Logger   *zap.Logger
}

// ProcessWebhook authenticates the raw payload and dispatches the event to
// its transition handler. Event types outside the handled set are recorded
// and acknowledged, which keeps newly introduced gateway events from
// bouncing as delivery failures.
func (s *DefaultReconciler) ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.Verifier.VerifyEvent(payload, sigHeader)
	if err != nil {
		s.Logger.Warn("webhook signature rejected", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return s.recordMalformed(ctx, &event, err)
		}
		return s.handleSessionCompleted(ctx, &event, &sess)

	case stripe.EventTypeCheckoutSessionExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return s.recordMalformed(ctx, &event, err)
		}
		return s.handleSessionExpired(ctx, &event, &sess)

	case stripe.EventTypePaymentIntentPaymentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return s.recordMalformed(ctx, &event, err)
		}
		return s.handleIntentFailed(ctx, &event, &intent)

	case stripe.EventTypePaymentIntentProcessing:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return s.recordMalformed(ctx, &event, err)
		}
		return s.handleIntentProcessing(ctx, &event, &intent)

	default:
		s.Logger.Info("unhandled webhook event type",
			zap.String("eventID", event.ID),
			zap.String("type", string(event.Type)))
		return s.record(ctx, &event, "", "", models.WebhookOutcomeIgnored, "")
	}
}

// handleSessionCompleted settles the attempt and, through the invoice
// election, at most once the invoice itself.
func (s *DefaultReconciler) handleSessionCompleted(ctx context.Context, event *stripe.Event, sess *stripe.CheckoutSession) error {
	p, err := s.Payments.GetByCheckoutSessionID(ctx, sess.ID)
	if err != nil {
		return err
	}
	if p == nil {
		s.Logger.Warn("completed notification for unknown session",
			zap.String("eventID", event.ID),
			zap.String("sessionID", sess.ID))
		return s.record(ctx, event, sess.ID, "", models.WebhookOutcomeUnmatched, "no payment for session")
	}

	method := "card"
	if len(sess.PaymentMethodTypes) > 0 {
		method = sess.PaymentMethodTypes[0]
	}
	var txID string
	if sess.PaymentIntent != nil {
		txID = sess.PaymentIntent.ID
	}

	now := time.Now()
	won, err := s.Payments.CompleteIfPending(ctx, p.ID, txID, method, now)
	if err != nil {
		return err
	}
	if !won {
		return s.resolveCompletedReplay(ctx, event, p.ID, sess.ID)
	}
	return s.settleInvoice(ctx, event, p, sess.ID, now)
}

// resolveCompletedReplay handles a completed notification whose attempt is
// no longer pending: a straight duplicate, a replay after a crash between
// the two ledger writes, or a conflict with an earlier terminal outcome.
func (s *DefaultReconciler) resolveCompletedReplay(ctx context.Context, event *stripe.Event, paymentID, sessionID string) error {
	p, err := s.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if p == nil {
		return s.record(ctx, event, sessionID, paymentID, models.WebhookOutcomeUnmatched, "payment vanished")
	}

	if p.Status != models.PaymentStatusCompleted {
		// The attempt reached expired or failed first. Captured funds for
		// a session the gateway also reports completed are surfaced for
		// the manual refund flow, never silently re-opened.
		s.Logger.Warn("completed notification for attempt in terminal state",
			zap.String("eventID", event.ID),
			zap.String("paymentID", p.ID),
			zap.String("status", p.Status))
		s.recordBestEffort(ctx, event, sessionID, p.ID, models.WebhookOutcomeDuplicate, "attempt already "+p.Status)
		return nil
	}

	processedAt := time.Now()
	if p.ProcessedAt != nil {
		processedAt = *p.ProcessedAt
	}
	// Re-run the invoice election: if a crash interrupted the previous
	// delivery between the payment and invoice writes, this replay
	// finishes the settlement.
	return s.settleInvoice(ctx, event, p, sessionID, processedAt)
}

// settleInvoice runs the invoice-level election after an attempt reached
// completed. Exactly one attempt ever wins it, and the settlement effects
// fire only on that winning path, strictly after the ledger write.
func (s *DefaultReconciler) settleInvoice(ctx context.Context, event *stripe.Event, p *models.Payment, sessionID string, processedAt time.Time) error {
	paid, err := s.Invoices.MarkPaid(ctx, p.InvoiceID, p.ID, processedAt)
	if err != nil {
		return err
	}

	if !paid {
		inv, err := s.Invoices.GetByID(ctx, p.InvoiceID)
		if err != nil {
			return err
		}
		if inv != nil && inv.PaymentID == p.ID {
			s.Logger.Info("duplicate settlement notification",
				zap.String("eventID", event.ID),
				zap.String("invoiceID", p.InvoiceID),
				zap.String("paymentID", p.ID))
			s.recordBestEffort(ctx, event, sessionID, p.ID, models.WebhookOutcomeDuplicate, "invoice already settled by this attempt")
			return nil
		}
		s.Logger.Warn("attempt completed after invoice was already settled",
			zap.String("eventID", event.ID),
			zap.String("invoiceID", p.InvoiceID),
			zap.String("paymentID", p.ID))
		s.recordBestEffort(ctx, event, sessionID, p.ID, models.WebhookOutcomeSettledConflict, "invoice settled by another attempt")
		return nil
	}

	s.Logger.Info("invoice settled",
		zap.String("eventID", event.ID),
		zap.String("invoiceID", p.InvoiceID),
		zap.String("paymentID", p.ID))
	s.recordBestEffort(ctx, event, sessionID, p.ID, models.WebhookOutcomeApplied, "")

	inv, err := s.Invoices.GetByID(ctx, p.InvoiceID)
	if err != nil || inv == nil {
		// The settlement is durable; effects are not worth a redelivery.
		s.Logger.Error("failed to load settled invoice for effects",
			zap.String("invoiceID", p.InvoiceID), zap.Error(err))
		return nil
	}
	s.Effects.PaymentSettled(ctx, inv, p)
	return nil
}

// handleSessionExpired closes the attempt. The invoice is left untouched,
// ready for a fresh attempt.
func (s *DefaultReconciler) handleSessionExpired(ctx context.Context, event *stripe.Event, sess *stripe.CheckoutSession) error {
	p, err := s.Payments.GetByCheckoutSessionID(ctx, sess.ID)
	if err != nil {
		return err
	}
	if p == nil {
		s.Logger.Warn("expired notification for unknown session",
			zap.String("eventID", event.ID),
			zap.String("sessionID", sess.ID))
		return s.record(ctx, event, sess.ID, "", models.WebhookOutcomeUnmatched, "no payment for session")
	}

	won, err := s.Payments.ExpireIfPending(ctx, p.ID)
	if err != nil {
		return err
	}
	if !won {
		s.Logger.Info("expired notification ignored, attempt already settled",
			zap.String("eventID", event.ID),
			zap.String("paymentID", p.ID))
		s.recordBestEffort(ctx, event, sess.ID, p.ID, models.WebhookOutcomeDuplicate, "")
		return nil
	}

	s.Logger.Info("checkout session expired",
		zap.String("eventID", event.ID),
		zap.String("paymentID", p.ID),
		zap.String("invoiceID", p.InvoiceID))
	s.recordBestEffort(ctx, event, sess.ID, p.ID, models.WebhookOutcomeApplied, "")
	return nil
}

// handleIntentFailed records the gateway's failure reason on the attempt.
// Correlation runs over the payment_id metadata stamped onto the intent at
// session creation.
func (s *DefaultReconciler) handleIntentFailed(ctx context.Context, event *stripe.Event, intent *stripe.PaymentIntent) error {
	paymentID := intent.Metadata["payment_id"]
	if paymentID == "" {
		s.Logger.Warn("failed-intent notification without payment metadata",
			zap.String("eventID", event.ID),
			zap.String("intentID", intent.ID))
		return s.record(ctx, event, "", "", models.WebhookOutcomeUnmatched, "no payment_id metadata on intent")
	}

	p, err := s.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if p == nil {
		s.Logger.Warn("failed-intent notification for unknown payment",
			zap.String("eventID", event.ID),
			zap.String("paymentID", paymentID))
		return s.record(ctx, event, "", paymentID, models.WebhookOutcomeUnmatched, "no payment for intent metadata")
	}

	reason := "payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		reason = intent.LastPaymentError.Msg
	}

	won, err := s.Payments.FailIfPending(ctx, p.ID, reason)
	if err != nil {
		return err
	}
	if !won {
		s.Logger.Info("failed-intent notification ignored, attempt already settled",
			zap.String("eventID", event.ID),
			zap.String("paymentID", p.ID))
		s.recordBestEffort(ctx, event, p.CheckoutSessionID, p.ID, models.WebhookOutcomeDuplicate, "")
		return nil
	}

	// The invoice stays open: a failed attempt never consumes it.
	s.Logger.Info("payment attempt failed",
		zap.String("eventID", event.ID),
		zap.String("paymentID", p.ID),
		zap.String("reason", reason))
	s.recordBestEffort(ctx, event, p.CheckoutSessionID, p.ID, models.WebhookOutcomeApplied, reason)
	return nil
}

// handleIntentProcessing marks the invoice as in-flight for asynchronous
// payment methods.
func (s *DefaultReconciler) handleIntentProcessing(ctx context.Context, event *stripe.Event, intent *stripe.PaymentIntent) error {
	paymentID := intent.Metadata["payment_id"]
	if paymentID == "" {
		return s.record(ctx, event, "", "", models.WebhookOutcomeUnmatched, "no payment_id metadata on intent")
	}

	p, err := s.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if p == nil {
		return s.record(ctx, event, "", paymentID, models.WebhookOutcomeUnmatched, "no payment for intent metadata")
	}

	moved, err := s.Invoices.MarkProcessing(ctx, p.InvoiceID)
	if err != nil {
		return err
	}
	outcome := models.WebhookOutcomeApplied
	if !moved {
		outcome = models.WebhookOutcomeDuplicate
	}
	s.recordBestEffort(ctx, event, p.CheckoutSessionID, p.ID, outcome, "")
	return nil
}

// record persists the delivery audit record. Callers on paths where no
// ledger write happened propagate its error so the gateway redelivers.
func (s *DefaultReconciler) record(ctx context.Context, event *stripe.Event, sessionID, paymentID, outcome, detail string) error {
	ev := &models.WebhookEvent{
		EventID:    event.ID,
		Type:       string(event.Type),
		SessionID:  sessionID,
		PaymentID:  paymentID,
		Outcome:    outcome,
		Detail:     detail,
		ReceivedAt: time.Now(),
	}
	if err := s.Events.Record(ctx, ev); err != nil {
		return fmt.Errorf("reconciler: %w", err)
	}
	return nil
}

// recordBestEffort is record for paths that already committed their ledger
// write: a failed audit insert is logged, never bounced back to the
// gateway.
func (s *DefaultReconciler) recordBestEffort(ctx context.Context, event *stripe.Event, sessionID, paymentID, outcome, detail string) {
	if err := s.record(ctx, event, sessionID, paymentID, outcome, detail); err != nil {
		s.Logger.Error("failed to record webhook event",
			zap.String("eventID", event.ID), zap.Error(err))
	}
}

func (s *DefaultReconciler) recordMalformed(ctx context.Context, event *stripe.Event, cause error) error {
	s.Logger.Error("webhook payload did not decode",
		zap.String("eventID", event.ID),
		zap.String("type", string(event.Type)),
		zap.Error(cause))
	return s.record(ctx, event, "", "", models.WebhookOutcomeIgnored, "malformed payload")
}
