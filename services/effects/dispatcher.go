// Package effects fans out the post-settlement side effects: the guest
// confirmation task and the commission event for downstream billing. It
// runs strictly after the ledger commit, so every failure here is logged
// and absorbed; the authoritative payment state is already durable and a
// stuck side effect must never bounce the webhook.
package effects

import (
	"context"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/events"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Dispatcher implements the post-commit fan-out.
type Dispatcher struct {
	Queue     *asynq.Client
	Events    events.Publisher
	Recipient string
	Logger    *zap.Logger
}

// PaymentSettled enqueues the confirmation task and publishes the
// reconciled event for the settled invoice.
func (d *Dispatcher) PaymentSettled(ctx context.Context, inv *models.Invoice, p *models.Payment) {
	d.enqueueConfirmation(inv, p)
	d.publishReconciled(ctx, inv, p)
}

func (d *Dispatcher) enqueueConfirmation(inv *models.Invoice, p *models.Payment) {
	if d.Queue == nil {
		d.Logger.Error("Asynq client is nil, confirmation task cannot be enqueued",
			zap.String("invoiceId", inv.ID))
		return
	}

	payload := models.PaymentConfirmationPayload{
		InvoiceID: inv.ID,
		PaymentID: p.ID,
		UserID:    inv.UserID,
	}
	task, opts, err := tasks.NewPaymentConfirmationTask(payload)
	if err != nil {
		d.Logger.Error("Failed to build confirmation task",
			zap.Error(err), zap.String("invoiceId", inv.ID))
		return
	}
	if _, err := d.Queue.Enqueue(task, opts...); err != nil {
		d.Logger.Error("Failed to enqueue confirmation task",
			zap.Error(err), zap.String("invoiceId", inv.ID), zap.String("paymentId", p.ID))
	}
}

func (d *Dispatcher) publishReconciled(ctx context.Context, inv *models.Invoice, p *models.Payment) {
	if d.Events == nil {
		d.Logger.Error("Event publisher is nil, reconciled event cannot be published",
			zap.String("invoiceId", inv.ID))
		return
	}

	settledAt := time.Now().UTC()
	if p.ProcessedAt != nil {
		settledAt = *p.ProcessedAt
	}
	event := models.PaymentReconciledEvent{
		InvoiceID:        inv.ID,
		PaymentID:        p.ID,
		Amount:           inv.Amount,
		Currency:         inv.Currency,
		RecipientAddress: d.Recipient,
		SettledAt:        settledAt,
	}
	if err := d.Events.PublishPaymentReconciled(ctx, event); err != nil {
		d.Logger.Error("Failed to publish reconciled event",
			zap.Error(err), zap.String("invoiceId", inv.ID), zap.String("paymentId", p.ID))
	}
}
