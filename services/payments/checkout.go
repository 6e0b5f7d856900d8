package payments

import (
	"context"
	"fmt"
	"time"

	invoiceRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/invoice"
	paymentRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/payment"
	userRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/user"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"go.uber.org/zap"
)

// DefaultCheckoutService is the production checkout orchestrator. It never
// touches invoice payment state; settlement is owned by the reconciler.
type DefaultCheckoutService struct {
	Invoices   invoiceRepo.InvoiceRepository
	Payments   paymentRepo.PaymentRepository
	Users      userRepo.UserRepository
	Gateway    GatewayClient
	SessionTTL time.Duration
	Logger     *zap.Logger
}

// CreateCheckoutSession validates the invoice, then opens a gateway session
// for a new pending attempt, or resumes the existing one when it is still
// fresh. The pending attempt is persisted before the gateway is called, so
// a notification can never arrive for an attempt the ledger does not know.
func (s *DefaultCheckoutService) CreateCheckoutSession(ctx context.Context, invoiceID, userID string) (*models.CheckoutSession, error) {
	inv, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	if inv.UserID != userID {
		return nil, ErrForbidden
	}
	if !inv.Open() {
		return nil, ErrAlreadySettled
	}

	// One open attempt per invoice: resume a fresh pending session instead
	// of forking a second one at the gateway.
	pending, err := s.Payments.GetPendingByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if pending != nil {
		if pending.CheckoutSessionID != "" && time.Since(pending.CreatedAt) < s.SessionTTL {
			s.Logger.Info("resuming pending checkout session",
				zap.String("invoiceID", invoiceID),
				zap.String("paymentID", pending.ID))
			return &models.CheckoutSession{
				PaymentID:   pending.ID,
				InvoiceID:   inv.ID,
				SessionID:   pending.CheckoutSessionID,
				CheckoutURL: pending.CheckoutURL,
				Amount:      pending.Amount,
				Currency:    pending.Currency,
			}, nil
		}
		// Nothing to resume: the session is past its TTL (the gateway
		// expires it on its own) or the attempt never got a session because
		// an earlier checkout was cut off before the gateway answered.
		// Close our side so the new attempt is the only pending one.
		if _, err := s.Payments.ExpireIfPending(ctx, pending.ID); err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
	}

	payment := &models.Payment{
		InvoiceID: inv.ID,
		UserID:    inv.UserID,
		Amount:    inv.Amount,
		Currency:  inv.Currency,
		Status:    models.PaymentStatusPending,
	}
	if err := s.Payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	var customerEmail string
	if usr, err := s.Users.GetByID(ctx, inv.UserID); err == nil && usr != nil {
		customerEmail = usr.Email
	}

	sess, err := s.Gateway.CreateCheckoutSession(ctx, inv, payment, customerEmail)
	if err != nil {
		// Close the attempt so a retry starts clean; the invoice remains
		// open for as many attempts as it takes.
		if _, failErr := s.Payments.FailIfPending(ctx, payment.ID, "gateway session creation failed"); failErr != nil {
			s.Logger.Error("failed to close payment after gateway error",
				zap.String("paymentID", payment.ID), zap.Error(failErr))
		}
		return nil, err
	}

	if err := s.Payments.AttachCheckoutSession(ctx, payment.ID, sess.ID, sess.URL, sess.PaymentIntentID); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	s.Logger.Info("checkout session created",
		zap.String("invoiceID", inv.ID),
		zap.String("paymentID", payment.ID),
		zap.String("sessionID", sess.ID))

	return &models.CheckoutSession{
		PaymentID:   payment.ID,
		InvoiceID:   inv.ID,
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
	}, nil
}
