package payments

import (
	"context"
	"fmt"

	invoiceRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/invoice"
	paymentRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/payment"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
)

// DefaultStatusService serves settlement state reads. Knowing a session id
// is the capability for the session view; the invoice view additionally
// requires ownership.
type DefaultStatusService struct {
	Invoices invoiceRepo.InvoiceRepository
	Payments paymentRepo.PaymentRepository
}

// GetSessionStatus resolves the attempt behind a checkout session together
// with the settlement state of its invoice.
func (s *DefaultStatusService) GetSessionStatus(ctx context.Context, sessionID string) (*models.SessionStatus, error) {
	p, err := s.Payments.GetByCheckoutSessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}

	inv, err := s.Invoices.GetByID(ctx, p.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}

	return &models.SessionStatus{
		SessionID:     sessionID,
		PaymentID:     p.ID,
		InvoiceID:     inv.ID,
		PaymentStatus: p.Status,
		InvoiceStatus: inv.PaymentStatus,
		Amount:        p.Amount,
		Currency:      p.Currency,
		FailureReason: p.FailureReason,
		ReceiptURL:    inv.ReceiptURL,
	}, nil
}

// GetInvoiceStatus returns the invoice with its full attempt history to
// its owner.
func (s *DefaultStatusService) GetInvoiceStatus(ctx context.Context, invoiceID, userID string) (*models.InvoiceStatus, error) {
	inv, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	if inv.UserID != userID {
		return nil, ErrForbidden
	}

	attempts, err := s.Payments.ListByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	return &models.InvoiceStatus{
		Invoice:  *inv,
		Attempts: attempts,
	}, nil
}
