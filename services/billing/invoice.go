package billing

import (
	"context"
	"fmt"
	"strings"

	invoiceRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/invoice"
	reservationRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/reservation"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"go.uber.org/zap"
)

// Invoice numbers continue from this base, so the first issued invoice is
// INV-1001.
const invoiceNumberBase = 1000

// DefaultInvoiceService is the production invoicing implementation.
type DefaultInvoiceService struct {
	Invoices     invoiceRepo.InvoiceRepository
	Reservations reservationRepo.ReservationRepository
	Logger       *zap.Logger
}

// CreateInvoice issues a new unpaid invoice for a reservation. The amount
// arrives precomputed in minor units; discounts and taxes are resolved
// upstream.
func (s *DefaultInvoiceService) CreateInvoice(ctx context.Context, userID string, req models.CreateInvoiceRequest) (*models.Invoice, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("invalid invoice amount: %d", req.Amount)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("invalid currency code: %q", req.Currency)
	}

	res, err := s.Reservations.GetByID(ctx, req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}
	if res == nil {
		return nil, ErrReservationNotFound
	}
	if res.UserID != userID {
		return nil, ErrNotReservationOwner
	}

	open, err := s.Invoices.GetOpenByReservationID(ctx, req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}
	if open != nil {
		return nil, ErrDuplicateInvoice
	}

	seq, err := s.Invoices.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}

	inv := &models.Invoice{
		UserID:        userID,
		ReservationID: req.ReservationID,
		InvoiceNumber: fmt.Sprintf("INV-%d", invoiceNumberBase+seq),
		Amount:        req.Amount,
		Currency:      currency,
		PaymentStatus: models.InvoiceStatusUnpaid,
	}
	if err := s.Invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}

	s.Logger.Info("invoice issued",
		zap.String("invoiceID", inv.ID),
		zap.String("invoiceNumber", inv.InvoiceNumber),
		zap.String("reservationID", req.ReservationID),
		zap.Int64("amount", inv.Amount),
		zap.String("currency", inv.Currency))
	return inv, nil
}

// GetInvoice returns an invoice to its owner.
func (s *DefaultInvoiceService) GetInvoice(ctx context.Context, invoiceID, userID string) (*models.Invoice, error) {
	inv, err := s.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	if inv.UserID != userID {
		return nil, ErrNotInvoiceOwner
	}
	return inv, nil
}

// ListUserInvoices returns all invoices belonging to a user.
func (s *DefaultInvoiceService) ListUserInvoices(ctx context.Context, userID string) ([]models.Invoice, error) {
	invoices, err := s.Invoices.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("billing: %w", err)
	}
	return invoices, nil
}
