package billing

import (
	"context"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
)

// InvoiceService issues and reads invoices. Settlement state is never
// written here; that belongs to the webhook reconciler.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, userID string, req models.CreateInvoiceRequest) (*models.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID, userID string) (*models.Invoice, error)
	ListUserInvoices(ctx context.Context, userID string) ([]models.Invoice, error)
}

// ReservationService records and reads hotel-stay records.
type ReservationService interface {
	CreateReservation(ctx context.Context, userID string, req models.CreateReservationRequest) (*models.Reservation, error)
	GetReservation(ctx context.Context, reservationID, userID string) (*models.Reservation, error)
	ListUserReservations(ctx context.Context, userID string) ([]models.Reservation, error)
}
