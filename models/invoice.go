package models

import "time"

// Invoice payment statuses. An invoice starts unpaid and is moved through
// the processing/paid/failed states only by the webhook reconciler.
const (
	InvoiceStatusUnpaid     = "unpaid"
	InvoiceStatusProcessing = "processing"
	InvoiceStatusPaid       = "paid"
	InvoiceStatusFailed     = "failed"
	InvoiceStatusRefunded   = "refunded"
)

// Invoice is the billing ledger entry for a reservation. Amount is stored
// in minor units (cents) to keep arithmetic exact.
type Invoice struct {
	ID            string     `bson:"id" json:"id"`
	UserID        string     `bson:"userId" json:"userId"`
	ReservationID string     `bson:"reservationId" json:"reservationId"`
	InvoiceNumber string     `bson:"invoiceNumber" json:"invoiceNumber"` // e.g. "INV-1001"
	Amount        int64      `bson:"amount" json:"amount"`
	Currency      string     `bson:"currency" json:"currency"`
	PaymentStatus string     `bson:"paymentStatus" json:"paymentStatus"`
	PaymentID     string     `bson:"paymentId,omitempty" json:"paymentId,omitempty"` // the attempt that settled it
	ReceiptURL    string     `bson:"receiptUrl,omitempty" json:"receiptUrl,omitempty"`
	PaidAt        *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Open reports whether the invoice can still be settled by a payment.
func (i *Invoice) Open() bool {
	return i.PaymentStatus == InvoiceStatusUnpaid || i.PaymentStatus == InvoiceStatusProcessing
}

// CreateInvoiceRequest is the payload for issuing a new invoice against a
// reservation. Amount arrives precomputed in minor units.
type CreateInvoiceRequest struct {
	ReservationID string `json:"reservationId" binding:"required"`
	Amount        int64  `json:"amount" binding:"required"`
	Currency      string `json:"currency" binding:"required"`
}
