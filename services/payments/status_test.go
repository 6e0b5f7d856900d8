package payments_test

import (
	"context"
	"testing"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/payments"

	"github.com/stretchr/testify/assert"
)

func newStatus() (*payments.DefaultStatusService, *MockInvoiceRepo, *MockPaymentRepo) {
	invoices := new(MockInvoiceRepo)
	pays := new(MockPaymentRepo)
	s := &payments.DefaultStatusService{Invoices: invoices, Payments: pays}
	return s, invoices, pays
}

func TestGetSessionStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown session", func(t *testing.T) {
		s, _, pays := newStatus()
		pays.On("GetByCheckoutSessionID", ctx, "cs_missing").Return(nil, nil)

		st, err := s.GetSessionStatus(ctx, "cs_missing")

		assert.Nil(t, st)
		assert.ErrorIs(t, err, payments.ErrPaymentNotFound)
	})

	t.Run("returns attempt and invoice state for a failed attempt", func(t *testing.T) {
		s, invoices, pays := newStatus()
		pays.On("GetByCheckoutSessionID", ctx, "cs_1").Return(&models.Payment{
			ID:                "pay-1",
			InvoiceID:         "inv-1",
			Amount:            250000,
			Currency:          "SAR",
			Status:            models.PaymentStatusFailed,
			CheckoutSessionID: "cs_1",
			FailureReason:     "Your card was declined.",
		}, nil)
		invoices.On("GetByID", ctx, "inv-1").Return(&models.Invoice{
			ID:            "inv-1",
			UserID:        "usr-1",
			PaymentStatus: models.InvoiceStatusUnpaid,
		}, nil)

		st, err := s.GetSessionStatus(ctx, "cs_1")

		assert.NoError(t, err)
		assert.Equal(t, "cs_1", st.SessionID)
		assert.Equal(t, "pay-1", st.PaymentID)
		assert.Equal(t, models.PaymentStatusFailed, st.PaymentStatus)
		assert.Equal(t, models.InvoiceStatusUnpaid, st.InvoiceStatus)
		assert.Equal(t, "Your card was declined.", st.FailureReason)
		assert.Empty(t, st.ReceiptURL)
	})

	t.Run("settled session carries the receipt link", func(t *testing.T) {
		s, invoices, pays := newStatus()
		pays.On("GetByCheckoutSessionID", ctx, "cs_1").Return(&models.Payment{
			ID:        "pay-1",
			InvoiceID: "inv-1",
			Amount:    250000,
			Currency:  "SAR",
			Status:    models.PaymentStatusCompleted,
		}, nil)
		invoices.On("GetByID", ctx, "inv-1").Return(&models.Invoice{
			ID:            "inv-1",
			PaymentStatus: models.InvoiceStatusPaid,
			PaymentID:     "pay-1",
			ReceiptURL:    "https://res.cloudinary.com/demo/raw/upload/receipts/INV-1001",
		}, nil)

		st, err := s.GetSessionStatus(ctx, "cs_1")

		assert.NoError(t, err)
		assert.Equal(t, models.InvoiceStatusPaid, st.InvoiceStatus)
		assert.Equal(t, "https://res.cloudinary.com/demo/raw/upload/receipts/INV-1001", st.ReceiptURL)
	})
}

func TestGetInvoiceStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown invoice", func(t *testing.T) {
		s, invoices, _ := newStatus()
		invoices.On("GetByID", ctx, "inv-missing").Return(nil, nil)

		st, err := s.GetInvoiceStatus(ctx, "inv-missing", "usr-1")

		assert.Nil(t, st)
		assert.ErrorIs(t, err, payments.ErrInvoiceNotFound)
	})

	t.Run("only the owner can read it", func(t *testing.T) {
		s, invoices, pays := newStatus()
		invoices.On("GetByID", ctx, "inv-1").Return(&models.Invoice{ID: "inv-1", UserID: "usr-1"}, nil)

		st, err := s.GetInvoiceStatus(ctx, "inv-1", "usr-2")

		assert.Nil(t, st)
		assert.ErrorIs(t, err, payments.ErrForbidden)
		pays.AssertNotCalled(t, "ListByInvoiceID", ctx, "inv-1")
	})

	t.Run("returns the invoice with its attempt history", func(t *testing.T) {
		s, invoices, pays := newStatus()
		invoices.On("GetByID", ctx, "inv-1").Return(&models.Invoice{
			ID:            "inv-1",
			UserID:        "usr-1",
			InvoiceNumber: "INV-1001",
			PaymentStatus: models.InvoiceStatusPaid,
			PaymentID:     "pay-2",
		}, nil)
		pays.On("ListByInvoiceID", ctx, "inv-1").Return([]models.Payment{
			{ID: "pay-1", Status: models.PaymentStatusExpired},
			{ID: "pay-2", Status: models.PaymentStatusCompleted},
		}, nil)

		st, err := s.GetInvoiceStatus(ctx, "inv-1", "usr-1")

		assert.NoError(t, err)
		assert.Equal(t, "INV-1001", st.Invoice.InvoiceNumber)
		assert.Len(t, st.Attempts, 2)
		assert.Equal(t, models.PaymentStatusCompleted, st.Attempts[1].Status)
	})
}
