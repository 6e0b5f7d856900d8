package effects_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/effects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishPaymentReconciled(ctx context.Context, event models.PaymentReconciledEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func settledPair() (*models.Invoice, *models.Payment) {
	processed := time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)
	inv := &models.Invoice{
		ID:            "inv-1",
		UserID:        "usr-1",
		InvoiceNumber: "INV-1001",
		Amount:        250000,
		Currency:      "SAR",
		PaymentStatus: models.InvoiceStatusPaid,
		PaymentID:     "pay-1",
	}
	p := &models.Payment{
		ID:          "pay-1",
		InvoiceID:   "inv-1",
		UserID:      "usr-1",
		Amount:      250000,
		Currency:    "SAR",
		Status:      models.PaymentStatusCompleted,
		ProcessedAt: &processed,
	}
	return inv, p
}

func TestPaymentSettled(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes the settlement details to the commission queue", func(t *testing.T) {
		publisher := new(MockPublisher)
		d := &effects.Dispatcher{
			Events:    publisher,
			Recipient: "acct_commission",
			Logger:    zap.NewNop(),
		}
		inv, p := settledPair()

		publisher.On("PublishPaymentReconciled", ctx, mock.MatchedBy(func(ev models.PaymentReconciledEvent) bool {
			return ev.InvoiceID == "inv-1" &&
				ev.PaymentID == "pay-1" &&
				ev.Amount == 250000 &&
				ev.Currency == "SAR" &&
				ev.RecipientAddress == "acct_commission" &&
				ev.SettledAt.Equal(*p.ProcessedAt)
		})).Return(nil)

		d.PaymentSettled(ctx, inv, p)

		publisher.AssertExpectations(t)
	})

	t.Run("stamps the publish time when the attempt has no processed timestamp", func(t *testing.T) {
		publisher := new(MockPublisher)
		d := &effects.Dispatcher{
			Events:    publisher,
			Recipient: "acct_commission",
			Logger:    zap.NewNop(),
		}
		inv, p := settledPair()
		p.ProcessedAt = nil

		var published models.PaymentReconciledEvent
		publisher.On("PublishPaymentReconciled", ctx, mock.Anything).Run(func(args mock.Arguments) {
			published = args.Get(1).(models.PaymentReconciledEvent)
		}).Return(nil)

		d.PaymentSettled(ctx, inv, p)

		assert.WithinDuration(t, time.Now().UTC(), published.SettledAt, time.Minute)
	})

	t.Run("a broker failure never escapes the dispatcher", func(t *testing.T) {
		publisher := new(MockPublisher)
		d := &effects.Dispatcher{
			Events:    publisher,
			Recipient: "acct_commission",
			Logger:    zap.NewNop(),
		}
		inv, p := settledPair()

		publisher.On("PublishPaymentReconciled", ctx, mock.Anything).Return(errors.New("amqp down"))

		d.PaymentSettled(ctx, inv, p)

		publisher.AssertExpectations(t)
	})
}