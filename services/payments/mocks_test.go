package payments_test

import (
	"context"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/payments"

	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v76"
	"go.mongodb.org/mongo-driver/bson"
)

// MockInvoiceRepo is a mock implementation of invoiceRepo.InvoiceRepository.
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) GetOpenByReservationID(ctx context.Context, reservationID string) (*models.Invoice, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) ListByUserID(ctx context.Context, userID string) ([]models.Invoice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) MarkProcessing(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepo) MarkPaid(ctx context.Context, id, paymentID string, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, id, paymentID, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepo) SetReceiptURL(ctx context.Context, id, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockInvoiceRepo) NextInvoiceNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentRepo is a mock implementation of paymentRepo.PaymentRepository.
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepo) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepo) GetPendingByInvoiceID(ctx context.Context, invoiceID string) (*models.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRepo) ListByInvoiceID(ctx context.Context, invoiceID string) ([]models.Payment, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *MockPaymentRepo) AttachCheckoutSession(ctx context.Context, id, sessionID, checkoutURL, paymentIntentID string) error {
	args := m.Called(ctx, id, sessionID, checkoutURL, paymentIntentID)
	return args.Error(0)
}

func (m *MockPaymentRepo) CompleteIfPending(ctx context.Context, id, transactionID, method string, processedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, transactionID, method, processedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepo) ExpireIfPending(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepo) FailIfPending(ctx context.Context, id, reason string) (bool, error) {
	args := m.Called(ctx, id, reason)
	return args.Bool(0), args.Error(1)
}

// MockUserRepo is a mock implementation of userRepo.UserRepository.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByIDWithProjection(ctx context.Context, id string, projection bson.M) (*models.User, error) {
	args := m.Called(ctx, id, projection)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepo) SetTokenHash(ctx context.Context, id, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockUserRepo) SetFCMToken(ctx context.Context, id, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

// MockEventRepo is a mock implementation of webhookeventRepo.WebhookEventRepository.
type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Record(ctx context.Context, ev *models.WebhookEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// MockGateway is a mock implementation of payments.GatewayClient.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, inv *models.Invoice, p *models.Payment, customerEmail string) (*payments.GatewaySession, error) {
	args := m.Called(ctx, inv, p, customerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.GatewaySession), args.Error(1)
}

// MockVerifier is a mock implementation of payments.EventVerifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	args := m.Called(payload, sigHeader)
	return args.Get(0).(stripe.Event), args.Error(1)
}

// MockEffects is a mock implementation of payments.EffectDispatcher.
type MockEffects struct {
	mock.Mock
}

func (m *MockEffects) PaymentSettled(ctx context.Context, inv *models.Invoice, p *models.Payment) {
	m.Called(ctx, inv, p)
}
