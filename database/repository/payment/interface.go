package paymentRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/database"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaymentRepository stores settlement attempts. The three transition
// methods are guarded updates out of the pending state; each returns true
// only for the single call that actually moved the document, which makes
// concurrent and redelivered webhook notifications collapse into no-ops.
type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByCheckoutSessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	GetPendingByInvoiceID(ctx context.Context, invoiceID string) (*models.Payment, error)
	ListByInvoiceID(ctx context.Context, invoiceID string) ([]models.Payment, error)

	// AttachCheckoutSession stores the gateway session reference on a
	// freshly created attempt.
	AttachCheckoutSession(ctx context.Context, id, sessionID, checkoutURL, paymentIntentID string) error

	// CompleteIfPending moves pending -> completed.
	CompleteIfPending(ctx context.Context, id, transactionID, method string, processedAt time.Time) (bool, error)
	// ExpireIfPending moves pending -> expired.
	ExpireIfPending(ctx context.Context, id string) (bool, error)
	// FailIfPending moves pending -> failed and records the gateway reason.
	FailIfPending(ctx context.Context, id, reason string) (bool, error)
}

type mongoPaymentRepo struct {
	coll *mongo.Collection
}

// NewMongoPaymentRepo returns a new PaymentRepository instance using MongoDB.
func NewMongoPaymentRepo() PaymentRepository {
	db := database.MongoClient.Database("gaithtours")
	repo := &mongoPaymentRepo{
		coll: db.Collection("payments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create payment indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *mongoPaymentRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "checkoutSessionId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "invoiceId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
