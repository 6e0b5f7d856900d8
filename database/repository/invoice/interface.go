package invoiceRepo

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

// InvoiceRepository is the ledger store for invoices. The Mark* methods are
// conditional updates: the filter includes the status the transition
// requires, and the boolean result reports whether the document was
// actually modified. A false result is a no-op, not an error; it is how
// duplicate and out-of-order webhook deliveries are absorbed.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	GetOpenByReservationID(ctx context.Context, reservationID string) (*models.Invoice, error)
	ListByUserID(ctx context.Context, userID string) ([]models.Invoice, error)

	// MarkProcessing moves unpaid -> processing.
	MarkProcessing(ctx context.Context, id string) (bool, error)
	// MarkPaid moves unpaid/processing -> paid and records the winning
	// payment attempt. At most one caller ever gets true for a given
	// invoice.
	MarkPaid(ctx context.Context, id, paymentID string, paidAt time.Time) (bool, error)

	SetReceiptURL(ctx context.Context, id, url string) error
	NextInvoiceNumber(ctx context.Context) (int64, error)
}

type mongoInvoiceRepo struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

// NewMongoInvoiceRepo returns a new InvoiceRepository instance using MongoDB.
func NewMongoInvoiceRepo() InvoiceRepository {
	db := database.MongoClient.Database("gaithtours")
	repo := &mongoInvoiceRepo{
		coll:     db.Collection("invoices"),
		counters: db.Collection("counters"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create invoice indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *mongoInvoiceRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "invoiceNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "reservationId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
