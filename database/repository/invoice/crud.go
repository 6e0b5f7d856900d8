package invoiceRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new invoice document.
func (r *mongoInvoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	now := time.Now()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, inv); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// GetByID returns an invoice by its ID, or nil when no invoice exists.
func (r *mongoInvoiceRepo) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&inv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch invoice with id %s: %w", id, err)
	}
	return &inv, nil
}

// GetOpenByReservationID returns the unsettled invoice for a reservation,
// or nil when the reservation has none.
func (r *mongoInvoiceRepo) GetOpenByReservationID(ctx context.Context, reservationID string) (*models.Invoice, error) {
	filter := bson.M{
		"reservationId": reservationID,
		"paymentStatus": bson.M{"$in": []string{models.InvoiceStatusUnpaid, models.InvoiceStatusProcessing}},
	}
	var inv models.Invoice
	err := r.coll.FindOne(ctx, filter).Decode(&inv)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch open invoice for reservation %s: %w", reservationID, err)
	}
	return &inv, nil
}

// ListByUserID returns all invoices belonging to a user, newest first.
func (r *mongoInvoiceRepo) ListByUserID(ctx context.Context, userID string) ([]models.Invoice, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode invoices: %w", err)
	}
	return invoices, nil
}

// MarkProcessing flips an unpaid invoice to processing. The filter carries
// the required current status, so a repeated or late delivery modifies
// nothing and returns false.
func (r *mongoInvoiceRepo) MarkProcessing(ctx context.Context, id string) (bool, error) {
	filter := bson.M{"id": id, "paymentStatus": models.InvoiceStatusUnpaid}
	update := bson.M{"$set": bson.M{
		"paymentStatus": models.InvoiceStatusProcessing,
		"updatedAt":     time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark invoice %s processing: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

// MarkPaid settles an open invoice. Only one payment attempt can ever win
// this update; every later call matches zero documents.
func (r *mongoInvoiceRepo) MarkPaid(ctx context.Context, id, paymentID string, paidAt time.Time) (bool, error) {
	filter := bson.M{
		"id":            id,
		"paymentStatus": bson.M{"$in": []string{models.InvoiceStatusUnpaid, models.InvoiceStatusProcessing}},
	}
	update := bson.M{"$set": bson.M{
		"paymentStatus": models.InvoiceStatusPaid,
		"paymentId":     paymentID,
		"paidAt":        paidAt,
		"updatedAt":     time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark invoice %s paid: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

// SetReceiptURL stores the hosted receipt location after the confirmation
// worker has uploaded it.
func (r *mongoInvoiceRepo) SetReceiptURL(ctx context.Context, id, url string) error {
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"receiptUrl": url, "updatedAt": time.Now()}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set receipt url on invoice %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("invoice with id %s not found", id)
	}
	return nil
}

// NextInvoiceNumber atomically increments and returns the invoice sequence.
func (r *mongoInvoiceRepo) NextInvoiceNumber(ctx context.Context) (int64, error) {
	filter := bson.M{"id": "invoiceNumber"}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := r.counters.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return counter.Seq, nil
}
