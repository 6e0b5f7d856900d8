package paymentRepo

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

// Create inserts a new payment attempt.
func (r *mongoPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = models.PaymentStatusPending
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByID returns a payment by its ID, or nil when no payment exists.
func (r *mongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	var p models.Payment
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch payment with id %s: %w", id, err)
	}
	return &p, nil
}

// GetByCheckoutSessionID resolves the local attempt a gateway notification
// refers to. Returns nil when the session is unknown.
func (r *mongoPaymentRepo) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	var p models.Payment
	err := r.coll.FindOne(ctx, bson.M{"checkoutSessionId": sessionID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch payment for session %s: %w", sessionID, err)
	}
	return &p, nil
}

// GetPendingByInvoiceID returns the open attempt for an invoice, or nil.
// The newest one wins if earlier attempts were left behind.
func (r *mongoPaymentRepo) GetPendingByInvoiceID(ctx context.Context, invoiceID string) (*models.Payment, error) {
	filter := bson.M{"invoiceId": invoiceID, "status": models.PaymentStatusPending}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var p models.Payment
	err := r.coll.FindOne(ctx, filter, opts).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch pending payment for invoice %s: %w", invoiceID, err)
	}
	return &p, nil
}

// ListByInvoiceID returns every attempt recorded against an invoice,
// oldest first.
func (r *mongoPaymentRepo) ListByInvoiceID(ctx context.Context, invoiceID string) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"invoiceId": invoiceID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for invoice %s: %w", invoiceID, err)
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

// AttachCheckoutSession stores the gateway session reference on the attempt.
func (r *mongoPaymentRepo) AttachCheckoutSession(ctx context.Context, id, sessionID, checkoutURL, paymentIntentID string) error {
	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{
		"checkoutSessionId": sessionID,
		"checkoutUrl":       checkoutURL,
		"paymentIntentId":   paymentIntentID,
		"updatedAt":         time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to attach session to payment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("payment with id %s not found", id)
	}
	return nil
}

// CompleteIfPending moves a pending attempt to completed. The pending
// filter makes the call idempotent: whichever delivery arrives first wins,
// the rest modify nothing and get false back.
func (r *mongoPaymentRepo) CompleteIfPending(ctx context.Context, id, transactionID, method string, processedAt time.Time) (bool, error) {
	filter := bson.M{"id": id, "status": models.PaymentStatusPending}
	update := bson.M{"$set": bson.M{
		"status":        models.PaymentStatusCompleted,
		"transactionId": transactionID,
		"method":        method,
		"processedAt":   processedAt,
		"updatedAt":     time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to complete payment %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

// ExpireIfPending moves a pending attempt to expired.
func (r *mongoPaymentRepo) ExpireIfPending(ctx context.Context, id string) (bool, error) {
	filter := bson.M{"id": id, "status": models.PaymentStatusPending}
	update := bson.M{"$set": bson.M{
		"status":    models.PaymentStatusExpired,
		"updatedAt": time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to expire payment %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}

// FailIfPending moves a pending attempt to failed with the gateway reason.
func (r *mongoPaymentRepo) FailIfPending(ctx context.Context, id, reason string) (bool, error) {
	filter := bson.M{"id": id, "status": models.PaymentStatusPending}
	update := bson.M{"$set": bson.M{
		"status":        models.PaymentStatusFailed,
		"failureReason": reason,
		"updatedAt":     time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to fail payment %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}
