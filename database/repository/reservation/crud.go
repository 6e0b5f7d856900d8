package reservationRepo

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

// Create inserts a new reservation record.
func (r *mongoReservationRepo) Create(ctx context.Context, res *models.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.Status == "" {
		res.Status = models.ReservationStatusPending
	}
	now := time.Now()
	res.CreatedAt = now
	res.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// GetByID returns a reservation by its ID, or nil when none exists.
func (r *mongoReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	var res models.Reservation
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&res)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch reservation with id %s: %w", id, err)
	}
	return &res, nil
}

// ListByUserID returns all reservations belonging to a user, newest first.
func (r *mongoReservationRepo) ListByUserID(ctx context.Context, userID string) ([]models.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}

// ConfirmIfPending moves a pending reservation to confirmed.
func (r *mongoReservationRepo) ConfirmIfPending(ctx context.Context, id string) (bool, error) {
	filter := bson.M{"id": id, "status": models.ReservationStatusPending}
	update := bson.M{"$set": bson.M{
		"status":    models.ReservationStatusConfirmed,
		"updatedAt": time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to confirm reservation %s: %w", id, err)
	}
	return res.ModifiedCount == 1, nil
}
