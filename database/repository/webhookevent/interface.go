package webhookeventRepo

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

// WebhookEventRepository keeps the audit trail of verified gateway
// deliveries. Recording is first-write-wins per event id; redeliveries do
// not disturb the original record.
type WebhookEventRepository interface {
	Record(ctx context.Context, ev *models.WebhookEvent) error
}

type mongoWebhookEventRepo struct {
	coll *mongo.Collection
}

// NewMongoWebhookEventRepo returns a new WebhookEventRepository instance using MongoDB.
func NewMongoWebhookEventRepo() WebhookEventRepository {
	db := database.MongoClient.Database("gaithtours")
	repo := &mongoWebhookEventRepo{
		coll: db.Collection("webhook_events"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create webhook event indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *mongoWebhookEventRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "sessionId", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
