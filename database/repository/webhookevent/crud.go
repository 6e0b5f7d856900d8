package webhookeventRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Record inserts the delivery record. A duplicate event id means the
// delivery was already recorded, which is not an error.
func (r *mongoWebhookEventRepo) Record(ctx context.Context, ev *models.WebhookEvent) error {
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, ev)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to record webhook event %s: %w", ev.EventID, err)
	}
	return nil
}
