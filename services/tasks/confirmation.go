package tasks

import (
	"encoding/json"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"

	"github.com/hibiken/asynq"
)

const TypePaymentConfirm = "payment:confirm"

// NewPaymentConfirmationTask packages a settled payment for the confirmation
// worker. The payload carries ids only; the worker re-reads the records so a
// retried task always sees current state.
func NewPaymentConfirmationTask(payload models.PaymentConfirmationPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePaymentConfirm, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(2 * time.Minute),
	}

	return task, opts, nil
}
