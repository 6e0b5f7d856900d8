package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/config"
	invoiceRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/invoice"
	paymentRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/payment"
	reservationRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/reservation"
	userRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/user"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/notification"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/storage"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// ConfirmationDeps carries everything the confirmation handler touches.
type ConfirmationDeps struct {
	Invoices     invoiceRepo.InvoiceRepository
	Payments     paymentRepo.PaymentRepository
	Reservations reservationRepo.ReservationRepository
	Users        userRepo.UserRepository
	Notifier     notification.NotificationService
	Storage      storage.StorageService
}

// InitPaymentWorker runs the async confirmation worker in background.
func InitPaymentWorker(deps ConfirmationDeps) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePaymentConfirm, handleConfirmationTask(deps))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[PaymentWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PaymentWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PaymentWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleConfirmationTask finishes a settled payment: hosts the receipt,
// confirms the reservation and notifies the guest. Every step is
// idempotent, so a retried task converges instead of duplicating work.
func handleConfirmationTask(deps ConfirmationDeps) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.PaymentConfirmationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ConfirmationHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		log.Printf("[ConfirmationHandler] 💳 Confirming payment %s for invoice %s", p.PaymentID, p.InvoiceID)

		inv, err := deps.Invoices.GetByID(ctx, p.InvoiceID)
		if err != nil {
			return fmt.Errorf("load invoice %s: %w", p.InvoiceID, err)
		}
		if inv == nil {
			log.Printf("[ConfirmationHandler] ⚠️ Invoice %s no longer exists, dropping task", p.InvoiceID)
			return nil
		}
		pay, err := deps.Payments.GetByID(ctx, p.PaymentID)
		if err != nil {
			return fmt.Errorf("load payment %s: %w", p.PaymentID, err)
		}
		if pay == nil || pay.Status != models.PaymentStatusCompleted {
			log.Printf("[ConfirmationHandler] ⚠️ Payment %s is not completed, dropping task", p.PaymentID)
			return nil
		}
		user, err := deps.Users.GetByID(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("load user %s: %w", p.UserID, err)
		}
		if user == nil {
			log.Printf("[ConfirmationHandler] ⚠️ User %s no longer exists, dropping task", p.UserID)
			return nil
		}

		var res *models.Reservation
		if inv.ReservationID != "" {
			res, err = deps.Reservations.GetByID(ctx, inv.ReservationID)
			if err != nil {
				return fmt.Errorf("load reservation %s: %w", inv.ReservationID, err)
			}
		}

		// Host the receipt once; a retry reuses the stored URL.
		if inv.ReceiptURL == "" {
			html := storage.ReceiptHTML(user, inv, pay, res)
			url, err := deps.Storage.UploadReceipt(ctx, inv.InvoiceNumber, html)
			if err != nil {
				return fmt.Errorf("upload receipt for %s: %w", inv.InvoiceNumber, err)
			}
			if err := deps.Invoices.SetReceiptURL(ctx, inv.ID, url); err != nil {
				return fmt.Errorf("store receipt URL for %s: %w", inv.ID, err)
			}
			inv.ReceiptURL = url
		}

		if res != nil {
			confirmed, err := deps.Reservations.ConfirmIfPending(ctx, res.ID)
			if err != nil {
				return fmt.Errorf("confirm reservation %s: %w", res.ID, err)
			}
			if confirmed {
				log.Printf("[ConfirmationHandler] ✅ Reservation %s confirmed", res.ID)
			}
		}

		if err := deps.Notifier.SendPaymentConfirmationEmail(ctx, user, inv, pay, res); err != nil {
			log.Printf("[ConfirmationHandler] ❌ Failed to send confirmation email: %v", err)
			return err
		}

		// Push is best-effort; many guests never register an FCM token.
		data := map[string]string{
			"invoiceId":  inv.ID,
			"paymentId":  pay.ID,
			"receiptUrl": inv.ReceiptURL,
		}
		title := "Payment received"
		body := fmt.Sprintf("Your payment for invoice %s has been confirmed.", inv.InvoiceNumber)
		if err := deps.Notifier.SendPushNotification(ctx, user.ID, title, body, data); err != nil {
			log.Printf("[ConfirmationHandler] ⚠️ Push notification skipped: %v", err)
		}

		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[PaymentWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
