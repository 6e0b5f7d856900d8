package notification

import (
	"context"
	"fmt"

	userRepo "github.com/MahmoudMetwally2699/gaithTours-sub008/database/repository/user"
	"github.com/MahmoudMetwally2699/gaithTours-sub008/models"
)

// NotificationService delivers payment confirmations to guests over email
// and FCM push.
type NotificationService interface {
	SendPaymentConfirmationEmail(ctx context.Context, user *models.User, inv *models.Invoice, p *models.Payment, res *models.Reservation) error
	SendPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users userRepo.UserRepository
	Email *EmailClient
}

// SendPaymentConfirmationEmail renders the receipt mail and sends it to
// the invoice owner.
func (s *DefaultNotificationService) SendPaymentConfirmationEmail(ctx context.Context, user *models.User, inv *models.Invoice, p *models.Payment, res *models.Reservation) error {
	if user.Email == "" {
		return fmt.Errorf("SendPaymentConfirmationEmail: user %s has no email address", user.ID)
	}

	subject := fmt.Sprintf("Payment received for invoice %s", inv.InvoiceNumber)
	htmlBody := paymentConfirmationHTML(user, inv, p, res)

	return s.Email.SendEmail(user.Email, subject, htmlBody)
}
