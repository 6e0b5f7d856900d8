package notification

import (
	"context"
	"fmt"

	"github.com/MahmoudMetwally2699/gaithTours-sub008/utils"

	"firebase.google.com/go/v4/messaging"
)

// SendPushNotification looks up a guest's FCM token and sends a push.
func (s *DefaultNotificationService) SendPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendPushNotification: could not load user %s: %w", userID, err)
	}
	if u == nil {
		return fmt.Errorf("SendPushNotification: user %s not found", userID)
	}
	token := u.FCMToken
	if token == "" {
		return fmt.Errorf("SendPushNotification: user %s has no FCM token", userID)
	}

	if data == nil {
		data = map[string]string{}
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	response, err := utils.FCMClient.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("SendPushNotification: failed to send FCM message: %w", err)
	}

	fmt.Printf("SendPushNotification: successfully sent message: %s\n", response)
	return nil
}
