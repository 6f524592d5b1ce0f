package notify

import (
	"log/slog"
)

// LogNotifier writes notifications to the log instead of delivering them.
// Useful for development environments without a mail collaborator.
type LogNotifier struct{}

func (LogNotifier) Send(notification NotificationData) error {
	slog.Info("Notification (log only)",
		"to", notification.To,
		"cc", notification.Cc,
		"subject", notification.Subject)
	slog.Info("Notification body", "body", notification.Body)
	return nil
}
