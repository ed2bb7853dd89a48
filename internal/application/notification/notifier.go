package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers a notification to a participant. Delivery transport
// (SMS, email, push) lives behind this boundary.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, subject, body string) error
}

// LogNotifier writes notifications to the application log. It stands in
// for a real delivery channel in development and tests.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, recipientID uuid.UUID, subject, body string) error {
	n.logger.Info("notification",
		zap.String("recipient_id", recipientID.String()),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
