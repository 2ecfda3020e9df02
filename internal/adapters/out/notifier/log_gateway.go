package notifier

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// LogNotificationGateway writes notifications to the application log.
// Used for local development when no Redis broker is configured.
type LogNotificationGateway struct {
	logger *slog.Logger
}

// NewLogNotificationGateway creates a gateway that logs every notification.
func NewLogNotificationGateway(logger *slog.Logger) *LogNotificationGateway {
	return &LogNotificationGateway{logger: logger.With("component", "notifier")}
}

// Notify logs the notification instead of delivering it.
func (g *LogNotificationGateway) Notify(
	ctx context.Context, recipientID kernel.UUID, notification ports.Notification,
) error {
	if err := recipientID.Validate(); err != nil {
		return err
	}

	g.logger.InfoContext(ctx, "notification",
		"recipient_id", recipientID, "kind", notification.Kind, "payload", notification.Payload)

	return nil
}
