// Package notifier provides NotificationGateway implementations. The Redis
// gateway publishes events for real recipient channels; the log gateway
// writes them to the application log for local development.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/go-redis/redis/v8"
)

// RedisNotificationGateway publishes notifications to per-recipient Redis
// pub/sub channels. Consumers (mobile apps, web sockets bridges) subscribe
// to their own channel and render the event.
type RedisNotificationGateway struct {
	client *redis.Client
}

// NewRedisNotificationGateway creates a gateway on top of an existing client.
func NewRedisNotificationGateway(client *redis.Client) *RedisNotificationGateway {
	return &RedisNotificationGateway{client: client}
}

// message is the wire format published to the recipient channel.
type message struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Notify publishes the notification to the recipient's channel.
func (g *RedisNotificationGateway) Notify(
	ctx context.Context, recipientID kernel.UUID, notification ports.Notification,
) error {
	if err := recipientID.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(message{
		Kind:    notification.Kind,
		Payload: notification.Payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	channel := channelFor(recipientID)
	if err := g.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	return nil
}

func channelFor(recipientID kernel.UUID) string {
	return "notifications:" + recipientID.String()
}
