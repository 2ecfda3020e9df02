package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// Event kinds published through the notification gateway.
const (
	EventOfferCreated      = "offer.created"
	EventOfferExpired      = "offer.expired"
	EventDeliveryAssigned  = "delivery.assigned"
	EventDeliveryNoCourier = "delivery.no_courier"
	EventDeliveryProgress  = "delivery.progress"
	EventDeliveryCancelled = "delivery.cancelled"
)

// Notification is a message addressed to a single recipient, typically a
// courier being offered a delivery or a seller learning the outcome.
type Notification struct {
	// Kind is one of the Event* constants.
	Kind string
	// Payload carries event-specific fields, e.g. delivery and offer IDs.
	Payload map[string]any
}

// NotificationGateway delivers notifications to recipients.
//
// Delivery is best-effort: implementations must not fail the business
// operation when a notification cannot be delivered, and callers treat a
// returned error as a logging concern, never as a reason to roll back.
type NotificationGateway interface {
	Notify(ctx context.Context, recipientID kernel.UUID, notification Notification) error
}
