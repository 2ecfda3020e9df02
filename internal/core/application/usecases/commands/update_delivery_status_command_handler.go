package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// UpdateDeliveryStatusCommandHandler records courier progress on an assigned
// delivery and tells the seller and buyer about it.
type UpdateDeliveryStatusCommandHandler struct {
	uowFactory DeliveryUoWFactory
	notifier   ports.NotificationGateway
	logger     *slog.Logger
}

// NewUpdateDeliveryStatusCommandHandler creates a handler for delivery progress updates.
func NewUpdateDeliveryStatusCommandHandler(
	uowFactory DeliveryUoWFactory,
	notifier ports.NotificationGateway,
	logger *slog.Logger,
) UpdateDeliveryStatusCommandHandler {
	return UpdateDeliveryStatusCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		logger:     logger.With("component", "dispatch"),
	}
}

// Handle applies the progress transition and persists the delivery.
// Skipping a step or progressing an unassigned delivery fails with the
// domain's transition error.
func (h *UpdateDeliveryStatusCommandHandler) Handle(ctx context.Context, cmd UpdateDeliveryStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	deliveryRepo := uow.DeliveryRepository()

	aggregate, err := deliveryRepo.Get(ctx, cmd.DeliveryID())
	if err != nil {
		return err
	}

	if err = aggregate.Progress(cmd.Target(), time.Now().UTC()); err != nil {
		return err
	}
	if err = deliveryRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	payload := map[string]any{
		"delivery_id": aggregate.ID().String(),
		"status":      aggregate.Status().String(),
	}
	h.notify(ctx, aggregate.SellerID(), ports.Notification{Kind: ports.EventDeliveryProgress, Payload: payload})
	h.notify(ctx, aggregate.BuyerID(), ports.Notification{Kind: ports.EventDeliveryProgress, Payload: payload})

	h.logger.InfoContext(ctx, "delivery progressed",
		"delivery_id", aggregate.ID(), "status", aggregate.Status())

	return nil
}

func (h *UpdateDeliveryStatusCommandHandler) notify(
	ctx context.Context, recipientID kernel.UUID, notification ports.Notification,
) {
	if err := h.notifier.Notify(ctx, recipientID, notification); err != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"recipient_id", recipientID, "kind", notification.Kind, "error", err)
	}
}
