package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// CancelDeliveryCommandHandler cancels a delivery and expires any offer still
// outstanding for it. An offer resolution racing the cancellation may win the
// conditional update; the delivery still ends up cancelled either way.
type CancelDeliveryCommandHandler struct {
	uowFactory OfferUoWFactory
	scheduler  ports.OfferScheduler
	notifier   ports.NotificationGateway
	logger     *slog.Logger
}

// NewCancelDeliveryCommandHandler creates a handler for delivery cancellation.
func NewCancelDeliveryCommandHandler(
	uowFactory OfferUoWFactory,
	scheduler ports.OfferScheduler,
	notifier ports.NotificationGateway,
	logger *slog.Logger,
) CancelDeliveryCommandHandler {
	return CancelDeliveryCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		notifier:   notifier,
		logger:     logger.With("component", "dispatch"),
	}
}

// Handle cancels the delivery and expires its outstanding offers.
// Cancelling an already-terminal delivery fails with the domain's transition error.
func (h *CancelDeliveryCommandHandler) Handle(ctx context.Context, cmd CancelDeliveryCommand) error {
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
	offerRepo := uow.OfferRepository()

	aggregate, err := deliveryRepo.Get(ctx, cmd.DeliveryID())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err = aggregate.Cancel(now); err != nil {
		return err
	}
	if err = deliveryRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	history, err := offerRepo.GetAllForDelivery(ctx, cmd.DeliveryID())
	if err != nil {
		return err
	}

	cancelled := make([]kernel.UUID, 0, 1)
	for _, outstanding := range history {
		if !outstanding.IsOutstanding() {
			continue
		}
		err = offerRepo.UpdateStatusIf(ctx, outstanding.ID(), offer.Offered, offer.Expired)
		if err != nil && !errors.Is(err, errs.ErrInvalidState) {
			return err
		}
		cancelled = append(cancelled, outstanding.ID())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, offerID := range cancelled {
		h.scheduler.Cancel(offerID)
	}

	payload := map[string]any{"delivery_id": aggregate.ID().String()}
	h.notify(ctx, aggregate.SellerID(), ports.Notification{Kind: ports.EventDeliveryCancelled, Payload: payload})
	h.notify(ctx, aggregate.BuyerID(), ports.Notification{Kind: ports.EventDeliveryCancelled, Payload: payload})
	if courierID := aggregate.Courier(); courierID != nil {
		h.notify(ctx, *courierID, ports.Notification{Kind: ports.EventDeliveryCancelled, Payload: payload})
	}

	h.logger.InfoContext(ctx, "delivery cancelled", "delivery_id", aggregate.ID())

	return nil
}

func (h *CancelDeliveryCommandHandler) notify(
	ctx context.Context, recipientID kernel.UUID, notification ports.Notification,
) {
	if err := h.notifier.Notify(ctx, recipientID, notification); err != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"recipient_id", recipientID, "kind", notification.Kind, "error", err)
	}
}
