package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ExpireOfferCommandHandler resolves an offer as expired and moves the
// dispatch flow on to the next courier.
//
// The timer and the sweep job may both fire for the same offer, and either
// may race a courier's accept or decline. Losing the conditional update is
// the expected way those races resolve, so a conflict is treated as success:
// whoever won has already advanced the delivery.
type ExpireOfferCommandHandler struct {
	uowFactory OfferUoWFactory
	scheduler  ports.OfferScheduler
	dispatch   NextCourierTrigger
	notifier   ports.NotificationGateway
	logger     *slog.Logger
}

// NewExpireOfferCommandHandler creates a handler for offer expiry.
func NewExpireOfferCommandHandler(
	uowFactory OfferUoWFactory,
	scheduler ports.OfferScheduler,
	dispatch NextCourierTrigger,
	notifier ports.NotificationGateway,
	logger *slog.Logger,
) ExpireOfferCommandHandler {
	return ExpireOfferCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		dispatch:   dispatch,
		notifier:   notifier,
		logger:     logger.With("component", "dispatch"),
	}
}

// Handle expires the offer through the conditional update and chains into the
// next offer attempt. Already-resolved offers are a silent no-op.
func (h *ExpireOfferCommandHandler) Handle(ctx context.Context, cmd ExpireOfferCommand) error {
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

	offerRepo := uow.OfferRepository()

	expired, err := offerRepo.Get(ctx, cmd.OfferID())
	if err != nil {
		return err
	}
	if !expired.IsOutstanding() {
		return nil
	}

	err = offerRepo.UpdateStatusIf(ctx, expired.ID(), offer.Offered, offer.Expired)
	if errors.Is(err, errs.ErrInvalidState) {
		return nil
	}
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.Cancel(expired.ID())

	if notifyErr := h.notifier.Notify(ctx, expired.CourierID(), ports.Notification{
		Kind: ports.EventOfferExpired,
		Payload: map[string]any{
			"offer_id":    expired.ID().String(),
			"delivery_id": expired.DeliveryID().String(),
		},
	}); notifyErr != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"recipient_id", expired.CourierID(), "kind", ports.EventOfferExpired, "error", notifyErr)
	}

	h.logger.InfoContext(ctx, "offer expired",
		"delivery_id", expired.DeliveryID(), "offer_id", expired.ID(), "courier_id", expired.CourierID())

	dispatchCmd, err := NewTryNextCourierCommand(expired.DeliveryID())
	if err != nil {
		return err
	}

	return h.dispatch.Handle(ctx, dispatchCmd)
}
