package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
)

// DeclineOfferCommandHandler resolves an offer as declined and moves the
// dispatch flow on to the next courier.
type DeclineOfferCommandHandler struct {
	uowFactory OfferUoWFactory
	scheduler  ports.OfferScheduler
	dispatch   NextCourierTrigger
	logger     *slog.Logger
}

// NewDeclineOfferCommandHandler creates a handler for offer declines.
func NewDeclineOfferCommandHandler(
	uowFactory OfferUoWFactory,
	scheduler ports.OfferScheduler,
	dispatch NextCourierTrigger,
	logger *slog.Logger,
) DeclineOfferCommandHandler {
	return DeclineOfferCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		dispatch:   dispatch,
		logger:     logger.With("component", "dispatch"),
	}
}

// Handle declines the offer through the conditional update and chains into
// the next offer attempt for the delivery.
//
// Returns errs.ErrObjectNotFound for an unknown offer and errs.ErrInvalidState
// when the offer was already resolved.
func (h *DeclineOfferCommandHandler) Handle(ctx context.Context, cmd DeclineOfferCommand) error {
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

	declined, err := offerRepo.Get(ctx, cmd.OfferID())
	if err != nil {
		return err
	}

	if err = offerRepo.UpdateStatusIf(ctx, declined.ID(), offer.Offered, offer.Declined); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.Cancel(declined.ID())
	h.logger.InfoContext(ctx, "offer declined",
		"delivery_id", declined.DeliveryID(), "offer_id", declined.ID(), "courier_id", declined.CourierID())

	dispatchCmd, err := NewTryNextCourierCommand(declined.DeliveryID())
	if err != nil {
		return err
	}

	return h.dispatch.Handle(ctx, dispatchCmd)
}
