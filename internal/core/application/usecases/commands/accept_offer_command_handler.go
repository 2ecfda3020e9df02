package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
)

// AcceptOfferCommandHandler resolves an offer as accepted and assigns the
// delivery to the accepting courier.
//
// The status change goes through the repository's conditional update, so when
// an accept races a decline or an expiry on the same offer exactly one of
// them wins; the losers receive errs.ErrInvalidState and change nothing. An
// offer whose deadline has already passed is refused before the conditional
// update even runs.
type AcceptOfferCommandHandler struct {
	uowFactory OfferUoWFactory
	scheduler  ports.OfferScheduler
	notifier   ports.NotificationGateway
	logger     *slog.Logger
}

// NewAcceptOfferCommandHandler creates a handler for offer acceptance.
func NewAcceptOfferCommandHandler(
	uowFactory OfferUoWFactory,
	scheduler ports.OfferScheduler,
	notifier ports.NotificationGateway,
	logger *slog.Logger,
) AcceptOfferCommandHandler {
	return AcceptOfferCommandHandler{
		uowFactory: uowFactory,
		scheduler:  scheduler,
		notifier:   notifier,
		logger:     logger.With("component", "dispatch"),
	}
}

// Handle accepts the offer and assigns its delivery to the courier.
//
// Returns errs.ErrObjectNotFound for an unknown offer, offer.ErrOfferHasExpired
// for an offer past its deadline, and errs.ErrInvalidState when the offer was
// already resolved, including losing the race against a concurrent resolution.
func (h *AcceptOfferCommandHandler) Handle(ctx context.Context, cmd AcceptOfferCommand) error {
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
	deliveryRepo := uow.DeliveryRepository()

	accepted, err := offerRepo.Get(ctx, cmd.OfferID())
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if accepted.IsOutstanding() && accepted.IsExpiredAt(now) {
		return offer.ErrOfferHasExpired
	}

	if err = offerRepo.UpdateStatusIf(ctx, accepted.ID(), offer.Offered, offer.Accepted); err != nil {
		return err
	}

	aggregate, err := deliveryRepo.Get(ctx, accepted.DeliveryID())
	if err != nil {
		return err
	}

	if err = aggregate.Assign(accepted.CourierID(), now); err != nil {
		return err
	}
	if err = deliveryRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	// A winning accept supersedes any other outstanding offer on the delivery.
	siblings, err := offerRepo.GetAllForDelivery(ctx, accepted.DeliveryID())
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.ID().IsEqual(accepted.ID()) || !sibling.IsOutstanding() {
			continue
		}
		if err = offerRepo.UpdateStatusIf(ctx, sibling.ID(), offer.Offered, offer.Expired); err != nil {
			return err
		}
		h.scheduler.Cancel(sibling.ID())
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.Cancel(accepted.ID())

	payload := map[string]any{
		"delivery_id": aggregate.ID().String(),
		"courier_id":  accepted.CourierID().String(),
	}
	h.notify(ctx, aggregate.SellerID(), ports.Notification{Kind: ports.EventDeliveryAssigned, Payload: payload})
	h.notify(ctx, aggregate.BuyerID(), ports.Notification{Kind: ports.EventDeliveryAssigned, Payload: payload})

	h.logger.InfoContext(ctx, "offer accepted",
		"delivery_id", aggregate.ID(), "offer_id", accepted.ID(), "courier_id", accepted.CourierID())

	return nil
}

func (h *AcceptOfferCommandHandler) notify(
	ctx context.Context, recipientID kernel.UUID, notification ports.Notification,
) {
	if err := h.notifier.Notify(ctx, recipientID, notification); err != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"recipient_id", recipientID, "kind", notification.Kind, "error", err)
	}
}
