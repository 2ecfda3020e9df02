package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/delivery"
)

// CreateDeliveryCommandHandler persists a new delivery and immediately starts
// the offer dispatch flow for it.
type CreateDeliveryCommandHandler struct {
	uowFactory DeliveryUoWFactory
	dispatch   NextCourierTrigger
}

// NewCreateDeliveryCommandHandler creates a handler for delivery creation.
// The dispatch trigger is invoked after the delivery is committed, so a
// dispatch failure never loses the delivery record.
func NewCreateDeliveryCommandHandler(
	uowFactory DeliveryUoWFactory, dispatch NextCourierTrigger,
) CreateDeliveryCommandHandler {
	return CreateDeliveryCommandHandler{
		uowFactory: uowFactory,
		dispatch:   dispatch,
	}
}

// Handle creates the delivery in pending status, commits it and chains into
// the dispatch flow to send the first offer.
func (h *CreateDeliveryCommandHandler) Handle(ctx context.Context, cmd CreateDeliveryCommand) error {
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

	aggregate, err := delivery.NewDelivery(
		cmd.DeliveryID(), cmd.OrderID(), cmd.SellerID(), cmd.BuyerID(),
		cmd.Pickup(), cmd.Dropoff(), time.Now().UTC())
	if err != nil {
		return err
	}

	if err = uow.DeliveryRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	dispatchCmd, err := NewTryNextCourierCommand(cmd.DeliveryID())
	if err != nil {
		return err
	}

	return h.dispatch.Handle(ctx, dispatchCmd)
}
