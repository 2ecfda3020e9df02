package commands

import (
	"context"
	"time"
)

// SetCourierAvailabilityCommandHandler applies availability changes to couriers.
type SetCourierAvailabilityCommandHandler struct {
	uowFactory CourierUoWFactory
}

// NewSetCourierAvailabilityCommandHandler creates a handler for availability changes.
func NewSetCourierAvailabilityCommandHandler(uowFactory CourierUoWFactory) SetCourierAvailabilityCommandHandler {
	return SetCourierAvailabilityCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle loads the courier, applies the availability change and persists it.
// Returns errs.ErrObjectNotFound for an unknown courier and the domain's
// ErrCourierIsNotActive when an inactive courier tries to opt in.
func (h *SetCourierAvailabilityCommandHandler) Handle(ctx context.Context, cmd SetCourierAvailabilityCommand) error {
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

	courierRepo := uow.CourierRepository()
	courierEntity, err := courierRepo.Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	if err = courierEntity.SetAvailable(cmd.Available(), time.Now().UTC()); err != nil {
		return err
	}

	if err = courierRepo.Update(ctx, courierEntity); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	return nil
}
