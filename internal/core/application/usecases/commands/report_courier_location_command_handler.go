package commands

import (
	"context"
	"time"
)

// ReportCourierLocationCommandHandler persists courier position reports.
type ReportCourierLocationCommandHandler struct {
	uowFactory CourierUoWFactory
}

// NewReportCourierLocationCommandHandler creates a handler for position reports.
func NewReportCourierLocationCommandHandler(uowFactory CourierUoWFactory) ReportCourierLocationCommandHandler {
	return ReportCourierLocationCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle loads the courier, records the new position and persists it.
func (h *ReportCourierLocationCommandHandler) Handle(ctx context.Context, cmd ReportCourierLocationCommand) error {
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

	if err = courierEntity.MoveTo(cmd.Location(), time.Now().UTC()); err != nil {
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
