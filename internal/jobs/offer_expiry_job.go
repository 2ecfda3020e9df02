package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
)

// OfferExpiryJob is the backstop behind the in-process offer timers. It runs
// every second, finds outstanding offers whose deadline has already passed
// and routes each one through the offer expiry flow.
//
// In normal operation the per-offer timer fires first and the sweep finds
// nothing. The sweep matters after a restart, when timers armed by the
// previous process are gone.
type OfferExpiryJob struct {
	uowFactory commands.OfferUoWFactory
	handler    commands.ExpireOfferCommandHandler
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewOfferExpiryJob creates the expiry sweep job.
func NewOfferExpiryJob(
	uowFactory commands.OfferUoWFactory,
	handler commands.ExpireOfferCommandHandler,
	logger *slog.Logger,
) *OfferExpiryJob {
	return &OfferExpiryJob{
		uowFactory: uowFactory,
		handler:    handler,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "offer_expiry_job"),
	}
}

// Start begins the expiry sweep, running every second.
func (j *OfferExpiryJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		ctx := context.Background()
		if err := j.sweep(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Offer expiry sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Offer expiry job started (running every second)")
	return nil
}

// Stop stops the expiry sweep.
func (j *OfferExpiryJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Offer expiry job stopped")
}

// sweep lists overdue outstanding offers and expires each one. An offer that
// a concurrent accept or decline resolves first is skipped silently by the
// expiry flow, so the sweep never races against real responses.
func (j *OfferExpiryJob) sweep(ctx context.Context) error {
	overdue, err := j.listOverdue(ctx)
	if err != nil {
		return err
	}

	var sweepErr error
	for _, offerID := range overdue {
		cmd, cmdErr := commands.NewExpireOfferCommand(offerID)
		if cmdErr != nil {
			sweepErr = errors.Join(sweepErr, cmdErr)
			continue
		}
		if handleErr := j.handler.Handle(ctx, cmd); handleErr != nil {
			sweepErr = errors.Join(sweepErr, handleErr)
		}
	}

	return sweepErr
}

func (j *OfferExpiryJob) listOverdue(ctx context.Context) (ids []kernel.UUID, err error) {
	uow := j.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	overdue, err := uow.OfferRepository().GetAllExpiredOutstanding(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	ids = make([]kernel.UUID, 0, len(overdue))
	for _, o := range overdue {
		ids = append(ids, o.ID())
	}
	return ids, nil
}
