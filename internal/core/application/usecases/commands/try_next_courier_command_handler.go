package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// DefaultOfferTTL is how long a courier has to respond to an offer when no
// TTL is configured.
const DefaultOfferTTL = 60 * time.Second

// TryNextCourierCommandHandler runs the offer dispatch flow for a delivery.
//
// One invocation sends at most one offer. The flow is a no-op when the
// delivery is not in a dispatchable status or when an outstanding offer
// already exists, so repeated or late triggers are harmless. When the
// eligible pool is exhausted the delivery is marked no_courier and the seller
// is notified; that is a normal outcome, not an error. A no_courier delivery
// may be dispatched again later once couriers come back.
//
// Couriers that already received an offer for the delivery, whatever its
// outcome, are never offered the same delivery twice.
type TryNextCourierCommandHandler struct {
	uowFactory UoWFactory
	strategy   services.SelectionStrategy
	scheduler  ports.OfferScheduler
	notifier   ports.NotificationGateway
	offerTTL   time.Duration
	logger     *slog.Logger
}

// NewTryNextCourierCommandHandler creates the dispatch flow handler.
// A non-positive offerTTL falls back to DefaultOfferTTL.
func NewTryNextCourierCommandHandler(
	uowFactory UoWFactory,
	strategy services.SelectionStrategy,
	scheduler ports.OfferScheduler,
	notifier ports.NotificationGateway,
	offerTTL time.Duration,
	logger *slog.Logger,
) *TryNextCourierCommandHandler {
	if offerTTL <= 0 {
		offerTTL = DefaultOfferTTL
	}

	return &TryNextCourierCommandHandler{
		uowFactory: uowFactory,
		strategy:   strategy,
		scheduler:  scheduler,
		notifier:   notifier,
		offerTTL:   offerTTL,
		logger:     logger.With("component", "dispatch"),
	}
}

// Handle sends the delivery's next offer, marks it no_courier on pool
// exhaustion, or does nothing when the delivery cannot take an offer.
func (h *TryNextCourierCommandHandler) Handle(ctx context.Context, cmd TryNextCourierCommand) error {
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
	courierRepo := uow.CourierRepository()

	aggregate, err := deliveryRepo.Get(ctx, cmd.DeliveryID())
	if err != nil {
		return err
	}
	if !aggregate.Status().IsDispatchable() {
		return nil
	}

	history, err := offerRepo.GetAllForDelivery(ctx, cmd.DeliveryID())
	if err != nil {
		return err
	}

	offered := make(map[kernel.UUID]struct{}, len(history))
	for _, past := range history {
		if past.IsOutstanding() {
			return nil
		}
		offered[past.CourierID()] = struct{}{}
	}

	available, err := courierRepo.GetAllAvailable(ctx)
	if err != nil {
		return err
	}

	candidates := make([]services.Candidate, 0, len(available))
	for _, c := range available {
		load, loadErr := deliveryRepo.CountActiveByCourier(ctx, c.ID())
		if loadErr != nil {
			return loadErr
		}
		candidates = append(candidates, services.Candidate{Courier: c, ActiveDeliveries: load})
	}

	now := time.Now().UTC()

	selected, err := h.strategy.SelectNext(aggregate, candidates, offered)
	if errors.Is(err, services.ErrNoCandidateFound) {
		return h.markNoCourier(ctx, uow, aggregate, now)
	}
	if err != nil {
		return err
	}

	newOffer, err := offer.NewOffer(kernel.NewUUID(), aggregate.ID(), selected.ID(), now, h.offerTTL)
	if err != nil {
		return err
	}

	if err = offerRepo.Add(ctx, newOffer); err != nil {
		return err
	}

	if err = aggregate.SendOffer(now); err != nil {
		return err
	}
	if err = deliveryRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	selected.Touch(now)
	if err = courierRepo.Update(ctx, selected); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.scheduler.Schedule(newOffer.ID(), newOffer.ExpiresAt())
	h.notify(ctx, selected.ID(), ports.Notification{
		Kind: ports.EventOfferCreated,
		Payload: map[string]any{
			"offer_id":    newOffer.ID().String(),
			"delivery_id": aggregate.ID().String(),
			"expires_at":  newOffer.ExpiresAt(),
		},
	})

	h.logger.InfoContext(ctx, "offer sent",
		"delivery_id", aggregate.ID(), "offer_id", newOffer.ID(), "courier_id", selected.ID())

	return nil
}

// markNoCourier records pool exhaustion on the delivery and tells the seller.
func (h *TryNextCourierCommandHandler) markNoCourier(
	ctx context.Context, uow UoW, aggregate *delivery.Delivery, now time.Time,
) error {
	if err := aggregate.MarkNoCourier(now); err != nil {
		return err
	}
	if err := uow.DeliveryRepository().Update(ctx, aggregate); err != nil {
		return err
	}
	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.notify(ctx, aggregate.SellerID(), ports.Notification{
		Kind: ports.EventDeliveryNoCourier,
		Payload: map[string]any{
			"delivery_id": aggregate.ID().String(),
		},
	})

	h.logger.InfoContext(ctx, "no courier available", "delivery_id", aggregate.ID())

	return nil
}

// notify sends a notification and logs a failure instead of propagating it.
// Notification delivery is best-effort and never fails the business flow.
func (h *TryNextCourierCommandHandler) notify(
	ctx context.Context, recipientID kernel.UUID, notification ports.Notification,
) {
	if err := h.notifier.Notify(ctx, recipientID, notification); err != nil {
		h.logger.WarnContext(ctx, "notification failed",
			"recipient_id", recipientID, "kind", notification.Kind, "error", err)
	}
}

