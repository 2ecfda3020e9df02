package memory_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/adapters/out/notifier"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The tests in this file run the full dispatch flow end to end: real command
// handlers, the real timer scheduler and the in-memory store. Only the
// notification gateway is a stand-in (it logs instead of publishing).

type uowFactoryFunc func() ports.UnitOfWork

func (f uowFactoryFunc) Create() commands.UoW { return f() }

type offerUoWFactoryFunc func() ports.UnitOfWork

func (f offerUoWFactoryFunc) Create() commands.OfferUoW { return f() }

type deliveryUoWFactoryFunc func() ports.UnitOfWork

func (f deliveryUoWFactoryFunc) Create() commands.DeliveryUoW { return f() }

type courierUoWFactoryFunc func() ports.UnitOfWork

func (f courierUoWFactoryFunc) Create() commands.CourierUoW { return f() }

// dispatchEnv bundles a store with fully wired handlers.
type dispatchEnv struct {
	store     *memory.Store
	scheduler *scheduler.TimerScheduler

	createCourier   commands.CreateCourierCommandHandler
	setAvailability commands.SetCourierAvailabilityCommandHandler
	createDelivery  commands.CreateDeliveryCommandHandler
	tryNext         *commands.TryNextCourierCommandHandler
	acceptOffer     commands.AcceptOfferCommandHandler
	declineOffer    commands.DeclineOfferCommandHandler
	expireOffer     commands.ExpireOfferCommandHandler
	cancelDelivery  commands.CancelDeliveryCommandHandler
}

func newDispatchEnv(t *testing.T, offerTTL time.Duration) *dispatchEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	gateway := notifier.NewLogNotificationGateway(logger)

	env := &dispatchEnv{store: store}

	env.scheduler = scheduler.NewTimerScheduler(func(offerID kernel.UUID) {
		cmd, err := commands.NewExpireOfferCommand(offerID)
		if err != nil {
			return
		}
		_ = env.expireOffer.Handle(context.Background(), cmd)
	}, logger)
	t.Cleanup(env.scheduler.Shutdown)

	env.tryNext = commands.NewTryNextCourierCommandHandler(
		uowFactoryFunc(store.Create), services.NewRoundRobinStrategy(),
		env.scheduler, gateway, offerTTL, logger)

	env.createCourier = commands.NewCreateCourierCommandHandler(courierUoWFactoryFunc(store.Create))
	env.setAvailability = commands.NewSetCourierAvailabilityCommandHandler(courierUoWFactoryFunc(store.Create))
	env.createDelivery = commands.NewCreateDeliveryCommandHandler(
		deliveryUoWFactoryFunc(store.Create), env.tryNext)
	env.acceptOffer = commands.NewAcceptOfferCommandHandler(
		offerUoWFactoryFunc(store.Create), env.scheduler, gateway, logger)
	env.declineOffer = commands.NewDeclineOfferCommandHandler(
		offerUoWFactoryFunc(store.Create), env.scheduler, env.tryNext, logger)
	env.expireOffer = commands.NewExpireOfferCommandHandler(
		offerUoWFactoryFunc(store.Create), env.scheduler, env.tryNext, gateway, logger)
	env.cancelDelivery = commands.NewCancelDeliveryCommandHandler(
		offerUoWFactoryFunc(store.Create), env.scheduler, gateway, logger)

	return env
}

func (env *dispatchEnv) addAvailableCourier(t *testing.T, name string, phone string) kernel.UUID {
	t.Helper()
	ctx := context.Background()

	cmd, err := commands.NewCreateCourierCommand(name, phone)
	require.NoError(t, err)
	require.NoError(t, env.createCourier.Handle(ctx, cmd))

	availCmd, err := commands.NewSetCourierAvailabilityCommand(cmd.CourierID(), true)
	require.NoError(t, err)
	require.NoError(t, env.setAvailability.Handle(ctx, availCmd))

	// Availability flips refresh the courier's rotation timestamp: give each
	// courier a distinct one so the round-robin order is deterministic.
	time.Sleep(2 * time.Millisecond)

	return cmd.CourierID()
}

func (env *dispatchEnv) newDelivery(t *testing.T) kernel.UUID {
	t.Helper()

	pickup, err := delivery.NewPlace("Store St 1", nil)
	require.NoError(t, err)
	dropoff, err := delivery.NewPlace("Home Ave 2", nil)
	require.NoError(t, err)

	cmd, err := commands.NewCreateDeliveryCommand(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), pickup, dropoff)
	require.NoError(t, err)
	require.NoError(t, env.createDelivery.Handle(context.Background(), cmd))

	return cmd.DeliveryID()
}

func (env *dispatchEnv) getDelivery(t *testing.T, id kernel.UUID) *delivery.Delivery {
	t.Helper()
	ctx := context.Background()

	uow := env.store.Create()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()

	d, err := uow.DeliveryRepository().Get(ctx, id)
	require.NoError(t, err)
	return d
}

func (env *dispatchEnv) offersFor(t *testing.T, deliveryID kernel.UUID) []*offer.Offer {
	t.Helper()
	ctx := context.Background()

	uow := env.store.Create()
	require.NoError(t, uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()

	offers, err := uow.OfferRepository().GetAllForDelivery(ctx, deliveryID)
	require.NoError(t, err)
	return offers
}

func (env *dispatchEnv) outstandingOffer(t *testing.T, deliveryID kernel.UUID) *offer.Offer {
	t.Helper()
	for _, o := range env.offersFor(t, deliveryID) {
		if o.IsOutstanding() {
			return o
		}
	}
	t.Fatal("no outstanding offer")
	return nil
}

func TestDispatchFlow_DeclineThenAccept(t *testing.T) {
	// Two couriers. The first one in rotation declines, the second accepts.
	env := newDispatchEnv(t, time.Minute)
	courierA := env.addAvailableCourier(t, "Anna Petrova", "+79161234567")
	courierB := env.addAvailableCourier(t, "Boris Ivanov", "+79167654321")

	deliveryID := env.newDelivery(t)

	first := env.outstandingOffer(t, deliveryID)
	assert.True(t, first.CourierID().IsEqual(courierA))

	declineCmd, err := commands.NewDeclineOfferCommand(first.ID())
	require.NoError(t, err)
	require.NoError(t, env.declineOffer.Handle(t.Context(), declineCmd))

	second := env.outstandingOffer(t, deliveryID)
	assert.True(t, second.CourierID().IsEqual(courierB))

	acceptCmd, err := commands.NewAcceptOfferCommand(second.ID())
	require.NoError(t, err)
	require.NoError(t, env.acceptOffer.Handle(t.Context(), acceptCmd))

	final := env.getDelivery(t, deliveryID)
	assert.Equal(t, delivery.Assigned, final.Status())
	require.NotNil(t, final.Courier())
	assert.True(t, final.Courier().IsEqual(courierB))
}

func TestDispatchFlow_NoCourierTwiceNeverReoffered(t *testing.T) {
	// A courier who declined is never offered the same delivery again, even
	// when they are the only one left.
	env := newDispatchEnv(t, time.Minute)
	courierA := env.addAvailableCourier(t, "Anna Petrova", "+79161234567")

	deliveryID := env.newDelivery(t)

	first := env.outstandingOffer(t, deliveryID)
	require.True(t, first.CourierID().IsEqual(courierA))

	declineCmd, err := commands.NewDeclineOfferCommand(first.ID())
	require.NoError(t, err)
	require.NoError(t, env.declineOffer.Handle(t.Context(), declineCmd))

	final := env.getDelivery(t, deliveryID)
	assert.Equal(t, delivery.NoCourier, final.Status())
	assert.Len(t, env.offersFor(t, deliveryID), 1)
}

func TestDispatchFlow_RedispatchAfterCourierJoins(t *testing.T) {
	// A delivery that ran out of couriers can be dispatched again once a new
	// courier opts in.
	env := newDispatchEnv(t, time.Minute)

	deliveryID := env.newDelivery(t)
	require.Equal(t, delivery.NoCourier, env.getDelivery(t, deliveryID).Status())

	courierA := env.addAvailableCourier(t, "Anna Petrova", "+79161234567")

	retryCmd, err := commands.NewTryNextCourierCommand(deliveryID)
	require.NoError(t, err)
	require.NoError(t, env.tryNext.Handle(t.Context(), retryCmd))

	outstanding := env.outstandingOffer(t, deliveryID)
	assert.True(t, outstanding.CourierID().IsEqual(courierA))
	assert.Equal(t, delivery.OfferSent, env.getDelivery(t, deliveryID).Status())
}

func TestDispatchFlow_ExpiryAdvancesChain(t *testing.T) {
	// An unanswered offer expires and the chain moves to the next courier.
	env := newDispatchEnv(t, 20*time.Millisecond)
	courierA := env.addAvailableCourier(t, "Anna Petrova", "+79161234567")
	courierB := env.addAvailableCourier(t, "Boris Ivanov", "+79167654321")

	deliveryID := env.newDelivery(t)
	first := env.outstandingOffer(t, deliveryID)
	require.True(t, first.CourierID().IsEqual(courierA))

	require.Eventually(t, func() bool {
		for _, o := range env.offersFor(t, deliveryID) {
			if o.IsOutstanding() && o.CourierID().IsEqual(courierB) {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	offers := env.offersFor(t, deliveryID)
	require.Len(t, offers, 2)
	assert.Equal(t, offer.Expired, offers[0].Status())
}

func TestDispatchFlow_AcceptedOfferIsNotExpiredByLateTimer(t *testing.T) {
	// A late expiry trigger for an already accepted offer must not disturb
	// the assignment.
	env := newDispatchEnv(t, time.Minute)
	courierA := env.addAvailableCourier(t, "Anna Petrova", "+79161234567")

	deliveryID := env.newDelivery(t)
	outstanding := env.outstandingOffer(t, deliveryID)

	acceptCmd, err := commands.NewAcceptOfferCommand(outstanding.ID())
	require.NoError(t, err)
	require.NoError(t, env.acceptOffer.Handle(t.Context(), acceptCmd))

	expireCmd, err := commands.NewExpireOfferCommand(outstanding.ID())
	require.NoError(t, err)
	require.NoError(t, env.expireOffer.Handle(t.Context(), expireCmd))

	final := env.getDelivery(t, deliveryID)
	assert.Equal(t, delivery.Assigned, final.Status())
	require.NotNil(t, final.Courier())
	assert.True(t, final.Courier().IsEqual(courierA))
}

func TestDispatchFlow_ConcurrentAcceptAndDecline_ExactlyOneWins(t *testing.T) {
	// Accept and decline race for the same offer; exactly one resolution
	// lands and the offer never changes afterwards.
	env := newDispatchEnv(t, time.Minute)
	env.addAvailableCourier(t, "Anna Petrova", "+79161234567")

	deliveryID := env.newDelivery(t)
	outstanding := env.outstandingOffer(t, deliveryID)

	acceptCmd, err := commands.NewAcceptOfferCommand(outstanding.ID())
	require.NoError(t, err)
	declineCmd, err := commands.NewDeclineOfferCommand(outstanding.ID())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		results <- env.acceptOffer.Handle(context.Background(), acceptCmd)
	}()
	go func() {
		defer wg.Done()
		results <- env.declineOffer.Handle(context.Background(), declineCmd)
	}()
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, errs.ErrInvalidState)
		}
	}
	assert.Equal(t, 1, winners)

	resolved := env.offersFor(t, deliveryID)[0]
	assert.NotEqual(t, offer.Offered, resolved.Status())
}

func TestDispatchFlow_CancelExpiresOutstandingOffer(t *testing.T) {
	// Cancelling a delivery resolves its outstanding offer and no further
	// offers are sent.
	env := newDispatchEnv(t, time.Minute)
	env.addAvailableCourier(t, "Anna Petrova", "+79161234567")
	env.addAvailableCourier(t, "Boris Ivanov", "+79167654321")

	deliveryID := env.newDelivery(t)
	outstanding := env.outstandingOffer(t, deliveryID)

	cancelCmd, err := commands.NewCancelDeliveryCommand(deliveryID)
	require.NoError(t, err)
	require.NoError(t, env.cancelDelivery.Handle(t.Context(), cancelCmd))

	final := env.getDelivery(t, deliveryID)
	assert.Equal(t, delivery.Cancelled, final.Status())

	offers := env.offersFor(t, deliveryID)
	require.Len(t, offers, 1)
	assert.Equal(t, offer.Expired, offers[0].Status())
	assert.True(t, offers[0].ID().IsEqual(outstanding.ID()))
}

func TestDispatchFlow_AcceptExpiresStaleSiblingOffer(t *testing.T) {
	// A stale second outstanding offer for the same delivery (left behind by
	// a crashed dispatch round) is forced to expired when another offer is
	// accepted, and the accepted offer cannot be accepted twice.
	env := newDispatchEnv(t, time.Minute)
	courierA := env.addAvailableCourier(t, "Anna Petrova", "+79161234567")

	deliveryID := env.newDelivery(t)
	outstanding := env.outstandingOffer(t, deliveryID)
	require.True(t, outstanding.CourierID().IsEqual(courierA))

	stale, err := offer.NewOffer(
		kernel.NewUUID(), deliveryID, kernel.NewUUID(), time.Now().UTC(), time.Minute)
	require.NoError(t, err)

	ctx := context.Background()
	uow := env.store.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.OfferRepository().Add(ctx, stale))
	require.NoError(t, uow.Commit(ctx))

	acceptCmd, err := commands.NewAcceptOfferCommand(outstanding.ID())
	require.NoError(t, err)
	require.NoError(t, env.acceptOffer.Handle(ctx, acceptCmd))

	statuses := make(map[string]offer.Status)
	for _, o := range env.offersFor(t, deliveryID) {
		statuses[o.ID().String()] = o.Status()
	}
	assert.Equal(t, offer.Accepted, statuses[outstanding.ID().String()])
	assert.Equal(t, offer.Expired, statuses[stale.ID().String()])

	final := env.getDelivery(t, deliveryID)
	assert.Equal(t, delivery.Assigned, final.Status())
	require.NotNil(t, final.Courier())
	assert.True(t, final.Courier().IsEqual(courierA))

	// A repeated accept of the already resolved offer is rejected and the
	// assignment stays put.
	err = env.acceptOffer.Handle(ctx, acceptCmd)
	require.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, delivery.Assigned, env.getDelivery(t, deliveryID).Status())
}
