package cmd

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"dispatch/internal/adapters/out/notifier"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/scheduler"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters, handlers and background machinery together.
// The offer scheduler and the dispatch chain handler are shared singletons;
// everything else is constructed per request.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger
	strategy   services.SelectionStrategy
	notifier   ports.NotificationGateway
	scheduler  *scheduler.TimerScheduler
	offerTTL   time.Duration
	dispatch   *commands.TryNextCourierCommandHandler
}

// NewCompositionRoot builds the object graph from the loaded configuration.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	strategy, err := services.StrategyFromName(config.SelectionStrategy)
	if err != nil {
		return nil, err
	}

	root := &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		strategy:   strategy,
		offerTTL:   parseOfferTTL(config.OfferTTLSeconds),
	}

	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		root.notifier = notifier.NewRedisNotificationGateway(client)
	} else {
		root.notifier = notifier.NewLogNotificationGateway(logger)
	}

	// The scheduler fires into the expiry flow, which in turn needs the
	// scheduler to cancel sibling timers. The closure breaks the cycle.
	root.scheduler = scheduler.NewTimerScheduler(root.expireOffer, logger)

	root.dispatch = commands.NewTryNextCourierCommandHandler(
		root.newUoWFactory(), strategy, root.scheduler, root.notifier, root.offerTTL, logger)

	return root, nil
}

// Scheduler returns the offer timer scheduler for shutdown handling.
func (c *CompositionRoot) Scheduler() *scheduler.TimerScheduler {
	return c.scheduler
}

// expireOffer routes a fired offer timer through the expiry flow.
func (c *CompositionRoot) expireOffer(offerID kernel.UUID) {
	ctx := context.Background()

	cmd, err := commands.NewExpireOfferCommand(offerID)
	if err != nil {
		c.logger.ErrorContext(ctx, "Invalid expiry trigger", "offer_id", offerID, "error", err)
		return
	}

	handler := c.CreateExpireOfferCommandHandler()
	if err = handler.Handle(ctx, cmd); err != nil {
		c.logger.ErrorContext(ctx, "Offer expiry failed", "offer_id", offerID, "error", err)
	}
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	return commands.NewCreateCourierCommandHandler(c.newCourierUoWFactory())
}

func (c *CompositionRoot) CreateSetCourierAvailabilityCommandHandler() commands.SetCourierAvailabilityCommandHandler {
	return commands.NewSetCourierAvailabilityCommandHandler(c.newCourierUoWFactory())
}

func (c *CompositionRoot) CreateReportCourierLocationCommandHandler() commands.ReportCourierLocationCommandHandler {
	return commands.NewReportCourierLocationCommandHandler(c.newCourierUoWFactory())
}

func (c *CompositionRoot) CreateCreateDeliveryCommandHandler() commands.CreateDeliveryCommandHandler {
	return commands.NewCreateDeliveryCommandHandler(c.newDeliveryUoWFactory(), c.dispatch)
}

func (c *CompositionRoot) CreateTryNextCourierCommandHandler() *commands.TryNextCourierCommandHandler {
	return c.dispatch
}

func (c *CompositionRoot) CreateAcceptOfferCommandHandler() commands.AcceptOfferCommandHandler {
	return commands.NewAcceptOfferCommandHandler(
		c.newOfferUoWFactory(), c.scheduler, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateDeclineOfferCommandHandler() commands.DeclineOfferCommandHandler {
	return commands.NewDeclineOfferCommandHandler(
		c.newOfferUoWFactory(), c.scheduler, c.dispatch, c.logger)
}

func (c *CompositionRoot) CreateExpireOfferCommandHandler() commands.ExpireOfferCommandHandler {
	return commands.NewExpireOfferCommandHandler(
		c.newOfferUoWFactory(), c.scheduler, c.dispatch, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateUpdateDeliveryStatusCommandHandler() commands.UpdateDeliveryStatusCommandHandler {
	return commands.NewUpdateDeliveryStatusCommandHandler(
		c.newDeliveryUoWFactory(), c.notifier, c.logger)
}

func (c *CompositionRoot) CreateCancelDeliveryCommandHandler() commands.CancelDeliveryCommandHandler {
	return commands.NewCancelDeliveryCommandHandler(
		c.newOfferUoWFactory(), c.scheduler, c.notifier, c.logger)
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetActiveDeliveriesQueryHandler() queries.GetActiveDeliveriesQueryHandler {
	return queries.NewGetActiveDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCourierStatsQueryHandler() queries.GetCourierStatsQueryHandler {
	return queries.NewGetCourierStatsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.newOfferUoWFactory(), c.CreateExpireOfferCommandHandler(), c.logger)
}

func (c *CompositionRoot) newCourierUoWFactory() commands.CourierUoWFactory {
	return FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) newDeliveryUoWFactory() commands.DeliveryUoWFactory {
	return FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) newOfferUoWFactory() commands.OfferUoWFactory {
	return FuncOfferUoWFactory(func() commands.OfferUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) newUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func parseOfferTTL(raw string) time.Duration {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return commands.DefaultOfferTTL
	}
	return time.Duration(seconds) * time.Second
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncDeliveryUoWFactory func() commands.DeliveryUoW

func (f FuncDeliveryUoWFactory) Create() commands.DeliveryUoW {
	return f()
}

type FuncOfferUoWFactory func() commands.OfferUoW

func (f FuncOfferUoWFactory) Create() commands.OfferUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
