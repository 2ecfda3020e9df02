package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExpireOfferCommandHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := fixtureDelivery(t)
	outstanding := fixtureOffer(t, aggregate.ID(), time.Minute)

	cmd, err := commands.NewExpireOfferCommand(outstanding.ID())
	require.NoError(t, err)

	mockOffers := new(MockOfferRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockOfferUoWFactory)
	mockScheduler := new(MockOfferScheduler)
	mockNotifier := new(MockNotificationGateway)
	mockDispatch := new(MockNextCourierTrigger)

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockUoW.On("OfferRepository").Return(mockOffers)
	mockFactory.On("Create").Return(mockUoW).Once()

	mock.InOrder(
		mockOffers.On("Get", ctx, outstanding.ID()).Return(outstanding, nil).Once(),
		mockOffers.On("UpdateStatusIf", ctx, outstanding.ID(), offer.Offered, offer.Expired).
			Return(nil).Once(),
		mockUoW.On("Commit", ctx).Return(nil).Once(),
	)
	mockScheduler.On("Cancel", outstanding.ID()).Once()
	mockNotifier.On("Notify", ctx, outstanding.CourierID(),
		mock.MatchedBy(func(n ports.Notification) bool { return n.Kind == ports.EventOfferExpired })).
		Return(nil).Once()
	mockDispatch.On("Handle", ctx,
		mock.MatchedBy(func(c commands.TryNextCourierCommand) bool {
			return c.DeliveryID().IsEqual(aggregate.ID())
		})).Return(nil).Once()

	handler := commands.NewExpireOfferCommandHandler(
		mockFactory, mockScheduler, mockDispatch, mockNotifier, testLogger())

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	mockDispatch.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestExpireOfferCommandHandler_Handle_AlreadyResolved(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := fixtureDelivery(t)
	resolved := fixtureOffer(t, aggregate.ID(), time.Hour)
	require.NoError(t, resolved.Decline())

	cmd, err := commands.NewExpireOfferCommand(resolved.ID())
	require.NoError(t, err)

	mockOffers := new(MockOfferRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockOfferUoWFactory)
	mockDispatch := new(MockNextCourierTrigger)

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockUoW.On("OfferRepository").Return(mockOffers)
	mockFactory.On("Create").Return(mockUoW).Once()
	mockOffers.On("Get", ctx, resolved.ID()).Return(resolved, nil).Once()

	handler := commands.NewExpireOfferCommandHandler(
		mockFactory, new(MockOfferScheduler), mockDispatch,
		new(MockNotificationGateway), testLogger())

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	mockOffers.AssertNotCalled(t, "UpdateStatusIf",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockDispatch.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestExpireOfferCommandHandler_Handle_LosesResolutionRace(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := fixtureDelivery(t)
	outstanding := fixtureOffer(t, aggregate.ID(), time.Minute)

	cmd, err := commands.NewExpireOfferCommand(outstanding.ID())
	require.NoError(t, err)

	mockOffers := new(MockOfferRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockOfferUoWFactory)
	mockDispatch := new(MockNextCourierTrigger)

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockUoW.On("OfferRepository").Return(mockOffers)
	mockFactory.On("Create").Return(mockUoW).Once()

	mockOffers.On("Get", ctx, outstanding.ID()).Return(outstanding, nil).Once()
	mockOffers.On("UpdateStatusIf", ctx, outstanding.ID(), offer.Offered, offer.Expired).
		Return(errs.NewInvalidStateError("offer")).Once()

	handler := commands.NewExpireOfferCommandHandler(
		mockFactory, new(MockOfferScheduler), mockDispatch,
		new(MockNotificationGateway), testLogger())

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert: losing the race is success, the winner advanced the delivery.
	require.NoError(t, err)
	mockDispatch.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit", ctx)
}
