package commands_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelDeliveryCommandHandler_Handle_ExpiresOutstandingOffer(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := fixtureDelivery(t)
	require.NoError(t, aggregate.SendOffer(fixtureTime))
	outstanding := fixtureOffer(t, aggregate.ID(), time.Hour)

	cmd, err := commands.NewCancelDeliveryCommand(aggregate.ID())
	require.NoError(t, err)

	mockDeliveries := new(MockDeliveryRepository)
	mockOffers := new(MockOfferRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockOfferUoWFactory)
	mockScheduler := new(MockOfferScheduler)
	mockNotifier := new(MockNotificationGateway)

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockUoW.On("DeliveryRepository").Return(mockDeliveries)
	mockUoW.On("OfferRepository").Return(mockOffers)
	mockFactory.On("Create").Return(mockUoW).Once()

	mock.InOrder(
		mockDeliveries.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		mockDeliveries.On("Update", ctx, aggregate).Return(nil).Once(),
		mockOffers.On("GetAllForDelivery", ctx, aggregate.ID()).
			Return([]*offer.Offer{outstanding}, nil).Once(),
		mockOffers.On("UpdateStatusIf", ctx, outstanding.ID(), offer.Offered, offer.Expired).
			Return(nil).Once(),
		mockUoW.On("Commit", ctx).Return(nil).Once(),
	)
	mockScheduler.On("Cancel", outstanding.ID()).Once()
	mockNotifier.On("Notify", ctx, aggregate.SellerID(),
		mock.MatchedBy(func(n ports.Notification) bool { return n.Kind == ports.EventDeliveryCancelled })).
		Return(nil).Once()
	mockNotifier.On("Notify", ctx, aggregate.BuyerID(),
		mock.MatchedBy(func(n ports.Notification) bool { return n.Kind == ports.EventDeliveryCancelled })).
		Return(nil).Once()

	handler := commands.NewCancelDeliveryCommandHandler(mockFactory, mockScheduler, mockNotifier, testLogger())

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, delivery.Cancelled, aggregate.Status())
	mockScheduler.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestCancelDeliveryCommandHandler_Handle_TerminalDelivery(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := fixtureDelivery(t)
	require.NoError(t, aggregate.Cancel(fixtureTime))

	cmd, err := commands.NewCancelDeliveryCommand(aggregate.ID())
	require.NoError(t, err)

	mockDeliveries := new(MockDeliveryRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockOfferUoWFactory)

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockUoW.On("DeliveryRepository").Return(mockDeliveries)
	mockUoW.On("OfferRepository").Return(new(MockOfferRepository))
	mockFactory.On("Create").Return(mockUoW).Once()
	mockDeliveries.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()

	handler := commands.NewCancelDeliveryCommandHandler(
		mockFactory, new(MockOfferScheduler), new(MockNotificationGateway), testLogger())

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	mockDeliveries.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit", ctx)
}
