package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateDeliveryStatusCommandHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := fixtureDelivery(t)
	require.NoError(t, aggregate.SendOffer(fixtureTime))
	require.NoError(t, aggregate.Assign(kernel.NewUUID(), fixtureTime))

	cmd, err := commands.NewUpdateDeliveryStatusCommand(aggregate.ID(), delivery.PickupConfirmed)
	require.NoError(t, err)

	mockDeliveries := new(MockDeliveryRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockDeliveryUoWFactory)
	mockNotifier := new(MockNotificationGateway)

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockUoW.On("DeliveryRepository").Return(mockDeliveries).Once()
	mockFactory.On("Create").Return(mockUoW).Once()

	mock.InOrder(
		mockDeliveries.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		mockDeliveries.On("Update", ctx, aggregate).Return(nil).Once(),
		mockUoW.On("Commit", ctx).Return(nil).Once(),
	)
	mockNotifier.On("Notify", ctx, aggregate.SellerID(),
		mock.MatchedBy(func(n ports.Notification) bool { return n.Kind == ports.EventDeliveryProgress })).
		Return(nil).Once()
	mockNotifier.On("Notify", ctx, aggregate.BuyerID(),
		mock.MatchedBy(func(n ports.Notification) bool { return n.Kind == ports.EventDeliveryProgress })).
		Return(nil).Once()

	handler := commands.NewUpdateDeliveryStatusCommandHandler(mockFactory, mockNotifier, testLogger())

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, delivery.PickupConfirmed, aggregate.Status())
	mockNotifier.AssertExpectations(t)
}

func TestUpdateDeliveryStatusCommandHandler_Handle_SkippedStep(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := fixtureDelivery(t)
	require.NoError(t, aggregate.SendOffer(fixtureTime))
	require.NoError(t, aggregate.Assign(kernel.NewUUID(), fixtureTime))

	// delivered straight from assigned skips pickup_confirmed and en_route
	cmd, err := commands.NewUpdateDeliveryStatusCommand(aggregate.ID(), delivery.Delivered)
	require.NoError(t, err)

	mockDeliveries := new(MockDeliveryRepository)
	mockUoW := new(MockUoW)
	mockFactory := new(MockDeliveryUoWFactory)
	mockNotifier := new(MockNotificationGateway)

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockUoW.On("DeliveryRepository").Return(mockDeliveries).Once()
	mockFactory.On("Create").Return(mockUoW).Once()
	mockDeliveries.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()

	handler := commands.NewUpdateDeliveryStatusCommandHandler(mockFactory, mockNotifier, testLogger())

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Equal(t, delivery.Assigned, aggregate.Status())
	mockDeliveries.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	mockNotifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}
