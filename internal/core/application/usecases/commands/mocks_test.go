package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations shared by the handler tests in this package.

type MockCourierRepository struct {
	mock.Mock
}

func (m *MockCourierRepository) Add(ctx context.Context, courier *courier.Courier) error {
	args := m.Called(ctx, courier)
	return args.Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, courier *courier.Courier) error {
	args := m.Called(ctx, courier)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetAllAvailable(ctx context.Context) ([]*courier.Courier, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetAll(ctx context.Context) ([]*courier.Courier, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) Add(ctx context.Context, aggregate *delivery.Delivery) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Update(ctx context.Context, aggregate *delivery.Delivery) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) GetAllActive(ctx context.Context) ([]*delivery.Delivery, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*delivery.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) CountActiveByCourier(ctx context.Context, courierID kernel.UUID) (int, error) {
	args := m.Called(ctx, courierID)
	return args.Int(0), args.Error(1)
}

type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Add(ctx context.Context, aggregate *offer.Offer) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockOfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) GetAllForDelivery(
	ctx context.Context, deliveryID kernel.UUID,
) ([]*offer.Offer, error) {
	args := m.Called(ctx, deliveryID)
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

func (m *MockOfferRepository) UpdateStatusIf(
	ctx context.Context, id kernel.UUID, expected offer.Status, target offer.Status,
) error {
	args := m.Called(ctx, id, expected, target)
	return args.Error(0)
}

func (m *MockOfferRepository) GetAllExpiredOutstanding(
	ctx context.Context, now time.Time,
) ([]*offer.Offer, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*offer.Offer), args.Error(1)
}

// MockUoW implements every per-command unit of work interface, so each test
// wires up only the repositories its handler touches.
type MockUoW struct {
	mock.Mock
}

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) CourierRepository() ports.CourierRepository {
	args := m.Called()
	return args.Get(0).(ports.CourierRepository)
}

func (m *MockUoW) DeliveryRepository() ports.DeliveryRepository {
	args := m.Called()
	return args.Get(0).(ports.DeliveryRepository)
}

func (m *MockUoW) OfferRepository() ports.OfferRepository {
	args := m.Called()
	return args.Get(0).(ports.OfferRepository)
}

type MockCourierUoWFactory struct {
	mock.Mock
}

func (m *MockCourierUoWFactory) Create() commands.CourierUoW {
	args := m.Called()
	return args.Get(0).(commands.CourierUoW)
}

type MockDeliveryUoWFactory struct {
	mock.Mock
}

func (m *MockDeliveryUoWFactory) Create() commands.DeliveryUoW {
	args := m.Called()
	return args.Get(0).(commands.DeliveryUoW)
}

type MockOfferUoWFactory struct {
	mock.Mock
}

func (m *MockOfferUoWFactory) Create() commands.OfferUoW {
	args := m.Called()
	return args.Get(0).(commands.OfferUoW)
}

type MockUoWFactory struct {
	mock.Mock
}

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOfferScheduler struct {
	mock.Mock
}

func (m *MockOfferScheduler) Schedule(offerID kernel.UUID, expiresAt time.Time) {
	m.Called(offerID, expiresAt)
}

func (m *MockOfferScheduler) Cancel(offerID kernel.UUID) {
	m.Called(offerID)
}

type MockNotificationGateway struct {
	mock.Mock
}

func (m *MockNotificationGateway) Notify(
	ctx context.Context, recipientID kernel.UUID, notification ports.Notification,
) error {
	args := m.Called(ctx, recipientID, notification)
	return args.Error(0)
}

type MockNextCourierTrigger struct {
	mock.Mock
}

func (m *MockNextCourierTrigger) Handle(ctx context.Context, command commands.TryNextCourierCommand) error {
	args := m.Called(ctx, command)
	return args.Error(0)
}

// Test fixtures.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var fixtureTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixtureCourier(t *testing.T) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), "Anna Petrova", "+79161234567", fixtureTime)
	require.NoError(t, err)
	require.NoError(t, c.SetAvailable(true, fixtureTime))
	return c
}

func fixtureDelivery(t *testing.T) *delivery.Delivery {
	t.Helper()
	pickup, err := delivery.NewPlace("Store St 1", nil)
	require.NoError(t, err)
	dropoff, err := delivery.NewPlace("Home Ave 2", nil)
	require.NoError(t, err)

	d, err := delivery.NewDelivery(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		pickup, dropoff, fixtureTime)
	require.NoError(t, err)
	return d
}

func fixtureOffer(t *testing.T, deliveryID kernel.UUID, ttl time.Duration) *offer.Offer {
	t.Helper()
	o, err := offer.NewOffer(kernel.NewUUID(), deliveryID, kernel.NewUUID(), time.Now().UTC(), ttl)
	require.NoError(t, err)
	return o
}
