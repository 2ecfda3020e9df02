package delivery_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlace(t *testing.T, address string) delivery.Place {
	t.Helper()
	place, err := delivery.NewPlace(address, nil)
	require.NoError(t, err)
	return place
}

func newTestDelivery(t *testing.T, now time.Time) *delivery.Delivery {
	t.Helper()
	d, err := delivery.NewDelivery(
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		testPlace(t, "Store St 1"),
		testPlace(t, "Home Ave 2"),
		now,
	)
	require.NoError(t, err)
	return d
}

func TestNewPlace(t *testing.T) {
	t.Run("address_only", func(t *testing.T) {
		place, err := delivery.NewPlace("Store St 1", nil)

		require.NoError(t, err)
		require.NoError(t, place.Validate())
		assert.Equal(t, "Store St 1", place.Address())
		assert.Nil(t, place.Point())
	})

	t.Run("with_coordinates", func(t *testing.T) {
		point, err := kernel.NewGeoPoint(55.7558, 37.6173)
		require.NoError(t, err)

		place, err := delivery.NewPlace("Store St 1", &point)

		require.NoError(t, err)
		require.NotNil(t, place.Point())
		assert.True(t, place.Point().IsEqual(point))
	})

	t.Run("empty_address_is_rejected", func(t *testing.T) {
		_, err := delivery.NewPlace("", nil)
		require.Error(t, err)
		assert.Equal(t, delivery.ErrAddressIsRequired, err)
	})

	t.Run("zero_value_point_is_rejected", func(t *testing.T) {
		var zero kernel.GeoPoint
		_, err := delivery.NewPlace("Store St 1", &zero)
		require.Error(t, err)
	})

	t.Run("zero_value_place_fails_validation", func(t *testing.T) {
		var place delivery.Place
		require.Error(t, place.Validate())
	})
}

func TestNewDelivery(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("valid_delivery", func(t *testing.T) {
		d := newTestDelivery(t, now)

		require.NoError(t, d.Validate())
		assert.Equal(t, delivery.Pending, d.Status())
		assert.Nil(t, d.Courier())
		assert.Equal(t, now, d.CreatedAt())
		assert.Equal(t, now, d.UpdatedAt())
		assert.Equal(t, "Store St 1", d.Pickup().Address())
		assert.Equal(t, "Home Ave 2", d.Dropoff().Address())
	})

	t.Run("missing_identifiers_are_rejected", func(t *testing.T) {
		_, err := delivery.NewDelivery(
			kernel.UUID{},
			kernel.NewUUID(),
			kernel.NewUUID(),
			kernel.NewUUID(),
			testPlace(t, "Store St 1"),
			testPlace(t, "Home Ave 2"),
			now,
		)
		require.Error(t, err)
	})

	t.Run("unconstructed_place_is_rejected", func(t *testing.T) {
		var zero delivery.Place
		_, err := delivery.NewDelivery(
			kernel.NewUUID(),
			kernel.NewUUID(),
			kernel.NewUUID(),
			kernel.NewUUID(),
			zero,
			testPlace(t, "Home Ave 2"),
			now,
		)
		require.Error(t, err)
	})
}

func TestDelivery_Lifecycle(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	later := created.Add(time.Minute)

	t.Run("full_happy_path", func(t *testing.T) {
		d := newTestDelivery(t, created)
		courierID := kernel.NewUUID()

		require.NoError(t, d.SendOffer(later))
		assert.Equal(t, delivery.OfferSent, d.Status())

		// Retry after a decline keeps the status on offer_sent.
		require.NoError(t, d.SendOffer(later))
		assert.Equal(t, delivery.OfferSent, d.Status())

		require.NoError(t, d.Assign(courierID, later))
		assert.Equal(t, delivery.Assigned, d.Status())
		require.NotNil(t, d.Courier())
		assert.True(t, d.Courier().IsEqual(courierID))

		require.NoError(t, d.Progress(delivery.PickupConfirmed, later))
		require.NoError(t, d.Progress(delivery.EnRoute, later))
		require.NoError(t, d.Progress(delivery.Delivered, later))
		assert.Equal(t, delivery.Delivered, d.Status())
		assert.Equal(t, later, d.UpdatedAt())
	})

	t.Run("assign_requires_outstanding_offer", func(t *testing.T) {
		d := newTestDelivery(t, created)

		err := d.Assign(kernel.NewUUID(), later)

		require.Error(t, err)
		assert.Nil(t, d.Courier())
		assert.Equal(t, delivery.Pending, d.Status())
	})

	t.Run("exhaustion_and_retry", func(t *testing.T) {
		d := newTestDelivery(t, created)

		require.NoError(t, d.SendOffer(later))
		require.NoError(t, d.MarkNoCourier(later))
		assert.Equal(t, delivery.NoCourier, d.Status())

		// A fresh dispatch attempt may retry from no_courier.
		require.NoError(t, d.SendOffer(later))
		assert.Equal(t, delivery.OfferSent, d.Status())
	})

	t.Run("cancellation", func(t *testing.T) {
		d := newTestDelivery(t, created)
		require.NoError(t, d.Cancel(later))
		assert.Equal(t, delivery.Cancelled, d.Status())

		require.Error(t, d.SendOffer(later))
		require.Error(t, d.Cancel(later))
	})
}

func TestRestoreDelivery(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	t.Run("restores_assigned_delivery", func(t *testing.T) {
		id := kernel.NewUUID()
		courierID := kernel.NewUUID()

		d, err := delivery.RestoreDelivery(
			id,
			kernel.NewUUID(),
			kernel.NewUUID(),
			kernel.NewUUID(),
			&courierID,
			delivery.Assigned,
			testPlace(t, "Store St 1"),
			testPlace(t, "Home Ave 2"),
			created,
			updated,
		)

		require.NoError(t, err)
		require.NoError(t, d.Validate())
		assert.Equal(t, delivery.Assigned, d.Status())
		require.NotNil(t, d.Courier())
		assert.True(t, d.Courier().IsEqual(courierID))
		assert.Equal(t, created, d.CreatedAt())
		assert.Equal(t, updated, d.UpdatedAt())
	})

	t.Run("rejects_invalid_status", func(t *testing.T) {
		_, err := delivery.RestoreDelivery(
			kernel.NewUUID(),
			kernel.NewUUID(),
			kernel.NewUUID(),
			kernel.NewUUID(),
			nil,
			delivery.Unknown,
			testPlace(t, "Store St 1"),
			testPlace(t, "Home Ave 2"),
			created,
			updated,
		)
		require.Error(t, err)
	})
}

func TestDelivery_Validate(t *testing.T) {
	var d delivery.Delivery
	require.Error(t, d.Validate())

	var nilDelivery *delivery.Delivery
	require.Error(t, nilDelivery.Validate())
}
