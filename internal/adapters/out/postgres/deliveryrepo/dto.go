// Package deliveryrepo provides data transfer objects and mapping functions for delivery persistence.
// This package implements the repository pattern for the delivery domain aggregate, handling
// the conversion between domain entities and database representations.
package deliveryrepo

import (
	"time"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DeliveryDTO represents the database structure for persisting delivery aggregates.
type DeliveryDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	SellerID  uuid.UUID  `gorm:"type:uuid;not null"`
	BuyerID   uuid.UUID  `gorm:"type:uuid;not null"`
	CourierID *uuid.UUID `gorm:"type:uuid;index"`
	Status    int        `gorm:"not null;index"`
	Pickup    PlaceDTO   `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff   PlaceDTO   `gorm:"embedded;embeddedPrefix:dropoff_"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
}

// TableName specifies the database table name for delivery entities.
// Overrides GORM's default naming convention to use "deliveries".
func (DeliveryDTO) TableName() string {
	return "deliveries"
}

// PlaceDTO represents an embedded pickup or dropoff place within the delivery table.
// Coordinates are optional; an address alone is a valid place.
type PlaceDTO struct {
	Address string `gorm:"type:varchar(512);not null"`
	Lat     *float64
	Lng     *float64
}

// fromDomain converts a delivery domain aggregate to its database representation.
func fromDomain(aggregate *delivery.Delivery) DeliveryDTO {
	var courierID *uuid.UUID
	if id := aggregate.Courier(); id != nil {
		raw := id.Bytes()
		courierID = &raw
	}

	return DeliveryDTO{
		ID:        aggregate.ID().Bytes(),
		OrderID:   aggregate.OrderID().Bytes(),
		SellerID:  aggregate.SellerID().Bytes(),
		BuyerID:   aggregate.BuyerID().Bytes(),
		CourierID: courierID,
		Status:    int(aggregate.Status()),
		Pickup:    placeFromDomain(aggregate.Pickup()),
		Dropoff:   placeFromDomain(aggregate.Dropoff()),
		CreatedAt: aggregate.CreatedAt(),
		UpdatedAt: aggregate.UpdatedAt(),
	}
}

func placeFromDomain(place delivery.Place) PlaceDTO {
	var lat, lng *float64
	if point := place.Point(); point != nil {
		latValue, lngValue := point.Lat(), point.Lng()
		lat, lng = &latValue, &lngValue
	}

	return PlaceDTO{
		Address: place.Address(),
		Lat:     lat,
		Lng:     lng,
	}
}

// toDomain converts a database DTO to a delivery domain aggregate.
// Reconstructs the complete aggregate using RestoreDelivery.
func toDomain(dto DeliveryDTO) (*delivery.Delivery, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	if err != nil {
		return nil, err
	}
	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		restored, idErr := kernel.UUIDFromBytes(dto.CourierID[:])
		if idErr != nil {
			return nil, idErr
		}
		courierID = &restored
	}

	pickup, err := placeToDomain(dto.Pickup)
	if err != nil {
		return nil, err
	}
	dropoff, err := placeToDomain(dto.Dropoff)
	if err != nil {
		return nil, err
	}

	return delivery.RestoreDelivery(
		id, orderID, sellerID, buyerID, courierID,
		delivery.Status(dto.Status), pickup, dropoff,
		dto.CreatedAt, dto.UpdatedAt)
}

func placeToDomain(dto PlaceDTO) (delivery.Place, error) {
	var point *kernel.GeoPoint
	if dto.Lat != nil && dto.Lng != nil {
		restored, err := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if err != nil {
			return delivery.Place{}, err
		}
		point = &restored
	}

	return delivery.NewPlace(dto.Address, point)
}
