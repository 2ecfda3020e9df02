// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
// This package implements the repository pattern for the courier domain aggregate, handling
// the conversion between domain entities and database representations.
package courierrepo

import (
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
type CourierDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Phone       string    `gorm:"type:varchar(32);not null"`
	Active      bool      `gorm:"not null"`
	Available   bool      `gorm:"not null;index"`
	LocationLat *float64
	LocationLng *float64
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers" instead of "courier_dtos".
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(courier *courier.Courier) CourierDTO {
	var lat, lng *float64
	if location := courier.Location(); location != nil {
		latValue, lngValue := location.Lat(), location.Lng()
		lat, lng = &latValue, &lngValue
	}

	return CourierDTO{
		ID:          courier.ID().Bytes(),
		Name:        courier.Name(),
		Phone:       courier.Phone(),
		Active:      courier.IsActive(),
		Available:   courier.IsAvailable(),
		LocationLat: lat,
		LocationLng: lng,
		UpdatedAt:   courier.UpdatedAt(),
	}
}

// toDomain converts a database DTO to a courier domain aggregate.
// Reconstructs the complete aggregate using RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.LocationLat != nil && dto.LocationLng != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.LocationLat, *dto.LocationLng)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &point
	}

	return courier.RestoreCourier(
		id, dto.Name, dto.Phone, dto.Active, dto.Available, location, dto.UpdatedAt)
}
