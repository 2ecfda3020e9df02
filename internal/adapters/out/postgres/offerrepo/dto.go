// Package offerrepo provides data transfer objects and mapping functions for offer persistence.
// Offers are append-mostly: rows are inserted when the dispatch flow sends an
// offer and afterwards only their status column changes, through a conditional
// update that implements the engine's resolution race.
package offerrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"

	"github.com/google/uuid"
)

// OfferDTO represents the database structure for persisting offer records.
type OfferDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeliveryID uuid.UUID `gorm:"type:uuid;not null;index"`
	CourierID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     int       `gorm:"not null;index"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
}

// TableName specifies the database table name for offer entities.
// Overrides GORM's default naming convention to use "offers".
func (OfferDTO) TableName() string {
	return "offers"
}

// fromDomain converts an offer domain aggregate to its database representation.
func fromDomain(aggregate *offer.Offer) OfferDTO {
	return OfferDTO{
		ID:         aggregate.ID().Bytes(),
		DeliveryID: aggregate.DeliveryID().Bytes(),
		CourierID:  aggregate.CourierID().Bytes(),
		Status:     int(aggregate.Status()),
		ExpiresAt:  aggregate.ExpiresAt(),
		CreatedAt:  aggregate.CreatedAt(),
	}
}

// toDomain converts a database DTO to an offer domain aggregate.
// Reconstructs the complete aggregate using RestoreOffer.
func toDomain(dto OfferDTO) (*offer.Offer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	deliveryID, err := kernel.UUIDFromBytes(dto.DeliveryID[:])
	if err != nil {
		return nil, err
	}
	courierID, err := kernel.UUIDFromBytes(dto.CourierID[:])
	if err != nil {
		return nil, err
	}

	return offer.RestoreOffer(
		id, deliveryID, courierID, offer.Status(dto.Status), dto.ExpiresAt, dto.CreatedAt)
}
