package offerrepo

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOfferRepository implements OfferRepository using GORM.
type GormOfferRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOfferRepository creates a new GORM offer repository.
func NewGormOfferRepository(db *gorm.DB, tracker aggregateTracker) *GormOfferRepository {
	return &GormOfferRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new offer to the database.
func (r *GormOfferRepository) Add(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an offer by ID.
func (r *GormOfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OfferDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("offer", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllForDelivery retrieves every offer ever created for a delivery in creation order.
func (r *GormOfferRepository) GetAllForDelivery(
	ctx context.Context, deliveryID kernel.UUID,
) ([]*offer.Offer, error) {
	if err := deliveryID.Validate(); err != nil {
		return nil, err
	}

	var dtos []OfferDTO
	if err := r.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID.Bytes()).
		Order("created_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// UpdateStatusIf transitions the offer's status only if the stored status
// still equals expected.
//
// The conditional WHERE clause makes the write atomic: of several concurrent
// resolution attempts on the same offer, the database lets exactly one update
// a row, and every other caller sees zero rows affected and gets
// errs.ErrInvalidState.
func (r *GormOfferRepository) UpdateStatusIf(
	ctx context.Context, id kernel.UUID, expected offer.Status, target offer.Status,
) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if _, err := expected.Resolve(target); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Where("id = ? AND status = ?", id.Bytes(), int(expected)).
		Update("status", int(target))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewInvalidStateError("offer")
	}

	return nil
}

// GetAllExpiredOutstanding retrieves offers still marked offered whose
// deadline has passed. Fed to the expiry sweep job.
func (r *GormOfferRepository) GetAllExpiredOutstanding(
	ctx context.Context, now time.Time,
) ([]*offer.Offer, error) {
	var dtos []OfferDTO
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", int(offer.Offered), now).
		Order("expires_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []OfferDTO) ([]*offer.Offer, error) {
	offers := make([]*offer.Offer, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}

	return offers, nil
}
