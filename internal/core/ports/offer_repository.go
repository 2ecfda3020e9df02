package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
)

// OfferRepository defines the persistence contract for offer records.
//
// Offers are the unit of contention in the dispatch flow: accept, decline and
// expiry may race on the same offer, so the repository exposes a conditional
// update instead of a plain one for status changes.
type OfferRepository interface {
	// Add persists a new offer record to storage.
	Add(ctx context.Context, aggregate *offer.Offer) error

	// Get retrieves an offer by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error)

	// GetAllForDelivery retrieves every offer ever created for a delivery,
	// in creation order. The dispatch flow derives the already-offered
	// courier set from this history.
	GetAllForDelivery(ctx context.Context, deliveryID kernel.UUID) ([]*offer.Offer, error)

	// UpdateStatusIf transitions the offer's status from expected to target
	// only if the stored status still equals expected. When the stored status
	// differs, no write happens and errs.ErrInvalidState is returned: the
	// caller lost the resolution race. At most one of several concurrent
	// callers succeeds.
	UpdateStatusIf(ctx context.Context, id kernel.UUID, expected offer.Status, target offer.Status) error

	// GetAllExpiredOutstanding retrieves offers still in the offered status
	// whose deadline has passed at the given instant. Used by the expiry
	// sweep job as a backstop for lost timers.
	GetAllExpiredOutstanding(ctx context.Context, now time.Time) ([]*offer.Offer, error)
}
