package offer

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for offer operations.
var (
	// ErrOfferIsNotConstructed is returned when using an improperly initialized Offer.
	ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer constructor")
	// ErrTTLIsRequired is returned when attempting to create an offer with a non-positive TTL.
	ErrTTLIsRequired = errs.NewValueIsRequiredError("ttl")
	// ErrOfferHasExpired is returned when accepting an offer whose expiry timestamp has passed.
	ErrOfferHasExpired = errs.NewInvalidStateError("offer has expired")
)

// Offer represents a time-boxed proposal of a delivery to a specific courier.
//
// An offer is created each time the assignment engine selects a candidate, and
// resolves to exactly one of three terminal outcomes: accepted, declined, or
// expired. The domain methods validate transitions optimistically; the store's
// status-guarded conditional update is what makes concurrent resolution
// attempts single-writer-wins.
//
// Business rules:
//   - At most one offer per delivery is outstanding at any instant
//   - A courier never holds two simultaneous outstanding offers for the same delivery
//   - Accepting past the expiry timestamp is rejected even before the store is consulted
//   - Superseded offers become expired as a side effect of a sibling's acceptance
type Offer struct {
	// id uniquely identifies the offer
	id kernel.UUID
	// deliveryID references the delivery being proposed
	deliveryID kernel.UUID
	// courierID references the courier the proposal targets
	courierID kernel.UUID
	// status is the current state in the offer lifecycle
	status Status
	// expiresAt is the absolute timestamp after which the offer auto-expires
	expiresAt time.Time
	// createdAt is when the offer was created
	createdAt time.Time
	// guard ensures the offer was properly constructed
	guard guard.ConstructorGuard
}

// NewOffer creates a new outstanding Offer for the given delivery and courier.
//
// Parameters:
//   - id: Unique identifier for the offer
//   - deliveryID: The delivery being proposed
//   - courierID: The courier the proposal targets
//   - now: Creation timestamp
//   - ttl: Time-to-live; the offer auto-expires at now+ttl (must be positive)
//
// Returns:
//   - *Offer: The created offer in Offered status
//   - error: Validation error if any parameter is invalid
func NewOffer(
	id kernel.UUID,
	deliveryID kernel.UUID,
	courierID kernel.UUID,
	now time.Time,
	ttl time.Duration,
) (*Offer, error) {
	if ttl <= 0 {
		return nil, ErrTTLIsRequired
	}

	offer := &Offer{
		status:    Offered,
		expiresAt: now.Add(ttl),
		createdAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		offer.setID(id),
		offer.setDeliveryID(deliveryID),
		offer.setCourierID(courierID),
	); err != nil {
		return nil, err
	}

	return offer, nil
}

// RestoreOffer reconstructs an Offer aggregate from persistent storage.
func RestoreOffer(
	id kernel.UUID,
	deliveryID kernel.UUID,
	courierID kernel.UUID,
	status Status,
	expiresAt time.Time,
	createdAt time.Time,
) (*Offer, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	offer := &Offer{
		status:    status,
		expiresAt: expiresAt,
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		offer.setID(id),
		offer.setDeliveryID(deliveryID),
		offer.setCourierID(courierID),
	); err != nil {
		return nil, err
	}

	return offer, nil
}

// Validate ensures the Offer instance was properly constructed through a constructor.
func (o *Offer) Validate() error {
	if o == nil {
		return ErrOfferIsNotConstructed
	}
	return o.guard.Validate(ErrOfferIsNotConstructed)
}

// IsEqual compares two offers by their unique identifiers.
func (o *Offer) IsEqual(other *Offer) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the offer's unique identifier.
func (o *Offer) ID() kernel.UUID {
	return o.id
}

// DeliveryID returns the delivery being proposed.
func (o *Offer) DeliveryID() kernel.UUID {
	return o.deliveryID
}

// CourierID returns the courier the proposal targets.
func (o *Offer) CourierID() kernel.UUID {
	return o.courierID
}

// Status returns the current status of the offer.
func (o *Offer) Status() Status {
	return o.status
}

// ExpiresAt returns the absolute expiry timestamp.
func (o *Offer) ExpiresAt() time.Time {
	return o.expiresAt
}

// CreatedAt returns the creation timestamp.
func (o *Offer) CreatedAt() time.Time {
	return o.createdAt
}

// IsOutstanding reports whether the offer is still waiting for a resolution.
func (o *Offer) IsOutstanding() bool {
	return o.status == Offered
}

// IsExpiredAt reports whether the offer's expiry timestamp has passed.
func (o *Offer) IsExpiredAt(now time.Time) bool {
	return now.After(o.expiresAt)
}

// Accept resolves the offer to Accepted.
// Rejected if the offer is not outstanding or its expiry timestamp has passed.
// This check is advisory: the store's conditional update decides races.
func (o *Offer) Accept(now time.Time) error {
	if o.IsExpiredAt(now) {
		return ErrOfferHasExpired
	}

	newStatus, err := o.status.Resolve(Accepted)
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Decline resolves the offer to Declined.
// Rejected if the offer is not outstanding.
func (o *Offer) Decline() error {
	newStatus, err := o.status.Resolve(Declined)
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Expire resolves the offer to Expired, either because its TTL ran out or
// because a sibling offer for the same delivery was accepted.
// Rejected if the offer is not outstanding.
func (o *Offer) Expire() error {
	newStatus, err := o.status.Resolve(Expired)
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// setID validates and sets the offer's unique identifier.
// This is a private method used only during construction.
func (o *Offer) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setDeliveryID validates and sets the delivery reference.
// This is a private method used only during construction.
func (o *Offer) setDeliveryID(deliveryID kernel.UUID) error {
	if err := deliveryID.Validate(); err != nil {
		return fmt.Errorf("deliveryID: %w", err)
	}
	o.deliveryID = deliveryID
	return nil
}

// setCourierID validates and sets the courier reference.
// This is a private method used only during construction.
func (o *Offer) setCourierID(courierID kernel.UUID) error {
	if err := courierID.Validate(); err != nil {
		return fmt.Errorf("courierID: %w", err)
	}
	o.courierID = courierID
	return nil
}
