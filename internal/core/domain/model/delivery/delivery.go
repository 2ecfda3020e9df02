package delivery

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

// ErrDeliveryIsNotConstructed is returned when a Delivery instance was not created
// through the NewDelivery or RestoreDelivery constructors.
var ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery constructor")

// Delivery represents one transport task linking a pickup and a dropoff,
// tied to one marketplace order. It is the aggregate root that the assignment
// engine drives through the dispatch state machine.
//
// Delivery follows these invariants:
//   - Must have valid identifiers for itself, its order, seller, and buyer
//   - Must have constructed pickup and dropoff places
//   - Status transitions follow the rules defined on Status
//   - A courier reference is present exactly when the status implies one
//   - Can only be created through NewDelivery or RestoreDelivery
type Delivery struct {
	// id is the unique identifier of the delivery
	id kernel.UUID
	// orderID references the originating marketplace order
	orderID kernel.UUID
	// sellerID references the seller whose order is being delivered
	sellerID kernel.UUID
	// buyerID references the buyer receiving the delivery
	buyerID kernel.UUID
	// courierID is the assigned courier (nil until an offer is accepted)
	courierID *kernel.UUID
	// status is the current state in the dispatch lifecycle
	status Status
	// pickup is where the courier collects the goods
	pickup Place
	// dropoff is where the courier hands the goods over
	dropoff Place
	// createdAt is when the delivery was created
	createdAt time.Time
	// updatedAt is refreshed on every mutation
	updatedAt time.Time
	// guard ensures the delivery was properly constructed
	guard guard.ConstructorGuard
}

// NewDelivery creates a new Delivery in Pending status.
// This is the only way to create a fresh Delivery; all identifiers and both
// places are validated before construction.
//
// Parameters:
//   - id: Unique identifier for the delivery
//   - orderID: Originating order reference
//   - sellerID: Seller reference
//   - buyerID: Buyer reference
//   - pickup: Pickup place (address required, coordinates optional)
//   - dropoff: Dropoff place
//   - now: Creation timestamp
//
// Returns:
//   - *Delivery: The created delivery if all validations pass
//   - error: Validation error if any parameter is invalid
func NewDelivery(
	id kernel.UUID,
	orderID kernel.UUID,
	sellerID kernel.UUID,
	buyerID kernel.UUID,
	pickup Place,
	dropoff Place,
	now time.Time,
) (*Delivery, error) {
	delivery := &Delivery{
		status:    Pending,
		createdAt: now,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		delivery.setID(id),
		delivery.setOrderID(orderID),
		delivery.setSellerID(sellerID),
		delivery.setBuyerID(buyerID),
		delivery.setPickup(pickup),
		delivery.setDropoff(dropoff),
	); err != nil {
		return nil, err
	}

	return delivery, nil
}

// RestoreDelivery reconstructs a Delivery aggregate from persistent storage,
// including its status, courier assignment, and timestamps.
func RestoreDelivery(
	id kernel.UUID,
	orderID kernel.UUID,
	sellerID kernel.UUID,
	buyerID kernel.UUID,
	courierID *kernel.UUID,
	status Status,
	pickup Place,
	dropoff Place,
	createdAt time.Time,
	updatedAt time.Time,
) (*Delivery, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	delivery := &Delivery{
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		delivery.setID(id),
		delivery.setOrderID(orderID),
		delivery.setSellerID(sellerID),
		delivery.setBuyerID(buyerID),
		delivery.setPickup(pickup),
		delivery.setDropoff(dropoff),
		delivery.setCourierID(courierID),
	); err != nil {
		return nil, err
	}

	return delivery, nil
}

// Validate ensures the Delivery instance was properly constructed through a constructor.
func (d *Delivery) Validate() error {
	if d == nil {
		return ErrDeliveryIsNotConstructed
	}
	return d.guard.Validate(ErrDeliveryIsNotConstructed)
}

// IsEqual compares two deliveries by their unique identifiers.
func (d *Delivery) IsEqual(other *Delivery) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the delivery's unique identifier.
func (d *Delivery) ID() kernel.UUID {
	return d.id
}

// OrderID returns the originating order reference.
func (d *Delivery) OrderID() kernel.UUID {
	return d.orderID
}

// SellerID returns the seller reference.
func (d *Delivery) SellerID() kernel.UUID {
	return d.sellerID
}

// BuyerID returns the buyer reference.
func (d *Delivery) BuyerID() kernel.UUID {
	return d.buyerID
}

// Courier returns the assigned courier's ID, or nil if unassigned.
func (d *Delivery) Courier() *kernel.UUID {
	return d.courierID
}

// Status returns the current status of the delivery.
func (d *Delivery) Status() Status {
	return d.status
}

// Pickup returns the pickup place.
func (d *Delivery) Pickup() Place {
	return d.pickup
}

// Dropoff returns the dropoff place.
func (d *Delivery) Dropoff() Place {
	return d.dropoff
}

// CreatedAt returns the creation timestamp.
func (d *Delivery) CreatedAt() time.Time {
	return d.createdAt
}

// UpdatedAt returns the timestamp of the last mutation.
func (d *Delivery) UpdatedAt() time.Time {
	return d.updatedAt
}

// SendOffer marks that an offer for this delivery has gone out to a courier.
// Permitted from Pending, OfferSent (retry), and NoCourier (fresh attempt).
func (d *Delivery) SendOffer(now time.Time) error {
	newStatus, err := d.status.SendOffer()
	if err != nil {
		return err
	}

	d.status = newStatus
	d.updatedAt = now
	return nil
}

// Assign assigns the delivery to the courier who accepted the offer and
// moves the status to Assigned. Permitted only from OfferSent.
func (d *Delivery) Assign(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}

	newStatus, err := d.status.Assign()
	if err != nil {
		return err
	}

	d.status = newStatus
	d.courierID = &courierID
	d.updatedAt = now
	return nil
}

// MarkNoCourier records that the candidate pool was exhausted without an accept.
// The delivery can be re-dispatched later with a fresh dispatch attempt.
func (d *Delivery) MarkNoCourier(now time.Time) error {
	newStatus, err := d.status.MarkNoCourier()
	if err != nil {
		return err
	}

	d.status = newStatus
	d.updatedAt = now
	return nil
}

// Cancel cancels the delivery externally.
// Permitted from Pending, OfferSent, NoCourier, and Assigned.
func (d *Delivery) Cancel(now time.Time) error {
	newStatus, err := d.status.Cancel()
	if err != nil {
		return err
	}

	d.status = newStatus
	d.updatedAt = now
	return nil
}

// Progress advances the courier-driven leg of the lifecycle
// (Assigned -> PickupConfirmed -> EnRoute -> Delivered).
func (d *Delivery) Progress(target Status, now time.Time) error {
	newStatus, err := d.status.Progress(target)
	if err != nil {
		return err
	}

	d.status = newStatus
	d.updatedAt = now
	return nil
}

// setID validates and sets the delivery's unique identifier.
// This is a private method used only during construction.
func (d *Delivery) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

// setOrderID validates and sets the originating order reference.
// This is a private method used only during construction.
func (d *Delivery) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	d.orderID = orderID
	return nil
}

// setSellerID validates and sets the seller reference.
// This is a private method used only during construction.
func (d *Delivery) setSellerID(sellerID kernel.UUID) error {
	if err := sellerID.Validate(); err != nil {
		return err
	}
	d.sellerID = sellerID
	return nil
}

// setBuyerID validates and sets the buyer reference.
// This is a private method used only during construction.
func (d *Delivery) setBuyerID(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}
	d.buyerID = buyerID
	return nil
}

// setPickup validates and sets the pickup place.
// This is a private method used only during construction.
func (d *Delivery) setPickup(pickup Place) error {
	if err := pickup.Validate(); err != nil {
		return err
	}
	d.pickup = pickup
	return nil
}

// setDropoff validates and sets the dropoff place.
// This is a private method used only during construction.
func (d *Delivery) setDropoff(dropoff Place) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}
	d.dropoff = dropoff
	return nil
}

// setCourierID validates and sets the optional courier reference.
// This is a private method used only during restoration.
func (d *Delivery) setCourierID(courierID *kernel.UUID) error {
	if courierID == nil {
		return nil
	}
	if err := courierID.Validate(); err != nil {
		return err
	}
	d.courierID = courierID
	return nil
}
