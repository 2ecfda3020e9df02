package courier

import (
	"errors"
	"regexp"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrPhoneIsRequired is returned when attempting to create a courier without a contact phone.
	ErrPhoneIsRequired = errs.NewValueIsRequiredError("phone")
	// ErrPhoneIsInvalid is returned when the contact phone does not look like a phone number.
	ErrPhoneIsInvalid = errs.NewValueIsInvalidError("phone")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrCourierIsNotActive is returned when an inactive courier tries to opt in for offers.
	ErrCourierIsNotActive = errs.NewInvalidStateError("courier is not active")
)

// rePhone validates contact phone numbers in international format.
var rePhone = regexp.MustCompile(`^\+[0-9]{7,15}$`)

// Courier represents a delivery courier in the marketplace.
// It is an aggregate root that manages courier identity, activation, availability,
// and last known location.
//
// Key responsibilities:
//   - Managing courier identity (ID, name, contact phone)
//   - Tracking whether the courier is enabled for work at all (active)
//   - Tracking whether the courier is currently opted in to receive offers (available)
//   - Recording the last known geographic location for distance-based selection
//
// Business rules:
//   - Courier must have a valid UUID, non-empty name, and valid contact phone
//   - Only active couriers may opt in to receive offers
//   - Deactivating a courier also opts them out of offers
//   - Couriers are never deleted, only deactivated
//   - Every mutation refreshes the updatedAt timestamp, which the round-robin
//     selection strategy uses as its fairness ordering
type Courier struct {
	// id uniquely identifies the courier
	id kernel.UUID
	// name is the human-readable name of the courier
	name string
	// phone is the contact handle used by the notification gateway
	phone string
	// active reports whether the courier is enabled for work at all
	active bool
	// available reports whether the courier is currently opted in to receive offers
	available bool
	// location is the last known position of the courier, nil if never reported
	location *kernel.GeoPoint
	// updatedAt is refreshed on every mutation
	updatedAt time.Time
	// guard ensures the courier was properly constructed
	guard guard.ConstructorGuard
}

// NewCourier creates a new Courier with the specified parameters.
// This is the only way to create a valid Courier instance.
//
// A new courier starts active but not available: they must explicitly opt in
// before they receive offers. No location is known until the courier reports one.
//
// Parameters:
//   - id: Unique identifier for the courier (must be valid UUID)
//   - name: Human-readable name (must be non-empty)
//   - phone: Contact phone in international format, e.g. "+79161234567"
//   - now: Creation timestamp recorded as updatedAt
//
// Returns:
//   - *Courier: A fully initialized courier
//   - error: Validation error if any parameter is invalid (aggregated errors for multiple issues)
func NewCourier(id kernel.UUID, name string, phone string, now time.Time) (*Courier, error) {
	courier := &Courier{
		active:    true,
		updatedAt: now,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setPhone(phone),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage.
// Unlike NewCourier which creates fresh couriers, this constructor restores
// a courier to its previously persisted state including activation,
// availability, and last known location.
//
// Parameters:
//   - id: Unique identifier for the courier
//   - name: Human-readable courier name
//   - phone: Contact phone
//   - active: Whether the courier is enabled for work
//   - available: Whether the courier is opted in to receive offers
//   - location: Last known position, nil if never reported
//   - updatedAt: Timestamp of the last mutation
//
// Returns:
//   - *Courier: Restored courier aggregate
//   - error: Validation error if any parameter is invalid
func RestoreCourier(
	id kernel.UUID,
	name string,
	phone string,
	active bool,
	available bool,
	location *kernel.GeoPoint,
	updatedAt time.Time,
) (*Courier, error) {
	courier := &Courier{
		active:    active,
		available: available,
		updatedAt: updatedAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setPhone(phone),
		courier.setLocation(location),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// Validate ensures the Courier instance was properly constructed through a constructor.
// This prevents bypassing validation by directly instantiating the struct.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// IsEqual compares two couriers by their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	return other != nil && c.id.IsEqual(other.id)
}

// ID returns the courier's unique identifier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the courier's human-readable name.
func (c *Courier) Name() string {
	return c.name
}

// Phone returns the courier's contact phone.
func (c *Courier) Phone() string {
	return c.phone
}

// IsActive reports whether the courier is enabled for work at all.
func (c *Courier) IsActive() bool {
	return c.active
}

// IsAvailable reports whether the courier is currently opted in to receive offers.
func (c *Courier) IsAvailable() bool {
	return c.available
}

// Location returns the courier's last known position.
// Returns nil if the courier has never reported a location.
func (c *Courier) Location() *kernel.GeoPoint {
	return c.location
}

// UpdatedAt returns the timestamp of the courier's last mutation.
// Round-robin selection orders couriers by this value, oldest-touched first.
func (c *Courier) UpdatedAt() time.Time {
	return c.updatedAt
}

// SetAvailable changes whether the courier is opted in to receive offers.
//
// Business rules:
//   - Only active couriers may opt in (ErrCourierIsNotActive otherwise)
//   - Opting out is always allowed
//
// The updatedAt timestamp is refreshed on success.
func (c *Courier) SetAvailable(available bool, now time.Time) error {
	if available && !c.active {
		return ErrCourierIsNotActive
	}

	c.available = available
	c.updatedAt = now
	return nil
}

// Deactivate disables the courier for work entirely.
// A deactivated courier is also opted out of offers.
// Couriers are never deleted; deactivation is the terminal lifecycle action.
func (c *Courier) Deactivate(now time.Time) {
	c.active = false
	c.available = false
	c.updatedAt = now
}

// Activate re-enables a previously deactivated courier for work.
// The courier must still opt in via SetAvailable before receiving offers.
func (c *Courier) Activate(now time.Time) {
	c.active = true
	c.updatedAt = now
}

// Touch refreshes the updatedAt timestamp without changing any other state.
// Called when the courier receives an offer, so that updatedAt-ordered
// selection rotates offers through the pool.
func (c *Courier) Touch(now time.Time) {
	c.updatedAt = now
}

// MoveTo records a new last known location for the courier.
// The updatedAt timestamp is refreshed on success.
func (c *Courier) MoveTo(location kernel.GeoPoint, now time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = &location
	c.updatedAt = now
	return nil
}

// setID validates and sets the courier's unique identifier.
// This is a private method used only during construction.
func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

// setName validates and sets the courier's name.
// This is a private method used only during construction.
func (c *Courier) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	c.name = name
	return nil
}

// setPhone validates and sets the courier's contact phone.
// This is a private method used only during construction.
func (c *Courier) setPhone(phone string) error {
	if phone == "" {
		return ErrPhoneIsRequired
	}
	if !rePhone.MatchString(phone) {
		return ErrPhoneIsInvalid
	}
	c.phone = phone
	return nil
}

// setLocation validates and sets the courier's last known location.
// A nil location is allowed and means the courier has never reported one.
// This is a private method used only during restoration.
func (c *Courier) setLocation(location *kernel.GeoPoint) error {
	if location == nil {
		return nil
	}
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = location
	return nil
}
