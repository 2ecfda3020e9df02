package delivery

import (
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrPlaceIsNotConstructed is returned when attempting to use an improperly initialized Place.
var ErrPlaceIsNotConstructed = errs.NewValueIsRequiredError(
	"place must be created via NewPlace constructor")

// ErrAddressIsRequired is returned when a place is created without an address.
var ErrAddressIsRequired = errs.NewValueIsRequiredError("address")

// Place is a value object describing one end of a delivery: a human-readable
// address plus optional geographic coordinates. Coordinates, when present on
// the pickup place, enable the nearest-distance selection strategy; without
// them selection falls back to round-robin.
type Place struct { //nolint:recvcheck //using for validation
	address string
	point   *kernel.GeoPoint
	guard   guard.ConstructorGuard
}

// NewPlace creates a new Place with the given address and optional coordinates.
//
// Parameters:
//   - address: Human-readable address (must be non-empty)
//   - point: Geographic coordinates, nil when unknown
//
// Returns:
//   - Place: A valid place value object
//   - error: Validation error if the address is empty or the point is invalid
func NewPlace(address string, point *kernel.GeoPoint) (Place, error) {
	if address == "" {
		return Place{}, ErrAddressIsRequired
	}
	if point != nil {
		if err := point.Validate(); err != nil {
			return Place{}, err
		}
	}

	return Place{
		address: address,
		point:   point,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate checks if the Place was properly constructed using the constructor.
func (p Place) Validate() error {
	return p.guard.Validate(ErrPlaceIsNotConstructed)
}

// Address returns the human-readable address.
func (p Place) Address() string {
	return p.address
}

// Point returns the geographic coordinates, or nil when unknown.
func (p Place) Point() *kernel.GeoPoint {
	return p.point
}
