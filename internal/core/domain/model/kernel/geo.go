package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// GeoPointMinLat is the minimum valid latitude in degrees.
	GeoPointMinLat = -90.0
	// GeoPointMaxLat is the maximum valid latitude in degrees.
	GeoPointMaxLat = 90.0
	// GeoPointMinLng is the minimum valid longitude in degrees.
	GeoPointMinLng = -180.0
	// GeoPointMaxLng is the maximum valid longitude in degrees.
	GeoPointMaxLng = 180.0

	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly initialized GeoPoint.
// GeoPoints must be created using the NewGeoPoint constructor to ensure validity.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint represents a geographic coordinate pair with validated bounds.
// GeoPoint is an immutable value object; the zero value is invalid and will
// fail validation - use the constructor to create instances.
//
// It is used for courier last-known locations and for delivery pickup/dropoff
// coordinates, and provides the haversine distance that the nearest-distance
// selection strategy ranks couriers by.
//
// Example:
//
//	point, err := kernel.NewGeoPoint(55.7558, 37.6173)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Point: %s", point) // Output: GeoPoint(55.755800,37.617300)
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint creates a new GeoPoint with the specified coordinates.
// Latitude must be within [GeoPointMinLat..GeoPointMaxLat] and longitude
// within [GeoPointMinLng..GeoPointMaxLng].
//
// Parameters:
//   - lat: Latitude in decimal degrees
//   - lng: Longitude in decimal degrees
//
// Returns:
//   - GeoPoint: A valid geographic point
//   - error: Validation error if either coordinate is out of bounds
func NewGeoPoint(lat float64, lng float64) (GeoPoint, error) {
	point := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(point.setLat(lat), point.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return point, nil
}

// Validate checks if the GeoPoint was properly constructed using the constructor.
// The zero value of GeoPoint is invalid and will fail this validation.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

// Lat returns the latitude in decimal degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in decimal degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// IsEqual compares two geographic points for coordinate equality.
func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.lat == other.lat && p.lng == other.lng
}

// DistanceTo returns the great-circle distance to another point in kilometers,
// computed with the haversine formula.
//
// Both points must be properly constructed; an error is returned otherwise.
//
// Example:
//
//	store, _ := kernel.NewGeoPoint(55.7558, 37.6173)
//	home, _ := kernel.NewGeoPoint(55.7887, 37.6064)
//	km, _ := store.DistanceTo(home)
func (p GeoPoint) DistanceTo(other GeoPoint) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if err := other.Validate(); err != nil {
		return 0, err
	}

	latFrom := toRadians(p.lat)
	latTo := toRadians(other.lat)
	deltaLat := toRadians(other.lat - p.lat)
	deltaLng := toRadians(other.lng - p.lng)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(latFrom)*math.Cos(latTo)*math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}

// String returns a human-readable representation of the point.
// Implements the fmt.Stringer interface.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%f,%f)", p.lat, p.lng)
}

// setLat validates and sets the latitude.
// This is a private method used only during construction.
func (p *GeoPoint) setLat(lat float64) error {
	if lat < GeoPointMinLat || lat > GeoPointMaxLat {
		return errs.NewValueIsOutOfRangeError("lat", lat, GeoPointMinLat, GeoPointMaxLat)
	}
	p.lat = lat
	return nil
}

// setLng validates and sets the longitude.
// This is a private method used only during construction.
func (p *GeoPoint) setLng(lng float64) error {
	if lng < GeoPointMinLng || lng > GeoPointMaxLng {
		return errs.NewValueIsOutOfRangeError("lng", lng, GeoPointMinLng, GeoPointMaxLng)
	}
	p.lng = lng
	return nil
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
