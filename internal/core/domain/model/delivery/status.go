package delivery

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of a delivery.
// It implements a state machine with defined transitions to ensure
// deliveries follow the correct dispatch workflow.
//
// State transitions:
//
//	Pending ──> OfferSent ──> Assigned ──> PickupConfirmed ──> EnRoute ──> Delivered
//	   │            │  ↺           │
//	   │            ├──> NoCourier (pool exhausted, re-triggerable)
//	   └────────────┴──────────────┴──> Cancelled
//
// OfferSent loops onto itself when a declined or expired offer is replaced by
// an offer to the next candidate. NoCourier is terminal for the current
// dispatch cycle only: a later dispatch attempt moves the delivery back to
// OfferSent. Delivered and Cancelled are fully terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status when a delivery is first created.
	// Deliveries in this status are waiting for the first offer to go out.
	Pending

	// OfferSent indicates that an offer for this delivery is (or was just)
	// outstanding with some courier.
	OfferSent

	// Assigned indicates a courier accepted the offer and owns the delivery.
	Assigned

	// PickupConfirmed indicates the courier confirmed picking up the goods.
	PickupConfirmed

	// EnRoute indicates the courier is on the way to the dropoff.
	EnRoute

	// Delivered indicates the delivery was completed. Fully terminal.
	Delivered

	// NoCourier indicates the candidate pool was exhausted without an accept.
	// Terminal for the current cycle; a fresh dispatch attempt may retry.
	NoCourier

	// Cancelled indicates the delivery was cancelled externally. Fully terminal.
	Cancelled
)

// getStatusStrings returns a map of Status values to their string representations.
// All statuses are included for string conversion.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "unknown",
		Pending:         "pending",
		OfferSent:       "offer_sent",
		Assigned:        "assigned",
		PickupConfirmed: "pickup_confirmed",
		EnRoute:         "en_route",
		Delivered:       "delivered",
		NoCourier:       "no_courier",
		Cancelled:       "cancelled",
	}
}

// StatusFromString parses a delivery status from its string representation.
// Returns an error for unknown or invalid status strings.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid delivery status", s))
}

// Validate checks if the Status value is valid.
// Unknown (0) and any out-of-range values are invalid.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name of the status.
// Implements the fmt.Stringer interface and is safe to call on any value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is defined from this status.
// NoCourier is terminal for a single dispatch cycle but re-triggerable, so it
// is deliberately not reported as terminal here.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// IsDispatchable reports whether a dispatch attempt (sending the next offer)
// is permitted from this status.
func (s Status) IsDispatchable() bool {
	return s == Pending || s == OfferSent || s == NoCourier
}

// InProgress reports whether a courier is actively working the delivery.
// Used for the least-loaded selection strategy's active-delivery counts.
func (s Status) InProgress() bool {
	return s == Assigned || s == PickupConfirmed || s == EnRoute
}

// SendOffer transitions the status to OfferSent.
//
// Valid transitions:
//   - Pending -> OfferSent (first offer)
//   - OfferSent -> OfferSent (retry after decline or expiry)
//   - NoCourier -> OfferSent (fresh dispatch attempt after exhaustion)
func (s Status) SendOffer() (Status, error) {
	if !s.IsDispatchable() {
		return 0, errs.NewInvalidStateErrorWithCause(
			"delivery status",
			fmt.Errorf("%s is not a valid status to send an offer", s.String()),
		)
	}
	return OfferSent, nil
}

// Assign transitions the status to Assigned.
//
// Valid transitions:
//   - OfferSent -> Assigned (a courier accepted the outstanding offer)
func (s Status) Assign() (Status, error) {
	if s != OfferSent {
		return 0, errs.NewInvalidStateErrorWithCause(
			"delivery status",
			fmt.Errorf("%s is not a valid status to assign", s.String()),
		)
	}
	return Assigned, nil
}

// MarkNoCourier transitions the status to NoCourier.
//
// Valid transitions:
//   - Pending -> NoCourier (no candidates at all)
//   - OfferSent -> NoCourier (pool exhausted after declines/expiries)
func (s Status) MarkNoCourier() (Status, error) {
	if s != Pending && s != OfferSent {
		return 0, errs.NewInvalidStateErrorWithCause(
			"delivery status",
			fmt.Errorf("%s is not a valid status to mark no courier", s.String()),
		)
	}
	return NoCourier, nil
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions:
//   - Pending -> Cancelled
//   - OfferSent -> Cancelled
//   - NoCourier -> Cancelled
//   - Assigned -> Cancelled
func (s Status) Cancel() (Status, error) {
	if s != Pending && s != OfferSent && s != NoCourier && s != Assigned {
		return 0, errs.NewInvalidStateErrorWithCause(
			"delivery status",
			fmt.Errorf("%s is not a valid status to cancel", s.String()),
		)
	}
	return Cancelled, nil
}

// Progress advances the courier-driven leg of the state machine.
//
// Valid transitions:
//   - Assigned -> PickupConfirmed
//   - PickupConfirmed -> EnRoute
//   - EnRoute -> Delivered
//
// These transitions come from explicit status-update calls on the
// courier-facing surface; the engine only validates and persists them.
func (s Status) Progress(target Status) (Status, error) {
	valid := map[Status]Status{
		PickupConfirmed: Assigned,
		EnRoute:         PickupConfirmed,
		Delivered:       EnRoute,
	}

	from, ok := valid[target]
	if !ok || s != from {
		return 0, errs.NewInvalidStateErrorWithCause(
			"delivery status",
			fmt.Errorf("cannot progress from %s to %s", s.String(), target.String()),
		)
	}
	return target, nil
}
