package offer

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an offer.
//
// State transitions:
//
//	Offered ──> Accepted
//	       ├──> Declined
//	       └──> Expired
//
// All three outcomes are terminal; no further transitions are permitted.
// Exactly one transition out of Offered may succeed for a given offer, which
// the store enforces with a status-guarded conditional update.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Offered is the initial status: the offer is outstanding with a courier
	// and waiting for an accept, a decline, or its TTL to run out.
	Offered

	// Accepted indicates the courier accepted the offer. Terminal.
	Accepted

	// Declined indicates the courier declined the offer. Terminal.
	Declined

	// Expired indicates the offer timed out or was superseded by another
	// offer's acceptance. Terminal.
	Expired
)

// getStatusStrings returns a map of Status values to their string representations.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:  "unknown",
		Offered:  "offered",
		Accepted: "accepted",
		Declined: "declined",
		Expired:  "expired",
	}
}

// StatusFromString parses an offer status from its string representation.
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid offer status", s))
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if s <= Unknown || s > Expired {
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
func (s Status) IsTerminal() bool {
	return s == Accepted || s == Declined || s == Expired
}

// Resolve transitions the status out of Offered to the given terminal outcome.
//
// Valid transitions:
//   - Offered -> Accepted
//   - Offered -> Declined
//   - Offered -> Expired
func (s Status) Resolve(target Status) (Status, error) {
	if s != Offered || !target.IsTerminal() {
		return 0, errs.NewInvalidStateErrorWithCause(
			"offer status",
			fmt.Errorf("cannot resolve from %s to %s", s.String(), target.String()),
		)
	}
	return target, nil
}
