package services

import (
	"errors"
	"sort"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrNoCandidateFound is returned when no suitable courier remains for a
// delivery. This occurs when the candidate pool is empty or every eligible
// courier has already been offered this delivery. The assignment engine does
// not treat this as a failure: it records the delivery as no_courier.
var ErrNoCandidateFound = errors.New("no candidate courier found")

// Candidate pairs a courier with the inputs a strategy may rank by that do
// not live on the courier record itself.
type Candidate struct {
	// Courier is the courier under consideration.
	Courier *courier.Courier
	// ActiveDeliveries is the number of non-terminal deliveries currently
	// assigned to the courier. Used by the least-loaded strategy.
	ActiveDeliveries int
}

// SelectionStrategy picks the next courier to offer a delivery to.
//
// Strategies are pure functions over explicit inputs: they hold no counters
// or other hidden state, and ordering is derived from data already present on
// the courier records (most notably updatedAt). The engine is responsible for
// passing only active+available couriers and for providing the set of courier
// IDs that already received an offer for this delivery; a strategy never
// returns a courier from that set.
type SelectionStrategy interface {
	// Name returns a short identifier for configuration and logging.
	Name() string

	// SelectNext returns the next courier to offer the delivery to.
	// Returns ErrNoCandidateFound when no eligible candidate remains.
	SelectNext(
		d *delivery.Delivery,
		candidates []Candidate,
		offered map[kernel.UUID]struct{},
	) (*courier.Courier, error)
}

// eligible filters candidates down to active, available couriers that have
// not yet been offered this delivery, validating each courier on the way.
func eligible(candidates []Candidate, offered map[kernel.UUID]struct{}) ([]Candidate, error) {
	result := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Courier.Validate(); err != nil {
			return nil, err
		}
		if !c.Courier.IsActive() || !c.Courier.IsAvailable() {
			continue
		}
		if _, alreadyOffered := offered[c.Courier.ID()]; alreadyOffered {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

// byOldestTouched orders candidates by updatedAt ascending (oldest-touched
// first), breaking ties by courier ID for determinism.
func byOldestTouched(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].Courier, candidates[j].Courier
		if !a.UpdatedAt().Equal(b.UpdatedAt()) {
			return a.UpdatedAt().Before(b.UpdatedAt())
		}
		return a.ID().String() < b.ID().String()
	})
}
