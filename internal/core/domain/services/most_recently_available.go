package services

import (
	"sort"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// MostRecentlyAvailableStrategy selects the courier whose record was touched
// most recently: the inversion of round-robin. Useful when freshness of the
// availability signal matters more than fairness, since a recently refreshed
// record is most likely to belong to a courier who is really there.
type MostRecentlyAvailableStrategy struct{}

// NewMostRecentlyAvailableStrategy creates a most-recently-available selection strategy.
func NewMostRecentlyAvailableStrategy() MostRecentlyAvailableStrategy {
	return MostRecentlyAvailableStrategy{}
}

// Name returns the strategy identifier.
func (MostRecentlyAvailableStrategy) Name() string {
	return "most_recently_available"
}

// SelectNext returns the most recently touched eligible courier, or
// ErrNoCandidateFound when none remain.
func (s MostRecentlyAvailableStrategy) SelectNext(
	d *delivery.Delivery,
	candidates []Candidate,
	offered map[kernel.UUID]struct{},
) (*courier.Courier, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	pool, err := eligible(candidates, offered)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrNoCandidateFound
	}

	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i].Courier, pool[j].Courier
		if !a.UpdatedAt().Equal(b.UpdatedAt()) {
			return a.UpdatedAt().After(b.UpdatedAt())
		}
		return a.ID().String() < b.ID().String()
	})

	return pool[0].Courier, nil
}
