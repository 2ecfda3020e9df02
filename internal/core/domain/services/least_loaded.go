package services

import (
	"sort"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// LeastLoadedStrategy selects the courier carrying the fewest active
// (non-terminal) deliveries, spreading work evenly across the pool.
// Ties are broken round-robin by updatedAt.
type LeastLoadedStrategy struct{}

// NewLeastLoadedStrategy creates a least-loaded selection strategy.
func NewLeastLoadedStrategy() LeastLoadedStrategy {
	return LeastLoadedStrategy{}
}

// Name returns the strategy identifier.
func (LeastLoadedStrategy) Name() string {
	return "least_loaded"
}

// SelectNext returns the eligible courier with the fewest active deliveries,
// or ErrNoCandidateFound when none remain.
func (s LeastLoadedStrategy) SelectNext(
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

	byOldestTouched(pool)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].ActiveDeliveries < pool[j].ActiveDeliveries
	})

	return pool[0].Courier, nil
}
