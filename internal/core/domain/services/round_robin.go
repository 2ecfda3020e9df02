package services

import (
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// RoundRobinStrategy selects the courier whose record was touched longest ago.
//
// Because every offer, availability toggle, and location report refreshes the
// courier's updatedAt timestamp, ordering by updatedAt ascending rotates
// offers fairly through the pool without any mutable counter.
type RoundRobinStrategy struct{}

// NewRoundRobinStrategy creates a round-robin selection strategy.
func NewRoundRobinStrategy() RoundRobinStrategy {
	return RoundRobinStrategy{}
}

// Name returns the strategy identifier.
func (RoundRobinStrategy) Name() string {
	return "round_robin"
}

// SelectNext returns the oldest-touched eligible courier not already offered
// this delivery, or ErrNoCandidateFound when none remain.
func (s RoundRobinStrategy) SelectNext(
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
	return pool[0].Courier, nil
}
