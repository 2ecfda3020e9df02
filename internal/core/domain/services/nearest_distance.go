package services

import (
	"sort"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// NearestDistanceStrategy selects the courier closest to the delivery's
// pickup point by haversine distance.
//
// The strategy degrades gracefully when coordinates are missing: a pickup
// without coordinates makes the whole selection fall back to round-robin, and
// couriers without a last known location rank after every courier that has
// one, ordered round-robin among themselves.
type NearestDistanceStrategy struct {
	fallback RoundRobinStrategy
}

// NewNearestDistanceStrategy creates a nearest-distance selection strategy.
func NewNearestDistanceStrategy() NearestDistanceStrategy {
	return NearestDistanceStrategy{fallback: NewRoundRobinStrategy()}
}

// Name returns the strategy identifier.
func (NearestDistanceStrategy) Name() string {
	return "nearest_distance"
}

// SelectNext returns the eligible courier nearest to the pickup point, or
// ErrNoCandidateFound when none remain.
func (s NearestDistanceStrategy) SelectNext(
	d *delivery.Delivery,
	candidates []Candidate,
	offered map[kernel.UUID]struct{},
) (*courier.Courier, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	pickup := d.Pickup().Point()
	if pickup == nil {
		return s.fallback.SelectNext(d, candidates, offered)
	}

	pool, err := eligible(candidates, offered)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrNoCandidateFound
	}

	located := make([]Candidate, 0, len(pool))
	unlocated := make([]Candidate, 0, len(pool))
	distances := make(map[kernel.UUID]float64, len(pool))

	for _, c := range pool {
		loc := c.Courier.Location()
		if loc == nil {
			unlocated = append(unlocated, c)
			continue
		}

		distance, err := loc.DistanceTo(*pickup)
		if err != nil {
			return nil, err
		}
		distances[c.Courier.ID()] = distance
		located = append(located, c)
	}

	if len(located) == 0 {
		byOldestTouched(unlocated)
		return unlocated[0].Courier, nil
	}

	sort.SliceStable(located, func(i, j int) bool {
		a, b := located[i].Courier, located[j].Courier
		if distances[a.ID()] != distances[b.ID()] {
			return distances[a.ID()] < distances[b.ID()]
		}
		return a.ID().String() < b.ID().String()
	})

	return located[0].Courier, nil
}
