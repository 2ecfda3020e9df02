package services

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// StrategyFromName builds the selection strategy configured under the given
// name. Used by the composition root to translate configuration into a
// concrete strategy.
func StrategyFromName(name string) (SelectionStrategy, error) {
	switch name {
	case "", RoundRobinStrategy{}.Name():
		return NewRoundRobinStrategy(), nil
	case NearestDistanceStrategy{}.Name():
		return NewNearestDistanceStrategy(), nil
	case LeastLoadedStrategy{}.Name():
		return NewLeastLoadedStrategy(), nil
	case MostRecentlyAvailableStrategy{}.Name():
		return NewMostRecentlyAvailableStrategy(), nil
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"selection strategy", fmt.Errorf("unknown strategy %q", name))
	}
}
