package queries

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrGetCourierStatsQueryIsNotConstructed = errors.New(
	"GetCourierStatsQuery must be created via NewGetCourierStatsQuery constructor",
)

// GetCourierStatsQuery retrieves aggregate fleet counts for dashboards.
type GetCourierStatsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetCourierStatsQuery creates a query to retrieve fleet statistics.
func NewGetCourierStatsQuery() GetCourierStatsQuery {
	return GetCourierStatsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetCourierStatsQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierStatsQueryIsNotConstructed)
}

// GetCourierStatsQueryResponse holds aggregate counts over the courier fleet.
// Busy counts couriers with at least one delivery in progress; a busy courier
// may still be available for further offers.
type GetCourierStatsQueryResponse struct {
	Total     int
	Available int
	Busy      int
	Offline   int
}
