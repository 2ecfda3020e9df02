package queries

import (
	"context"

	"dispatch/internal/core/domain/model/delivery"

	"gorm.io/gorm"
)

// GetCourierStatsQueryHandler computes fleet statistics with a single
// aggregate query.
type GetCourierStatsQueryHandler struct {
	db *gorm.DB
}

// NewGetCourierStatsQueryHandler creates a handler for fleet statistics queries.
// Requires a GORM database connection for query execution.
func NewGetCourierStatsQueryHandler(db *gorm.DB) GetCourierStatsQueryHandler {
	return GetCourierStatsQueryHandler{db: db}
}

// Handle executes the aggregate query.
//
// Total counts every courier, available counts active couriers opted in to
// offers, offline counts deactivated couriers, and busy counts couriers with
// at least one delivery currently in progress.
func (h GetCourierStatsQueryHandler) Handle(
	ctx context.Context,
	query GetCourierStatsQuery,
) (GetCourierStatsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetCourierStatsQueryResponse{}, err
	}

	var response GetCourierStatsQueryResponse

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE active AND available) AS available,
			COUNT(*) FILTER (WHERE NOT active) AS offline,
			COUNT(*) FILTER (WHERE id IN (
				SELECT courier_id FROM deliveries
				WHERE courier_id IS NOT NULL AND status IN (?, ?, ?)
			)) AS busy
		FROM couriers
	`, int(delivery.Assigned), int(delivery.PickupConfirmed), int(delivery.EnRoute)).Row()

	if err := row.Scan(&response.Total, &response.Available, &response.Offline, &response.Busy); err != nil {
		return GetCourierStatsQueryResponse{}, err
	}

	return response, nil
}
