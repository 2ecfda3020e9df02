package queries

import (
	"context"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveDeliveriesQueryHandler retrieves non-terminal deliveries from the database.
type GetActiveDeliveriesQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveDeliveriesQueryHandler creates a handler for active delivery queries.
// Requires a GORM database connection for query execution.
func NewGetActiveDeliveriesQueryHandler(db *gorm.DB) GetActiveDeliveriesQueryHandler {
	return GetActiveDeliveriesQueryHandler{db: db}
}

// Handle executes the query to retrieve all non-terminal deliveries.
// Results are sorted by creation time so the oldest work surfaces first.
func (h GetActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDeliveriesQuery,
) ([]GetActiveDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	deliveries := make([]GetActiveDeliveriesQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_id,
			courier_id,
			status,
			pickup_address,
			dropoff_address
		FROM deliveries
		WHERE status NOT IN (?, ?)
		ORDER BY created_at
	`, int(delivery.Delivered), int(delivery.Cancelled)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetActiveDeliveriesQueryResponse
		var id, orderID uuid.UUID
		var courierID *uuid.UUID
		var status int

		err = rows.Scan(
			&id,
			&orderID,
			&courierID,
			&status,
			&resp.PickupAddress,
			&resp.DropoffAddress,
		)
		if err != nil {
			return nil, err
		}

		deliveryID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = deliveryID

		restoredOrderID, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.OrderID = restoredOrderID

		if courierID != nil {
			restored, idErr := kernel.UUIDFromBytes(courierID[:])
			if idErr != nil {
				return nil, idErr
			}
			resp.CourierID = &restored
		}

		resp.Status = delivery.Status(status).String()
		deliveries = append(deliveries, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return deliveries, nil
}
