package ports

import (
	"context"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
)

// DeliveryRepository defines the persistence contract for delivery aggregates.
type DeliveryRepository interface {
	// Add persists a new delivery aggregate to storage.
	// The delivery must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *delivery.Delivery) error

	// Update persists changes to an existing delivery aggregate.
	// The delivery must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *delivery.Delivery) error

	// Get retrieves a delivery aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*delivery.Delivery, error)

	// GetAllActive retrieves all deliveries that are not in a terminal status.
	GetAllActive(ctx context.Context) ([]*delivery.Delivery, error)

	// CountActiveByCourier returns the number of non-terminal deliveries
	// currently assigned to the given courier. Feeds the least-loaded
	// selection strategy.
	CountActiveByCourier(ctx context.Context, courierID kernel.UUID) (int, error)
}
