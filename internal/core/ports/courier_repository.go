// Package ports defines the contracts between the application core and
// infrastructure adapters. Repositories cover persistence, the notification
// gateway covers courier-facing messaging, and the offer scheduler covers
// expiry timers. Adapters implement these interfaces; the core never depends
// on a concrete adapter.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	// The courier must be valid and not already exist in the repository.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update persists changes to an existing courier aggregate.
	// The courier must exist in the repository and be valid.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAllAvailable retrieves every courier that is active and has opted in
	// to receiving offers. This is the candidate pool handed to the selection
	// strategy; further filtering (already-offered couriers) happens in the
	// dispatch flow.
	GetAllAvailable(ctx context.Context) ([]*courier.Courier, error)

	// GetAll retrieves every courier regardless of state.
	// Used by fleet stats and admin listings.
	GetAll(ctx context.Context) ([]*courier.Courier, error)
}
