// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each handler declares the narrowest UoW it needs, so tests mock only the
// repositories the operation actually touches.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// CourierRepoFactory provides access to the courier repository within a transaction.
	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
	}

	// DeliveryRepoFactory provides access to the delivery repository within a transaction.
	DeliveryRepoFactory interface {
		DeliveryRepository() ports.DeliveryRepository
	}

	// OfferRepoFactory provides access to the offer repository within a transaction.
	OfferRepoFactory interface {
		OfferRepository() ports.OfferRepository
	}

	// CourierUoW manages transactions for courier-only operations.
	CourierUoW interface {
		TxManager
		CourierRepoFactory
	}

	// CourierUoWFactory creates new courier unit of work instances.
	CourierUoWFactory interface {
		Create() CourierUoW
	}

	// DeliveryUoW manages transactions for delivery-only operations.
	DeliveryUoW interface {
		TxManager
		DeliveryRepoFactory
	}

	// DeliveryUoWFactory creates new delivery unit of work instances.
	DeliveryUoWFactory interface {
		Create() DeliveryUoW
	}

	// OfferUoW manages transactions for offer resolution operations, which
	// update the offer record and its delivery together.
	OfferUoW interface {
		TxManager
		DeliveryRepoFactory
		OfferRepoFactory
	}

	// OfferUoWFactory creates new offer unit of work instances.
	OfferUoWFactory interface {
		Create() OfferUoW
	}

	// UoW manages transactions across courier, delivery and offer aggregates.
	// Used by the dispatch flow, which reads the candidate pool, writes an
	// offer and advances the delivery in one transaction.
	UoW interface {
		TxManager
		CourierRepoFactory
		DeliveryRepoFactory
		OfferRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)

// NextCourierTrigger re-runs the dispatch flow for a delivery. Decline and
// expiry handlers use it to chain into the next offer attempt; the concrete
// implementation is TryNextCourierCommandHandler.
type NextCourierTrigger interface {
	Handle(ctx context.Context, command TryNextCourierCommand) error
}
