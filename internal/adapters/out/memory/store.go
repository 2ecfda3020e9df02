// Package memory provides an in-memory implementation of the persistence
// ports. It backs local development and the end-to-end flow tests, where a
// real database would only add noise.
//
// A single mutex serializes units of work: Begin acquires it, Commit and
// Rollback release it. Writes are staged inside the unit of work and merged
// into the shared maps on Commit, so a rolled back unit of work leaves no
// trace and the conditional offer update keeps its exactly-one-winner
// guarantee under concurrent use.
package memory

import (
	"sort"
	"sync"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
)

// Store holds the shared aggregate state behind the in-memory units of work.
type Store struct {
	mu         sync.Mutex
	couriers   map[kernel.UUID]*courier.Courier
	deliveries map[kernel.UUID]*delivery.Delivery
	offers     map[kernel.UUID]*offer.Offer
	// offerOrder preserves creation order for per-delivery offer history.
	offerOrder []kernel.UUID
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		couriers:   make(map[kernel.UUID]*courier.Courier),
		deliveries: make(map[kernel.UUID]*delivery.Delivery),
		offers:     make(map[kernel.UUID]*offer.Offer),
	}
}

// Create returns a unit of work bound to this store.
// Implements ports.UnitOfWorkFactory.
func (s *Store) Create() ports.UnitOfWork {
	return &unitOfWork{store: s}
}

func cloneCourier(c *courier.Courier) *courier.Courier {
	clone, err := courier.RestoreCourier(
		c.ID(), c.Name(), c.Phone(), c.IsActive(), c.IsAvailable(), c.Location(), c.UpdatedAt())
	if err != nil {
		panic(err)
	}
	return clone
}

func cloneDelivery(d *delivery.Delivery) *delivery.Delivery {
	clone, err := delivery.RestoreDelivery(
		d.ID(), d.OrderID(), d.SellerID(), d.BuyerID(), d.Courier(), d.Status(),
		d.Pickup(), d.Dropoff(), d.CreatedAt(), d.UpdatedAt())
	if err != nil {
		panic(err)
	}
	return clone
}

func cloneOffer(o *offer.Offer) *offer.Offer {
	clone, err := offer.RestoreOffer(
		o.ID(), o.DeliveryID(), o.CourierID(), o.Status(), o.ExpiresAt(), o.CreatedAt())
	if err != nil {
		panic(err)
	}
	return clone
}

func sortedByName(couriers []*courier.Courier) []*courier.Courier {
	sort.Slice(couriers, func(i, j int) bool {
		return couriers[i].Name() < couriers[j].Name()
	})
	return couriers
}

func sortedByUpdatedAt(couriers []*courier.Courier) []*courier.Courier {
	sort.Slice(couriers, func(i, j int) bool {
		return couriers[i].UpdatedAt().Before(couriers[j].UpdatedAt())
	})
	return couriers
}

func sortedByCreatedAt(deliveries []*delivery.Delivery) []*delivery.Delivery {
	sort.Slice(deliveries, func(i, j int) bool {
		return deliveries[i].CreatedAt().Before(deliveries[j].CreatedAt())
	})
	return deliveries
}

func sortedByExpiry(offers []*offer.Offer) {
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].ExpiresAt().Before(offers[j].ExpiresAt())
	})
}
