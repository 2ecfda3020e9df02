package memory

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrNoActiveTransaction is returned when Commit or Rollback is called
// without a preceding Begin.
var ErrNoActiveTransaction = errors.New("no active transaction")

// unitOfWork stages writes against the store and merges them on Commit.
// Begin holds the store mutex until Commit or Rollback, so concurrent units
// of work serialize.
type unitOfWork struct {
	store  *Store
	active bool

	stagedCouriers   map[kernel.UUID]*courier.Courier
	stagedDeliveries map[kernel.UUID]*delivery.Delivery
	stagedOffers     map[kernel.UUID]*offer.Offer
	newOfferOrder    []kernel.UUID
}

func (u *unitOfWork) Begin(_ context.Context) error {
	u.store.mu.Lock()
	u.active = true
	u.stagedCouriers = make(map[kernel.UUID]*courier.Courier)
	u.stagedDeliveries = make(map[kernel.UUID]*delivery.Delivery)
	u.stagedOffers = make(map[kernel.UUID]*offer.Offer)
	u.newOfferOrder = nil
	return nil
}

func (u *unitOfWork) Commit(_ context.Context) error {
	if !u.active {
		return ErrNoActiveTransaction
	}

	for id, c := range u.stagedCouriers {
		u.store.couriers[id] = c
	}
	for id, d := range u.stagedDeliveries {
		u.store.deliveries[id] = d
	}
	for id, o := range u.stagedOffers {
		u.store.offers[id] = o
	}
	u.store.offerOrder = append(u.store.offerOrder, u.newOfferOrder...)

	u.active = false
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return nil
	}

	u.active = false
	u.store.mu.Unlock()
	return nil
}

func (u *unitOfWork) CourierRepository() ports.CourierRepository {
	return &courierRepository{uow: u}
}

func (u *unitOfWork) DeliveryRepository() ports.DeliveryRepository {
	return &deliveryRepository{uow: u}
}

func (u *unitOfWork) OfferRepository() ports.OfferRepository {
	return &offerRepository{uow: u}
}

// courier lookup sees staged writes before committed state.
func (u *unitOfWork) courier(id kernel.UUID) (*courier.Courier, bool) {
	if c, ok := u.stagedCouriers[id]; ok {
		return c, true
	}
	c, ok := u.store.couriers[id]
	return c, ok
}

func (u *unitOfWork) delivery(id kernel.UUID) (*delivery.Delivery, bool) {
	if d, ok := u.stagedDeliveries[id]; ok {
		return d, true
	}
	d, ok := u.store.deliveries[id]
	return d, ok
}

func (u *unitOfWork) offer(id kernel.UUID) (*offer.Offer, bool) {
	if o, ok := u.stagedOffers[id]; ok {
		return o, true
	}
	o, ok := u.store.offers[id]
	return o, ok
}

func (u *unitOfWork) offerIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(u.store.offerOrder)+len(u.newOfferOrder))
	ids = append(ids, u.store.offerOrder...)
	ids = append(ids, u.newOfferOrder...)
	return ids
}

type courierRepository struct {
	uow *unitOfWork
}

func (r *courierRepository) Add(_ context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	r.uow.stagedCouriers[aggregate.ID()] = cloneCourier(aggregate)
	return nil
}

func (r *courierRepository) Update(_ context.Context, aggregate *courier.Courier) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, ok := r.uow.courier(aggregate.ID()); !ok {
		return errs.NewObjectNotFoundError("courier", aggregate.ID().String())
	}
	r.uow.stagedCouriers[aggregate.ID()] = cloneCourier(aggregate)
	return nil
}

func (r *courierRepository) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	c, ok := r.uow.courier(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("courier", id.String())
	}
	return cloneCourier(c), nil
}

func (r *courierRepository) GetAllAvailable(_ context.Context) ([]*courier.Courier, error) {
	result := make([]*courier.Courier, 0)
	for id := range r.uow.store.couriers {
		c, _ := r.uow.courier(id)
		if c.IsActive() && c.IsAvailable() {
			result = append(result, cloneCourier(c))
		}
	}
	for id, c := range r.uow.stagedCouriers {
		if _, committed := r.uow.store.couriers[id]; committed {
			continue
		}
		if c.IsActive() && c.IsAvailable() {
			result = append(result, cloneCourier(c))
		}
	}
	return sortedByUpdatedAt(result), nil
}

func (r *courierRepository) GetAll(_ context.Context) ([]*courier.Courier, error) {
	result := make([]*courier.Courier, 0)
	for id := range r.uow.store.couriers {
		c, _ := r.uow.courier(id)
		result = append(result, cloneCourier(c))
	}
	for id, c := range r.uow.stagedCouriers {
		if _, committed := r.uow.store.couriers[id]; committed {
			continue
		}
		result = append(result, cloneCourier(c))
	}
	return sortedByName(result), nil
}

type deliveryRepository struct {
	uow *unitOfWork
}

func (r *deliveryRepository) Add(_ context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	r.uow.stagedDeliveries[aggregate.ID()] = cloneDelivery(aggregate)
	return nil
}

func (r *deliveryRepository) Update(_ context.Context, aggregate *delivery.Delivery) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, ok := r.uow.delivery(aggregate.ID()); !ok {
		return errs.NewObjectNotFoundError("delivery", aggregate.ID().String())
	}
	r.uow.stagedDeliveries[aggregate.ID()] = cloneDelivery(aggregate)
	return nil
}

func (r *deliveryRepository) Get(_ context.Context, id kernel.UUID) (*delivery.Delivery, error) {
	d, ok := r.uow.delivery(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("delivery", id.String())
	}
	return cloneDelivery(d), nil
}

func (r *deliveryRepository) GetAllActive(_ context.Context) ([]*delivery.Delivery, error) {
	result := make([]*delivery.Delivery, 0)
	for id := range r.uow.store.deliveries {
		d, _ := r.uow.delivery(id)
		if !d.Status().IsTerminal() {
			result = append(result, cloneDelivery(d))
		}
	}
	for id, d := range r.uow.stagedDeliveries {
		if _, committed := r.uow.store.deliveries[id]; committed {
			continue
		}
		if !d.Status().IsTerminal() {
			result = append(result, cloneDelivery(d))
		}
	}
	return sortedByCreatedAt(result), nil
}

func (r *deliveryRepository) CountActiveByCourier(_ context.Context, courierID kernel.UUID) (int, error) {
	count := 0
	seen := func(d *delivery.Delivery) {
		assigned := d.Courier()
		if assigned == nil || !assigned.IsEqual(courierID) {
			return
		}
		switch d.Status() {
		case delivery.Assigned, delivery.PickupConfirmed, delivery.EnRoute:
			count++
		}
	}
	for id := range r.uow.store.deliveries {
		d, _ := r.uow.delivery(id)
		seen(d)
	}
	for id, d := range r.uow.stagedDeliveries {
		if _, committed := r.uow.store.deliveries[id]; committed {
			continue
		}
		seen(d)
	}
	return count, nil
}

type offerRepository struct {
	uow *unitOfWork
}

func (r *offerRepository) Add(_ context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	r.uow.stagedOffers[aggregate.ID()] = cloneOffer(aggregate)
	r.uow.newOfferOrder = append(r.uow.newOfferOrder, aggregate.ID())
	return nil
}

func (r *offerRepository) Get(_ context.Context, id kernel.UUID) (*offer.Offer, error) {
	o, ok := r.uow.offer(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("offer", id.String())
	}
	return cloneOffer(o), nil
}

func (r *offerRepository) GetAllForDelivery(_ context.Context, deliveryID kernel.UUID) ([]*offer.Offer, error) {
	result := make([]*offer.Offer, 0)
	for _, id := range r.uow.offerIDs() {
		o, ok := r.uow.offer(id)
		if ok && o.DeliveryID().IsEqual(deliveryID) {
			result = append(result, cloneOffer(o))
		}
	}
	return result, nil
}

// UpdateStatusIf applies the status change only when the stored status still
// matches expected. Units of work serialize on the store mutex, so exactly
// one concurrent resolution attempt wins and the rest get errs.ErrInvalidState.
func (r *offerRepository) UpdateStatusIf(
	_ context.Context, id kernel.UUID, expected offer.Status, target offer.Status,
) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if _, err := expected.Resolve(target); err != nil {
		return err
	}

	current, ok := r.uow.offer(id)
	if !ok || current.Status() != expected {
		return errs.NewInvalidStateError("offer")
	}

	updated, err := offer.RestoreOffer(
		current.ID(), current.DeliveryID(), current.CourierID(), target,
		current.ExpiresAt(), current.CreatedAt())
	if err != nil {
		return err
	}
	r.uow.stagedOffers[id] = updated
	return nil
}

func (r *offerRepository) GetAllExpiredOutstanding(_ context.Context, now time.Time) ([]*offer.Offer, error) {
	result := make([]*offer.Offer, 0)
	for _, id := range r.uow.offerIDs() {
		o, ok := r.uow.offer(id)
		if ok && o.IsOutstanding() && o.ExpiresAt().Before(now) {
			result = append(result, cloneOffer(o))
		}
	}
	sortedByExpiry(result)
	return result, nil
}
