package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCreateDeliveryCommandIsNotConstructed = errors.New(
	"CreateDeliveryCommand must be created via NewCreateDeliveryCommand constructor",
)

// CreateDeliveryCommand represents a request to create a delivery for a paid
// order and start looking for a courier.
//
// Example:
//
//	pickup, _ := delivery.NewPlace("Store St 1", &storePoint)
//	dropoff, _ := delivery.NewPlace("Home Ave 2", nil)
//	cmd, err := NewCreateDeliveryCommand(orderID, sellerID, buyerID, pickup, dropoff)
//	if err != nil {
//	    return fmt.Errorf("invalid delivery data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create delivery: %w", err)
//	}
//	fmt.Printf("Created delivery with ID: %s", cmd.DeliveryID())
type CreateDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID
	orderID    kernel.UUID
	sellerID   kernel.UUID
	buyerID    kernel.UUID
	pickup     delivery.Place
	dropoff    delivery.Place

	guard guard.ConstructorGuard
}

// NewCreateDeliveryCommand creates a command to register a new delivery.
// Automatically generates a unique ID for the delivery.
func NewCreateDeliveryCommand(
	orderID kernel.UUID,
	sellerID kernel.UUID,
	buyerID kernel.UUID,
	pickup delivery.Place,
	dropoff delivery.Place,
) (CreateDeliveryCommand, error) {
	command := CreateDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDeliveryID(kernel.NewUUID()),
		command.setOrderID(orderID),
		command.setSellerID(sellerID),
		command.setBuyerID(buyerID),
		command.setPickup(pickup),
		command.setDropoff(dropoff),
	); err != nil {
		return CreateDeliveryCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCreateDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the generated delivery ID.
func (c CreateDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

// OrderID returns the marketplace order this delivery fulfils.
func (c CreateDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// SellerID returns the seller whose order is being delivered.
func (c CreateDeliveryCommand) SellerID() kernel.UUID {
	return c.sellerID
}

// BuyerID returns the buyer receiving the delivery.
func (c CreateDeliveryCommand) BuyerID() kernel.UUID {
	return c.buyerID
}

// Pickup returns the pickup place.
func (c CreateDeliveryCommand) Pickup() delivery.Place {
	return c.pickup
}

// Dropoff returns the dropoff place.
func (c CreateDeliveryCommand) Dropoff() delivery.Place {
	return c.dropoff
}

func (c *CreateDeliveryCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}

func (c *CreateDeliveryCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}

func (c *CreateDeliveryCommand) setSellerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.sellerID = id
	return nil
}

func (c *CreateDeliveryCommand) setBuyerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.buyerID = id
	return nil
}

func (c *CreateDeliveryCommand) setPickup(pickup delivery.Place) error {
	if err := pickup.Validate(); err != nil {
		return err
	}

	c.pickup = pickup
	return nil
}

func (c *CreateDeliveryCommand) setDropoff(dropoff delivery.Place) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}

	c.dropoff = dropoff
	return nil
}
