package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCancelDeliveryCommandIsNotConstructed = errors.New(
	"CancelDeliveryCommand must be created via NewCancelDeliveryCommand constructor",
)

// CancelDeliveryCommand cancels a delivery before it reaches the buyer,
// typically because the marketplace order itself was cancelled.
type CancelDeliveryCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCancelDeliveryCommand creates a command to cancel a delivery.
func NewCancelDeliveryCommand(deliveryID kernel.UUID) (CancelDeliveryCommand, error) {
	command := CancelDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setDeliveryID(deliveryID); err != nil {
		return CancelDeliveryCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelDeliveryCommandIsNotConstructed)
}

// DeliveryID returns the delivery being cancelled.
func (c CancelDeliveryCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c *CancelDeliveryCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}
