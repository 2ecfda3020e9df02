package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrTryNextCourierCommandIsNotConstructed = errors.New(
	"TryNextCourierCommand must be created via NewTryNextCourierCommand constructor",
)

// TryNextCourierCommand asks the dispatch flow to send the delivery's next
// offer. It is issued after creation, after a decline, after an expiry, and
// when re-dispatching a delivery that previously ran out of couriers.
type TryNextCourierCommand struct { //nolint:recvcheck //using for validation
	deliveryID kernel.UUID

	guard guard.ConstructorGuard
}

// NewTryNextCourierCommand creates a command to advance the dispatch flow for a delivery.
func NewTryNextCourierCommand(deliveryID kernel.UUID) (TryNextCourierCommand, error) {
	command := TryNextCourierCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setDeliveryID(deliveryID); err != nil {
		return TryNextCourierCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c TryNextCourierCommand) Validate() error {
	return c.guard.Validate(ErrTryNextCourierCommandIsNotConstructed)
}

// DeliveryID returns the delivery to dispatch.
func (c TryNextCourierCommand) DeliveryID() kernel.UUID {
	return c.deliveryID
}

func (c *TryNextCourierCommand) setDeliveryID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.deliveryID = id
	return nil
}
