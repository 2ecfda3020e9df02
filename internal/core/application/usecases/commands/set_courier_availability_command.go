package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrSetCourierAvailabilityCommandIsNotConstructed = errors.New(
	"SetCourierAvailabilityCommand must be created via NewSetCourierAvailabilityCommand constructor",
)

// SetCourierAvailabilityCommand toggles whether a courier receives offers.
// Opting in puts the courier into the candidate pool; opting out removes it
// without touching deliveries the courier is already working on.
type SetCourierAvailabilityCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	available bool

	guard guard.ConstructorGuard
}

// NewSetCourierAvailabilityCommand creates a command to change a courier's availability.
func NewSetCourierAvailabilityCommand(courierID kernel.UUID, available bool) (SetCourierAvailabilityCommand, error) {
	command := SetCourierAvailabilityCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setCourierID(courierID); err != nil {
		return SetCourierAvailabilityCommand{}, err
	}
	command.available = available

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c SetCourierAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetCourierAvailabilityCommandIsNotConstructed)
}

// CourierID returns the courier ID from the command.
func (c SetCourierAvailabilityCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Available reports the desired availability state.
func (c SetCourierAvailabilityCommand) Available() bool {
	return c.available
}

func (c *SetCourierAvailabilityCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}
