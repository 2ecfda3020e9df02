package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrDeclineOfferCommandIsNotConstructed = errors.New(
	"DeclineOfferCommand must be created via NewDeclineOfferCommand constructor",
)

// DeclineOfferCommand represents a courier declining an outstanding offer.
type DeclineOfferCommand struct { //nolint:recvcheck //using for validation
	offerID kernel.UUID

	guard guard.ConstructorGuard
}

// NewDeclineOfferCommand creates a command to decline an offer.
func NewDeclineOfferCommand(offerID kernel.UUID) (DeclineOfferCommand, error) {
	command := DeclineOfferCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOfferID(offerID); err != nil {
		return DeclineOfferCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c DeclineOfferCommand) Validate() error {
	return c.guard.Validate(ErrDeclineOfferCommandIsNotConstructed)
}

// OfferID returns the offer being declined.
func (c DeclineOfferCommand) OfferID() kernel.UUID {
	return c.offerID
}

func (c *DeclineOfferCommand) setOfferID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.offerID = id
	return nil
}
