package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAcceptOfferCommandIsNotConstructed = errors.New(
	"AcceptOfferCommand must be created via NewAcceptOfferCommand constructor",
)

// AcceptOfferCommand represents a courier accepting an outstanding offer.
type AcceptOfferCommand struct { //nolint:recvcheck //using for validation
	offerID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptOfferCommand creates a command to accept an offer.
func NewAcceptOfferCommand(offerID kernel.UUID) (AcceptOfferCommand, error) {
	command := AcceptOfferCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOfferID(offerID); err != nil {
		return AcceptOfferCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOfferCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOfferCommandIsNotConstructed)
}

// OfferID returns the offer being accepted.
func (c AcceptOfferCommand) OfferID() kernel.UUID {
	return c.offerID
}

func (c *AcceptOfferCommand) setOfferID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.offerID = id
	return nil
}
