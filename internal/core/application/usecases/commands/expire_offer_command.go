package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrExpireOfferCommandIsNotConstructed = errors.New(
	"ExpireOfferCommand must be created via NewExpireOfferCommand constructor",
)

// ExpireOfferCommand marks an offer as timed out. Issued by the in-process
// timer and by the periodic sweep job, never directly by users.
type ExpireOfferCommand struct { //nolint:recvcheck //using for validation
	offerID kernel.UUID

	guard guard.ConstructorGuard
}

// NewExpireOfferCommand creates a command to expire an offer.
func NewExpireOfferCommand(offerID kernel.UUID) (ExpireOfferCommand, error) {
	command := ExpireOfferCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOfferID(offerID); err != nil {
		return ExpireOfferCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ExpireOfferCommand) Validate() error {
	return c.guard.Validate(ErrExpireOfferCommandIsNotConstructed)
}

// OfferID returns the offer being expired.
func (c ExpireOfferCommand) OfferID() kernel.UUID {
	return c.offerID
}

func (c *ExpireOfferCommand) setOfferID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.offerID = id
	return nil
}
