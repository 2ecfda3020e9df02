package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrReportCourierLocationCommandIsNotConstructed = errors.New(
	"ReportCourierLocationCommand must be created via NewReportCourierLocationCommand constructor",
)

// ReportCourierLocationCommand records a courier's last known position.
// The nearest-distance selection strategy ranks couriers by this position.
type ReportCourierLocationCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	location  kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewReportCourierLocationCommand creates a command to record a courier position.
func NewReportCourierLocationCommand(
	courierID kernel.UUID, location kernel.GeoPoint,
) (ReportCourierLocationCommand, error) {
	command := ReportCourierLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCourierID(courierID),
		command.setLocation(location),
	); err != nil {
		return ReportCourierLocationCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportCourierLocationCommand) Validate() error {
	return c.guard.Validate(ErrReportCourierLocationCommandIsNotConstructed)
}

// CourierID returns the courier ID from the command.
func (c ReportCourierLocationCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Location returns the reported position.
func (c ReportCourierLocationCommand) Location() kernel.GeoPoint {
	return c.location
}

func (c *ReportCourierLocationCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}

func (c *ReportCourierLocationCommand) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}
