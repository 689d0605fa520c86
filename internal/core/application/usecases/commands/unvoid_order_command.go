package commands

import (
	"errors"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

var ErrUnvoidOrderCommandIsNotConstructed = errors.New(
	"UnvoidOrderCommand must be created via NewUnvoidOrderCommand constructor",
)

// UnvoidOrderCommand requests that a voided order be restored.
type UnvoidOrderCommand struct {
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewUnvoidOrderCommand(orderID kernel.UUID, actor kernel.Actor) (UnvoidOrderCommand, error) {
	if err := errors.Join(
		requireID("order id", orderID),
		requireActor(actor),
	); err != nil {
		return UnvoidOrderCommand{}, err
	}

	return UnvoidOrderCommand{
		orderID: orderID,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c UnvoidOrderCommand) Validate() error {
	return c.guard.Validate(ErrUnvoidOrderCommandIsNotConstructed)
}

func (c UnvoidOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c UnvoidOrderCommand) Actor() kernel.Actor {
	return c.actor
}
