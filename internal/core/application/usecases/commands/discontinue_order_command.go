package commands

import (
	"errors"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

var ErrDiscontinueOrderCommandIsNotConstructed = errors.New(
	"DiscontinueOrderCommand must be created via NewDiscontinueOrderCommand constructor",
)

// DiscontinueOrderCommand requests that an order be stopped before it is performed.
// The effective date is captured by the handler, never supplied by the caller.
type DiscontinueOrderCommand struct {
	orderID kernel.UUID
	actor   kernel.Actor
	reason  string

	guard guard.ConstructorGuard
}

func NewDiscontinueOrderCommand(orderID kernel.UUID, actor kernel.Actor, reason string) (DiscontinueOrderCommand, error) {
	cmd := DiscontinueOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	var reasonErr error
	cmd.reason, reasonErr = requireReason(reason)
	if err := errors.Join(
		requireID("order id", orderID),
		requireActor(actor),
		reasonErr,
	); err != nil {
		return DiscontinueOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.actor = actor
	return cmd, nil
}

func (c DiscontinueOrderCommand) Validate() error {
	return c.guard.Validate(ErrDiscontinueOrderCommandIsNotConstructed)
}

func (c DiscontinueOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c DiscontinueOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c DiscontinueOrderCommand) Reason() string {
	return c.reason
}
