package commands

import (
	"errors"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

var ErrVoidOrderCommandIsNotConstructed = errors.New(
	"VoidOrderCommand must be created via NewVoidOrderCommand constructor",
)

// VoidOrderCommand requests that a placed order be marked as entered in error.
//
// Example:
//
//	cmd, err := NewVoidOrderCommand(orderID, actor, "wrong patient")
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type VoidOrderCommand struct {
	orderID kernel.UUID
	actor   kernel.Actor
	reason  string

	guard guard.ConstructorGuard
}

// NewVoidOrderCommand creates a void request. Order, actor and reason are all required.
func NewVoidOrderCommand(orderID kernel.UUID, actor kernel.Actor, reason string) (VoidOrderCommand, error) {
	cmd := VoidOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	var reasonErr error
	cmd.reason, reasonErr = requireReason(reason)
	if err := errors.Join(
		requireID("order id", orderID),
		requireActor(actor),
		reasonErr,
	); err != nil {
		return VoidOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.actor = actor
	return cmd, nil
}

func (c VoidOrderCommand) Validate() error {
	return c.guard.Validate(ErrVoidOrderCommandIsNotConstructed)
}

func (c VoidOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c VoidOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c VoidOrderCommand) Reason() string {
	return c.reason
}
