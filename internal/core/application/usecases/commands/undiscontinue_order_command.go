package commands

import (
	"errors"
	"strings"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

var ErrUndiscontinueOrderCommandIsNotConstructed = errors.New(
	"UndiscontinueOrderCommand must be created via NewUndiscontinueOrderCommand constructor",
)

// UndiscontinueOrderCommand requests that a discontinued order be resumed.
// The reason is optional and only logged.
type UndiscontinueOrderCommand struct {
	orderID kernel.UUID
	actor   kernel.Actor
	reason  string

	guard guard.ConstructorGuard
}

func NewUndiscontinueOrderCommand(orderID kernel.UUID, actor kernel.Actor, reason string) (UndiscontinueOrderCommand, error) {
	if err := errors.Join(
		requireID("order id", orderID),
		requireActor(actor),
	); err != nil {
		return UndiscontinueOrderCommand{}, err
	}

	return UndiscontinueOrderCommand{
		orderID: orderID,
		actor:   actor,
		reason:  strings.TrimSpace(reason),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c UndiscontinueOrderCommand) Validate() error {
	return c.guard.Validate(ErrUndiscontinueOrderCommandIsNotConstructed)
}

func (c UndiscontinueOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c UndiscontinueOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c UndiscontinueOrderCommand) Reason() string {
	return c.reason
}
