package commands

import (
	"errors"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/pkg/errs"
	"radiology/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand carries a draft order and its draft study to be placed
// together.
//
// Example:
//
//	draft, _ := order.NewOrder(patientID, orderer, "contrast allergy")
//	ct, _ := study.NewStudy(study.CT, study.Routine, &scheduled)
//	cmd, err := NewPlaceOrderCommand(draft, ct, orderer)
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
//	if result.Outcome == OutcomeSucceededOutOfSync {
//	    // placed locally, the worklist does not know about it yet
//	}
type PlaceOrderCommand struct {
	order *order.Order
	study *study.Study
	actor kernel.Actor

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a place request. The drafts are handed over to
// the handler, which assigns their identities.
func NewPlaceOrderCommand(draft *order.Order, draftStudy *study.Study, actor kernel.Actor) (PlaceOrderCommand, error) {
	var orderErr, studyErr error
	if draft == nil {
		orderErr = errs.NewValueIsRequiredError("order")
	}
	if draftStudy == nil {
		studyErr = errs.NewValueIsRequiredError("study")
	}
	if err := errors.Join(orderErr, studyErr, requireActor(actor)); err != nil {
		return PlaceOrderCommand{}, err
	}

	return PlaceOrderCommand{
		order: draft,
		study: draftStudy,
		actor: actor,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) Order() *order.Order {
	return c.order
}

func (c PlaceOrderCommand) Study() *study.Study {
	return c.study
}

func (c PlaceOrderCommand) Actor() kernel.Actor {
	return c.actor
}
