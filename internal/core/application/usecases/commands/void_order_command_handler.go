package commands

import (
	"context"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"
)

// VoidOrderCommandHandler voids an order after the worklist has cancelled its
// procedure step. When the worklist does not acknowledge, the order stays
// active and the study records OUT_OF_SYNC_VOID_FAILED.
//
// Example:
//
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, ErrWorklistSyncFailed):
//	    // result.Outcome == OutcomeFailed, order unchanged
//	case errs.IsValidation(err):
//	    // result.Outcome == OutcomeRejected
//	case err != nil:
//	    // store failure
//	}
type VoidOrderCommandHandler struct {
	lifecycle
}

func NewVoidOrderCommandHandler(
	uowFactory UoWFactory,
	transport ports.WorklistTransport,
	locker ports.Locker,
	opts ...Option,
) VoidOrderCommandHandler {
	return VoidOrderCommandHandler{
		lifecycle: newLifecycle("void_order", uowFactory, transport, locker, opts),
	}
}

func (h VoidOrderCommandHandler) Handle(ctx context.Context, command VoidOrderCommand) (TransitionResult, error) {
	if err := command.Validate(); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}

	return h.runGated(ctx, command.OrderID(), command.Actor(), gatedTransition{
		op:         worklist.Void,
		capability: kernel.CapabilityVoidOrder,
		check: func(_ context.Context, _ UoW, o *order.Order, _ *study.Study) error {
			return o.ValidateVoid()
		},
		apply: func(o *order.Order, at time.Time) error {
			return o.Void(command.Actor(), command.Reason(), at)
		},
	})
}
