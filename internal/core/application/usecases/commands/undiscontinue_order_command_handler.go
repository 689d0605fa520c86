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

// UndiscontinueOrderCommandHandler resumes a discontinued order once the
// worklist has re-scheduled its procedure step.
type UndiscontinueOrderCommandHandler struct {
	lifecycle
}

func NewUndiscontinueOrderCommandHandler(
	uowFactory UoWFactory,
	transport ports.WorklistTransport,
	locker ports.Locker,
	opts ...Option,
) UndiscontinueOrderCommandHandler {
	return UndiscontinueOrderCommandHandler{
		lifecycle: newLifecycle("undiscontinue_order", uowFactory, transport, locker, opts),
	}
}

func (h UndiscontinueOrderCommandHandler) Handle(
	ctx context.Context,
	command UndiscontinueOrderCommand,
) (TransitionResult, error) {
	if err := command.Validate(); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}

	result, err := h.runGated(ctx, command.OrderID(), command.Actor(), gatedTransition{
		op:         worklist.Undiscontinue,
		capability: kernel.CapabilityDiscontinueOrder,
		check: func(_ context.Context, _ UoW, o *order.Order, _ *study.Study) error {
			return o.ValidateUndiscontinue()
		},
		apply: func(o *order.Order, at time.Time) error {
			return o.Undiscontinue(command.Actor(), command.Reason(), at)
		},
	})
	if err != nil {
		return result, err
	}

	h.logger.InfoContext(ctx, "order undiscontinued",
		"order_id", command.OrderID().String(), "reason", command.Reason())
	return result, nil
}
