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

// UnvoidOrderCommandHandler restores a voided order once the worklist has
// re-scheduled its procedure step. Unvoid needs the void capability.
type UnvoidOrderCommandHandler struct {
	lifecycle
}

func NewUnvoidOrderCommandHandler(
	uowFactory UoWFactory,
	transport ports.WorklistTransport,
	locker ports.Locker,
	opts ...Option,
) UnvoidOrderCommandHandler {
	return UnvoidOrderCommandHandler{
		lifecycle: newLifecycle("unvoid_order", uowFactory, transport, locker, opts),
	}
}

func (h UnvoidOrderCommandHandler) Handle(ctx context.Context, command UnvoidOrderCommand) (TransitionResult, error) {
	if err := command.Validate(); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}

	return h.runGated(ctx, command.OrderID(), command.Actor(), gatedTransition{
		op:         worklist.Unvoid,
		capability: kernel.CapabilityVoidOrder,
		check: func(_ context.Context, _ UoW, o *order.Order, _ *study.Study) error {
			return o.ValidateUnvoid()
		},
		apply: func(o *order.Order, _ time.Time) error {
			return o.Unvoid(command.Actor())
		},
	})
}
