package commands

import (
	"context"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/domain/services"
	"radiology/internal/core/ports"
)

// DiscontinueOrderCommandHandler discontinues an order after the worklist has
// cancelled its procedure step.
//
// Every precondition is checked before the worklist is contacted: the order must
// be active, its study neither in progress nor completed, and the study must not
// have a completed report. The discontinuation is recorded as a new encounter
// of the discontinuing provider, committed together with the order.
type DiscontinueOrderCommandHandler struct {
	lifecycle
	policy services.DiscontinuePolicy
}

func NewDiscontinueOrderCommandHandler(
	uowFactory UoWFactory,
	transport ports.WorklistTransport,
	locker ports.Locker,
	opts ...Option,
) DiscontinueOrderCommandHandler {
	return DiscontinueOrderCommandHandler{
		lifecycle: newLifecycle("discontinue_order", uowFactory, transport, locker, opts),
		policy:    services.NewDiscontinuePolicy(),
	}
}

func (h DiscontinueOrderCommandHandler) Handle(
	ctx context.Context,
	command DiscontinueOrderCommand,
) (TransitionResult, error) {
	if err := command.Validate(); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}

	return h.runGated(ctx, command.OrderID(), command.Actor(), gatedTransition{
		op:         worklist.Discontinue,
		capability: kernel.CapabilityDiscontinueOrder,
		check: func(ctx context.Context, uow UoW, o *order.Order, s *study.Study) error {
			if err := o.ValidateDiscontinue(); err != nil {
				return err
			}
			hasCompleted, err := uow.ReportRepository().HasCompletedReport(ctx, s.ID())
			if err != nil {
				return err
			}
			return h.policy.Check(o, s, hasCompleted)
		},
		apply: func(o *order.Order, at time.Time) error {
			return o.Discontinue(command.Actor(), command.Reason(), at)
		},
		record: func(ctx context.Context, uow UoW, o *order.Order, at time.Time) error {
			encounter, err := order.NewEncounter(kernel.NewUUID(), o.PatientID(), command.Actor(), at)
			if err != nil {
				return err
			}
			return uow.EncounterRepository().Add(ctx, encounter)
		},
	})
}
