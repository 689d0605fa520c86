package commands

import (
	"context"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"
	"radiology/internal/pkg/errs"
)

// UpdateStudyScheduleCommandHandler reschedules the study of an active order.
// Like placement it commits locally first and then sends UPDATE; a failed send
// leaves the new schedule in place and yields OutcomeSucceededOutOfSync.
type UpdateStudyScheduleCommandHandler struct {
	lifecycle
}

func NewUpdateStudyScheduleCommandHandler(
	uowFactory UoWFactory,
	transport ports.WorklistTransport,
	locker ports.Locker,
	opts ...Option,
) UpdateStudyScheduleCommandHandler {
	return UpdateStudyScheduleCommandHandler{
		lifecycle: newLifecycle("update_study_schedule", uowFactory, transport, locker, opts),
	}
}

func (h UpdateStudyScheduleCommandHandler) Handle(
	ctx context.Context,
	command UpdateStudyScheduleCommand,
) (result TransitionResult, err error) {
	defer func() {
		h.observer.ObserveTransition(worklist.Update, result.Outcome)
	}()

	if err = command.Validate(); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}
	if err = command.Actor().Require(kernel.CapabilityScheduleStudy); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}

	unlock, err := lockOrder(ctx, h.locker, h.lockTimeout, command.OrderID())
	if err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}
	defer unlock()

	result, err = h.reschedule(ctx, command)
	if err != nil {
		return result, err
	}
	o, s := result.Order, result.Study

	sent := h.send(ctx, worklist.Update, o, s)
	h.logSync(ctx, worklist.Update, s, sent)

	status, err := worklist.SyncStatusFromOutcome(worklist.Update, sent.Outcome)
	if err != nil {
		return result, err
	}
	if err = h.recordSync(ctx, s, status); err != nil {
		if sent.Outcome.IsOK() {
			h.logDiverged(ctx, worklist.Update, s, err)
		}
		return result, err
	}

	result.SyncStatus = status
	if status.IsInSync() {
		result.Outcome = OutcomeSucceededInSync
	} else {
		result.Outcome = OutcomeSucceededOutOfSync
	}
	return result, nil
}

// reschedule commits the new schedule with a PENDING_UPDATE status.
func (h UpdateStudyScheduleCommandHandler) reschedule(
	ctx context.Context,
	command UpdateStudyScheduleCommand,
) (TransitionResult, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, s, err := loadPair(ctx, uow, command.OrderID())
	if err != nil {
		return TransitionResult{Outcome: rejectedOrUnknown(err)}, err
	}
	result := TransitionResult{Order: o, Study: s, SyncStatus: s.SyncStatus()}

	switch {
	case o.IsVoided():
		err = errs.NewValueIsInvalidErrorWithCause("order", order.ErrOrderIsVoided)
	case o.IsDiscontinued():
		err = errs.NewValueIsInvalidErrorWithCause("order", order.ErrOrderIsAlreadyDiscontinued)
	default:
		err = s.Reschedule(command.ScheduledDate(), command.Priority())
	}
	if err != nil {
		result.Outcome = rejectedOrUnknown(err)
		return result, err
	}

	pending, err := worklist.NewPendingStatus(worklist.Update)
	if err != nil {
		return result, err
	}
	if err = s.RecordSync(pending); err != nil {
		return result, err
	}
	if err = uow.StudyRepository().Update(ctx, s); err != nil {
		return result, err
	}
	if err = uow.Commit(ctx); err != nil {
		return result, err
	}

	result.SyncStatus = pending
	return result, nil
}
