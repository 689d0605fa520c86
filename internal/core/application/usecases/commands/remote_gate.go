package commands

import (
	"context"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
)

// gatedTransition describes one remote-gated order transition. check runs
// inside the unit of work before anything is sent; apply mutates the order only
// after the worklist acknowledged the operation. record is optional and writes
// extra rows in the same unit of work as the order.
type gatedTransition struct {
	op         worklist.Operation
	capability kernel.Capability
	check      func(ctx context.Context, uow UoW, o *order.Order, s *study.Study) error
	apply      func(o *order.Order, at time.Time) error
	record     func(ctx context.Context, uow UoW, o *order.Order, at time.Time) error
}

// runGated drives void, unvoid, discontinue and undiscontinue. The worklist is
// told first and the local change is committed only when it acknowledges. On
// any other outcome the order is left as it was, the study records the failed
// sync and a *SyncError is returned.
//
// Only the send runs under the caller's context. The unit of work uses a
// detached one so that a caller deadline expiring during the send still lets
// the failed sync, or the acknowledged change, be committed.
func (l lifecycle) runGated(
	ctx context.Context,
	orderID kernel.UUID,
	actor kernel.Actor,
	t gatedTransition,
) (result TransitionResult, err error) {
	defer func() {
		l.observer.ObserveTransition(t.op, result.Outcome)
	}()

	if err = actor.Require(t.capability); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}

	unlock, err := lockOrder(ctx, l.locker, l.lockTimeout, orderID)
	if err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}
	defer unlock()

	storeCtx, cancel := storeContext(ctx)
	defer cancel()

	uow := l.uowFactory.Create()
	if err = uow.Begin(storeCtx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(storeCtx)
	}()

	o, s, err := loadPair(storeCtx, uow, orderID)
	if err != nil {
		return TransitionResult{Outcome: rejectedOrUnknown(err)}, err
	}
	result = TransitionResult{Order: o, Study: s, SyncStatus: s.SyncStatus()}

	if err = t.check(storeCtx, uow, o, s); err != nil {
		result.Outcome = rejectedOrUnknown(err)
		return result, err
	}

	sent := l.send(ctx, t.op, o, s)
	l.logSync(ctx, t.op, s, sent)

	status, err := worklist.SyncStatusFromOutcome(t.op, sent.Outcome)
	if err != nil {
		return result, err
	}
	if err = s.RecordSync(status); err != nil {
		return result, err
	}

	if !sent.Outcome.IsOK() {
		if err = uow.StudyRepository().Update(storeCtx, s); err != nil {
			return result, err
		}
		if err = uow.Commit(storeCtx); err != nil {
			return result, err
		}
		result.SyncStatus = status
		result.Outcome = OutcomeFailed
		return result, &SyncError{Operation: t.op, Outcome: sent.Outcome, Reason: sent.Reason}
	}

	at := l.now()
	if err = t.apply(o, at); err != nil {
		l.logDiverged(ctx, t.op, s, err)
		return result, err
	}
	if t.record != nil {
		if err = t.record(storeCtx, uow, o, at); err != nil {
			l.logDiverged(ctx, t.op, s, err)
			return result, err
		}
	}
	if err = uow.OrderRepository().Update(storeCtx, o); err != nil {
		l.logDiverged(ctx, t.op, s, err)
		return result, err
	}
	if err = uow.StudyRepository().Update(storeCtx, s); err != nil {
		l.logDiverged(ctx, t.op, s, err)
		return result, err
	}
	if err = uow.Commit(storeCtx); err != nil {
		l.logDiverged(ctx, t.op, s, err)
		return result, err
	}

	result.SyncStatus = status
	result.Outcome = OutcomeSucceededInSync
	return result, nil
}
