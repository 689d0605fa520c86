package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"
	"radiology/internal/pkg/errs"
)

// storeTimeout bounds store work that has to finish after the caller may have
// gone away, such as recording the outcome of a worklist send.
const storeTimeout = 30 * time.Second

// storeContext keeps the values of ctx but not its cancellation. A caller
// deadline that ends a worklist send must not also abort recording the outcome,
// or the study would stay pending.
func storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
}

// lifecycle holds what every order transition needs: storage, the worklist,
// the per-order lock and the handler options.
type lifecycle struct {
	uowFactory UoWFactory
	transport  ports.WorklistTransport
	locker     ports.Locker
	handlerOptions
}

func newLifecycle(
	component string,
	uowFactory UoWFactory,
	transport ports.WorklistTransport,
	locker ports.Locker,
	opts []Option,
) lifecycle {
	return lifecycle{
		uowFactory:     uowFactory,
		transport:      transport,
		locker:         locker,
		handlerOptions: newHandlerOptions(component, opts),
	}
}

// lockOrder serializes transitions of one order. Failing to get the lock within
// the lock timeout is reported as a conflict.
func lockOrder(ctx context.Context, locker ports.Locker, timeout time.Duration, orderID kernel.UUID) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	unlock, err := locker.Lock(lockCtx, orderID.String())
	if err != nil {
		return nil, errs.NewConflictErrorWithCause("order", orderID.String(), err)
	}
	return unlock, nil
}

// send delivers one worklist message. Transport errors and missing outcomes
// are folded into a failed result; a deadline becomes a timeout.
func (l lifecycle) send(ctx context.Context, op worklist.Operation, o *order.Order, s *study.Study) ports.SendResult {
	result, err := l.transport.Send(ctx, op, describe(o, s))
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ports.SendResult{Outcome: worklist.OutcomeTimeout, Reason: err.Error()}
	case err != nil:
		return ports.SendResult{Outcome: worklist.OutcomeFailed, Reason: err.Error()}
	case result.Outcome == worklist.UnknownOutcome:
		result.Outcome = worklist.OutcomeFailed
		if result.Reason == "" {
			result.Reason = "worklist returned no outcome"
		}
	}
	return result
}

// recordSync persists a study's sync status in its own transaction, detached
// from the caller's cancellation. Used after commit-then-sync transitions where
// the order is already committed.
func (l lifecycle) recordSync(ctx context.Context, s *study.Study, status worklist.SyncStatus) error {
	if err := s.RecordSync(status); err != nil {
		return err
	}

	ctx, cancel := storeContext(ctx)
	defer cancel()

	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.StudyRepository().Update(ctx, s); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (l lifecycle) logSync(ctx context.Context, op worklist.Operation, s *study.Study, sent ports.SendResult) {
	if sent.Outcome.IsOK() {
		l.logger.DebugContext(ctx, "worklist in sync",
			"order_id", s.OrderID().String(), "study_id", s.ID().String(), "operation", op.String())
		return
	}
	l.logger.WarnContext(ctx, "worklist out of sync",
		"order_id", s.OrderID().String(),
		"study_id", s.ID().String(),
		"operation", op.String(),
		"outcome", sent.Outcome.String(),
		"reason", sent.Reason,
	)
}

// logDiverged reports a store failure after the worklist accepted a message.
// This is the only state in which the two systems are known to disagree.
func (l lifecycle) logDiverged(ctx context.Context, op worklist.Operation, s *study.Study, err error) {
	l.logger.ErrorContext(ctx, "worklist accepted but local commit failed",
		"order_id", s.OrderID().String(),
		"study_id", s.ID().String(),
		"operation", op.String(),
		slog.Any("error", err),
	)
}

type orderStudyRepos interface {
	OrderRepoFactory
	StudyRepoFactory
}

// loadPair reads an order together with its study.
func loadPair(ctx context.Context, repos orderStudyRepos, orderID kernel.UUID) (*order.Order, *study.Study, error) {
	o, err := repos.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, errs.NewObjectNotFoundError("order", orderID.String())
	}

	s, err := repos.StudyRepository().GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if s == nil {
		return nil, nil, errs.NewObjectNotFoundErrorWithCause("study", orderID.String(), errors.New("order has no study"))
	}

	return o, s, nil
}

// describe builds the worklist payload for an order/study pair.
func describe(o *order.Order, s *study.Study) ports.StudyDescriptor {
	orderer := o.Orderer()
	return ports.StudyDescriptor{
		StudyID:          s.ID().String(),
		OrderID:          o.ID().String(),
		AccessionNumber:  o.AccessionNumber(),
		PatientID:        o.PatientID().String(),
		Modality:         s.Modality().String(),
		Priority:         s.Priority().String(),
		ScheduledDate:    s.ScheduledDate(),
		OrdererID:        orderer.ID().String(),
		OrdererName:      orderer.Name(),
		Instructions:     o.Instructions(),
		StudyInstanceUID: s.StudyInstanceUID(),
	}
}
