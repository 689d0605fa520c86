package commands

import (
	"context"
	"errors"
	"log/slog"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"
	"radiology/internal/pkg/errs"
)

// PlaceOrderCommandHandler places a new order with its study.
//
// The encounter, order and study are committed as one unit first, then the
// worklist is sent a SAVE. The local commit stands whatever the worklist
// answers: a failed or timed out send yields OutcomeSucceededOutOfSync with a
// nil error, and the study records OUT_OF_SYNC_SAVE_FAILED.
//
// The study instance UID is assigned on the first acknowledged SAVE, taken
// from the worklist when it returns one and derived from the study id otherwise.
type PlaceOrderCommandHandler struct {
	lifecycle
}

func NewPlaceOrderCommandHandler(
	uowFactory UoWFactory,
	transport ports.WorklistTransport,
	locker ports.Locker,
	opts ...Option,
) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		lifecycle: newLifecycle("place_order", uowFactory, transport, locker, opts),
	}
}

func (h PlaceOrderCommandHandler) Handle(ctx context.Context, command PlaceOrderCommand) (result TransitionResult, err error) {
	defer func() {
		h.observer.ObserveTransition(worklist.Save, result.Outcome)
	}()

	if err = command.Validate(); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}

	o, s, actor := command.Order(), command.Study(), command.Actor()
	if err = actor.Require(kernel.CapabilityPlaceOrder); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}
	if err = errors.Join(o.Validate(), o.ValidatePlace(), validateDraftStudy(s)); err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}

	orderID := kernel.NewUUID()
	unlock, err := lockOrder(ctx, h.locker, h.lockTimeout, orderID)
	if err != nil {
		return TransitionResult{Outcome: OutcomeRejected}, err
	}
	defer unlock()

	pending, err := worklist.NewPendingStatus(worklist.Save)
	if err != nil {
		return TransitionResult{}, err
	}

	now := h.now()
	encounter, err := order.NewEncounter(kernel.NewUUID(), o.PatientID(), actor, now)
	if err != nil {
		return TransitionResult{Outcome: rejectedOrUnknown(err)}, err
	}
	if err = errors.Join(
		o.Place(orderID, encounter.ID(), now),
		s.Place(kernel.NewUUID(), orderID),
		s.RecordSync(pending),
	); err != nil {
		return TransitionResult{Outcome: rejectedOrUnknown(err)}, err
	}

	if err = h.commitPlacement(ctx, encounter, o, s); err != nil {
		return TransitionResult{}, err
	}
	result = TransitionResult{Order: o, Study: s, SyncStatus: pending}

	sent := h.send(ctx, worklist.Save, o, s)
	h.logSync(ctx, worklist.Save, s, sent)

	status, err := worklist.SyncStatusFromOutcome(worklist.Save, sent.Outcome)
	if err != nil {
		return result, err
	}
	if sent.Outcome.IsOK() {
		h.assignStudyInstanceUID(ctx, s, sent.StudyInstanceUID)
	}

	if err = h.recordSync(ctx, s, status); err != nil {
		if sent.Outcome.IsOK() {
			h.logDiverged(ctx, worklist.Save, s, err)
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

// commitPlacement writes encounter, order and study in a single transaction.
func (h PlaceOrderCommandHandler) commitPlacement(
	ctx context.Context,
	encounter *order.Encounter,
	o *order.Order,
	s *study.Study,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.EncounterRepository().Add(ctx, encounter); err != nil {
		return err
	}
	if err := uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}
	if err := uow.StudyRepository().Add(ctx, s); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// assignStudyInstanceUID keeps an already assigned UID. A UID that cannot be
// derived is logged and left empty; the SAVE itself still succeeded.
func (h PlaceOrderCommandHandler) assignStudyInstanceUID(ctx context.Context, s *study.Study, fromWorklist string) {
	if s.StudyInstanceUID() != "" {
		return
	}

	uid := fromWorklist
	if uid == "" {
		derived, err := s.ID().DICOMUID(h.uidRoot)
		if err != nil {
			h.logger.ErrorContext(ctx, "cannot derive study instance uid",
				"study_id", s.ID().String(), slog.Any("error", err))
			return
		}
		uid = derived
	}

	if err := s.AssignStudyInstanceUID(uid); err != nil {
		h.logger.ErrorContext(ctx, "cannot assign study instance uid",
			"study_id", s.ID().String(), "uid", uid, slog.Any("error", err))
	}
}

func validateDraftStudy(s *study.Study) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if !s.IsNew() {
		return errs.NewValueIsInvalidErrorWithCause("study", study.ErrStudyIsAlreadyPlaced)
	}
	if err := s.Modality().Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("modality", err)
	}
	return nil
}
