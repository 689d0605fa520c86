package commands

import (
	"context"

	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/ports"
	"radiology/internal/pkg/errs"
)

// UpdatePerformedStatusCommandHandler applies device callbacks to studies. It
// takes the per-order lock of the study's order so a callback never races a
// discontinue. Nothing is sent to the worklist.
//
// Repeating the current status is accepted without a write. A study that
// already reached a final status rejects any other status.
type UpdatePerformedStatusCommandHandler struct {
	uowFactory StudyUoWFactory
	locker     ports.Locker
	handlerOptions
}

func NewUpdatePerformedStatusCommandHandler(
	uowFactory StudyUoWFactory,
	locker ports.Locker,
	opts ...Option,
) UpdatePerformedStatusCommandHandler {
	return UpdatePerformedStatusCommandHandler{
		uowFactory:     uowFactory,
		locker:         locker,
		handlerOptions: newHandlerOptions("update_performed_status", opts),
	}
}

func (h UpdatePerformedStatusCommandHandler) Handle(ctx context.Context, command UpdatePerformedStatusCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	studyRepo := uow.StudyRepository()
	s, err := h.getStudy(ctx, studyRepo, command.StudyInstanceUID())
	if err != nil {
		return err
	}

	unlock, err := lockOrder(ctx, h.locker, h.lockTimeout, s.OrderID())
	if err != nil {
		return err
	}
	defer unlock()

	// Re-read under the lock; the first read only resolved the order.
	s, err = h.getStudy(ctx, studyRepo, command.StudyInstanceUID())
	if err != nil {
		return err
	}
	if s.PerformedStatus() == command.PerformedStatus() {
		return nil
	}

	previous := s.PerformedStatus()
	if err = s.UpdatePerformedStatus(command.PerformedStatus()); err != nil {
		return err
	}
	if err = studyRepo.Update(ctx, s); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "performed status updated",
		"order_id", s.OrderID().String(),
		"study_id", s.ID().String(),
		"from", previous.String(),
		"to", s.PerformedStatus().String(),
	)
	return nil
}

func (h UpdatePerformedStatusCommandHandler) getStudy(
	ctx context.Context,
	repo ports.StudyRepository,
	uid string,
) (*study.Study, error) {
	s, err := repo.GetByStudyInstanceUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errs.NewObjectNotFoundError("study", uid)
	}
	return s, nil
}
