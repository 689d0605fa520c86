package commands

import (
	"context"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/ports"
)

// CompleteReportCommandHandler signs a claimed report. Only the claimant may
// sign unless the actor holds the override capability. Completing a revision
// supersedes the report it revises in the same transaction.
type CompleteReportCommandHandler struct {
	reporting
}

func NewCompleteReportCommandHandler(
	uowFactory ReportUoWFactory,
	locker ports.Locker,
	opts ...Option,
) CompleteReportCommandHandler {
	return CompleteReportCommandHandler{
		reporting: newReporting("complete_report", uowFactory, locker, opts),
	}
}

func (h CompleteReportCommandHandler) Handle(ctx context.Context, command CompleteReportCommand) (*report.Report, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	if err := command.Actor().Require(kernel.CapabilityCompleteReport); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	target, sr, err := h.lockReport(ctx, uow, command.ReportID())
	if err != nil {
		return nil, err
	}
	defer sr.unlock()

	now := h.now()
	superseded, err := h.fulfillment.Complete(target, sr.reports, command.Actor(), command.Body(), now)
	if err != nil {
		return nil, err
	}

	reportRepo := uow.ReportRepository()
	if superseded != nil {
		if err = reportRepo.Update(ctx, superseded); err != nil {
			return nil, err
		}
	}
	if err = reportRepo.Update(ctx, target); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logTransition(ctx, "report completed", target, command.Actor(), now)
	return target, nil
}
