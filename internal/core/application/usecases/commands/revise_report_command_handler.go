package commands

import (
	"context"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/ports"
)

// ReviseReportCommandHandler creates a draft copy of a completed report. The
// original stays COMPLETED and current until the revision is completed.
type ReviseReportCommandHandler struct {
	reporting
}

func NewReviseReportCommandHandler(
	uowFactory ReportUoWFactory,
	locker ports.Locker,
	opts ...Option,
) ReviseReportCommandHandler {
	return ReviseReportCommandHandler{
		reporting: newReporting("revise_report", uowFactory, locker, opts),
	}
}

func (h ReviseReportCommandHandler) Handle(ctx context.Context, command ReviseReportCommand) (*report.Report, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	if err := command.Actor().Require(kernel.CapabilityClaimReport); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	original, sr, err := h.lockReport(ctx, uow, command.ReportID())
	if err != nil {
		return nil, err
	}
	defer sr.unlock()

	now := h.now()
	revision, err := h.fulfillment.Revise(original, sr.reports, kernel.NewUUID(), now)
	if err != nil {
		return nil, err
	}
	if err = uow.ReportRepository().Add(ctx, revision); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logTransition(ctx, "report revised", revision, command.Actor(), now)
	return revision, nil
}
