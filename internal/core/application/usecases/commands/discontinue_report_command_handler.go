package commands

import (
	"context"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/ports"
)

// DiscontinueReportCommandHandler abandons a report that is not yet terminal,
// freeing the study for another claim.
type DiscontinueReportCommandHandler struct {
	reporting
}

func NewDiscontinueReportCommandHandler(
	uowFactory ReportUoWFactory,
	locker ports.Locker,
	opts ...Option,
) DiscontinueReportCommandHandler {
	return DiscontinueReportCommandHandler{
		reporting: newReporting("discontinue_report", uowFactory, locker, opts),
	}
}

func (h DiscontinueReportCommandHandler) Handle(
	ctx context.Context,
	command DiscontinueReportCommand,
) (*report.Report, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	if err := command.Actor().Require(kernel.CapabilityDiscontinueReport); err != nil {
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

	if err = target.Discontinue(); err != nil {
		return nil, err
	}
	if err = uow.ReportRepository().Update(ctx, target); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logTransition(ctx, "report discontinued", target, command.Actor(), h.now())
	return target, nil
}
