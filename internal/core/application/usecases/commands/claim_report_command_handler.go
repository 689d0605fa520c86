package commands

import (
	"context"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/domain/services"
	"radiology/internal/core/ports"
	"radiology/internal/pkg/errs"
)

// ClaimReportCommandHandler makes an actor the claimant of a report of a
// performed study. At most one current report per study may be claimed and a
// study with a current completed report can only be claimed through a revision
// of it.
//
// Example:
//
//	cmd, _ := NewClaimReportCommand(studyID, nil, radiologist)
//	r, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, services.ErrStudyHasClaimedReport) {
//	    // somebody else is already reading this study
//	}
type ClaimReportCommandHandler struct {
	reporting
}

func NewClaimReportCommandHandler(
	uowFactory ReportUoWFactory,
	locker ports.Locker,
	opts ...Option,
) ClaimReportCommandHandler {
	return ClaimReportCommandHandler{
		reporting: newReporting("claim_report", uowFactory, locker, opts),
	}
}

func (h ClaimReportCommandHandler) Handle(ctx context.Context, command ClaimReportCommand) (*report.Report, error) {
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

	sr, err := h.lockStudy(ctx, uow, command.StudyID())
	if err != nil {
		return nil, err
	}
	defer sr.unlock()

	now := h.now()
	target, isNew, err := h.target(command, sr, now)
	if err != nil {
		return nil, err
	}

	if err = h.fulfillment.Claim(sr.study, target, sr.reports, command.Actor()); err != nil {
		return nil, err
	}

	reportRepo := uow.ReportRepository()
	if isNew {
		err = reportRepo.Add(ctx, target)
	} else {
		err = reportRepo.Update(ctx, target)
	}
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logTransition(ctx, "report claimed", target, command.Actor(), now)
	return target, nil
}

// target returns the report to claim and whether it still has to be added.
func (h ClaimReportCommandHandler) target(
	command ClaimReportCommand,
	sr studyReports,
	now time.Time,
) (*report.Report, bool, error) {
	reportID := command.ReportID()
	if reportID == nil {
		draft, err := report.NewReport(kernel.NewUUID(), sr.study.ID(), now)
		return draft, true, err
	}

	r, err := sr.find(*reportID)
	if err != nil {
		return nil, false, errs.NewObjectNotFoundErrorWithCause("report", reportID.String(), services.ErrReportBelongsToOtherStudy)
	}
	return r, false, nil
}
