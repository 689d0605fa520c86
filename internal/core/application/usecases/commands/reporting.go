package commands

import (
	"context"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/services"
	"radiology/internal/core/ports"
	"radiology/internal/pkg/errs"
)

// reporting holds what every report handler needs. Report transitions take the
// lock of the order owning the study, the same lock a discontinue takes.
type reporting struct {
	uowFactory  ReportUoWFactory
	locker      ports.Locker
	fulfillment services.ReportFulfillment
	handlerOptions
}

func newReporting(component string, uowFactory ReportUoWFactory, locker ports.Locker, opts []Option) reporting {
	return reporting{
		uowFactory:     uowFactory,
		locker:         locker,
		fulfillment:    services.NewReportFulfillment(),
		handlerOptions: newHandlerOptions(component, opts),
	}
}

// studyReports is everything a report transition decides on, read under the lock.
type studyReports struct {
	study   *study.Study
	reports []*report.Report
	unlock  func()
}

// find returns the report with id among the study's reports.
func (sr studyReports) find(id kernel.UUID) (*report.Report, error) {
	for _, r := range sr.reports {
		if r.ID().IsEqual(id) {
			return r, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("report", id.String())
}

// lockStudy resolves the study's order, locks it and reads the study and all
// its reports again under the lock. The caller must call unlock.
func (rp reporting) lockStudy(ctx context.Context, uow ReportUoW, studyID kernel.UUID) (studyReports, error) {
	s, err := rp.getStudy(ctx, uow, studyID)
	if err != nil {
		return studyReports{}, err
	}

	unlock, err := lockOrder(ctx, rp.locker, rp.lockTimeout, s.OrderID())
	if err != nil {
		return studyReports{}, err
	}

	if s, err = rp.getStudy(ctx, uow, studyID); err != nil {
		unlock()
		return studyReports{}, err
	}
	reports, err := uow.ReportRepository().GetByStudy(ctx, studyID)
	if err != nil {
		unlock()
		return studyReports{}, err
	}

	return studyReports{study: s, reports: reports, unlock: unlock}, nil
}

// lockReport resolves a report's study and locks it like lockStudy.
func (rp reporting) lockReport(ctx context.Context, uow ReportUoW, reportID kernel.UUID) (*report.Report, studyReports, error) {
	r, err := uow.ReportRepository().Get(ctx, reportID)
	if err != nil {
		return nil, studyReports{}, err
	}
	if r == nil {
		return nil, studyReports{}, errs.NewObjectNotFoundError("report", reportID.String())
	}

	sr, err := rp.lockStudy(ctx, uow, r.StudyID())
	if err != nil {
		return nil, studyReports{}, err
	}
	if r, err = sr.find(reportID); err != nil {
		sr.unlock()
		return nil, studyReports{}, err
	}
	return r, sr, nil
}

func (rp reporting) getStudy(ctx context.Context, uow ReportUoW, studyID kernel.UUID) (*study.Study, error) {
	s, err := uow.StudyRepository().Get(ctx, studyID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errs.NewObjectNotFoundError("study", studyID.String())
	}
	return s, nil
}

func (rp reporting) logTransition(ctx context.Context, msg string, r *report.Report, actor kernel.Actor, at time.Time) {
	rp.logger.InfoContext(ctx, msg,
		"report_id", r.ID().String(),
		"study_id", r.StudyID().String(),
		"status", r.Status().String(),
		"actor_id", actor.ID().String(),
		"at", at,
	)
}
