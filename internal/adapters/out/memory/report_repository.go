package memory

import (
	"context"
	"slices"
	"strings"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
)

type reportRepository struct {
	uow *UnitOfWork
}

func (r reportRepository) Add(_ context.Context, rp *report.Report) error {
	if err := rp.Validate(); err != nil {
		return err
	}
	c, err := copyReport(rp)
	if err != nil {
		return err
	}
	return r.uow.insert(kindReport, c.ID(), func(cs *changeSet) {
		cs.reports[c.ID()] = c
	})
}

func (r reportRepository) Update(_ context.Context, rp *report.Report) error {
	if err := rp.Validate(); err != nil {
		return err
	}
	c, err := copyReport(rp)
	if err != nil {
		return err
	}
	return r.uow.update(kindReport, c.ID(), func(cs *changeSet) {
		cs.reports[c.ID()] = c
	})
}

func (r reportRepository) Get(_ context.Context, id kernel.UUID) (*report.Report, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	rp, ok := lookup(r.uow, reports, id)
	if !ok {
		return nil, nil
	}
	return copyReport(rp)
}

func (r reportRepository) GetByStudy(_ context.Context, studyID kernel.UUID) ([]*report.Report, error) {
	if err := studyID.Validate(); err != nil {
		return nil, err
	}
	return copyAll(r.ofStudy(studyID), copyReport)
}

func (r reportRepository) HasCompletedReport(_ context.Context, studyID kernel.UUID) (bool, error) {
	return r.hasCurrent(studyID, report.Completed)
}

func (r reportRepository) HasClaimedReport(_ context.Context, studyID kernel.UUID) (bool, error) {
	return r.hasCurrent(studyID, report.Claimed)
}

func (r reportRepository) GetActiveReport(_ context.Context, studyID kernel.UUID) (*report.Report, error) {
	if err := studyID.Validate(); err != nil {
		return nil, err
	}

	var active *report.Report
	for _, rp := range r.ofStudy(studyID) {
		if rp.IsCurrent() {
			active = rp
		}
	}
	if active == nil {
		return nil, nil
	}
	return copyReport(active)
}

func (r reportRepository) Find(_ context.Context, criteria report.SearchCriteria) ([]*report.Report, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	matched := slices.DeleteFunc(scan(r.uow, reports), func(rp *report.Report) bool {
		patientID, ok := r.patientOf(rp)
		return !ok || !criteria.Matches(rp, patientID)
	})
	sortReports(matched)
	return copyAll(matched, copyReport)
}

func (r reportRepository) hasCurrent(studyID kernel.UUID, status report.Status) (bool, error) {
	if err := studyID.Validate(); err != nil {
		return false, err
	}
	return slices.ContainsFunc(r.ofStudy(studyID), func(rp *report.Report) bool {
		return rp.IsCurrent() && rp.Status() == status
	}), nil
}

// ofStudy returns the store's copies of a study's reports by date, then id.
func (r reportRepository) ofStudy(studyID kernel.UUID) []*report.Report {
	out := slices.DeleteFunc(scan(r.uow, reports), func(rp *report.Report) bool {
		return !rp.StudyID().IsEqual(studyID)
	})
	sortReports(out)
	return out
}

// patientOf follows report → study → order to the patient.
func (r reportRepository) patientOf(rp *report.Report) (kernel.UUID, bool) {
	s, ok := lookup(r.uow, studies, rp.StudyID())
	if !ok {
		return kernel.UUID{}, false
	}
	o, ok := lookup(r.uow, orders, s.OrderID())
	if !ok {
		return kernel.UUID{}, false
	}
	return o.PatientID(), true
}

func sortReports(rs []*report.Report) {
	slices.SortFunc(rs, func(a, b *report.Report) int {
		if c := a.Date().Compare(b.Date()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
}

func reports(cs *changeSet) map[kernel.UUID]*report.Report { return cs.reports }
