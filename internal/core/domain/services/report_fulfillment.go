package services

import (
	"errors"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/pkg/errs"
)

var (
	// ErrStudyIsNotCompleted is returned when claiming a report for a study the device has not completed.
	ErrStudyIsNotCompleted = errors.New("study is not completed")
	// ErrStudyHasClaimedReport is returned when another current report of the study is claimed.
	ErrStudyHasClaimedReport = errors.New("study already has a claimed report")
	// ErrStudyHasCompletedReport is returned when another current report of the study is completed.
	ErrStudyHasCompletedReport = errors.New("study already has a completed report")
	// ErrRevisionInProgress is returned when a completed report already has an open revision.
	ErrRevisionInProgress = errors.New("report already has a revision in progress")
	// ErrReportBelongsToOtherStudy is returned when a report is checked against the wrong study.
	ErrReportBelongsToOtherStudy = errors.New("report belongs to another study")
)

// ReportFulfillment is a domain service enforcing that a study has at most one
// current CLAIMED report and at most one current COMPLETED report.
//
// Key responsibilities:
//   - Deciding claim exclusivity over all reports of a study
//   - Superseding the original when a revision completes
//   - Refusing a second open revision of the same report
//
// The reports slice passed to each method must hold every report of the study,
// loaded inside the same unit of work. The target may or may not be included.
//
// Example usage:
//
//	fulfillment := services.NewReportFulfillment()
//	if err := fulfillment.Claim(s, draft, reports, actor); err != nil {
//	    // another report is claimed or completed
//	}
type ReportFulfillment struct{}

// NewReportFulfillment creates a new ReportFulfillment instance.
func NewReportFulfillment() ReportFulfillment {
	return ReportFulfillment{}
}

// Claim makes actor the claimant of target.
//
// The study must be performed COMPLETED. Claim fails if any other current report
// of the study is CLAIMED, or COMPLETED unless target is a revision of it.
func (f ReportFulfillment) Claim(s *study.Study, target *report.Report, reports []*report.Report, actor kernel.Actor) error {
	if err := errors.Join(s.Validate(), target.Validate()); err != nil {
		return err
	}
	if !target.StudyID().IsEqual(s.ID()) {
		return invalidReport(ErrReportBelongsToOtherStudy)
	}
	if !s.IsCompleted() {
		return invalidReport(ErrStudyIsNotCompleted)
	}

	for _, r := range f.others(target, reports) {
		switch r.Status() {
		case report.Claimed:
			return invalidReport(ErrStudyHasClaimedReport)
		case report.Completed:
			if !isRevisionOf(target, r) {
				return invalidReport(ErrStudyHasCompletedReport)
			}
		}
	}

	return target.Claim(actor)
}

// Complete signs target. When target is a revision, the report it revises is
// marked superseded and returned so the caller can persist it.
func (f ReportFulfillment) Complete(
	target *report.Report,
	reports []*report.Report,
	actor kernel.Actor,
	body string,
	at time.Time,
) (*report.Report, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	var original *report.Report
	for _, r := range f.others(target, reports) {
		if r.Status() != report.Completed {
			continue
		}
		if !isRevisionOf(target, r) {
			return nil, invalidReport(ErrStudyHasCompletedReport)
		}
		original = r
	}

	if err := target.Complete(actor, body, at); err != nil {
		return nil, err
	}
	if original == nil {
		return nil, nil
	}
	if err := original.Supersede(); err != nil {
		return nil, err
	}
	return original, nil
}

// Revise opens a new draft revising original. Only one open revision per
// report is allowed.
func (f ReportFulfillment) Revise(
	original *report.Report,
	reports []*report.Report,
	id kernel.UUID,
	at time.Time,
) (*report.Report, error) {
	if err := original.Validate(); err != nil {
		return nil, err
	}

	for _, r := range f.others(original, reports) {
		if !r.Status().IsFinal() && isRevisionOf(r, original) {
			return nil, invalidReport(ErrRevisionInProgress)
		}
	}

	return original.Revise(id, at)
}

// others returns the current reports other than target.
func (f ReportFulfillment) others(target *report.Report, reports []*report.Report) []*report.Report {
	out := make([]*report.Report, 0, len(reports))
	for _, r := range reports {
		if r == nil || r.IsEqual(target) || !r.IsCurrent() {
			continue
		}
		out = append(out, r)
	}
	return out
}

func isRevisionOf(revision, original *report.Report) bool {
	ref := revision.RevisionOf()
	return ref != nil && ref.IsEqual(original.ID())
}

func invalidReport(rule error) error {
	return errs.NewValueIsInvalidErrorWithCause("report", rule)
}
