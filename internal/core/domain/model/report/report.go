package report

import (
	"errors"
	"strings"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/errs"
	"radiology/internal/pkg/guard"
)

var (
	// ErrReportIsNotConstructed is returned when a Report was not created through a constructor.
	ErrReportIsNotConstructed = errors.New("Report must be created via NewReport constructor")
	// ErrActorIsNotClaimant is returned when someone other than the claimant completes a report.
	ErrActorIsNotClaimant = errors.New("actor is not the claimant of the report")
	// ErrReportIsSuperseded is returned when revising a report that already has a completed revision.
	ErrReportIsSuperseded = errors.New("report is superseded by a revision")
	// ErrBodyIsRequired is returned when completing a report without content.
	ErrBodyIsRequired = errs.NewValueIsRequiredError("report body")
)

// Report is the interpretation of one study.
//
// Business rules:
//   - A report belongs to exactly one study
//   - The claimant becomes the principal results interpreter
//   - Only the claimant completes a report, unless the actor may override
//   - Completed reports are immutable; revisions are new reports
type Report struct {
	id                   kernel.UUID
	studyID              kernel.UUID
	status               Status
	principalInterpreter *kernel.Actor
	date                 time.Time
	body                 string
	revisionOf           *kernel.UUID
	superseded           bool
	guard                guard.ConstructorGuard
}

// NewReport creates a draft report for studyID dated at.
func NewReport(id kernel.UUID, studyID kernel.UUID, at time.Time) (*Report, error) {
	var dateErr error
	if at.IsZero() {
		dateErr = errs.NewValueIsRequiredError("report date")
	}
	if err := errors.Join(id.Validate(), studyID.Validate(), dateErr); err != nil {
		return nil, err
	}

	return &Report{
		id:      id,
		studyID: studyID,
		status:  Draft,
		date:    at,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// RestoreReport rebuilds a report from storage.
func RestoreReport(
	id kernel.UUID,
	studyID kernel.UUID,
	status Status,
	principalInterpreter *kernel.Actor,
	date time.Time,
	body string,
	revisionOf *kernel.UUID,
	superseded bool,
) (*Report, error) {
	if err := errors.Join(id.Validate(), studyID.Validate(), status.Validate()); err != nil {
		return nil, err
	}

	r := &Report{
		id:         id,
		studyID:    studyID,
		status:     status,
		date:       date,
		body:       body,
		superseded: superseded,
		guard:      guard.NewConstructorGuard(),
	}
	if principalInterpreter != nil {
		a := *principalInterpreter
		r.principalInterpreter = &a
	}
	if revisionOf != nil {
		ref := *revisionOf
		r.revisionOf = &ref
	}
	return r, nil
}

func (r *Report) Validate() error {
	if r == nil {
		return ErrReportIsNotConstructed
	}
	return r.guard.Validate(ErrReportIsNotConstructed)
}

func (r *Report) IsEqual(other *Report) bool {
	return other != nil && r.id.IsEqual(other.id)
}

func (r *Report) ID() kernel.UUID {
	return r.id
}

func (r *Report) StudyID() kernel.UUID {
	return r.studyID
}

func (r *Report) Status() Status {
	return r.status
}

// PrincipalInterpreter returns the claimant, or nil for an unclaimed draft.
func (r *Report) PrincipalInterpreter() *kernel.Actor {
	if r.principalInterpreter == nil {
		return nil
	}
	a := *r.principalInterpreter
	return &a
}

// Date is the creation date of a draft and the signing date once completed.
func (r *Report) Date() time.Time {
	return r.date
}

func (r *Report) Body() string {
	return r.body
}

// RevisionOf returns the report this draft revises, if any.
func (r *Report) RevisionOf() *kernel.UUID {
	if r.revisionOf == nil {
		return nil
	}
	ref := *r.revisionOf
	return &ref
}

// IsSuperseded reports whether a completed revision replaced this report.
func (r *Report) IsSuperseded() bool {
	return r.superseded
}

// IsCurrent reports whether the report counts towards the study's claimed and
// completed limits.
func (r *Report) IsCurrent() bool {
	return !r.superseded && r.status != Discontinued
}

// Claim makes actor the principal interpreter of a draft.
func (r *Report) Claim(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return kernel.ErrActorIsRequired
	}
	next, err := r.status.Claim()
	if err != nil {
		return err
	}

	r.status = next
	r.principalInterpreter = &actor
	return nil
}

// Complete signs a claimed report. The actor must be the claimant or hold
// kernel.CapabilityOverrideReport.
func (r *Report) Complete(actor kernel.Actor, body string, at time.Time) error {
	if err := actor.Validate(); err != nil {
		return kernel.ErrActorIsRequired
	}
	next, err := r.status.Complete()
	if err != nil {
		return err
	}
	if !r.isClaimant(actor) && !actor.Can(kernel.CapabilityOverrideReport) {
		return errs.NewForbiddenErrorWithCause(string(kernel.CapabilityOverrideReport), ErrActorIsNotClaimant)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		body = strings.TrimSpace(r.body)
	}
	if body == "" {
		return ErrBodyIsRequired
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("report date")
	}

	r.status = next
	r.body = body
	r.date = at
	return nil
}

// Discontinue abandons a draft or claimed report.
func (r *Report) Discontinue() error {
	next, err := r.status.Discontinue()
	if err != nil {
		return err
	}

	r.status = next
	return nil
}

// Revise creates a draft copy of a completed report. The original is left
// untouched until the revision completes.
func (r *Report) Revise(id kernel.UUID, at time.Time) (*Report, error) {
	if r.status != Completed {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			errors.New(r.status.String()+" is not a valid status to revise"),
		)
	}
	if r.superseded {
		return nil, errs.NewValueIsInvalidErrorWithCause("report", ErrReportIsSuperseded)
	}

	revision, err := NewReport(id, r.studyID, at)
	if err != nil {
		return nil, err
	}
	original := r.id
	revision.revisionOf = &original
	revision.body = r.body
	return revision, nil
}

// Supersede marks a completed report as replaced by a completed revision.
func (r *Report) Supersede() error {
	if r.status != Completed {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			errors.New(r.status.String()+" is not a valid status to supersede"),
		)
	}
	if r.superseded {
		return errs.NewValueIsInvalidErrorWithCause("report", ErrReportIsSuperseded)
	}

	r.superseded = true
	return nil
}

func (r *Report) isClaimant(actor kernel.Actor) bool {
	return r.principalInterpreter != nil && r.principalInterpreter.IsEqual(actor)
}
