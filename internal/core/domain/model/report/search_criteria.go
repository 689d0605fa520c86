package report

import (
	"errors"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

// ErrSearchCriteriaIsNotConstructed is returned for a zero-value SearchCriteria.
var ErrSearchCriteriaIsNotConstructed = errors.New("SearchCriteria must be created via SearchCriteriaBuilder")

// SearchCriteria filters reports. An absent field leaves its dimension
// unconstrained. Discontinued reports are excluded unless IncludeDiscontinued is
// set or Status explicitly asks for them.
type SearchCriteria struct {
	patientID            *kernel.UUID
	reportDate           kernel.DateRange
	includeDiscontinued  bool
	status               *Status
	principalInterpreter *kernel.UUID
	guard                guard.ConstructorGuard
}

// SearchCriteriaBuilder assembles a SearchCriteria.
type SearchCriteriaBuilder struct {
	patientID            *kernel.UUID
	from                 *time.Time
	to                   *time.Time
	includeDiscontinued  bool
	status               *Status
	principalInterpreter *kernel.UUID
}

func NewSearchCriteriaBuilder() *SearchCriteriaBuilder {
	return &SearchCriteriaBuilder{}
}

func (b *SearchCriteriaBuilder) WithPatient(patientID kernel.UUID) *SearchCriteriaBuilder {
	b.patientID = &patientID
	return b
}

func (b *SearchCriteriaBuilder) WithFromDate(from time.Time) *SearchCriteriaBuilder {
	b.from = &from
	return b
}

func (b *SearchCriteriaBuilder) WithToDate(to time.Time) *SearchCriteriaBuilder {
	b.to = &to
	return b
}

func (b *SearchCriteriaBuilder) IncludeDiscontinued() *SearchCriteriaBuilder {
	b.includeDiscontinued = true
	return b
}

func (b *SearchCriteriaBuilder) WithStatus(status Status) *SearchCriteriaBuilder {
	b.status = &status
	return b
}

func (b *SearchCriteriaBuilder) WithPrincipalInterpreter(actorID kernel.UUID) *SearchCriteriaBuilder {
	b.principalInterpreter = &actorID
	return b
}

// Build validates the collected fields.
func (b *SearchCriteriaBuilder) Build() (SearchCriteria, error) {
	var patientErr, statusErr, interpreterErr error
	if b.patientID != nil {
		patientErr = b.patientID.Validate()
	}
	if b.status != nil {
		statusErr = b.status.Validate()
	}
	if b.principalInterpreter != nil {
		interpreterErr = b.principalInterpreter.Validate()
	}
	dateRange, rangeErr := kernel.NewDateRange(b.from, b.to)
	if err := errors.Join(patientErr, statusErr, interpreterErr, rangeErr); err != nil {
		return SearchCriteria{}, err
	}

	c := SearchCriteria{
		reportDate:          dateRange,
		includeDiscontinued: b.includeDiscontinued,
		guard:               guard.NewConstructorGuard(),
	}
	if b.patientID != nil {
		id := *b.patientID
		c.patientID = &id
	}
	if b.status != nil {
		s := *b.status
		c.status = &s
	}
	if b.principalInterpreter != nil {
		id := *b.principalInterpreter
		c.principalInterpreter = &id
	}
	return c, nil
}

func (c SearchCriteria) Validate() error {
	return c.guard.Validate(ErrSearchCriteriaIsNotConstructed)
}

func (c SearchCriteria) PatientID() *kernel.UUID {
	if c.patientID == nil {
		return nil
	}
	id := *c.patientID
	return &id
}

func (c SearchCriteria) ReportDate() kernel.DateRange {
	return c.reportDate
}

func (c SearchCriteria) IncludeDiscontinued() bool {
	return c.includeDiscontinued
}

func (c SearchCriteria) Status() *Status {
	if c.status == nil {
		return nil
	}
	s := *c.status
	return &s
}

func (c SearchCriteria) PrincipalInterpreter() *kernel.UUID {
	if c.principalInterpreter == nil {
		return nil
	}
	id := *c.principalInterpreter
	return &id
}

// ExcludesDiscontinued reports whether discontinued reports are filtered out.
// An explicit status filter takes precedence over the inclusion flag.
func (c SearchCriteria) ExcludesDiscontinued() bool {
	return c.status == nil && !c.includeDiscontinued
}

// Matches reports whether r, whose study was ordered for patientID, satisfies the criteria.
func (c SearchCriteria) Matches(r *Report, patientID kernel.UUID) bool {
	if r == nil {
		return false
	}
	if c.patientID != nil && !patientID.IsEqual(*c.patientID) {
		return false
	}
	if !c.reportDate.Contains(r.Date()) {
		return false
	}
	if c.ExcludesDiscontinued() && r.Status() == Discontinued {
		return false
	}
	if c.status != nil && r.Status() != *c.status {
		return false
	}
	if c.principalInterpreter != nil {
		interpreter := r.PrincipalInterpreter()
		if interpreter == nil || !interpreter.ID().IsEqual(*c.principalInterpreter) {
			return false
		}
	}
	return true
}
