package order

import (
	"errors"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

// ErrSearchCriteriaIsNotConstructed is returned for a zero-value SearchCriteria.
var ErrSearchCriteriaIsNotConstructed = errors.New("SearchCriteria must be created via SearchCriteriaBuilder")

// SearchCriteria filters orders. An absent field leaves its dimension
// unconstrained. Voided and discontinued orders are excluded unless explicitly
// included.
type SearchCriteria struct {
	patientID           *kernel.UUID
	orderDate           kernel.DateRange
	includeVoided       bool
	includeDiscontinued bool
	guard               guard.ConstructorGuard
}

// SearchCriteriaBuilder assembles a SearchCriteria.
//
// Example:
//
//	criteria, err := order.NewSearchCriteriaBuilder().
//	    WithPatient(patientID).
//	    WithFromDate(from).
//	    IncludeDiscontinued().
//	    Build()
type SearchCriteriaBuilder struct {
	patientID           *kernel.UUID
	from                *time.Time
	to                  *time.Time
	includeVoided       bool
	includeDiscontinued bool
}

func NewSearchCriteriaBuilder() *SearchCriteriaBuilder {
	return &SearchCriteriaBuilder{}
}

func (b *SearchCriteriaBuilder) WithPatient(patientID kernel.UUID) *SearchCriteriaBuilder {
	b.patientID = &patientID
	return b
}

// WithFromDate sets the inclusive lower bound on the order date.
func (b *SearchCriteriaBuilder) WithFromDate(from time.Time) *SearchCriteriaBuilder {
	b.from = &from
	return b
}

// WithToDate sets the inclusive upper bound on the order date.
func (b *SearchCriteriaBuilder) WithToDate(to time.Time) *SearchCriteriaBuilder {
	b.to = &to
	return b
}

func (b *SearchCriteriaBuilder) IncludeVoided() *SearchCriteriaBuilder {
	b.includeVoided = true
	return b
}

func (b *SearchCriteriaBuilder) IncludeDiscontinued() *SearchCriteriaBuilder {
	b.includeDiscontinued = true
	return b
}

// Build validates the collected fields. A patient with a zero id or an inverted
// date range is rejected.
func (b *SearchCriteriaBuilder) Build() (SearchCriteria, error) {
	var patientErr error
	if b.patientID != nil {
		patientErr = b.patientID.Validate()
	}
	dateRange, rangeErr := kernel.NewDateRange(b.from, b.to)
	if err := errors.Join(patientErr, rangeErr); err != nil {
		return SearchCriteria{}, err
	}

	var patientID *kernel.UUID
	if b.patientID != nil {
		id := *b.patientID
		patientID = &id
	}

	return SearchCriteria{
		patientID:           patientID,
		orderDate:           dateRange,
		includeVoided:       b.includeVoided,
		includeDiscontinued: b.includeDiscontinued,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

func (c SearchCriteria) Validate() error {
	return c.guard.Validate(ErrSearchCriteriaIsNotConstructed)
}

// PatientID returns the patient filter, or nil if unconstrained.
func (c SearchCriteria) PatientID() *kernel.UUID {
	if c.patientID == nil {
		return nil
	}
	id := *c.patientID
	return &id
}

func (c SearchCriteria) OrderDate() kernel.DateRange {
	return c.orderDate
}

func (c SearchCriteria) IncludeVoided() bool {
	return c.includeVoided
}

func (c SearchCriteria) IncludeDiscontinued() bool {
	return c.includeDiscontinued
}

// Matches reports whether o satisfies the criteria. Draft orders never match.
func (c SearchCriteria) Matches(o *Order) bool {
	if o == nil || o.IsNew() {
		return false
	}
	if c.patientID != nil && !o.PatientID().IsEqual(*c.patientID) {
		return false
	}
	if !c.orderDate.Contains(o.OrderDate()) {
		return false
	}
	if o.IsVoided() && !c.includeVoided {
		return false
	}
	if o.IsDiscontinued() && !c.includeDiscontinued {
		return false
	}
	return true
}
