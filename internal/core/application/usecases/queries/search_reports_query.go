package queries

import (
	"errors"

	"radiology/internal/core/domain/model/report"
	"radiology/internal/pkg/guard"
)

var ErrSearchReportsQueryIsNotConstructed = errors.New(
	"SearchReportsQuery must be created via NewSearchReportsQuery constructor",
)

// SearchReportsQuery finds reports by patient, report date, status, principal
// interpreter and discontinued inclusion. An explicit status filter overrides
// the discontinued inclusion flag.
type SearchReportsQuery struct {
	criteria report.SearchCriteria
	guard    guard.ConstructorGuard
}

func NewSearchReportsQuery(criteria report.SearchCriteria) (SearchReportsQuery, error) {
	if err := criteria.Validate(); err != nil {
		return SearchReportsQuery{}, err
	}
	return SearchReportsQuery{criteria: criteria, guard: guard.NewConstructorGuard()}, nil
}

func (q SearchReportsQuery) Validate() error {
	return q.guard.Validate(ErrSearchReportsQueryIsNotConstructed)
}

func (q SearchReportsQuery) Criteria() report.SearchCriteria {
	return q.criteria
}
