package queries

import (
	"errors"

	"radiology/internal/core/domain/model/order"
	"radiology/internal/pkg/guard"
)

var ErrSearchOrdersQueryIsNotConstructed = errors.New(
	"SearchOrdersQuery must be created via NewSearchOrdersQuery constructor",
)

// SearchOrdersQuery finds orders by patient, order date, and voided or
// discontinued inclusion. Unset filters leave their dimension unconstrained.
//
// Example:
//
//	criteria, err := order.NewSearchCriteriaBuilder().
//	    WithPatient(patientID).
//	    WithFromDate(monday).
//	    IncludeDiscontinued().
//	    Build()
//	query, err := NewSearchOrdersQuery(criteria)
type SearchOrdersQuery struct {
	criteria order.SearchCriteria
	guard    guard.ConstructorGuard
}

// NewSearchOrdersQuery wraps criteria built by order.SearchCriteriaBuilder.
// Zero-value criteria are rejected.
func NewSearchOrdersQuery(criteria order.SearchCriteria) (SearchOrdersQuery, error) {
	if err := criteria.Validate(); err != nil {
		return SearchOrdersQuery{}, err
	}
	return SearchOrdersQuery{criteria: criteria, guard: guard.NewConstructorGuard()}, nil
}

func (q SearchOrdersQuery) Validate() error {
	return q.guard.Validate(ErrSearchOrdersQueryIsNotConstructed)
}

func (q SearchOrdersQuery) Criteria() order.SearchCriteria {
	return q.criteria
}
