package kernel

import (
	"fmt"
	"time"

	"radiology/internal/pkg/errs"
)

// ErrDateRangeIsInverted is returned when the lower bound of a range is after its upper bound.
var ErrDateRangeIsInverted = errs.NewValueIsInvalidErrorWithCause("date range", fmt.Errorf("from date is after to date"))

// DateRange is an optional closed interval on a timestamp. A missing bound leaves
// that side unconstrained, so the zero DateRange matches every instant.
type DateRange struct {
	from *time.Time
	to   *time.Time
}

// NewDateRange builds a range from optional bounds. Both bounds are inclusive.
func NewDateRange(from, to *time.Time) (DateRange, error) {
	if from != nil && to != nil && from.After(*to) {
		return DateRange{}, ErrDateRangeIsInverted
	}

	r := DateRange{}
	if from != nil {
		f := *from
		r.from = &f
	}
	if to != nil {
		t := *to
		r.to = &t
	}
	return r, nil
}

// From returns the lower bound, if any.
func (r DateRange) From() *time.Time {
	if r.from == nil {
		return nil
	}
	f := *r.from
	return &f
}

// To returns the upper bound, if any.
func (r DateRange) To() *time.Time {
	if r.to == nil {
		return nil
	}
	t := *r.to
	return &t
}

// IsUnbounded reports whether neither bound is set.
func (r DateRange) IsUnbounded() bool {
	return r.from == nil && r.to == nil
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.from != nil && t.Before(*r.from) {
		return false
	}
	if r.to != nil && t.After(*r.to) {
		return false
	}
	return true
}
