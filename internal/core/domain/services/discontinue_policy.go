package services

import (
	"errors"

	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/pkg/errs"
)

// DiscontinuePolicy checks whether an order may be discontinued. It combines the
// order's own flags with the device-reported state of its study and the report
// state of that study.
type DiscontinuePolicy struct{}

func NewDiscontinuePolicy() DiscontinuePolicy {
	return DiscontinuePolicy{}
}

// Check returns the first violated precondition. Order flags are checked first,
// then the completed report, then the performed status of the study.
func (DiscontinuePolicy) Check(o *order.Order, s *study.Study, hasCompletedReport bool) error {
	if err := errors.Join(o.Validate(), s.Validate()); err != nil {
		return err
	}
	if err := o.ValidateDiscontinue(); err != nil {
		return err
	}
	if hasCompletedReport {
		return errs.NewValueIsInvalidErrorWithCause("order", order.ErrOrderHasCompletedReport)
	}
	if s.IsInProgress() {
		return errs.NewValueIsInvalidErrorWithCause("order", order.ErrOrderIsInProgress)
	}
	if s.IsCompleted() {
		return errs.NewValueIsInvalidErrorWithCause("order", order.ErrOrderIsCompleted)
	}
	return nil
}
