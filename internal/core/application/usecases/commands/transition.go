package commands

import (
	"errors"
	"fmt"

	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/pkg/errs"
)

// ErrWorklistSyncFailed is returned by remote-gated transitions when the worklist
// did not acknowledge the operation. The local order is left unchanged.
var ErrWorklistSyncFailed = errors.New("worklist synchronization failed")

// Outcome is the user-visible result of a lifecycle transition. The zero value
// means the transition did not complete because of a store failure.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSucceededInSync
	OutcomeSucceededOutOfSync
	OutcomeRejected
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceededInSync:
		return "succeeded_in_sync"
	case OutcomeSucceededOutOfSync:
		return "succeeded_out_of_sync"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsSucceeded reports whether the local transition was committed.
func (o Outcome) IsSucceeded() bool {
	return o == OutcomeSucceededInSync || o == OutcomeSucceededOutOfSync
}

// TransitionResult is returned by every lifecycle handler. Order and Study hold
// the last committed state and are nil when the order could not be loaded.
type TransitionResult struct {
	Order      *order.Order
	Study      *study.Study
	SyncStatus worklist.SyncStatus
	Outcome    Outcome
}

// SyncError describes a worklist send that was not acknowledged.
type SyncError struct {
	Operation worklist.Operation
	Outcome   worklist.Outcome
	Reason    string
}

func (e *SyncError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s %s: %s", ErrWorklistSyncFailed, e.Operation, e.Outcome, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrWorklistSyncFailed, e.Operation, e.Outcome)
}

func (e *SyncError) Unwrap() error {
	return ErrWorklistSyncFailed
}

// TransitionObserver is notified of every finished lifecycle transition.
type TransitionObserver interface {
	ObserveTransition(op worklist.Operation, outcome Outcome)
}

type noopObserver struct{}

func (noopObserver) ObserveTransition(worklist.Operation, Outcome) {}

// rejectedOrUnknown classifies a failure raised before the transport was called.
func rejectedOrUnknown(err error) Outcome {
	if errs.IsValidation(err) {
		return OutcomeRejected
	}
	return OutcomeUnknown
}
