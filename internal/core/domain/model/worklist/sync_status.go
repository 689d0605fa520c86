package worklist

import (
	"fmt"

	"radiology/internal/pkg/errs"
)

// SyncState is the first axis of a SyncStatus.
type SyncState int

const (
	UnknownState SyncState = iota
	Pending
	InSync
	OutOfSync
)

func (s SyncState) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case InSync:
		return "IN_SYNC"
	case OutOfSync:
		return "OUT_OF_SYNC"
	default:
		return "UNKNOWN"
	}
}

// SyncStatus records the outcome of the last worklist operation attempted for a
// study. The zero value means no operation was ever attempted.
//
//	PENDING_<OP>             the operation is about to be sent
//	IN_SYNC_<OP>             the worklist acknowledged the operation
//	OUT_OF_SYNC_<OP>_FAILED  the send failed, timed out or was not confirmed
type SyncStatus struct {
	state     SyncState
	operation Operation
}

type statusDisplay struct {
	code        string
	description string
}

func getStatusDisplay() map[SyncStatus]statusDisplay {
	table := make(map[SyncStatus]statusDisplay, len(Operations())*3)
	for _, op := range Operations() {
		name := op.String()
		table[SyncStatus{state: Pending, operation: op}] = statusDisplay{
			code:        "PENDING_" + name,
			description: fmt.Sprintf("%s pending", name),
		}
		table[SyncStatus{state: InSync, operation: op}] = statusDisplay{
			code:        "IN_SYNC_" + name,
			description: fmt.Sprintf("%s synchronized with worklist", name),
		}
		table[SyncStatus{state: OutOfSync, operation: op}] = statusDisplay{
			code:        "OUT_OF_SYNC_" + name + "_FAILED",
			description: fmt.Sprintf("%s failed, worklist out of sync", name),
		}
	}
	return table
}

// NewPendingStatus marks op as about to be sent.
func NewPendingStatus(op Operation) (SyncStatus, error) {
	if err := op.Validate(); err != nil {
		return SyncStatus{}, err
	}
	return SyncStatus{state: Pending, operation: op}, nil
}

// NewInSyncStatus marks op as acknowledged by the worklist.
func NewInSyncStatus(op Operation) (SyncStatus, error) {
	if err := op.Validate(); err != nil {
		return SyncStatus{}, err
	}
	return SyncStatus{state: InSync, operation: op}, nil
}

// SyncStatusFromOutcome folds a transport outcome into a status. OutcomeOK
// yields IN_SYNC; failure and timeout both yield OUT_OF_SYNC. An unknown outcome
// means nothing was confirmed and is treated as a failure.
func SyncStatusFromOutcome(op Operation, outcome Outcome) (SyncStatus, error) {
	if err := op.Validate(); err != nil {
		return SyncStatus{}, err
	}
	if outcome.IsOK() {
		return SyncStatus{state: InSync, operation: op}, nil
	}
	return SyncStatus{state: OutOfSync, operation: op}, nil
}

// ParseSyncStatus restores a status from its code. The empty code restores the
// zero status.
func ParseSyncStatus(code string) (SyncStatus, error) {
	if code == "" {
		return SyncStatus{}, nil
	}
	for status, display := range getStatusDisplay() {
		if display.code == code {
			return status, nil
		}
	}
	return SyncStatus{}, errs.NewValueIsInvalidErrorWithCause("sync status", fmt.Errorf("%q is not a valid sync status", code))
}

// State returns the state axis.
func (s SyncStatus) State() SyncState {
	return s.state
}

// Operation returns the operation axis.
func (s SyncStatus) Operation() Operation {
	return s.operation
}

func (s SyncStatus) IsZero() bool {
	return s == SyncStatus{}
}

func (s SyncStatus) IsPending() bool {
	return s.state == Pending
}

func (s SyncStatus) IsInSync() bool {
	return s.state == InSync
}

func (s SyncStatus) IsOutOfSync() bool {
	return s.state == OutOfSync
}

// Validate accepts the zero status and every (state, operation) pair in the
// display table.
func (s SyncStatus) Validate() error {
	if s.IsZero() {
		return nil
	}
	if _, ok := getStatusDisplay()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"sync status",
			fmt.Errorf("%s/%s is not a valid sync status", s.state, s.operation),
		)
	}
	return nil
}

// Code returns the persisted code, e.g. OUT_OF_SYNC_SAVE_FAILED. The zero status
// has an empty code.
func (s SyncStatus) Code() string {
	return getStatusDisplay()[s].code
}

// Description returns display text for the status.
func (s SyncStatus) Description() string {
	if s.IsZero() {
		return "never synchronized"
	}
	return getStatusDisplay()[s].description
}

func (s SyncStatus) String() string {
	if s.IsZero() {
		return "NONE"
	}
	return s.Code()
}
