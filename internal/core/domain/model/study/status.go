package study

import (
	"fmt"
	"strings"

	"radiology/internal/pkg/errs"
)

// ScheduledStatus is the scheduled procedure step status of a study.
type ScheduledStatus int

const (
	UnknownScheduledStatus ScheduledStatus = iota
	Scheduled
	Arrived
	Ready
	Started
	Departed
)

func getScheduledStatusStrings() map[ScheduledStatus]string {
	return map[ScheduledStatus]string{
		Scheduled: "SCHEDULED",
		Arrived:   "ARRIVED",
		Ready:     "READY",
		Started:   "STARTED",
		Departed:  "DEPARTED",
	}
}

func ParseScheduledStatus(s string) (ScheduledStatus, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for st, name := range getScheduledStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return UnknownScheduledStatus, errs.NewValueIsInvalidErrorWithCause(
		"scheduled status",
		fmt.Errorf("%q is not a valid scheduled status", s),
	)
}

func (s ScheduledStatus) Validate() error {
	if _, ok := getScheduledStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("scheduled status", fmt.Errorf("%d is not a valid scheduled status", s))
	}
	return nil
}

func (s ScheduledStatus) String() string {
	if name, ok := getScheduledStatusStrings()[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// PerformedStatus is the performed procedure step status reported by the device.
//
//	NotPerformed ──> InProgress ──┬──> Completed
//	      │                       └──> Discontinued
//	      └──────────> Completed | Discontinued
//
// Completed and Discontinued are final; repeating the current status is accepted
// because devices resend procedure step messages.
type PerformedStatus int

const (
	// NotPerformed is the zero value: the device has not reported anything yet.
	NotPerformed PerformedStatus = iota
	InProgress
	Completed
	Discontinued
)

func getPerformedStatusStrings() map[PerformedStatus]string {
	return map[PerformedStatus]string{
		NotPerformed: "",
		InProgress:   "IN_PROGRESS",
		Completed:    "COMPLETED",
		Discontinued: "DISCONTINUED",
	}
}

// ParsePerformedStatus resolves a DICOM performed procedure step status. The
// empty string is NotPerformed.
func ParsePerformedStatus(s string) (PerformedStatus, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	for st, name := range getPerformedStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return NotPerformed, errs.NewValueIsInvalidErrorWithCause(
		"performed status",
		fmt.Errorf("%q is not a valid performed status", s),
	)
}

func (s PerformedStatus) Validate() error {
	if _, ok := getPerformedStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("performed status", fmt.Errorf("%d is not a valid performed status", s))
	}
	return nil
}

func (s PerformedStatus) String() string {
	if name, ok := getPerformedStatusStrings()[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsFinal reports whether no further device updates may change the status.
func (s PerformedStatus) IsFinal() bool {
	return s == Completed || s == Discontinued
}

// Transition validates a device report and returns the resulting status.
func (s PerformedStatus) Transition(next PerformedStatus) (PerformedStatus, error) {
	if err := next.Validate(); err != nil {
		return s, err
	}
	if next == NotPerformed {
		return s, errs.NewValueIsRequiredError("performed status")
	}
	if next == s {
		return s, nil
	}
	if s.IsFinal() {
		return s, errs.NewValueIsInvalidErrorWithCause(
			"performed status",
			fmt.Errorf("%s is final and cannot change to %s", s, next),
		)
	}
	return next, nil
}
