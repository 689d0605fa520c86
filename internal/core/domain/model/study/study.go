package study

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/pkg/errs"
	"radiology/internal/pkg/guard"
)

var (
	// ErrStudyIsNotConstructed is returned when a Study was not created through NewStudy or RestoreStudy.
	ErrStudyIsNotConstructed = errors.New("Study must be created via NewStudy constructor")
	// ErrStudyIsAlreadyPlaced is returned when identity is assigned to a study that already has one.
	ErrStudyIsAlreadyPlaced = errors.New("study already has an identity")
	// ErrStudyIsNotPlaced is returned when an operation needs a persisted study.
	ErrStudyIsNotPlaced = errors.New("study has no identity")
	// ErrStudyInstanceUIDIsAssigned is returned when a different UID is assigned to a study that already has one.
	ErrStudyInstanceUIDIsAssigned = errors.New("study instance uid is already assigned")
	// ErrStudyIsAlreadyPerformed is returned when a performed study is rescheduled.
	ErrStudyIsAlreadyPerformed = errors.New("study is already performed")
)

// Study is the imaging procedure instance of an order. It is loaded and saved
// together with its order as one unit.
//
// A draft study (zero id) is built with NewStudy and receives its identity and
// order reference when the order is placed. Studies read from storage are built
// with RestoreStudy.
type Study struct {
	id               kernel.UUID
	orderID          kernel.UUID
	modality         Modality
	priority         Priority
	scheduledDate    *time.Time
	scheduledStatus  ScheduledStatus
	performedStatus  PerformedStatus
	studyInstanceUID string
	syncStatus       worklist.SyncStatus
	guard            guard.ConstructorGuard
}

// NewStudy creates a draft study. Modality is required; a zero priority selects
// Routine. The scheduled date is optional.
//
// Example:
//
//	s, err := study.NewStudy(study.CT, study.Stat, nil)
func NewStudy(modality Modality, priority Priority, scheduledDate *time.Time) (*Study, error) {
	s := &Study{
		scheduledStatus: Scheduled,
		guard:           guard.NewConstructorGuard(),
	}
	if priority == UnknownPriority {
		priority = Routine
	}

	if err := errors.Join(
		s.setModality(modality),
		s.setPriority(priority),
	); err != nil {
		return nil, err
	}
	s.scheduledDate = copyTime(scheduledDate)

	return s, nil
}

// RestoreStudy rebuilds a study from storage.
func RestoreStudy(
	id kernel.UUID,
	orderID kernel.UUID,
	modality Modality,
	priority Priority,
	scheduledDate *time.Time,
	scheduledStatus ScheduledStatus,
	performedStatus PerformedStatus,
	studyInstanceUID string,
	syncStatus worklist.SyncStatus,
) (*Study, error) {
	s := &Study{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		s.setModality(modality),
		s.setPriority(priority),
		scheduledStatus.Validate(),
		performedStatus.Validate(),
		syncStatus.Validate(),
	); err != nil {
		return nil, err
	}

	s.id = id
	s.orderID = orderID
	s.scheduledDate = copyTime(scheduledDate)
	s.scheduledStatus = scheduledStatus
	s.performedStatus = performedStatus
	s.studyInstanceUID = strings.TrimSpace(studyInstanceUID)
	s.syncStatus = syncStatus

	return s, nil
}

// Validate ensures the study was built by a constructor.
func (s *Study) Validate() error {
	if s == nil {
		return ErrStudyIsNotConstructed
	}
	return s.guard.Validate(ErrStudyIsNotConstructed)
}

// IsEqual compares studies by identity.
func (s *Study) IsEqual(other *Study) bool {
	return other != nil && s.id.IsEqual(other.id)
}

func (s *Study) ID() kernel.UUID {
	return s.id
}

func (s *Study) OrderID() kernel.UUID {
	return s.orderID
}

func (s *Study) Modality() Modality {
	return s.modality
}

func (s *Study) Priority() Priority {
	return s.priority
}

// ScheduledDate returns a copy of the scheduled date, or nil if unscheduled.
func (s *Study) ScheduledDate() *time.Time {
	return copyTime(s.scheduledDate)
}

func (s *Study) ScheduledStatus() ScheduledStatus {
	return s.scheduledStatus
}

func (s *Study) PerformedStatus() PerformedStatus {
	return s.performedStatus
}

// StudyInstanceUID returns the device-facing identifier, empty until assigned.
func (s *Study) StudyInstanceUID() string {
	return s.studyInstanceUID
}

// SyncStatus returns the outcome of the last worklist operation.
func (s *Study) SyncStatus() worklist.SyncStatus {
	return s.syncStatus
}

// IsNew reports whether the study has not been placed yet.
func (s *Study) IsNew() bool {
	return s.id.IsZero()
}

func (s *Study) IsInProgress() bool {
	return s.performedStatus == InProgress
}

func (s *Study) IsCompleted() bool {
	return s.performedStatus == Completed
}

// IsPerformed reports whether the device has reported any performed status.
func (s *Study) IsPerformed() bool {
	return s.performedStatus != NotPerformed
}

// Place assigns the study its identity and binds it to its order.
func (s *Study) Place(id kernel.UUID, orderID kernel.UUID) error {
	if !s.IsNew() {
		return errs.NewValueIsInvalidErrorWithCause("study", ErrStudyIsAlreadyPlaced)
	}
	if err := errors.Join(id.Validate(), orderID.Validate()); err != nil {
		return err
	}

	s.id = id
	s.orderID = orderID
	return nil
}

// AssignStudyInstanceUID sets the device-facing identifier. Assigning the
// current value again is a no-op; any other value is rejected once assigned.
func (s *Study) AssignStudyInstanceUID(uid string) error {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return errs.NewValueIsRequiredError("study instance uid")
	}
	if s.studyInstanceUID == uid {
		return nil
	}
	if s.studyInstanceUID != "" {
		return errs.NewValueIsInvalidErrorWithCause(
			"study instance uid",
			fmt.Errorf("%w: %s", ErrStudyInstanceUIDIsAssigned, s.studyInstanceUID),
		)
	}

	s.studyInstanceUID = uid
	return nil
}

// RecordSync stores the outcome of the last worklist operation.
func (s *Study) RecordSync(status worklist.SyncStatus) error {
	if status.IsZero() {
		return errs.NewValueIsRequiredError("sync status")
	}
	if err := status.Validate(); err != nil {
		return err
	}

	s.syncStatus = status
	return nil
}

// Reschedule changes the schedule and priority of a study that has not been
// performed yet. A zero priority keeps the current one.
func (s *Study) Reschedule(scheduledDate *time.Time, priority Priority) error {
	if s.IsPerformed() {
		return errs.NewValueIsInvalidErrorWithCause("study", ErrStudyIsAlreadyPerformed)
	}
	if priority == UnknownPriority {
		priority = s.priority
	}
	if err := s.setPriority(priority); err != nil {
		return err
	}

	s.scheduledDate = copyTime(scheduledDate)
	return nil
}

// UpdatePerformedStatus applies a performed status reported by the device and
// moves the scheduled step along with it.
func (s *Study) UpdatePerformedStatus(status PerformedStatus) error {
	next, err := s.performedStatus.Transition(status)
	if err != nil {
		return err
	}

	s.performedStatus = next
	switch next {
	case InProgress:
		s.scheduledStatus = Started
	case Completed, Discontinued:
		s.scheduledStatus = Departed
	}
	return nil
}

func (s *Study) setModality(modality Modality) error {
	if modality == UnknownModality {
		return errs.NewValueIsRequiredError("modality")
	}
	if err := modality.Validate(); err != nil {
		return err
	}
	s.modality = modality
	return nil
}

func (s *Study) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	s.priority = priority
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
