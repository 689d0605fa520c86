package study_test

import (
	"testing"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlacedStudy(t *testing.T) *study.Study {
	t.Helper()
	s, err := study.NewStudy(study.CT, study.Routine, nil)
	require.NoError(t, err)
	require.NoError(t, s.Place(kernel.NewUUID(), kernel.NewUUID()))
	return s
}

func TestNewStudy(t *testing.T) {
	t.Run("should create draft study", func(t *testing.T) {
		when := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
		s, err := study.NewStudy(study.MR, study.Stat, &when)

		require.NoError(t, err)
		assert.NoError(t, s.Validate())
		assert.True(t, s.IsNew())
		assert.Equal(t, study.MR, s.Modality())
		assert.Equal(t, study.Stat, s.Priority())
		assert.Equal(t, study.Scheduled, s.ScheduledStatus())
		assert.Equal(t, study.NotPerformed, s.PerformedStatus())
		assert.Empty(t, s.StudyInstanceUID())
		assert.True(t, s.SyncStatus().IsZero())
		assert.Equal(t, when, *s.ScheduledDate())
	})

	t.Run("should default priority to routine", func(t *testing.T) {
		s, err := study.NewStudy(study.US, study.UnknownPriority, nil)

		require.NoError(t, err)
		assert.Equal(t, study.Routine, s.Priority())
		assert.Nil(t, s.ScheduledDate())
	})

	t.Run("should require modality", func(t *testing.T) {
		_, err := study.NewStudy(study.UnknownModality, study.Routine, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject undeclared values", func(t *testing.T) {
		_, err := study.NewStudy(study.Modality(99), study.Priority(42), nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestStudy_ValidateZeroValue(t *testing.T) {
	var s study.Study
	assert.ErrorIs(t, s.Validate(), study.ErrStudyIsNotConstructed)

	var nilStudy *study.Study
	assert.ErrorIs(t, nilStudy.Validate(), study.ErrStudyIsNotConstructed)
}

func TestStudy_Place(t *testing.T) {
	s, err := study.NewStudy(study.CT, study.Routine, nil)
	require.NoError(t, err)

	id, orderID := kernel.NewUUID(), kernel.NewUUID()
	require.NoError(t, s.Place(id, orderID))
	assert.True(t, s.ID().IsEqual(id))
	assert.True(t, s.OrderID().IsEqual(orderID))
	assert.False(t, s.IsNew())

	err = s.Place(kernel.NewUUID(), orderID)
	assert.ErrorIs(t, err, study.ErrStudyIsAlreadyPlaced)
	assert.True(t, s.ID().IsEqual(id))
}

func TestStudy_AssignStudyInstanceUID(t *testing.T) {
	s := newPlacedStudy(t)

	require.NoError(t, s.AssignStudyInstanceUID(" 1.2.3.4 "))
	assert.Equal(t, "1.2.3.4", s.StudyInstanceUID())

	t.Run("same uid is idempotent", func(t *testing.T) {
		assert.NoError(t, s.AssignStudyInstanceUID("1.2.3.4"))
	})

	t.Run("uid is never reassigned", func(t *testing.T) {
		err := s.AssignStudyInstanceUID("9.9.9")

		assert.ErrorIs(t, err, study.ErrStudyInstanceUIDIsAssigned)
		assert.Equal(t, "1.2.3.4", s.StudyInstanceUID())
	})

	t.Run("empty uid is required", func(t *testing.T) {
		assert.ErrorIs(t, s.AssignStudyInstanceUID(" "), errs.ErrValueIsRequired)
	})
}

func TestStudy_RecordSync(t *testing.T) {
	s := newPlacedStudy(t)

	failed, err := worklist.SyncStatusFromOutcome(worklist.Save, worklist.OutcomeTimeout)
	require.NoError(t, err)
	require.NoError(t, s.RecordSync(failed))
	assert.Equal(t, "OUT_OF_SYNC_SAVE_FAILED", s.SyncStatus().Code())

	assert.ErrorIs(t, s.RecordSync(worklist.SyncStatus{}), errs.ErrValueIsRequired)
	assert.Equal(t, failed, s.SyncStatus())
}

func TestStudy_UpdatePerformedStatus(t *testing.T) {
	t.Run("in progress then completed", func(t *testing.T) {
		s := newPlacedStudy(t)

		require.NoError(t, s.UpdatePerformedStatus(study.InProgress))
		assert.True(t, s.IsInProgress())
		assert.Equal(t, study.Started, s.ScheduledStatus())

		require.NoError(t, s.UpdatePerformedStatus(study.Completed))
		assert.True(t, s.IsCompleted())
		assert.Equal(t, study.Departed, s.ScheduledStatus())
	})

	t.Run("resending the same status is accepted", func(t *testing.T) {
		s := newPlacedStudy(t)
		require.NoError(t, s.UpdatePerformedStatus(study.Completed))
		assert.NoError(t, s.UpdatePerformedStatus(study.Completed))
	})

	t.Run("final status cannot change", func(t *testing.T) {
		s := newPlacedStudy(t)
		require.NoError(t, s.UpdatePerformedStatus(study.Discontinued))

		err := s.UpdatePerformedStatus(study.InProgress)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, study.Discontinued, s.PerformedStatus())
	})

	t.Run("not performed is not a report", func(t *testing.T) {
		s := newPlacedStudy(t)
		assert.ErrorIs(t, s.UpdatePerformedStatus(study.NotPerformed), errs.ErrValueIsRequired)
	})
}

func TestStudy_Reschedule(t *testing.T) {
	when := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

	t.Run("unperformed study can be rescheduled", func(t *testing.T) {
		s := newPlacedStudy(t)

		require.NoError(t, s.Reschedule(&when, study.High))
		assert.Equal(t, when, *s.ScheduledDate())
		assert.Equal(t, study.High, s.Priority())

		require.NoError(t, s.Reschedule(nil, study.UnknownPriority))
		assert.Nil(t, s.ScheduledDate())
		assert.Equal(t, study.High, s.Priority())
	})

	t.Run("performed study cannot be rescheduled", func(t *testing.T) {
		s := newPlacedStudy(t)
		require.NoError(t, s.UpdatePerformedStatus(study.InProgress))

		err := s.Reschedule(&when, study.Low)
		assert.ErrorIs(t, err, study.ErrStudyIsAlreadyPerformed)
		assert.Equal(t, study.Routine, s.Priority())
	})
}

func TestRestoreStudy(t *testing.T) {
	id, orderID := kernel.NewUUID(), kernel.NewUUID()
	sync, err := worklist.NewInSyncStatus(worklist.Save)
	require.NoError(t, err)

	s, err := study.RestoreStudy(id, orderID, study.XA, study.Low, nil, study.Started, study.InProgress, "2.25.1", sync)
	require.NoError(t, err)
	assert.False(t, s.IsNew())
	assert.Equal(t, "2.25.1", s.StudyInstanceUID())
	assert.Equal(t, sync, s.SyncStatus())

	_, err = study.RestoreStudy(kernel.UUID{}, orderID, study.XA, study.Low, nil, study.Started, study.InProgress, "", sync)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestParsers(t *testing.T) {
	m, err := study.ParseModality("ct")
	require.NoError(t, err)
	assert.Equal(t, study.CT, m)
	assert.Equal(t, "Computed Tomography", m.FullName())

	_, err = study.ParseModality("XR")
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	p, err := study.ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, study.Routine, p)

	ps, err := study.ParsePerformedStatus("in progress")
	require.NoError(t, err)
	assert.Equal(t, study.InProgress, ps)

	ss, err := study.ParseScheduledStatus("READY")
	require.NoError(t, err)
	assert.Equal(t, study.Ready, ss)
}
