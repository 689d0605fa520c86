package report_test

import (
	"testing"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 7, 3, 14, 0, 0, 0, time.UTC)

func newRadiologist(t *testing.T, caps ...kernel.Capability) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewActor(kernel.NewUUID(), "Dr. Read", caps...)
	require.NoError(t, err)
	return actor
}

func newDraft(t *testing.T) *report.Report {
	t.Helper()
	r, err := report.NewReport(kernel.NewUUID(), kernel.NewUUID(), now)
	require.NoError(t, err)
	return r
}

func newCompleted(t *testing.T) *report.Report {
	t.Helper()
	r := newDraft(t)
	rad := newRadiologist(t)
	require.NoError(t, r.Claim(rad))
	require.NoError(t, r.Complete(rad, "no acute findings", now.Add(time.Hour)))
	return r
}

func TestNewReport(t *testing.T) {
	r := newDraft(t)

	assert.NoError(t, r.Validate())
	assert.Equal(t, report.Draft, r.Status())
	assert.Nil(t, r.PrincipalInterpreter())
	assert.Nil(t, r.RevisionOf())
	assert.True(t, r.IsCurrent())
	assert.Equal(t, now, r.Date())

	_, err := report.NewReport(kernel.UUID{}, kernel.UUID{}, time.Time{})
	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	var zero report.Report
	assert.ErrorIs(t, zero.Validate(), report.ErrReportIsNotConstructed)
}

func TestReport_Claim(t *testing.T) {
	r := newDraft(t)
	rad := newRadiologist(t)

	require.NoError(t, r.Claim(rad))
	assert.Equal(t, report.Claimed, r.Status())
	require.NotNil(t, r.PrincipalInterpreter())
	assert.True(t, r.PrincipalInterpreter().IsEqual(rad))

	err := r.Claim(newRadiologist(t))
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	assert.True(t, r.PrincipalInterpreter().IsEqual(rad))

	assert.ErrorIs(t, newDraft(t).Claim(kernel.Actor{}), kernel.ErrActorIsRequired)
}

func TestReport_Complete(t *testing.T) {
	t.Run("claimant completes", func(t *testing.T) {
		r := newDraft(t)
		rad := newRadiologist(t)
		require.NoError(t, r.Claim(rad))

		signed := now.Add(2 * time.Hour)
		require.NoError(t, r.Complete(rad, " impression: normal ", signed))
		assert.Equal(t, report.Completed, r.Status())
		assert.Equal(t, "impression: normal", r.Body())
		assert.Equal(t, signed, r.Date())
	})

	t.Run("other actor is forbidden", func(t *testing.T) {
		r := newDraft(t)
		require.NoError(t, r.Claim(newRadiologist(t)))

		err := r.Complete(newRadiologist(t), "text", now)
		assert.ErrorIs(t, err, errs.ErrForbidden)
		assert.Equal(t, report.Claimed, r.Status())
	})

	t.Run("override capability allows other actor", func(t *testing.T) {
		r := newDraft(t)
		require.NoError(t, r.Claim(newRadiologist(t)))

		err := r.Complete(newRadiologist(t, kernel.CapabilityOverrideReport), "text", now)
		require.NoError(t, err)
		assert.Equal(t, report.Completed, r.Status())
	})

	t.Run("draft cannot be completed", func(t *testing.T) {
		r := newDraft(t)
		assert.ErrorIs(t, r.Complete(newRadiologist(t), "x", now), errs.ErrValueIsInvalid)
	})

	t.Run("body is required", func(t *testing.T) {
		r := newDraft(t)
		rad := newRadiologist(t)
		require.NoError(t, r.Claim(rad))

		assert.ErrorIs(t, r.Complete(rad, "  ", now), report.ErrBodyIsRequired)
	})
}

func TestReport_Discontinue(t *testing.T) {
	draft := newDraft(t)
	require.NoError(t, draft.Discontinue())
	assert.Equal(t, report.Discontinued, draft.Status())
	assert.False(t, draft.IsCurrent())

	claimed := newDraft(t)
	require.NoError(t, claimed.Claim(newRadiologist(t)))
	require.NoError(t, claimed.Discontinue())

	assert.ErrorIs(t, newCompleted(t).Discontinue(), errs.ErrValueIsInvalid)
	assert.ErrorIs(t, draft.Discontinue(), errs.ErrValueIsInvalid)
}

func TestReport_Revise(t *testing.T) {
	original := newCompleted(t)

	revision, err := original.Revise(kernel.NewUUID(), now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, report.Draft, revision.Status())
	assert.True(t, revision.StudyID().IsEqual(original.StudyID()))
	require.NotNil(t, revision.RevisionOf())
	assert.True(t, revision.RevisionOf().IsEqual(original.ID()))
	assert.Equal(t, original.Body(), revision.Body())

	assert.Equal(t, report.Completed, original.Status())
	assert.False(t, original.IsSuperseded())

	t.Run("draft cannot be revised", func(t *testing.T) {
		_, err := newDraft(t).Revise(kernel.NewUUID(), now)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("superseded report cannot be revised again", func(t *testing.T) {
		r := newCompleted(t)
		require.NoError(t, r.Supersede())
		assert.False(t, r.IsCurrent())

		_, err := r.Revise(kernel.NewUUID(), now)
		assert.ErrorIs(t, err, report.ErrReportIsSuperseded)
		assert.ErrorIs(t, r.Supersede(), report.ErrReportIsSuperseded)
	})
}

func TestStatus_Transitions(t *testing.T) {
	testCases := []struct {
		from       report.Status
		claim      bool
		complete   bool
		discontinue bool
	}{
		{report.Draft, true, false, true},
		{report.Claimed, false, true, true},
		{report.Completed, false, false, false},
		{report.Discontinued, false, false, false},
		{report.Unknown, false, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.from.String(), func(t *testing.T) {
			_, err := tc.from.Claim()
			assert.Equal(t, tc.claim, err == nil)
			_, err = tc.from.Complete()
			assert.Equal(t, tc.complete, err == nil)
			_, err = tc.from.Discontinue()
			assert.Equal(t, tc.discontinue, err == nil)
		})
	}

	s, err := report.ParseStatus("claimed")
	require.NoError(t, err)
	assert.Equal(t, report.Claimed, s)
	assert.True(t, report.Completed.IsFinal())
	assert.False(t, report.Claimed.IsFinal())
}
