package commands_test

import (
	"testing"
	"time"

	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpdateStudyScheduleCommandHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		outcome  worklist.Outcome
		expected commands.Outcome
		code     string
	}{
		{name: "in sync", outcome: worklist.OutcomeOK, expected: commands.OutcomeSucceededInSync, code: "IN_SYNC_UPDATE"},
		{name: "out of sync", outcome: worklist.OutcomeFailed, expected: commands.OutcomeSucceededOutOfSync,
			code: "OUT_OF_SYNC_UPDATE_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			actor := newActor(t, allOrderCapabilities()...)
			o, s := placedPair(t, actor)
			when := fixedNow.Add(72 * time.Hour)
			cmd, err := commands.NewUpdateStudyScheduleCommand(o.ID(), actor, &when, study.Stat)
			require.NoError(t, err)

			m := newGatedMocks(o, s)
			m.studies.On("Update", ctx, s).Return(nil).Once()
			m.uow.On("Commit", ctx).Return(nil).Once()

			syncUoW := new(MockUoW)
			syncedStudies := expectSyncRecord(syncUoW)
			m.factory.On("Create").Return(syncUoW).Once()

			m.transport.On("Send", ctx, worklist.Update, mock.MatchedBy(func(d ports.StudyDescriptor) bool {
				return d.Priority == "STAT" && d.ScheduledDate != nil && d.ScheduledDate.Equal(when)
			})).Return(ports.SendResult{Outcome: tt.outcome}, nil).Once()

			h := commands.NewUpdateStudyScheduleCommandHandler(m.factory, m.transport, grantingLocker())
			result, err := h.Handle(ctx, cmd)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, result.Outcome)
			assert.Equal(t, tt.code, result.SyncStatus.Code())
			assert.Equal(t, study.Stat, s.Priority())
			require.NotNil(t, s.ScheduledDate())
			assert.True(t, s.ScheduledDate().Equal(when))
			m.assertAll(t)
			syncUoW.AssertExpectations(t)
			syncedStudies.AssertExpectations(t)
		})
	}
}

func TestUpdateStudyScheduleCommandHandler_Handle_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		opts     []pairOption
		expected error
	}{
		{name: "voided", opts: []pairOption{voidedPair()}, expected: order.ErrOrderIsVoided},
		{name: "discontinued", opts: []pairOption{discontinuedPair()}, expected: order.ErrOrderIsAlreadyDiscontinued},
		{name: "performed", opts: []pairOption{performedPair(study.InProgress)}, expected: study.ErrStudyIsAlreadyPerformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			actor := newActor(t, allOrderCapabilities()...)
			o, s := placedPair(t, actor, tt.opts...)
			cmd, err := commands.NewUpdateStudyScheduleCommand(o.ID(), actor, nil, study.High)
			require.NoError(t, err)

			m := newGatedMocks(o, s)

			h := commands.NewUpdateStudyScheduleCommandHandler(m.factory, m.transport, grantingLocker())
			result, err := h.Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.expected)
			assert.Equal(t, commands.OutcomeRejected, result.Outcome)
			m.assertNothingSent(t)
			m.uow.AssertNotCalled(t, "Commit", mock.Anything)
		})
	}
}

func TestNewUpdateStudyScheduleCommand_CopiesDate(t *testing.T) {
	actor := newActor(t, kernel.CapabilityScheduleStudy)
	when := fixedNow
	cmd, err := commands.NewUpdateStudyScheduleCommand(kernel.NewUUID(), actor, &when, study.UnknownPriority)
	require.NoError(t, err)

	when = when.Add(time.Hour)
	assert.Equal(t, fixedNow, *cmd.ScheduledDate())
	assert.Equal(t, study.UnknownPriority, cmd.Priority())
}
