package commands_test

import (
	"context"
	"testing"
	"time"

	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEncounterRepository struct{ mock.Mock }

func (m *MockEncounterRepository) Add(ctx context.Context, e *order.Encounter) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEncounterRepository) Get(ctx context.Context, id kernel.UUID) (*order.Encounter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Encounter), args.Error(1)
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Find(ctx context.Context, criteria order.SearchCriteria) ([]*order.Order, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockStudyRepository struct{ mock.Mock }

func (m *MockStudyRepository) Add(ctx context.Context, s *study.Study) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStudyRepository) Update(ctx context.Context, s *study.Study) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStudyRepository) Get(ctx context.Context, id kernel.UUID) (*study.Study, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*study.Study), args.Error(1)
}

func (m *MockStudyRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*study.Study, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*study.Study), args.Error(1)
}

func (m *MockStudyRepository) GetByStudyInstanceUID(ctx context.Context, uid string) (*study.Study, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*study.Study), args.Error(1)
}

func (m *MockStudyRepository) GetByOrderIDs(
	ctx context.Context,
	orderIDs []kernel.UUID,
) (map[kernel.UUID]*study.Study, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[kernel.UUID]*study.Study), args.Error(1)
}

type MockReportRepository struct{ mock.Mock }

func (m *MockReportRepository) Add(ctx context.Context, r *report.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReportRepository) Update(ctx context.Context, r *report.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReportRepository) Get(ctx context.Context, id kernel.UUID) (*report.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *MockReportRepository) GetByStudy(ctx context.Context, studyID kernel.UUID) ([]*report.Report, error) {
	args := m.Called(ctx, studyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Report), args.Error(1)
}

func (m *MockReportRepository) HasCompletedReport(ctx context.Context, studyID kernel.UUID) (bool, error) {
	args := m.Called(ctx, studyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportRepository) HasClaimedReport(ctx context.Context, studyID kernel.UUID) (bool, error) {
	args := m.Called(ctx, studyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportRepository) GetActiveReport(ctx context.Context, studyID kernel.UUID) (*report.Report, error) {
	args := m.Called(ctx, studyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

func (m *MockReportRepository) Find(ctx context.Context, criteria report.SearchCriteria) ([]*report.Report, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Report), args.Error(1)
}

// MockUoW satisfies every unit of work interface the handlers accept.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) EncounterRepository() ports.EncounterRepository {
	args := m.Called()
	return args.Get(0).(ports.EncounterRepository)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) StudyRepository() ports.StudyRepository {
	args := m.Called()
	return args.Get(0).(ports.StudyRepository)
}

func (m *MockUoW) ReportRepository() ports.ReportRepository {
	args := m.Called()
	return args.Get(0).(ports.ReportRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockReportUoWFactory struct{ mock.Mock }

func (m *MockReportUoWFactory) Create() commands.ReportUoW {
	args := m.Called()
	return args.Get(0).(commands.ReportUoW)
}

type MockStudyUoWFactory struct{ mock.Mock }

func (m *MockStudyUoWFactory) Create() commands.StudyUoW {
	args := m.Called()
	return args.Get(0).(commands.StudyUoW)
}

type MockWorklistTransport struct{ mock.Mock }

func (m *MockWorklistTransport) Send(
	ctx context.Context,
	op worklist.Operation,
	descriptor ports.StudyDescriptor,
) (ports.SendResult, error) {
	args := m.Called(ctx, op, descriptor)
	return args.Get(0).(ports.SendResult), args.Error(1)
}

// MockLocker grants every lock immediately.
type MockLocker struct{ mock.Mock }

func (m *MockLocker) Lock(ctx context.Context, key string) (func(), error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func grantingLocker() *MockLocker {
	l := new(MockLocker)
	l.On("Lock", mock.Anything, mock.Anything).Return(func() {}, nil)
	return l
}

func newActor(t *testing.T, caps ...kernel.Capability) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.NewUUID(), "Dr. Test", caps...)
	require.NoError(t, err)
	return a
}

func allOrderCapabilities() []kernel.Capability {
	return []kernel.Capability{
		kernel.CapabilityPlaceOrder,
		kernel.CapabilityVoidOrder,
		kernel.CapabilityDiscontinueOrder,
		kernel.CapabilityScheduleStudy,
	}
}

type pairOption func(*pairState)

type pairState struct {
	voided          bool
	discontinued    bool
	performedStatus study.PerformedStatus
	uid             string
}

func voidedPair() pairOption       { return func(s *pairState) { s.voided = true } }
func discontinuedPair() pairOption { return func(s *pairState) { s.discontinued = true } }
func performedPair(ps study.PerformedStatus) pairOption {
	return func(s *pairState) { s.performedStatus = ps }
}
func withUID(uid string) pairOption { return func(s *pairState) { s.uid = uid } }

// placedPair restores an order and its study as they would come out of storage.
func placedPair(t *testing.T, orderer kernel.Actor, opts ...pairOption) (*order.Order, *study.Study) {
	t.Helper()

	state := pairState{}
	for _, opt := range opts {
		opt(&state)
	}

	var voided, discontinued *order.Mark
	if state.voided {
		m, err := order.NewMark(orderer, "entered in error", fixedNow.Add(-time.Hour))
		require.NoError(t, err)
		voided = &m
	}
	if state.discontinued {
		m, err := order.NewMark(orderer, "patient declined", fixedNow.Add(-time.Hour))
		require.NoError(t, err)
		discontinued = &m
	}

	orderID := kernel.NewUUID()
	o, err := order.RestoreOrder(orderID, kernel.NewUUID(), kernel.NewUUID(), orderer,
		"ACC0001", "", fixedNow.Add(-24*time.Hour), voided, discontinued, nil)
	require.NoError(t, err)

	saved, err := worklist.NewInSyncStatus(worklist.Save)
	require.NoError(t, err)

	scheduledStatus := study.Scheduled
	switch state.performedStatus {
	case study.InProgress:
		scheduledStatus = study.Started
	case study.Completed, study.Discontinued:
		scheduledStatus = study.Departed
	}

	s, err := study.RestoreStudy(kernel.NewUUID(), orderID, study.CT, study.Routine, nil,
		scheduledStatus, state.performedStatus, state.uid, saved)
	require.NoError(t, err)

	return o, s
}
