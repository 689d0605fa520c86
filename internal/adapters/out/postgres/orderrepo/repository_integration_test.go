package orderrepo_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"radiology/internal/adapters/out/postgres/orderrepo"
	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var baseDate = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

// MockAggregateTracker is a mock implementation of the aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite runs the order and encounter
// repositories against a PostgreSQL container.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	encounters *orderrepo.GormEncounterRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.EncounterDTO{}, &orderrepo.OrderDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, encounters").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
	suite.encounters = orderrepo.NewGormEncounterRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_PlacedOrder_RoundTrips() {
	ctx := context.Background()
	tracker := new(MockAggregateTracker)
	repository := orderrepo.NewGormOrderRepository(suite.db, tracker)

	patientID := kernel.NewUUID()
	o := suite.createOrder(patientID, baseDate)
	tracker.On("TrackAggregate", o.ID(), o).Once()

	suite.Require().NoError(repository.Add(ctx, o))

	got, err := repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.True(got.IsEqual(o))
	suite.Equal(o.EncounterID(), got.EncounterID())
	suite.Equal(patientID, got.PatientID())
	suite.Equal(o.Orderer().ID(), got.Orderer().ID())
	suite.Equal("Dr. Order", got.Orderer().Name())
	suite.Equal(o.AccessionNumber(), got.AccessionNumber())
	suite.Equal("rule out fracture", got.Instructions())
	suite.True(baseDate.Equal(got.OrderDate()))
	suite.Equal(order.Active, got.Status())
	suite.Nil(got.Voided())
	suite.Nil(got.Discontinued())

	tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DraftOrder_IsRejected() {
	orderer, err := kernel.NewActor(kernel.NewUUID(), "Dr. Order")
	suite.Require().NoError(err)
	draft, err := order.NewOrder(kernel.NewUUID(), orderer, "")
	suite.Require().NoError(err)

	err = suite.repository.Add(context.Background(), draft)
	suite.Require().ErrorIs(err, order.ErrOrderIsNotPlaced)
	suite.assertOrderCount(0)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateID_ReturnsConflict() {
	ctx := context.Background()
	o := suite.createOrder(kernel.NewUUID(), baseDate)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	err := suite.repository.Add(ctx, o)
	suite.Require().ErrorIs(err, errs.ErrConflict)
	suite.assertOrderCount(1)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNil() {
	got, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Nil(got)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_ZeroID_IsValidationError() {
	_, err := suite.repository.Get(context.Background(), kernel.UUID{})
	suite.Require().ErrorIs(err, kernel.ErrUUIDIsNotConstructed)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_MarksAreWrittenAndCleared() {
	ctx := context.Background()
	o := suite.createOrder(kernel.NewUUID(), baseDate)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	clerk, err := kernel.NewActor(kernel.NewUUID(), "Clerk")
	suite.Require().NoError(err)
	voidedAt := baseDate.Add(time.Hour)
	suite.Require().NoError(o.Void(clerk, "wrong patient", voidedAt))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(got.Voided())
	suite.Equal(order.Voided, got.Status())
	suite.Equal(clerk.ID(), got.Voided().Actor().ID())
	suite.Equal("Clerk", got.Voided().Actor().Name())
	suite.Equal("wrong patient", got.Voided().Reason())
	suite.True(voidedAt.Equal(got.Voided().At()))

	suite.Require().NoError(o.Unvoid(clerk))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	got, err = suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Nil(got.Voided())
	suite.Equal(order.Active, got.Status())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_UndiscontinueMarkRoundTrips() {
	ctx := context.Background()
	o := suite.createOrder(kernel.NewUUID(), baseDate)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	clerk, err := kernel.NewActor(kernel.NewUUID(), "Clerk")
	suite.Require().NoError(err)
	resumedAt := baseDate.Add(2 * time.Hour)
	suite.Require().NoError(o.Discontinue(clerk, "on hold", baseDate.Add(time.Hour)))
	suite.Require().NoError(o.Undiscontinue(clerk, "cleared by radiologist", resumedAt))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Nil(got.Discontinued())
	suite.Equal(order.Active, got.Status())
	suite.Require().NotNil(got.Undiscontinued())
	suite.Equal(clerk.ID(), got.Undiscontinued().Actor().ID())
	suite.Equal("cleared by radiologist", got.Undiscontinued().Reason())
	suite.True(resumedAt.Equal(got.Undiscontinued().At()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsNotFound() {
	o := suite.createOrder(kernel.NewUUID(), baseDate)

	err := suite.repository.Update(context.Background(), o)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestFind_FiltersAndOrdering() {
	ctx := context.Background()
	patientA := kernel.NewUUID()
	patientB := kernel.NewUUID()
	clerk, err := kernel.NewActor(kernel.NewUUID(), "Clerk")
	suite.Require().NoError(err)

	monday := suite.createOrder(patientA, baseDate)
	tuesday := suite.createOrder(patientA, baseDate.AddDate(0, 0, 1))
	voided := suite.createOrder(patientA, baseDate.AddDate(0, 0, 1))
	suite.Require().NoError(voided.Void(clerk, "duplicate", baseDate.AddDate(0, 0, 1)))
	discontinued := suite.createOrder(patientB, baseDate.AddDate(0, 0, 2))
	suite.Require().NoError(discontinued.Discontinue(clerk, "cancelled", baseDate.AddDate(0, 0, 2)))
	wednesday := suite.createOrder(patientB, baseDate.AddDate(0, 0, 2))

	for _, o := range []*order.Order{wednesday, discontinued, voided, tuesday, monday} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	testCases := []struct {
		name     string
		build    func(b *order.SearchCriteriaBuilder) *order.SearchCriteriaBuilder
		expected []*order.Order
	}{
		{
			name:     "defaults exclude voided and discontinued",
			build:    func(b *order.SearchCriteriaBuilder) *order.SearchCriteriaBuilder { return b },
			expected: sortedByDateThenID(monday, tuesday, wednesday),
		},
		{
			name: "patient filter",
			build: func(b *order.SearchCriteriaBuilder) *order.SearchCriteriaBuilder {
				return b.WithPatient(patientA)
			},
			expected: sortedByDateThenID(monday, tuesday),
		},
		{
			name: "inclusive date range",
			build: func(b *order.SearchCriteriaBuilder) *order.SearchCriteriaBuilder {
				return b.WithFromDate(baseDate.AddDate(0, 0, 1)).WithToDate(baseDate.AddDate(0, 0, 2))
			},
			expected: sortedByDateThenID(tuesday, wednesday),
		},
		{
			name: "include voided and discontinued",
			build: func(b *order.SearchCriteriaBuilder) *order.SearchCriteriaBuilder {
				return b.IncludeVoided().IncludeDiscontinued()
			},
			expected: sortedByDateThenID(monday, tuesday, voided, discontinued, wednesday),
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			criteria, err := tc.build(order.NewSearchCriteriaBuilder()).Build()
			suite.Require().NoError(err)

			found, err := suite.repository.Find(ctx, criteria)
			suite.Require().NoError(err)
			suite.Equal(ids(tc.expected), ids(found))
		})
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestEncounter_AddAndGet() {
	ctx := context.Background()
	provider, err := kernel.NewActor(kernel.NewUUID(), "Dr. Order")
	suite.Require().NoError(err)
	patientID := kernel.NewUUID()

	encounter, err := order.NewEncounter(kernel.NewUUID(), patientID, provider, baseDate)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.encounters.Add(ctx, encounter))

	got, err := suite.encounters.Get(ctx, encounter.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(got)
	suite.Equal(patientID, got.PatientID())
	suite.Equal(provider.ID(), got.ProviderID())
	suite.True(baseDate.Equal(got.Date()))

	missing, err := suite.encounters.Get(ctx, kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Nil(missing)

	suite.Require().ErrorIs(suite.encounters.Add(ctx, encounter), errs.ErrConflict)
}

func (suite *OrderRepositoryIntegrationTestSuite) createOrder(patientID kernel.UUID, at time.Time) *order.Order {
	orderer, err := kernel.NewActor(kernel.NewUUID(), "Dr. Order")
	suite.Require().NoError(err)
	o, err := order.NewOrder(patientID, orderer, "rule out fracture")
	suite.Require().NoError(err)
	suite.Require().NoError(o.Place(kernel.NewUUID(), kernel.NewUUID(), at))
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	suite.Require().NoError(suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error)
	suite.Equal(int64(expected), count)
}

func sortedByDateThenID(orders ...*order.Order) []*order.Order {
	out := append([]*order.Order(nil), orders...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func less(a, b *order.Order) bool {
	if !a.OrderDate().Equal(b.OrderDate()) {
		return a.OrderDate().Before(b.OrderDate())
	}
	return strings.Compare(a.ID().String(), b.ID().String()) < 0
}

func ids(orders []*order.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID().String())
	}
	return out
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
