package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	api "radiology/internal/adapters/in/http"
	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/core/application/usecases/queries"
	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockHandler[Req, Resp any] struct{ mock.Mock }

func (m *MockHandler[Req, Resp]) Handle(ctx context.Context, request Req) (Resp, error) {
	args := m.Called(ctx, request)
	var resp Resp
	if v := args.Get(0); v != nil {
		resp = v.(Resp)
	}
	return resp, args.Error(1)
}

type fixture struct {
	e       *echo.Echo
	actorID kernel.UUID

	placeOrder    *MockHandler[commands.PlaceOrderCommand, commands.TransitionResult]
	voidOrder     *MockHandler[commands.VoidOrderCommand, commands.TransitionResult]
	unvoidOrder   *MockHandler[commands.UnvoidOrderCommand, commands.TransitionResult]
	schedule      *MockHandler[commands.UpdateStudyScheduleCommand, commands.TransitionResult]
	claimReport   *MockHandler[commands.ClaimReportCommand, *report.Report]
	getOrder      *MockHandler[queries.GetOrderQuery, queries.OrderResponse]
	searchOrders  *MockHandler[queries.SearchOrdersQuery, []queries.OrderResponse]
	searchReports *MockHandler[queries.SearchReportsQuery, []queries.ReportResponse]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		e:             echo.New(),
		actorID:       kernel.NewUUID(),
		placeOrder:    new(MockHandler[commands.PlaceOrderCommand, commands.TransitionResult]),
		voidOrder:     new(MockHandler[commands.VoidOrderCommand, commands.TransitionResult]),
		unvoidOrder:   new(MockHandler[commands.UnvoidOrderCommand, commands.TransitionResult]),
		schedule:      new(MockHandler[commands.UpdateStudyScheduleCommand, commands.TransitionResult]),
		claimReport:   new(MockHandler[commands.ClaimReportCommand, *report.Report]),
		getOrder:      new(MockHandler[queries.GetOrderQuery, queries.OrderResponse]),
		searchOrders:  new(MockHandler[queries.SearchOrdersQuery, []queries.OrderResponse]),
		searchReports: new(MockHandler[queries.SearchReportsQuery, []queries.ReportResponse]),
	}

	validator, err := api.NewTokenValidator(testSecret)
	require.NoError(t, err)
	server := api.NewServer(api.Handlers{
		PlaceOrder:          f.placeOrder,
		VoidOrder:           f.voidOrder,
		UnvoidOrder:         f.unvoidOrder,
		UpdateStudySchedule: f.schedule,
		ClaimReport:         f.claimReport,
		GetOrder:            f.getOrder,
		SearchOrders:        f.searchOrders,
		SearchReports:       f.searchReports,
	}, validator)
	server.RegisterRoutes(f.e)
	api.RegisterOperationalRoutes(f.e, prometheus.NewRegistry())
	return f
}

func (f *fixture) token(t *testing.T, caps ...string) string {
	t.Helper()
	return signToken(t, testSecret, f.actorID.String(), caps)
}

func (f *fixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, secret, subject string, caps []string) string {
	t.Helper()
	claims := api.Claims{
		Name:         "Dr. Grey",
		Capabilities: caps,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func placedOrder(t *testing.T, actorID kernel.UUID) (*order.Order, *study.Study) {
	t.Helper()
	actor, err := kernel.NewActor(actorID, "Dr. Grey")
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), actor, "chest pain")
	require.NoError(t, err)
	require.NoError(t, o.Place(kernel.NewUUID(), kernel.NewUUID(), time.Now()))
	s, err := study.NewStudy(study.CT, study.Routine, nil)
	require.NoError(t, err)
	require.NoError(t, s.Place(kernel.NewUUID(), o.ID()))
	return o, s
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/metrics", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RequiresBearerToken(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong secret", token: signToken(t, "other-secret", f.actorID.String(), nil)},
		{name: "subject is not a uuid", token: signToken(t, testSecret, "grey", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/api/v1/orders", "", tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	f.searchOrders.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestServer_PlaceOrder(t *testing.T) {
	f := newFixture(t)
	o, s := placedOrder(t, f.actorID)
	patientID := kernel.NewUUID()

	f.placeOrder.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.PlaceOrderCommand) bool {
		return c.Order().PatientID().IsEqual(patientID) &&
			c.Study().Modality() == study.MR &&
			c.Study().Priority() == study.Stat &&
			c.Actor().ID().IsEqual(f.actorID) &&
			c.Actor().Can(kernel.CapabilityPlaceOrder)
	})).Return(commands.TransitionResult{
		Order:      o,
		Study:      s,
		SyncStatus: mustInSync(t, worklist.Save),
		Outcome:    commands.OutcomeSucceededInSync,
	}, nil).Once()

	body := `{"patientId":"` + patientID.String() + `","modality":"mr","priority":"stat","instructions":"contrast"}`
	rec := f.do(t, http.MethodPost, "/api/v1/orders", body, f.token(t, string(kernel.CapabilityPlaceOrder)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[api.Transition](t, rec)
	assert.Equal(t, "succeeded_in_sync", got.Outcome)
	assert.Equal(t, "IN_SYNC_SAVE", got.SyncStatus)
	assert.Empty(t, got.Warning)
	require.NotNil(t, got.Order)
	assert.Equal(t, o.ID().String(), got.Order.ID)
	assert.Equal(t, o.AccessionNumber(), got.Order.AccessionNumber)
	assert.Equal(t, "ACTIVE", got.Order.Status)
	require.NotNil(t, got.Order.Study)
	assert.Equal(t, "CT", got.Order.Study.Modality)
	f.placeOrder.AssertExpectations(t)
}

func TestServer_PlaceOrder_OutOfSyncCarriesWarning(t *testing.T) {
	f := newFixture(t)
	o, s := placedOrder(t, f.actorID)
	outOfSync, err := worklist.SyncStatusFromOutcome(worklist.Save, worklist.OutcomeTimeout)
	require.NoError(t, err)

	f.placeOrder.On("Handle", mock.Anything, mock.Anything).Return(commands.TransitionResult{
		Order:      o,
		Study:      s,
		SyncStatus: outOfSync,
		Outcome:    commands.OutcomeSucceededOutOfSync,
	}, nil).Once()

	body := `{"patientId":"` + kernel.NewUUID().String() + `","modality":"CT"}`
	rec := f.do(t, http.MethodPost, "/api/v1/orders", body, f.token(t))

	require.Equal(t, http.StatusCreated, rec.Code)
	got := decode[api.Transition](t, rec)
	assert.Equal(t, "succeeded_out_of_sync", got.Outcome)
	assert.Equal(t, "OUT_OF_SYNC_SAVE_FAILED", got.SyncStatus)
	assert.Contains(t, got.Warning, "worklist")
}

func TestServer_PlaceOrder_InvalidBody(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "malformed json", body: `{"patientId":`, code: http.StatusBadRequest},
		{name: "patient is not a uuid", body: `{"patientId":"p-1","modality":"CT"}`, code: http.StatusBadRequest},
		{name: "unknown modality", body: `{"patientId":"` + kernel.NewUUID().String() + `","modality":"XX"}`, code: http.StatusUnprocessableEntity},
		{name: "unknown priority", body: `{"patientId":"` + kernel.NewUUID().String() + `","modality":"CT","priority":"soon"}`, code: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/v1/orders", tt.body, f.token(t))
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
	f.placeOrder.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestServer_VoidOrder_ErrorMapping(t *testing.T) {
	o, s := placedOrder(t, kernel.NewUUID())

	tests := []struct {
		name string
		err  error
		code int
	}{
		{
			name: "worklist rejected",
			err:  &commands.SyncError{Operation: worklist.Void, Outcome: worklist.OutcomeFailed, Reason: "locked"},
			code: http.StatusBadGateway,
		},
		{name: "missing capability", err: errs.NewForbiddenError(string(kernel.CapabilityVoidOrder)), code: http.StatusForbidden},
		{name: "lock busy", err: errs.NewConflictError("order", o.ID()), code: http.StatusConflict},
		{name: "not found", err: errs.NewObjectNotFoundError("order", o.ID()), code: http.StatusNotFound},
		{name: "already voided", err: errs.NewValueIsInvalidErrorWithCause("order", order.ErrOrderIsAlreadyVoided), code: http.StatusUnprocessableEntity},
		{name: "store failure", err: assert.AnError, code: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.voidOrder.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.VoidOrderCommand) bool {
				return c.OrderID().IsEqual(o.ID()) && c.Reason() == "wrong patient"
			})).Return(commands.TransitionResult{Order: o, Study: s, Outcome: commands.OutcomeRejected}, tt.err).Once()

			rec := f.do(t, http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/void", `{"reason":"wrong patient"}`, f.token(t))

			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			f.voidOrder.AssertExpectations(t)
		})
	}
}

func TestServer_VoidOrder_SyncFailureReturnsCommittedOrder(t *testing.T) {
	f := newFixture(t)
	o, s := placedOrder(t, f.actorID)
	f.voidOrder.On("Handle", mock.Anything, mock.Anything).Return(commands.TransitionResult{
		Order:   o,
		Study:   s,
		Outcome: commands.OutcomeFailed,
	}, &commands.SyncError{Operation: worklist.Void, Outcome: worklist.OutcomeTimeout}).Once()

	rec := f.do(t, http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/void", `{"reason":"duplicate"}`, f.token(t))

	require.Equal(t, http.StatusBadGateway, rec.Code)
	got := decode[api.Transition](t, rec)
	assert.Equal(t, "failed", got.Outcome)
	require.NotNil(t, got.Order)
	assert.Equal(t, "ACTIVE", got.Order.Status)
	assert.Contains(t, got.Warning, "timeout")
}

func TestServer_MalformedPathID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/orders/not-a-uuid/unvoid", "", f.token(t))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.unvoidOrder.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestServer_UpdateStudySchedule(t *testing.T) {
	f := newFixture(t)
	o, s := placedOrder(t, f.actorID)
	when := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	f.schedule.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.UpdateStudyScheduleCommand) bool {
		return c.OrderID().IsEqual(o.ID()) &&
			c.Priority() == study.High &&
			c.ScheduledDate() != nil && c.ScheduledDate().Equal(when)
	})).Return(commands.TransitionResult{Order: o, Study: s, Outcome: commands.OutcomeSucceededInSync}, nil).Once()

	body := `{"scheduledDate":"2026-03-01T09:30:00Z","priority":"high"}`
	rec := f.do(t, http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/schedule", body, f.token(t))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	f.schedule.AssertExpectations(t)
}

func TestServer_GetOrder_NotFound(t *testing.T) {
	f := newFixture(t)
	id := kernel.NewUUID()
	f.getOrder.On("Handle", mock.Anything, mock.Anything).
		Return(queries.OrderResponse{}, errs.NewObjectNotFoundError("order", id)).Once()

	rec := f.do(t, http.MethodGet, "/api/v1/orders/"+id.String(), "", f.token(t))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	got := decode[api.Error](t, rec)
	assert.Equal(t, http.StatusNotFound, got.Code)
}

func TestServer_SearchOrders_ParsesCriteria(t *testing.T) {
	f := newFixture(t)
	o, s := placedOrder(t, f.actorID)
	patientID := o.PatientID()

	f.searchOrders.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.SearchOrdersQuery) bool {
		c := q.Criteria()
		r := c.OrderDate()
		return c.PatientID() != nil && c.PatientID().IsEqual(patientID) &&
			c.IncludeVoided() && !c.IncludeDiscontinued() &&
			r.From() != nil && r.From().Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			r.To() != nil && r.To().After(time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC))
	})).Return([]queries.OrderResponse{queries.NewOrderResponse(o, s)}, nil).Once()

	path := "/api/v1/orders?patientId=" + patientID.String() + "&from=2026-01-01&to=2026-01-31&includeVoided=true"
	rec := f.do(t, http.MethodGet, path, "", f.token(t))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[[]api.Order](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, o.ID().String(), got[0].ID)
	f.searchOrders.AssertExpectations(t)
}

func TestServer_SearchOrders_RejectsBadParameters(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{name: "bad patient", query: "patientId=abc", code: http.StatusBadRequest},
		{name: "bad date", query: "from=yesterday", code: http.StatusBadRequest},
		{name: "inverted range", query: "from=2026-02-01&to=2026-01-01", code: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, "/api/v1/orders?"+tt.query, "", f.token(t))
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
	f.searchOrders.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestServer_ClaimReport(t *testing.T) {
	f := newFixture(t)
	studyID := kernel.NewUUID()
	r, err := report.NewReport(kernel.NewUUID(), studyID, time.Now())
	require.NoError(t, err)
	actor, err := kernel.NewActor(f.actorID, "Dr. Grey", kernel.CapabilityClaimReport)
	require.NoError(t, err)
	require.NoError(t, r.Claim(actor))

	f.claimReport.On("Handle", mock.Anything, mock.MatchedBy(func(c commands.ClaimReportCommand) bool {
		return c.StudyID().IsEqual(studyID) && c.ReportID() == nil
	})).Return(r, nil).Once()

	rec := f.do(t, http.MethodPost, "/api/v1/studies/"+studyID.String()+"/reports/claim", "", f.token(t, string(kernel.CapabilityClaimReport)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[api.Report](t, rec)
	assert.Equal(t, "CLAIMED", got.Status)
	require.NotNil(t, got.PrincipalInterpreterID)
	assert.Equal(t, f.actorID.String(), *got.PrincipalInterpreterID)
	f.claimReport.AssertExpectations(t)
}

func TestServer_ClaimReport_Conflict(t *testing.T) {
	f := newFixture(t)
	studyID := kernel.NewUUID()
	f.claimReport.On("Handle", mock.Anything, mock.Anything).
		Return(nil, errs.NewConflictError("report", studyID)).Once()

	rec := f.do(t, http.MethodPost, "/api/v1/studies/"+studyID.String()+"/reports/claim", `{}`, f.token(t))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_SearchReports_ParsesStatus(t *testing.T) {
	f := newFixture(t)
	f.searchReports.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.SearchReportsQuery) bool {
		c := q.Criteria()
		return c.Status() != nil && *c.Status() == report.Completed &&
			c.PrincipalInterpreter() != nil && c.PrincipalInterpreter().IsEqual(f.actorID)
	})).Return([]queries.ReportResponse{}, nil).Once()

	rec := f.do(t, http.MethodGet, "/api/v1/reports?status=completed&interpreterId="+f.actorID.String(), "", f.token(t))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `[]`, rec.Body.String())
	f.searchReports.AssertExpectations(t)
}

func mustInSync(t *testing.T, op worklist.Operation) worklist.SyncStatus {
	t.Helper()
	st, err := worklist.NewInSyncStatus(op)
	require.NoError(t, err)
	return st
}
