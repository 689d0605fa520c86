package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/core/application/usecases/queries"
	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/domain/model/study"

	"github.com/labstack/echo/v4"
)

// Handler is the shape shared by command and query handlers.
type Handler[Req, Resp any] interface {
	Handle(ctx context.Context, request Req) (Resp, error)
}

// Handlers groups the use cases exposed over HTTP.
type Handlers struct {
	// Command handlers
	PlaceOrder          Handler[commands.PlaceOrderCommand, commands.TransitionResult]
	VoidOrder           Handler[commands.VoidOrderCommand, commands.TransitionResult]
	UnvoidOrder         Handler[commands.UnvoidOrderCommand, commands.TransitionResult]
	DiscontinueOrder    Handler[commands.DiscontinueOrderCommand, commands.TransitionResult]
	UndiscontinueOrder  Handler[commands.UndiscontinueOrderCommand, commands.TransitionResult]
	UpdateStudySchedule Handler[commands.UpdateStudyScheduleCommand, commands.TransitionResult]
	ClaimReport         Handler[commands.ClaimReportCommand, *report.Report]
	CompleteReport      Handler[commands.CompleteReportCommand, *report.Report]
	DiscontinueReport   Handler[commands.DiscontinueReportCommand, *report.Report]
	ReviseReport        Handler[commands.ReviseReportCommand, *report.Report]

	// Query handlers
	GetOrder      Handler[queries.GetOrderQuery, queries.OrderResponse]
	SearchOrders  Handler[queries.SearchOrdersQuery, []queries.OrderResponse]
	SearchReports Handler[queries.SearchReportsQuery, []queries.ReportResponse]
}

// Server exposes order, study and report operations as a JSON API.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers  Handlers
	validator *TokenValidator
}

func NewServer(handlers Handlers, validator *TokenValidator) *Server {
	return &Server{handlers: handlers, validator: validator}
}

// RegisterRoutes mounts the API under /api/v1. Every route requires a bearer token.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1", Authenticate(s.validator))

	api.POST("/orders", s.PlaceOrder)
	api.GET("/orders", s.SearchOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/void", s.VoidOrder)
	api.POST("/orders/:id/unvoid", s.UnvoidOrder)
	api.POST("/orders/:id/discontinue", s.DiscontinueOrder)
	api.POST("/orders/:id/undiscontinue", s.UndiscontinueOrder)
	api.POST("/orders/:id/schedule", s.UpdateStudySchedule)

	api.POST("/studies/:id/reports/claim", s.ClaimReport)
	api.GET("/reports", s.SearchReports)
	api.POST("/reports/:id/complete", s.CompleteReport)
	api.POST("/reports/:id/discontinue", s.DiscontinueReport)
	api.POST("/reports/:id/revise", s.ReviseReport)
}

// PlaceOrder handles POST /api/v1/orders.
func (s *Server) PlaceOrder(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	patientID, err := kernel.UUIDFromString(req.PatientID)
	if err != nil {
		return badRequest(c, "patientId must be a UUID")
	}
	modality, err := study.ParseModality(req.Modality)
	if err != nil {
		return respondError(c, err)
	}
	priority, err := study.ParsePriority(req.Priority)
	if err != nil {
		return respondError(c, err)
	}

	actor := actorFrom(c)
	draft, err := order.NewOrder(patientID, actor, req.Instructions)
	if err != nil {
		return respondError(c, err)
	}
	draftStudy, err := study.NewStudy(modality, priority, req.ScheduledDate)
	if err != nil {
		return respondError(c, err)
	}

	command, err := commands.NewPlaceOrderCommand(draft, draftStudy, actor)
	if err != nil {
		return respondError(c, err)
	}
	return s.transition(c, http.StatusCreated, func(ctx context.Context) (commands.TransitionResult, error) {
		return s.handlers.PlaceOrder.Handle(ctx, command)
	})
}

// VoidOrder handles POST /api/v1/orders/:id/void.
func (s *Server) VoidOrder(c echo.Context) error {
	orderID, req, err := s.reasonRequest(c)
	if err != nil {
		return err
	}
	command, err := commands.NewVoidOrderCommand(orderID, actorFrom(c), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return s.transition(c, http.StatusOK, func(ctx context.Context) (commands.TransitionResult, error) {
		return s.handlers.VoidOrder.Handle(ctx, command)
	})
}

// UnvoidOrder handles POST /api/v1/orders/:id/unvoid.
func (s *Server) UnvoidOrder(c echo.Context) error {
	orderID, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	command, err := commands.NewUnvoidOrderCommand(orderID, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return s.transition(c, http.StatusOK, func(ctx context.Context) (commands.TransitionResult, error) {
		return s.handlers.UnvoidOrder.Handle(ctx, command)
	})
}

// DiscontinueOrder handles POST /api/v1/orders/:id/discontinue.
func (s *Server) DiscontinueOrder(c echo.Context) error {
	orderID, req, err := s.reasonRequest(c)
	if err != nil {
		return err
	}
	command, err := commands.NewDiscontinueOrderCommand(orderID, actorFrom(c), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return s.transition(c, http.StatusOK, func(ctx context.Context) (commands.TransitionResult, error) {
		return s.handlers.DiscontinueOrder.Handle(ctx, command)
	})
}

// UndiscontinueOrder handles POST /api/v1/orders/:id/undiscontinue. The reason is optional.
func (s *Server) UndiscontinueOrder(c echo.Context) error {
	orderID, req, err := s.reasonRequest(c)
	if err != nil {
		return err
	}
	command, err := commands.NewUndiscontinueOrderCommand(orderID, actorFrom(c), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return s.transition(c, http.StatusOK, func(ctx context.Context) (commands.TransitionResult, error) {
		return s.handlers.UndiscontinueOrder.Handle(ctx, command)
	})
}

// UpdateStudySchedule handles POST /api/v1/orders/:id/schedule.
func (s *Server) UpdateStudySchedule(c echo.Context) error {
	orderID, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	priority, err := study.ParsePriority(req.Priority)
	if err != nil {
		return respondError(c, err)
	}

	command, err := commands.NewUpdateStudyScheduleCommand(orderID, actorFrom(c), req.ScheduledDate, priority)
	if err != nil {
		return respondError(c, err)
	}
	return s.transition(c, http.StatusOK, func(ctx context.Context) (commands.TransitionResult, error) {
		return s.handlers.UpdateStudySchedule.Handle(ctx, command)
	})
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newOrder(resp))
}

// SearchOrders handles GET /api/v1/orders.
//
// Query parameters: patientId, from, to, includeVoided, includeDiscontinued.
// Dates are RFC 3339 timestamps or calendar days.
func (s *Server) SearchOrders(c echo.Context) error {
	b := order.NewSearchCriteriaBuilder()
	if id, ok, err := queryUUID(c, "patientId"); err != nil {
		return respondError(c, err)
	} else if ok {
		b.WithPatient(id)
	}
	if from, ok, err := queryDate(c, "from", false); err != nil {
		return respondError(c, err)
	} else if ok {
		b.WithFromDate(from)
	}
	if to, ok, err := queryDate(c, "to", true); err != nil {
		return respondError(c, err)
	} else if ok {
		b.WithToDate(to)
	}
	if queryBool(c, "includeVoided") {
		b.IncludeVoided()
	}
	if queryBool(c, "includeDiscontinued") {
		b.IncludeDiscontinued()
	}

	criteria, err := b.Build()
	if err != nil {
		return respondError(c, err)
	}
	query, err := queries.NewSearchOrdersQuery(criteria)
	if err != nil {
		return respondError(c, err)
	}

	found, err := s.handlers.SearchOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	response := make([]Order, len(found))
	for i, o := range found {
		response[i] = newOrder(o)
	}
	return c.JSON(http.StatusOK, response)
}

// ClaimReport handles POST /api/v1/studies/:id/reports/claim. Without a report
// id a new report is created for the study.
func (s *Server) ClaimReport(c echo.Context) error {
	studyID, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req ClaimReportRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	var reportID *kernel.UUID
	if req.ReportID != nil && strings.TrimSpace(*req.ReportID) != "" {
		id, err := kernel.UUIDFromString(*req.ReportID)
		if err != nil {
			return badRequest(c, "reportId must be a UUID")
		}
		reportID = &id
	}

	command, err := commands.NewClaimReportCommand(studyID, reportID, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return s.report(c, func(ctx context.Context) (*report.Report, error) {
		return s.handlers.ClaimReport.Handle(ctx, command)
	})
}

// CompleteReport handles POST /api/v1/reports/:id/complete.
func (s *Server) CompleteReport(c echo.Context) error {
	reportID, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req CompleteReportRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	command, err := commands.NewCompleteReportCommand(reportID, actorFrom(c), req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return s.report(c, func(ctx context.Context) (*report.Report, error) {
		return s.handlers.CompleteReport.Handle(ctx, command)
	})
}

// DiscontinueReport handles POST /api/v1/reports/:id/discontinue.
func (s *Server) DiscontinueReport(c echo.Context) error {
	reportID, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	command, err := commands.NewDiscontinueReportCommand(reportID, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return s.report(c, func(ctx context.Context) (*report.Report, error) {
		return s.handlers.DiscontinueReport.Handle(ctx, command)
	})
}

// ReviseReport handles POST /api/v1/reports/:id/revise and returns the new revision.
func (s *Server) ReviseReport(c echo.Context) error {
	reportID, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	command, err := commands.NewReviseReportCommand(reportID, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return s.report(c, func(ctx context.Context) (*report.Report, error) {
		return s.handlers.ReviseReport.Handle(ctx, command)
	})
}

// SearchReports handles GET /api/v1/reports.
//
// Query parameters: patientId, from, to, includeDiscontinued, status, interpreterId.
func (s *Server) SearchReports(c echo.Context) error {
	b := report.NewSearchCriteriaBuilder()
	if id, ok, err := queryUUID(c, "patientId"); err != nil {
		return respondError(c, err)
	} else if ok {
		b.WithPatient(id)
	}
	if from, ok, err := queryDate(c, "from", false); err != nil {
		return respondError(c, err)
	} else if ok {
		b.WithFromDate(from)
	}
	if to, ok, err := queryDate(c, "to", true); err != nil {
		return respondError(c, err)
	} else if ok {
		b.WithToDate(to)
	}
	if queryBool(c, "includeDiscontinued") {
		b.IncludeDiscontinued()
	}
	if raw := c.QueryParam("status"); raw != "" {
		status, err := report.ParseStatus(raw)
		if err != nil {
			return respondError(c, err)
		}
		b.WithStatus(status)
	}
	if id, ok, err := queryUUID(c, "interpreterId"); err != nil {
		return respondError(c, err)
	} else if ok {
		b.WithPrincipalInterpreter(id)
	}

	criteria, err := b.Build()
	if err != nil {
		return respondError(c, err)
	}
	query, err := queries.NewSearchReportsQuery(criteria)
	if err != nil {
		return respondError(c, err)
	}

	found, err := s.handlers.SearchReports.Handle(c.Request().Context(), query)
	if err != nil {
		return respondError(c, err)
	}
	response := make([]Report, len(found))
	for i, r := range found {
		response[i] = newReport(r)
	}
	return c.JSON(http.StatusOK, response)
}

// transition runs a lifecycle handler and renders its result. A rejected or
// failed transition still carries the last committed order when one was loaded.
func (s *Server) transition(
	c echo.Context,
	okStatus int,
	handle func(ctx context.Context) (commands.TransitionResult, error),
) error {
	result, err := handle(c.Request().Context())
	if err != nil {
		code := statusFor(err)
		if code == http.StatusBadGateway {
			body := newTransition(result)
			body.Warning = err.Error()
			return c.JSON(code, body)
		}
		return respondError(c, err)
	}
	return c.JSON(okStatus, newTransition(result))
}

func (s *Server) report(c echo.Context, handle func(ctx context.Context) (*report.Report, error)) error {
	r, err := handle(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newReport(queries.NewReportResponse(r)))
}

func (s *Server) reasonRequest(c echo.Context) (kernel.UUID, ReasonRequest, error) {
	var req ReasonRequest
	orderID, err := pathID(c)
	if err != nil {
		return kernel.UUID{}, req, respondError(c, err)
	}
	if err := c.Bind(&req); err != nil {
		return kernel.UUID{}, req, badRequest(c, "Invalid request body")
	}
	return orderID, req, nil
}

func pathID(c echo.Context) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param("id"))
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("%w: id: %w", errMalformedRequest, err)
	}
	return id, nil
}

func queryUUID(c echo.Context, name string) (kernel.UUID, bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return kernel.UUID{}, false, nil
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, false, fmt.Errorf("%w: %s: %w", errMalformedRequest, name, err)
	}
	return id, true, nil
}

// queryDate parses a timestamp or a calendar day. A calendar day used as an
// upper bound covers the whole day.
func queryDate(c echo.Context, name string, upper bool) (time.Time, bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true, nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD", errMalformedRequest, name)
	}
	if upper {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return day, true, nil
}

func queryBool(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && v
}
