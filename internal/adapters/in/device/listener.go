// Package device is the listener modalities talk to. It publishes the
// modality worklist kept by the directory transport and accepts performed
// procedure step (MPPS) callbacks.
//
// Routes:
//
//	GET  /worklist[?modality=CT]   scheduled studies
//	POST /mpps/:uid                {"status": "IN_PROGRESS" | "COMPLETED" | "DISCONTINUED"}
//
// A callback that cannot be applied right away because the order is busy or
// the store is unavailable is spooled into the procedure step directory, where
// jobs.ProcedureStepPollJob picks it up.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	worklistdir "radiology/internal/adapters/out/worklist"
	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/core/ports"
	"radiology/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var (
	ErrListenerAlreadyStarted = errors.New("device listener is already started")
	ErrDeviceAddressRequired  = errors.New("device address is required")
)

// PerformedStatusHandler applies a procedure step to its study.
type PerformedStatusHandler interface {
	Handle(ctx context.Context, command commands.UpdatePerformedStatusCommand) error
}

// ListenerArgs configures a listener run.
type ListenerArgs struct {
	WorklistDir      string
	ProcedureStepDir string
	DeviceAddress    string
}

// Listener serves devices until stopped. A stopped listener may be started again.
type Listener struct {
	handler PerformedStatusHandler
	logger  *slog.Logger

	mu       sync.Mutex
	echo     *echo.Echo
	listener net.Listener
	args     ListenerArgs
	done     chan struct{}
}

func NewListener(handler PerformedStatusHandler, logger *slog.Logger) *Listener {
	return &Listener{
		handler: handler,
		logger:  logger.With("component", "device_listener"),
	}
}

// Start binds the device address and serves in the background. Both
// directories are created when missing.
func (l *Listener) Start(args ListenerArgs) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.echo != nil {
		return ErrListenerAlreadyStarted
	}
	if strings.TrimSpace(args.DeviceAddress) == "" {
		return ErrDeviceAddressRequired
	}
	if err := errors.Join(
		ensureDir("worklist directory", args.WorklistDir),
		ensureDir("procedure step directory", args.ProcedureStepDir),
	); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", args.DeviceAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", args.DeviceAddress, err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Listener = ln
	e.Use(middleware.Recover())
	e.GET("/worklist", l.listWorklist)
	e.POST("/mpps/:uid", l.receiveProcedureStep)

	l.echo = e
	l.listener = ln
	l.args = args
	done := make(chan struct{})
	l.done = done

	go func() {
		defer close(done)
		if err := e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error("Device listener stopped unexpectedly", "error", err)
		}
	}()

	l.logger.Info("Device listener started",
		"address", ln.Addr().String(),
		"worklist_dir", args.WorklistDir,
		"procedure_step_dir", args.ProcedureStepDir,
	)
	return nil
}

// Addr returns the bound address, or nil when the listener is not running.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

// Stop shuts the server down, waiting for in-flight callbacks until ctx expires.
// Stopping a listener that is not running is a no-op.
func (l *Listener) Stop(ctx context.Context) error {
	l.mu.Lock()
	e, done := l.echo, l.done
	l.echo, l.listener, l.done = nil, nil, nil
	l.mu.Unlock()

	if e == nil {
		return nil
	}
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop device listener: %w", err)
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	l.logger.Info("Device listener stopped")
	return nil
}

func (l *Listener) currentArgs() ListenerArgs {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.args
}

func (l *Listener) listWorklist(c echo.Context) error {
	items, err := worklistdir.ReadItems(l.currentArgs().WorklistDir)
	if err != nil {
		l.logger.ErrorContext(c.Request().Context(), "Failed to read worklist", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "worklist unavailable")
	}

	modality := strings.ToUpper(strings.TrimSpace(c.QueryParam("modality")))
	if modality == "" {
		return c.JSON(http.StatusOK, items)
	}
	filtered := make([]ports.StudyDescriptor, 0, len(items))
	for _, item := range items {
		if item.Modality == modality {
			filtered = append(filtered, item)
		}
	}
	return c.JSON(http.StatusOK, filtered)
}

func (l *Listener) receiveProcedureStep(c echo.Context) error {
	ctx := c.Request().Context()

	var step ProcedureStep
	if err := c.Bind(&step); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	step.StudyInstanceUID = c.Param("uid")

	command, err := step.Command()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = l.handler.Handle(ctx, command)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, errs.ErrObjectNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errs.IsValidation(err) && !errors.Is(err, errs.ErrConflict):
		l.logger.WarnContext(ctx, "Procedure step rejected",
			"study_instance_uid", step.StudyInstanceUID,
			"status", step.Status,
			"error", err,
		)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	// Busy order or store failure: keep the message for the poll job.
	name, spoolErr := WriteProcedureStep(l.currentArgs().ProcedureStepDir, step)
	if spoolErr != nil {
		l.logger.ErrorContext(ctx, "Failed to spool procedure step",
			"study_instance_uid", step.StudyInstanceUID,
			"error", errors.Join(err, spoolErr),
		)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "procedure step not recorded")
	}
	l.logger.WarnContext(ctx, "Procedure step deferred",
		"study_instance_uid", step.StudyInstanceUID,
		"file", name,
		"error", err,
	)
	return c.NoContent(http.StatusAccepted)
}
