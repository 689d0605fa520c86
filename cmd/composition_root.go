package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"radiology/internal/adapters/in/device"
	httpin "radiology/internal/adapters/in/http"
	"radiology/internal/adapters/out/memory"
	"radiology/internal/adapters/out/postgres"
	"radiology/internal/adapters/out/worklist"
	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/core/application/usecases/queries"
	"radiology/internal/core/ports"
	"radiology/internal/jobs"
	"radiology/internal/metrics"
	"radiology/internal/pkg/keylock"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	logger     *slog.Logger
	uowFactory ports.UnitOfWorkFactory
	transport  ports.WorklistTransport
	locker     ports.Locker
	collectors *metrics.Collectors
}

// NewCompositionRoot wires the application around a store and a worklist
// transport. The transport is wrapped with tracing and send metrics.
func NewCompositionRoot(
	cfg Config,
	uowFactory ports.UnitOfWorkFactory,
	transport ports.WorklistTransport,
	collectors *metrics.Collectors,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		uowFactory: uowFactory,
		transport:  worklist.NewInstrumentedTransport(transport, collectors, nil),
		locker:     keylock.New(),
		collectors: collectors,
	}
}

// NewUnitOfWorkFactory selects the store. For postgres the schema is migrated.
func NewUnitOfWorkFactory(cfg Config, db *gorm.DB) (ports.UnitOfWorkFactory, error) {
	switch cfg.Store {
	case StoreMemory:
		return memory.NewUnitOfWorkFactory(memory.NewStore()), nil
	case StorePostgres:
		if db == nil {
			return nil, fmt.Errorf("store %s needs a database connection", cfg.Store)
		}
		if err := postgres.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return postgres.NewGormUnitOfWorkFactory(db), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// NewWorklistTransport selects the worklist transport. The HTTP client is
// traced with otelhttp.
func NewWorklistTransport(cfg Config) (ports.WorklistTransport, error) {
	switch cfg.WorklistTransport {
	case TransportHTTP:
		client := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
		return worklist.NewHTTPTransport(cfg.WorklistGatewayURL, cfg.WorklistTimeout, client), nil
	case TransportDirectory:
		return worklist.NewDirectoryTransport(cfg.WorklistDir)
	default:
		return nil, fmt.Errorf("unknown worklist transport %q", cfg.WorklistTransport)
	}
}

func (c *CompositionRoot) options(component string) []commands.Option {
	return []commands.Option{
		commands.WithLogger(c.logger.With("handler", component)),
		commands.WithLockTimeout(c.cfg.OrderLockTimeout),
		commands.WithObserver(c.collectors),
		commands.WithStudyUIDRoot(c.cfg.StudyUIDRoot),
	}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) reportUoW() commands.ReportUoWFactory {
	return FuncReportUoWFactory(func() commands.ReportUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) studyUoW() commands.StudyUoWFactory {
	return FuncStudyUoWFactory(func() commands.StudyUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) readers() queries.ReaderFactory {
	return FuncReaderFactory(func() queries.Reader {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.uow(), c.transport, c.locker, c.options("place_order")...)
}

func (c *CompositionRoot) CreateVoidOrderCommandHandler() commands.VoidOrderCommandHandler {
	return commands.NewVoidOrderCommandHandler(c.uow(), c.transport, c.locker, c.options("void_order")...)
}

func (c *CompositionRoot) CreateUnvoidOrderCommandHandler() commands.UnvoidOrderCommandHandler {
	return commands.NewUnvoidOrderCommandHandler(c.uow(), c.transport, c.locker, c.options("unvoid_order")...)
}

func (c *CompositionRoot) CreateDiscontinueOrderCommandHandler() commands.DiscontinueOrderCommandHandler {
	return commands.NewDiscontinueOrderCommandHandler(c.uow(), c.transport, c.locker, c.options("discontinue_order")...)
}

func (c *CompositionRoot) CreateUndiscontinueOrderCommandHandler() commands.UndiscontinueOrderCommandHandler {
	return commands.NewUndiscontinueOrderCommandHandler(c.uow(), c.transport, c.locker, c.options("undiscontinue_order")...)
}

func (c *CompositionRoot) CreateUpdateStudyScheduleCommandHandler() commands.UpdateStudyScheduleCommandHandler {
	return commands.NewUpdateStudyScheduleCommandHandler(c.uow(), c.transport, c.locker, c.options("update_study_schedule")...)
}

func (c *CompositionRoot) CreateUpdatePerformedStatusCommandHandler() commands.UpdatePerformedStatusCommandHandler {
	return commands.NewUpdatePerformedStatusCommandHandler(c.studyUoW(), c.locker, c.options("update_performed_status")...)
}

func (c *CompositionRoot) CreateClaimReportCommandHandler() commands.ClaimReportCommandHandler {
	return commands.NewClaimReportCommandHandler(c.reportUoW(), c.locker, c.options("claim_report")...)
}

func (c *CompositionRoot) CreateCompleteReportCommandHandler() commands.CompleteReportCommandHandler {
	return commands.NewCompleteReportCommandHandler(c.reportUoW(), c.locker, c.options("complete_report")...)
}

func (c *CompositionRoot) CreateDiscontinueReportCommandHandler() commands.DiscontinueReportCommandHandler {
	return commands.NewDiscontinueReportCommandHandler(c.reportUoW(), c.locker, c.options("discontinue_report")...)
}

func (c *CompositionRoot) CreateReviseReportCommandHandler() commands.ReviseReportCommandHandler {
	return commands.NewReviseReportCommandHandler(c.reportUoW(), c.locker, c.options("revise_report")...)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.readers())
}

func (c *CompositionRoot) CreateSearchOrdersQueryHandler() queries.SearchOrdersQueryHandler {
	return queries.NewSearchOrdersQueryHandler(c.readers())
}

func (c *CompositionRoot) CreateSearchReportsQueryHandler() queries.SearchReportsQueryHandler {
	return queries.NewSearchReportsQueryHandler(c.readers())
}

// CreateHTTPServer builds the REST adapter with every use case.
func (c *CompositionRoot) CreateHTTPServer() (*httpin.Server, error) {
	validator, err := httpin.NewTokenValidator(c.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return httpin.NewServer(httpin.Handlers{
		PlaceOrder:          c.CreatePlaceOrderCommandHandler(),
		VoidOrder:           c.CreateVoidOrderCommandHandler(),
		UnvoidOrder:         c.CreateUnvoidOrderCommandHandler(),
		DiscontinueOrder:    c.CreateDiscontinueOrderCommandHandler(),
		UndiscontinueOrder:  c.CreateUndiscontinueOrderCommandHandler(),
		UpdateStudySchedule: c.CreateUpdateStudyScheduleCommandHandler(),
		ClaimReport:         c.CreateClaimReportCommandHandler(),
		CompleteReport:      c.CreateCompleteReportCommandHandler(),
		DiscontinueReport:   c.CreateDiscontinueReportCommandHandler(),
		ReviseReport:        c.CreateReviseReportCommandHandler(),
		GetOrder:            c.CreateGetOrderQueryHandler(),
		SearchOrders:        c.CreateSearchOrdersQueryHandler(),
		SearchReports:       c.CreateSearchReportsQueryHandler(),
	}, validator), nil
}

func (c *CompositionRoot) CreateDeviceListener() *device.Listener {
	return device.NewListener(c.CreateUpdatePerformedStatusCommandHandler(), c.logger)
}

// DeviceListenerArgs returns the arguments the device listener is started with.
func (c *CompositionRoot) DeviceListenerArgs() device.ListenerArgs {
	return device.ListenerArgs{
		WorklistDir:      c.cfg.WorklistDir,
		ProcedureStepDir: c.cfg.ProcedureStepDir,
		DeviceAddress:    c.cfg.DeviceAddress,
	}
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	jm := jobs.NewJobManager(c.logger)
	jm.Register("procedure step poll job", jobs.NewProcedureStepPollJob(
		c.CreateUpdatePerformedStatusCommandHandler(),
		c.cfg.ProcedureStepDir,
		c.cfg.ProcedureStepPollSchedule,
		c.logger,
	))
	return jm
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncReportUoWFactory func() commands.ReportUoW

func (f FuncReportUoWFactory) Create() commands.ReportUoW {
	return f()
}

type FuncStudyUoWFactory func() commands.StudyUoW

func (f FuncStudyUoWFactory) Create() commands.StudyUoW {
	return f()
}

type FuncReaderFactory func() queries.Reader

func (f FuncReaderFactory) Create() queries.Reader {
	return f()
}
