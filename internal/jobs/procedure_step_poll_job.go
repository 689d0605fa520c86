package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"radiology/internal/adapters/in/device"
	"radiology/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// DefaultProcedureStepPollSchedule polls every five seconds.
const DefaultProcedureStepPollSchedule = "*/5 * * * * *"

// rejectedDir collects procedure step files that can never be applied.
const rejectedDir = "rejected"

// ProcedureStepPollJob applies procedure step files dropped into a directory by
// the order filler or spooled by the device listener. Applied files are
// removed; files that fail validation move to the rejected subdirectory; files
// that hit a busy order or a store failure stay for the next run.
type ProcedureStepPollJob struct {
	handler  device.PerformedStatusHandler
	dir      string
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	// running guards against overlapping runs on a slow store.
	running sync.Mutex
}

func NewProcedureStepPollJob(
	handler device.PerformedStatusHandler,
	dir string,
	schedule string,
	logger *slog.Logger,
) *ProcedureStepPollJob {
	if strings.TrimSpace(schedule) == "" {
		schedule = DefaultProcedureStepPollSchedule
	}
	return &ProcedureStepPollJob{
		handler:  handler,
		dir:      dir,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "procedure_step_poll_job"),
	}
}

// Start schedules the poll.
func (j *ProcedureStepPollJob) Start() error {
	if strings.TrimSpace(j.dir) == "" {
		return errors.New("procedure step directory is required")
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create procedure step directory: %w", err)
	}

	_, err := j.cron.AddFunc(j.schedule, func() {
		if !j.running.TryLock() {
			return
		}
		defer j.running.Unlock()

		ctx := context.Background()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Procedure step poll failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Procedure step poll job started", "schedule", j.schedule, "dir", j.dir)
	return nil
}

// Stop stops scheduling and waits for a running poll to finish.
func (j *ProcedureStepPollJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Procedure step poll job stopped")
}

// RunOnce processes every pending file in name order and returns how many
// were applied. An error is returned only when the directory cannot be read.
func (j *ProcedureStepPollJob) RunOnce(ctx context.Context) (int, error) {
	names, err := filepath.Glob(filepath.Join(j.dir, "*"+device.ProcedureStepSuffix))
	if err != nil {
		return 0, err
	}
	sort.Strings(names)

	applied := 0
	for _, name := range names {
		if ctx.Err() != nil {
			return applied, nil
		}
		if j.process(ctx, name) {
			applied++
		}
	}
	return applied, nil
}

func (j *ProcedureStepPollJob) process(ctx context.Context, name string) bool {
	log := j.logger.With("file", filepath.Base(name))

	step, err := device.ReadProcedureStep(name)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	if err != nil {
		log.WarnContext(ctx, "Unreadable procedure step", "error", err)
		j.reject(ctx, log, name)
		return false
	}

	command, err := step.Command()
	if err == nil {
		err = j.handler.Handle(ctx, command)
	}
	switch {
	case err == nil:
		if rmErr := os.Remove(name); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.ErrorContext(ctx, "Failed to remove applied procedure step", "error", rmErr)
		}
		log.InfoContext(ctx, "Procedure step applied",
			"study_instance_uid", step.StudyInstanceUID,
			"status", step.Status,
		)
		return true
	case errors.Is(err, errs.ErrConflict):
		log.DebugContext(ctx, "Order busy, procedure step retried later", "error", err)
	case errs.IsValidation(err):
		log.WarnContext(ctx, "Procedure step rejected",
			"study_instance_uid", step.StudyInstanceUID,
			"status", step.Status,
			"error", err,
		)
		j.reject(ctx, log, name)
	default:
		log.ErrorContext(ctx, "Procedure step failed, retried later", "error", err)
	}
	return false
}

func (j *ProcedureStepPollJob) reject(ctx context.Context, log *slog.Logger, name string) {
	target := filepath.Join(j.dir, rejectedDir, filepath.Base(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		log.ErrorContext(ctx, "Failed to create rejected directory", "error", err)
		return
	}
	if err := os.Rename(name, target); err != nil {
		log.ErrorContext(ctx, "Failed to move rejected procedure step", "error", err)
	}
}
