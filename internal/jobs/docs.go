// Package jobs provides scheduled background tasks for the radiology service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. ProcedureStepPollJob - applies performed procedure step files found in the
// procedure step directory, by default every five seconds
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(logger)
//	jobManager.Register("procedure step poll", jobs.NewProcedureStepPollJob(handler, dir, "", logger))
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules are six-field cron expressions with a leading seconds field.
// A run that is still busy when the next tick fires causes that tick to be skipped.
//
// # Error Handling
//
// - A busy order or a store failure leaves the file for the next run
// - A file that can never be applied moves to the rejected subdirectory
// - Failed job starts will stop any already running jobs
package jobs
