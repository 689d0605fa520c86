package commands

import (
	"errors"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

var ErrReviseReportCommandIsNotConstructed = errors.New(
	"ReviseReportCommand must be created via NewReviseReportCommand constructor",
)

// ReviseReportCommand opens a revision of a completed report.
type ReviseReportCommand struct {
	reportID kernel.UUID
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

func NewReviseReportCommand(reportID kernel.UUID, actor kernel.Actor) (ReviseReportCommand, error) {
	if err := errors.Join(
		requireID("report id", reportID),
		requireActor(actor),
	); err != nil {
		return ReviseReportCommand{}, err
	}

	return ReviseReportCommand{
		reportID: reportID,
		actor:    actor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ReviseReportCommand) Validate() error {
	return c.guard.Validate(ErrReviseReportCommandIsNotConstructed)
}

func (c ReviseReportCommand) ReportID() kernel.UUID {
	return c.reportID
}

func (c ReviseReportCommand) Actor() kernel.Actor {
	return c.actor
}
