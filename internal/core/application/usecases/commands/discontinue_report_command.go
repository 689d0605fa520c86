package commands

import (
	"errors"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

var ErrDiscontinueReportCommandIsNotConstructed = errors.New(
	"DiscontinueReportCommand must be created via NewDiscontinueReportCommand constructor",
)

// DiscontinueReportCommand abandons a draft or claimed report.
type DiscontinueReportCommand struct {
	reportID kernel.UUID
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

func NewDiscontinueReportCommand(reportID kernel.UUID, actor kernel.Actor) (DiscontinueReportCommand, error) {
	if err := errors.Join(
		requireID("report id", reportID),
		requireActor(actor),
	); err != nil {
		return DiscontinueReportCommand{}, err
	}

	return DiscontinueReportCommand{
		reportID: reportID,
		actor:    actor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c DiscontinueReportCommand) Validate() error {
	return c.guard.Validate(ErrDiscontinueReportCommandIsNotConstructed)
}

func (c DiscontinueReportCommand) ReportID() kernel.UUID {
	return c.reportID
}

func (c DiscontinueReportCommand) Actor() kernel.Actor {
	return c.actor
}
