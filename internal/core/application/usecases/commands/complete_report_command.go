package commands

import (
	"errors"
	"strings"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

var ErrCompleteReportCommandIsNotConstructed = errors.New(
	"CompleteReportCommand must be created via NewCompleteReportCommand constructor",
)

// CompleteReportCommand signs a claimed report. An empty body keeps the body
// already on the report, which is how a revision is signed unchanged.
type CompleteReportCommand struct {
	reportID kernel.UUID
	actor    kernel.Actor
	body     string

	guard guard.ConstructorGuard
}

func NewCompleteReportCommand(reportID kernel.UUID, actor kernel.Actor, body string) (CompleteReportCommand, error) {
	if err := errors.Join(
		requireID("report id", reportID),
		requireActor(actor),
	); err != nil {
		return CompleteReportCommand{}, err
	}

	return CompleteReportCommand{
		reportID: reportID,
		actor:    actor,
		body:     strings.TrimSpace(body),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteReportCommand) Validate() error {
	return c.guard.Validate(ErrCompleteReportCommandIsNotConstructed)
}

func (c CompleteReportCommand) ReportID() kernel.UUID {
	return c.reportID
}

func (c CompleteReportCommand) Actor() kernel.Actor {
	return c.actor
}

func (c CompleteReportCommand) Body() string {
	return c.body
}
