package commands

import (
	"errors"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/guard"
)

var ErrClaimReportCommandIsNotConstructed = errors.New(
	"ClaimReportCommand must be created via NewClaimReportCommand constructor",
)

// ClaimReportCommand asks for an actor to become the interpreter of a study.
// Without a report id a new draft is created and claimed in one step; with one,
// that draft is claimed, which is how a revision is picked up.
type ClaimReportCommand struct {
	studyID  kernel.UUID
	reportID *kernel.UUID
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

func NewClaimReportCommand(studyID kernel.UUID, reportID *kernel.UUID, actor kernel.Actor) (ClaimReportCommand, error) {
	var reportErr error
	if reportID != nil {
		reportErr = requireID("report id", *reportID)
	}
	if err := errors.Join(
		requireID("study id", studyID),
		reportErr,
		requireActor(actor),
	); err != nil {
		return ClaimReportCommand{}, err
	}

	cmd := ClaimReportCommand{
		studyID: studyID,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}
	if reportID != nil {
		id := *reportID
		cmd.reportID = &id
	}
	return cmd, nil
}

func (c ClaimReportCommand) Validate() error {
	return c.guard.Validate(ErrClaimReportCommandIsNotConstructed)
}

func (c ClaimReportCommand) StudyID() kernel.UUID {
	return c.studyID
}

// ReportID returns the draft to claim, or nil to claim a new draft.
func (c ClaimReportCommand) ReportID() *kernel.UUID {
	if c.reportID == nil {
		return nil
	}
	id := *c.reportID
	return &id
}

func (c ClaimReportCommand) Actor() kernel.Actor {
	return c.actor
}
