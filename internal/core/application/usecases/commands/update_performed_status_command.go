package commands

import (
	"errors"
	"strings"

	"radiology/internal/core/domain/model/study"
	"radiology/internal/pkg/errs"
	"radiology/internal/pkg/guard"
)

var ErrUpdatePerformedStatusCommandIsNotConstructed = errors.New(
	"UpdatePerformedStatusCommand must be created via NewUpdatePerformedStatusCommand constructor",
)

// UpdatePerformedStatusCommand is a device report that a procedure step started,
// completed or was abandoned. The study is addressed by its study instance UID.
type UpdatePerformedStatusCommand struct {
	studyInstanceUID string
	performedStatus  study.PerformedStatus

	guard guard.ConstructorGuard
}

func NewUpdatePerformedStatusCommand(
	studyInstanceUID string,
	performedStatus study.PerformedStatus,
) (UpdatePerformedStatusCommand, error) {
	studyInstanceUID = strings.TrimSpace(studyInstanceUID)

	var uidErr, statusErr error
	if studyInstanceUID == "" {
		uidErr = errs.NewValueIsRequiredError("study instance uid")
	}
	if performedStatus == study.NotPerformed {
		statusErr = errs.NewValueIsRequiredError("performed status")
	} else {
		statusErr = performedStatus.Validate()
	}
	if err := errors.Join(uidErr, statusErr); err != nil {
		return UpdatePerformedStatusCommand{}, err
	}

	return UpdatePerformedStatusCommand{
		studyInstanceUID: studyInstanceUID,
		performedStatus:  performedStatus,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (c UpdatePerformedStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdatePerformedStatusCommandIsNotConstructed)
}

func (c UpdatePerformedStatusCommand) StudyInstanceUID() string {
	return c.studyInstanceUID
}

func (c UpdatePerformedStatusCommand) PerformedStatus() study.PerformedStatus {
	return c.performedStatus
}
