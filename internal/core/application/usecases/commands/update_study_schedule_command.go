package commands

import (
	"errors"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/pkg/guard"
)

var ErrUpdateStudyScheduleCommandIsNotConstructed = errors.New(
	"UpdateStudyScheduleCommand must be created via NewUpdateStudyScheduleCommand constructor",
)

// UpdateStudyScheduleCommand moves a study to a new date and/or priority.
// A nil date clears the schedule; an unknown priority keeps the current one.
type UpdateStudyScheduleCommand struct {
	orderID       kernel.UUID
	actor         kernel.Actor
	scheduledDate *time.Time
	priority      study.Priority

	guard guard.ConstructorGuard
}

func NewUpdateStudyScheduleCommand(
	orderID kernel.UUID,
	actor kernel.Actor,
	scheduledDate *time.Time,
	priority study.Priority,
) (UpdateStudyScheduleCommand, error) {
	var priorityErr error
	if priority != study.UnknownPriority {
		priorityErr = priority.Validate()
	}
	if err := errors.Join(
		requireID("order id", orderID),
		requireActor(actor),
		priorityErr,
	); err != nil {
		return UpdateStudyScheduleCommand{}, err
	}

	var date *time.Time
	if scheduledDate != nil {
		d := *scheduledDate
		date = &d
	}

	return UpdateStudyScheduleCommand{
		orderID:       orderID,
		actor:         actor,
		scheduledDate: date,
		priority:      priority,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateStudyScheduleCommand) Validate() error {
	return c.guard.Validate(ErrUpdateStudyScheduleCommandIsNotConstructed)
}

func (c UpdateStudyScheduleCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c UpdateStudyScheduleCommand) Actor() kernel.Actor {
	return c.actor
}

func (c UpdateStudyScheduleCommand) ScheduledDate() *time.Time {
	if c.scheduledDate == nil {
		return nil
	}
	d := *c.scheduledDate
	return &d
}

func (c UpdateStudyScheduleCommand) Priority() study.Priority {
	return c.priority
}
