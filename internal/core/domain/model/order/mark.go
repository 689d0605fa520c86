package order

import (
	"strings"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/errs"
)

// Mark is the audit record of a lifecycle flag: the actor that set it and the effective date.
type Mark struct {
	actor  kernel.Actor
	reason string
	at     time.Time
}

// NewMark creates a lifecycle mark. The actor and the effective date are
// required; the reason is optional here and enforced by the transitions that
// need one.
func NewMark(actor kernel.Actor, reason string, at time.Time) (Mark, error) {
	if err := actor.Validate(); err != nil {
		return Mark{}, kernel.ErrActorIsRequired
	}
	if at.IsZero() {
		return Mark{}, errs.NewValueIsRequiredError("effective date")
	}
	return Mark{actor: actor, reason: strings.TrimSpace(reason), at: at}, nil
}

func (m Mark) Actor() kernel.Actor {
	return m.actor
}

func (m Mark) Reason() string {
	return m.reason
}

func (m Mark) At() time.Time {
	return m.at
}
