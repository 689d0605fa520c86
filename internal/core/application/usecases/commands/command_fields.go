package commands

import (
	"strings"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/pkg/errs"
)

func requireID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}

func requireActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return kernel.ErrActorIsRequired
	}
	return nil
}

func requireReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", order.ErrReasonIsRequired
	}
	return reason, nil
}
