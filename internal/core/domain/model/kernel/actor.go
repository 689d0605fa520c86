package kernel

import (
	"errors"
	"slices"
	"strings"

	"radiology/internal/pkg/errs"
	"radiology/internal/pkg/guard"
)

// Capability names an operation an actor is allowed to perform.
type Capability string

const (
	CapabilityPlaceOrder        Capability = "orders:place"
	CapabilityVoidOrder         Capability = "orders:void"
	CapabilityDiscontinueOrder  Capability = "orders:discontinue"
	CapabilityScheduleStudy     Capability = "orders:schedule"
	CapabilityClaimReport       Capability = "reports:claim"
	CapabilityCompleteReport    Capability = "reports:complete"
	CapabilityOverrideReport    Capability = "reports:override"
	CapabilityDiscontinueReport Capability = "reports:discontinue"
)

var (
	// ErrActorIsNotConstructed is returned when a zero-value Actor is used.
	ErrActorIsNotConstructed = errors.New("Actor must be created via NewActor constructor")
	// ErrActorIsRequired is returned when a transition is requested without an actor.
	ErrActorIsRequired = errs.NewValueIsRequiredError("actor")
)

// Actor is the authenticated principal performing a transition: an ordering
// provider, a technologist or a radiologist. It is a value object; two actors
// with the same id are the same principal regardless of name or capabilities.
type Actor struct {
	id           UUID
	name         string
	capabilities []Capability
	guard        guard.ConstructorGuard
}

// NewActor creates an Actor. The id is required; name is informational.
func NewActor(id UUID, name string, capabilities ...Capability) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, errs.NewValueIsRequiredErrorWithCause("actor id", err)
	}

	caps := make([]Capability, 0, len(capabilities))
	for _, c := range capabilities {
		c = Capability(strings.TrimSpace(string(c)))
		if c != "" && !slices.Contains(caps, c) {
			caps = append(caps, c)
		}
	}

	return Actor{
		id:           id,
		name:         strings.TrimSpace(name),
		capabilities: caps,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// RestoreActor rebuilds an actor reference loaded from storage. Only the identity
// is persisted, so the restored actor carries no capabilities.
func RestoreActor(id UUID, name string) (Actor, error) {
	return NewActor(id, name)
}

// Validate reports whether the actor was built through NewActor.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

// ID returns the actor's identity.
func (a Actor) ID() UUID {
	return a.id
}

// Name returns the display name of the actor.
func (a Actor) Name() string {
	return a.name
}

// Capabilities returns a copy of the actor's capabilities.
func (a Actor) Capabilities() []Capability {
	return slices.Clone(a.capabilities)
}

// Can reports whether the actor holds capability c.
func (a Actor) Can(c Capability) bool {
	return slices.Contains(a.capabilities, c)
}

// Require returns a forbidden error unless the actor holds capability c.
// A zero-value actor yields ErrActorIsRequired.
func (a Actor) Require(c Capability) error {
	if err := a.Validate(); err != nil {
		return ErrActorIsRequired
	}
	if !a.Can(c) {
		return errs.NewForbiddenError(string(c))
	}
	return nil
}

// IsEqual compares actors by identity.
func (a Actor) IsEqual(other Actor) bool {
	return a.id.IsEqual(other.id)
}
