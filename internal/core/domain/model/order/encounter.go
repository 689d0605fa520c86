package order

import (
	"errors"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/pkg/errs"
)

// Encounter is the clinical visit record an order is attached to. A new
// encounter is created for every placed order.
type Encounter struct {
	id         kernel.UUID
	patientID  kernel.UUID
	providerID kernel.UUID
	date       time.Time
}

// NewEncounter creates an encounter for patientID performed by provider at the given date.
func NewEncounter(id kernel.UUID, patientID kernel.UUID, provider kernel.Actor, at time.Time) (*Encounter, error) {
	var providerErr error
	if provider.Validate() != nil {
		providerErr = kernel.ErrActorIsRequired
	}
	var dateErr error
	if at.IsZero() {
		dateErr = errs.NewValueIsRequiredError("encounter date")
	}

	if err := errors.Join(id.Validate(), patientID.Validate(), providerErr, dateErr); err != nil {
		return nil, err
	}

	return &Encounter{id: id, patientID: patientID, providerID: provider.ID(), date: at}, nil
}

// RestoreEncounter rebuilds an encounter from storage.
func RestoreEncounter(id, patientID, providerID kernel.UUID, at time.Time) (*Encounter, error) {
	if err := errors.Join(id.Validate(), patientID.Validate(), providerID.Validate()); err != nil {
		return nil, err
	}
	return &Encounter{id: id, patientID: patientID, providerID: providerID, date: at}, nil
}

func (e *Encounter) ID() kernel.UUID {
	return e.id
}

func (e *Encounter) PatientID() kernel.UUID {
	return e.patientID
}

func (e *Encounter) ProviderID() kernel.UUID {
	return e.providerID
}

func (e *Encounter) Date() time.Time {
	return e.date
}
