// Package orderrepo maps the order aggregate and its encounter to the orders
// and encounters tables.
package orderrepo

import (
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// EncounterDTO is a row of the encounters table.
type EncounterDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	PatientID  uuid.UUID `gorm:"type:uuid;index"`
	ProviderID uuid.UUID `gorm:"type:uuid"`
	Date       time.Time
}

func (EncounterDTO) TableName() string {
	return "encounters"
}

// OrderDTO is a row of the orders table. The lifecycle marks are flattened into
// nullable columns; a NULL actor means the flag is not set. The undiscontinued
// columns keep the latest Undiscontinue.
type OrderDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	EncounterID     uuid.UUID `gorm:"type:uuid"`
	PatientID       uuid.UUID `gorm:"type:uuid;index"`
	OrdererID       uuid.UUID `gorm:"type:uuid"`
	OrdererName     string
	AccessionNumber string `gorm:"size:16;uniqueIndex"`
	Instructions    string
	OrderDate       time.Time `gorm:"index"`
	Voided          MarkDTO   `gorm:"embedded;embeddedPrefix:voided_"`
	Discontinued    MarkDTO   `gorm:"embedded;embeddedPrefix:discontinued_"`
	Undiscontinued  MarkDTO   `gorm:"embedded;embeddedPrefix:undiscontinued_"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// MarkDTO holds who set a lifecycle flag, when and why.
type MarkDTO struct {
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	ActorName string
	Reason    string
	At        *time.Time
}

func encounterFromDomain(e *order.Encounter) EncounterDTO {
	return EncounterDTO{
		ID:         e.ID().Bytes(),
		PatientID:  e.PatientID().Bytes(),
		ProviderID: e.ProviderID().Bytes(),
		Date:       e.Date(),
	}
}

func encounterToDomain(dto EncounterDTO) (*order.Encounter, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	patientID, err := kernel.UUIDFromBytes(dto.PatientID[:])
	if err != nil {
		return nil, err
	}
	providerID, err := kernel.UUIDFromBytes(dto.ProviderID[:])
	if err != nil {
		return nil, err
	}
	return order.RestoreEncounter(id, patientID, providerID, dto.Date)
}

func fromDomain(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:              o.ID().Bytes(),
		EncounterID:     o.EncounterID().Bytes(),
		PatientID:       o.PatientID().Bytes(),
		OrdererID:       o.Orderer().ID().Bytes(),
		OrdererName:     o.Orderer().Name(),
		AccessionNumber: o.AccessionNumber(),
		Instructions:    o.Instructions(),
		OrderDate:       o.OrderDate(),
		Voided:          markFromDomain(o.Voided()),
		Discontinued:    markFromDomain(o.Discontinued()),
		Undiscontinued:  markFromDomain(o.Undiscontinued()),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	encounterID, err := kernel.UUIDFromBytes(dto.EncounterID[:])
	if err != nil {
		return nil, err
	}
	patientID, err := kernel.UUIDFromBytes(dto.PatientID[:])
	if err != nil {
		return nil, err
	}
	orderer, err := restoreActor(dto.OrdererID, dto.OrdererName)
	if err != nil {
		return nil, err
	}
	voided, err := markToDomain(dto.Voided)
	if err != nil {
		return nil, err
	}
	discontinued, err := markToDomain(dto.Discontinued)
	if err != nil {
		return nil, err
	}
	undiscontinued, err := markToDomain(dto.Undiscontinued)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		encounterID,
		patientID,
		orderer,
		dto.AccessionNumber,
		dto.Instructions,
		dto.OrderDate,
		voided,
		discontinued,
		undiscontinued,
	)
}

func markFromDomain(m *order.Mark) MarkDTO {
	if m == nil {
		return MarkDTO{}
	}
	actorID := m.Actor().ID().Bytes()
	at := m.At()
	return MarkDTO{
		ActorID:   &actorID,
		ActorName: m.Actor().Name(),
		Reason:    m.Reason(),
		At:        &at,
	}
}

func markToDomain(dto MarkDTO) (*order.Mark, error) {
	if dto.ActorID == nil || dto.At == nil {
		return nil, nil
	}
	actor, err := restoreActor(*dto.ActorID, dto.ActorName)
	if err != nil {
		return nil, err
	}
	m, err := order.NewMark(actor, dto.Reason, *dto.At)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func restoreActor(raw uuid.UUID, name string) (kernel.Actor, error) {
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return kernel.Actor{}, err
	}
	return kernel.RestoreActor(id, name)
}
