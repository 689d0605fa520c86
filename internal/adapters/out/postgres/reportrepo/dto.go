// Package reportrepo maps reports to the reports table.
package reportrepo

import (
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"

	"github.com/google/uuid"
)

// claimedReportIndex is the partial unique index that allows one current
// CLAIMED report per study.
const claimedReportIndex = "idx_reports_claimed_study"

// ClaimedReportIndexDDL creates claimedReportIndex. AutoMigrate cannot express
// partial indexes, so Migrate runs it after the tables exist.
const ClaimedReportIndexDDL = "CREATE UNIQUE INDEX IF NOT EXISTS " + claimedReportIndex +
	" ON reports (study_id) WHERE status = 'CLAIMED' AND NOT superseded"

// ReportDTO is a row of the reports table.
type ReportDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	StudyID         uuid.UUID  `gorm:"type:uuid;index"`
	Status          string     `gorm:"size:16"`
	InterpreterID   *uuid.UUID `gorm:"type:uuid;index"`
	InterpreterName string
	Date            time.Time  `gorm:"index"`
	Body            string     `gorm:"type:text"`
	RevisionOf      *uuid.UUID `gorm:"type:uuid"`
	Superseded      bool
}

func (ReportDTO) TableName() string {
	return "reports"
}

func fromDomain(r *report.Report) ReportDTO {
	dto := ReportDTO{
		ID:         r.ID().Bytes(),
		StudyID:    r.StudyID().Bytes(),
		Status:     r.Status().String(),
		Date:       r.Date(),
		Body:       r.Body(),
		Superseded: r.IsSuperseded(),
	}
	if interpreter := r.PrincipalInterpreter(); interpreter != nil {
		id := interpreter.ID().Bytes()
		dto.InterpreterID = &id
		dto.InterpreterName = interpreter.Name()
	}
	if original := r.RevisionOf(); original != nil {
		id := original.Bytes()
		dto.RevisionOf = &id
	}
	return dto
}

func toDomain(dto ReportDTO) (*report.Report, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	studyID, err := kernel.UUIDFromBytes(dto.StudyID[:])
	if err != nil {
		return nil, err
	}
	status, err := report.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var interpreter *kernel.Actor
	if dto.InterpreterID != nil {
		actorID, actorErr := kernel.UUIDFromBytes(dto.InterpreterID[:])
		if actorErr != nil {
			return nil, actorErr
		}
		actor, actorErr := kernel.RestoreActor(actorID, dto.InterpreterName)
		if actorErr != nil {
			return nil, actorErr
		}
		interpreter = &actor
	}

	var revisionOf *kernel.UUID
	if dto.RevisionOf != nil {
		original, originalErr := kernel.UUIDFromBytes(dto.RevisionOf[:])
		if originalErr != nil {
			return nil, originalErr
		}
		revisionOf = &original
	}

	return report.RestoreReport(id, studyID, status, interpreter, dto.Date, dto.Body, revisionOf, dto.Superseded)
}
