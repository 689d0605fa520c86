// Package studyrepo maps studies to the studies table. Enumerations are stored
// by name so the table stays readable from psql and reporting tools.
package studyrepo

import (
	"errors"
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/domain/model/worklist"

	"github.com/google/uuid"
)

// StudyDTO is a row of the studies table. StudyInstanceUID is NULL until a
// device or the worklist assigns one.
type StudyDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Modality         string    `gorm:"size:2"`
	Priority         string    `gorm:"size:16"`
	ScheduledDate    *time.Time
	ScheduledStatus  string  `gorm:"size:16"`
	PerformedStatus  string  `gorm:"size:16"`
	StudyInstanceUID *string `gorm:"size:64;uniqueIndex"`
	SyncStatus       string  `gorm:"size:48"`
}

func (StudyDTO) TableName() string {
	return "studies"
}

func fromDomain(s *study.Study) StudyDTO {
	var uid *string
	if v := s.StudyInstanceUID(); v != "" {
		uid = &v
	}

	return StudyDTO{
		ID:               s.ID().Bytes(),
		OrderID:          s.OrderID().Bytes(),
		Modality:         s.Modality().String(),
		Priority:         s.Priority().String(),
		ScheduledDate:    s.ScheduledDate(),
		ScheduledStatus:  s.ScheduledStatus().String(),
		PerformedStatus:  s.PerformedStatus().String(),
		StudyInstanceUID: uid,
		SyncStatus:       s.SyncStatus().Code(),
	}
}

func toDomain(dto StudyDTO) (*study.Study, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	modality, modalityErr := study.ParseModality(dto.Modality)
	priority, priorityErr := study.ParsePriority(dto.Priority)
	scheduled, scheduledErr := study.ParseScheduledStatus(dto.ScheduledStatus)
	performed, performedErr := study.ParsePerformedStatus(dto.PerformedStatus)
	syncStatus, syncErr := worklist.ParseSyncStatus(dto.SyncStatus)
	if err = errors.Join(modalityErr, priorityErr, scheduledErr, performedErr, syncErr); err != nil {
		return nil, err
	}

	var uid string
	if dto.StudyInstanceUID != nil {
		uid = *dto.StudyInstanceUID
	}

	return study.RestoreStudy(
		id,
		orderID,
		modality,
		priority,
		dto.ScheduledDate,
		scheduled,
		performed,
		uid,
		syncStatus,
	)
}
