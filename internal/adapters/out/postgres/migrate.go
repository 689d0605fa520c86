package postgres

import (
	"radiology/internal/adapters/out/postgres/orderrepo"
	"radiology/internal/adapters/out/postgres/reportrepo"
	"radiology/internal/adapters/out/postgres/studyrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates the schema, including the partial unique index
// that allows at most one current CLAIMED report per study.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&orderrepo.EncounterDTO{},
		&orderrepo.OrderDTO{},
		&studyrepo.StudyDTO{},
		&reportrepo.ReportDTO{},
	); err != nil {
		return err
	}
	return db.Exec(reportrepo.ClaimedReportIndexDDL).Error
}
