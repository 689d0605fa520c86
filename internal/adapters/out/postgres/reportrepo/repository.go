package reportrepo

import (
	"context"
	"errors"

	"radiology/internal/adapters/out/postgres/pgerr"
	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/pkg/errs"

	"gorm.io/gorm"
)

// ErrClaimedReportExists is the cause of the conflict returned when a write
// would leave a study with two current CLAIMED reports.
var ErrClaimedReportExists = errors.New("study already has a claimed report")

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormReportRepository implements ports.ReportRepository using GORM.
type GormReportRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormReportRepository(db *gorm.DB, tracker aggregateTracker) *GormReportRepository {
	return &GormReportRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormReportRepository) Add(ctx context.Context, rp *report.Report) error {
	if err := rp.Validate(); err != nil {
		return err
	}

	dto := fromDomain(rp)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return conflictOrError(rp, err)
	}

	r.tracker.TrackAggregate(rp.ID(), rp)
	return nil
}

func (r *GormReportRepository) Update(ctx context.Context, rp *report.Report) error {
	if err := rp.Validate(); err != nil {
		return err
	}

	dto := fromDomain(rp)
	result := r.db.WithContext(ctx).
		Model(&ReportDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return conflictOrError(rp, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("report", rp.ID().String())
	}

	r.tracker.TrackAggregate(rp.ID(), rp)
	return nil
}

func (r *GormReportRepository) Get(ctx context.Context, id kernel.UUID) (*report.Report, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ReportDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormReportRepository) GetByStudy(ctx context.Context, studyID kernel.UUID) ([]*report.Report, error) {
	if err := studyID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ReportDTO
	err := r.db.WithContext(ctx).
		Where("study_id = ?", studyID.Bytes()).
		Order("date ASC").Order("id ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

func (r *GormReportRepository) HasCompletedReport(ctx context.Context, studyID kernel.UUID) (bool, error) {
	return r.hasCurrent(ctx, studyID, report.Completed)
}

func (r *GormReportRepository) HasClaimedReport(ctx context.Context, studyID kernel.UUID) (bool, error) {
	return r.hasCurrent(ctx, studyID, report.Claimed)
}

func (r *GormReportRepository) GetActiveReport(ctx context.Context, studyID kernel.UUID) (*report.Report, error) {
	if err := studyID.Validate(); err != nil {
		return nil, err
	}

	var dto ReportDTO
	err := r.db.WithContext(ctx).
		Where("study_id = ? AND NOT superseded AND status <> ?", studyID.Bytes(), report.Discontinued.String()).
		Order("date DESC").Order("id DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(dto)
}

// Find joins through studies to orders when the criteria name a patient.
func (r *GormReportRepository) Find(ctx context.Context, criteria report.SearchCriteria) ([]*report.Report, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&ReportDTO{})
	if patientID := criteria.PatientID(); patientID != nil {
		q = q.
			Joins("JOIN studies ON studies.id = reports.study_id").
			Joins("JOIN orders ON orders.id = studies.order_id").
			Where("orders.patient_id = ?", patientID.Bytes())
	}
	if from := criteria.ReportDate().From(); from != nil {
		q = q.Where("reports.date >= ?", *from)
	}
	if to := criteria.ReportDate().To(); to != nil {
		q = q.Where("reports.date <= ?", *to)
	}
	if status := criteria.Status(); status != nil {
		q = q.Where("reports.status = ?", status.String())
	}
	if criteria.ExcludesDiscontinued() {
		q = q.Where("reports.status <> ?", report.Discontinued.String())
	}
	if interpreter := criteria.PrincipalInterpreter(); interpreter != nil {
		q = q.Where("reports.interpreter_id = ?", interpreter.Bytes())
	}

	var dtos []ReportDTO
	if err := q.Order("reports.date ASC").Order("reports.id ASC").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainAll(dtos)
}

// hasCurrent answers with one EXISTS query.
func (r *GormReportRepository) hasCurrent(ctx context.Context, studyID kernel.UUID, status report.Status) (bool, error) {
	if err := studyID.Validate(); err != nil {
		return false, err
	}

	var exists bool
	err := r.db.WithContext(ctx).
		Raw(
			"SELECT EXISTS (SELECT 1 FROM reports WHERE study_id = ? AND status = ? AND NOT superseded)",
			studyID.Bytes(), status.String(),
		).
		Scan(&exists).Error
	return exists, err
}

func conflictOrError(rp *report.Report, err error) error {
	if !pgerr.IsUniqueViolation(err) {
		return err
	}
	if pgerr.ConstraintName(err) == claimedReportIndex {
		return errs.NewConflictErrorWithCause("report", rp.StudyID().String(), ErrClaimedReportExists)
	}
	return errs.NewConflictErrorWithCause("report", rp.ID().String(), err)
}

func toDomainAll(dtos []ReportDTO) ([]*report.Report, error) {
	out := make([]*report.Report, 0, len(dtos))
	for _, dto := range dtos {
		rp, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, rp)
	}
	return out, nil
}
