package studyrepo

import (
	"context"
	"errors"
	"strings"

	"radiology/internal/adapters/out/postgres/pgerr"
	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormStudyRepository implements ports.StudyRepository using GORM.
type GormStudyRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormStudyRepository(db *gorm.DB, tracker aggregateTracker) *GormStudyRepository {
	return &GormStudyRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormStudyRepository) Add(ctx context.Context, s *study.Study) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dto := fromDomain(s)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewConflictErrorWithCause("study", s.ID().String(), err)
		}
		return err
	}

	r.tracker.TrackAggregate(s.ID(), s)
	return nil
}

func (r *GormStudyRepository) Update(ctx context.Context, s *study.Study) error {
	if err := s.Validate(); err != nil {
		return err
	}

	dto := fromDomain(s)
	result := r.db.WithContext(ctx).
		Model(&StudyDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		if pgerr.IsUniqueViolation(result.Error) {
			return errs.NewConflictErrorWithCause("study", s.ID().String(), result.Error)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("study", s.ID().String())
	}

	r.tracker.TrackAggregate(s.ID(), s)
	return nil
}

func (r *GormStudyRepository) Get(ctx context.Context, id kernel.UUID) (*study.Study, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "id = ?", id.Bytes())
}

func (r *GormStudyRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*study.Study, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	return r.first(ctx, "order_id = ?", orderID.Bytes())
}

// GetByStudyInstanceUID matches the trimmed uid exactly.
func (r *GormStudyRepository) GetByStudyInstanceUID(ctx context.Context, uid string) (*study.Study, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errs.NewValueIsRequiredError("study instance uid")
	}
	return r.first(ctx, "study_instance_uid = ?", uid)
}

func (r *GormStudyRepository) GetByOrderIDs(
	ctx context.Context,
	orderIDs []kernel.UUID,
) (map[kernel.UUID]*study.Study, error) {
	result := make(map[kernel.UUID]*study.Study, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	raw := make([]uuid.UUID, 0, len(orderIDs))
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		raw = append(raw, id.Bytes())
	}

	var dtos []StudyDTO
	if err := r.db.WithContext(ctx).Where("order_id IN ?", raw).Find(&dtos).Error; err != nil {
		return nil, err
	}

	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		result[s.OrderID()] = s
	}
	return result, nil
}

func (r *GormStudyRepository) first(ctx context.Context, query string, args ...any) (*study.Study, error) {
	var dto StudyDTO
	if err := r.db.WithContext(ctx).Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(dto)
}
