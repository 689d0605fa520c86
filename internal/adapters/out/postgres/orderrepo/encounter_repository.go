package orderrepo

import (
	"context"
	"errors"

	"radiology/internal/adapters/out/postgres/pgerr"
	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormEncounterRepository implements ports.EncounterRepository using GORM.
type GormEncounterRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormEncounterRepository(db *gorm.DB, tracker aggregateTracker) *GormEncounterRepository {
	return &GormEncounterRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormEncounterRepository) Add(ctx context.Context, encounter *order.Encounter) error {
	if encounter == nil {
		return errs.NewValueIsRequiredError("encounter")
	}

	dto := encounterFromDomain(encounter)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewConflictErrorWithCause("encounter", encounter.ID().String(), err)
		}
		return err
	}

	r.tracker.TrackAggregate(encounter.ID(), encounter)
	return nil
}

func (r *GormEncounterRepository) Get(ctx context.Context, id kernel.UUID) (*order.Encounter, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto EncounterDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return encounterToDomain(dto)
}
