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

// aggregateTracker is implemented by the unit of work that owns the connection.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a newly placed order.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if aggregate.IsNew() {
		return errs.NewValueIsInvalidErrorWithCause("order", order.ErrOrderIsNotPlaced)
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return errs.NewConflictErrorWithCause("order", aggregate.ID().String(), err)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes every column, so cleared marks become NULL again.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return toDomain(dto)
}

// Find returns the orders matching criteria by order date, then id.
func (r *GormOrderRepository) Find(ctx context.Context, criteria order.SearchCriteria) ([]*order.Order, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&OrderDTO{})
	if patientID := criteria.PatientID(); patientID != nil {
		q = q.Where("patient_id = ?", patientID.Bytes())
	}
	if from := criteria.OrderDate().From(); from != nil {
		q = q.Where("order_date >= ?", *from)
	}
	if to := criteria.OrderDate().To(); to != nil {
		q = q.Where("order_date <= ?", *to)
	}
	if !criteria.IncludeVoided() {
		q = q.Where("voided_actor_id IS NULL")
	}
	if !criteria.IncludeDiscontinued() {
		q = q.Where("discontinued_actor_id IS NULL")
	}

	var dtos []OrderDTO
	if err := q.Order("order_date ASC").Order("id ASC").Find(&dtos).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
