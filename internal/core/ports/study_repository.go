package ports

import (
	"context"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/study"
)

// StudyRepository defines the persistence contract for studies. Every lookup
// returns (nil, nil) when nothing matches; a zero id or empty UID argument is a
// validation failure.
type StudyRepository interface {
	Add(ctx context.Context, s *study.Study) error
	Update(ctx context.Context, s *study.Study) error
	Get(ctx context.Context, id kernel.UUID) (*study.Study, error)

	// GetByOrderID returns the study bound to an order.
	GetByOrderID(ctx context.Context, orderID kernel.UUID) (*study.Study, error)

	// GetByStudyInstanceUID returns the study with exactly this device identifier.
	GetByStudyInstanceUID(ctx context.Context, uid string) (*study.Study, error)

	// GetByOrderIDs returns the studies of the given orders keyed by order id.
	// An empty argument yields an empty map without touching storage.
	GetByOrderIDs(ctx context.Context, orderIDs []kernel.UUID) (map[kernel.UUID]*study.Study, error)
}
