package ports

import (
	"context"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Get returns (nil, nil) when no order has the given id; a zero id is a
// validation failure. Orders are never deleted.
type OrderRepository interface {
	// Add persists a newly placed order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists lifecycle changes of an existing order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// Find returns the orders matching criteria ordered by order date, then id, ascending.
	Find(ctx context.Context, criteria order.SearchCriteria) ([]*order.Order, error)
}

// EncounterRepository persists the encounter created for each placed order.
type EncounterRepository interface {
	Add(ctx context.Context, encounter *order.Encounter) error
	Get(ctx context.Context, id kernel.UUID) (*order.Encounter, error)
}
