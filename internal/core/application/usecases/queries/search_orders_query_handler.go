package queries

import (
	"context"

	"radiology/internal/core/domain/model/kernel"
)

// SearchOrdersQueryHandler returns matching orders with their studies, ordered
// by order date and then id.
type SearchOrdersQueryHandler struct {
	readers ReaderFactory
}

func NewSearchOrdersQueryHandler(readers ReaderFactory) SearchOrdersQueryHandler {
	return SearchOrdersQueryHandler{readers: readers}
}

func (h SearchOrdersQueryHandler) Handle(ctx context.Context, query SearchOrdersQuery) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	reader := h.readers.Create()
	orders, err := reader.OrderRepository().Find(ctx, query.Criteria())
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	studies, err := reader.StudyRepository().GetByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o, studies[o.ID()]))
	}
	return out, nil
}
