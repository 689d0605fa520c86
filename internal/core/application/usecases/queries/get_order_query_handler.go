package queries

import (
	"context"

	"radiology/internal/pkg/errs"
)

type GetOrderQueryHandler struct {
	readers ReaderFactory
}

func NewGetOrderQueryHandler(readers ReaderFactory) GetOrderQueryHandler {
	return GetOrderQueryHandler{readers: readers}
}

// Handle returns errs.ObjectNotFoundError when the order does not exist.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return OrderResponse{}, err
	}

	reader := h.readers.Create()
	o, err := reader.OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return OrderResponse{}, err
	}
	if o == nil {
		return OrderResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	s, err := reader.StudyRepository().GetByOrderID(ctx, o.ID())
	if err != nil {
		return OrderResponse{}, err
	}
	return NewOrderResponse(o, s), nil
}
