package memory

import (
	"context"
	"slices"
	"strings"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/pkg/errs"
)

type encounterRepository struct {
	uow *UnitOfWork
}

func (r encounterRepository) Add(_ context.Context, e *order.Encounter) error {
	if e == nil {
		return errs.NewValueIsRequiredError("encounter")
	}
	c, err := copyEncounter(e)
	if err != nil {
		return err
	}
	return r.uow.insert(kindEncounter, c.ID(), func(cs *changeSet) {
		cs.encounters[c.ID()] = c
	})
}

func (r encounterRepository) Get(_ context.Context, id kernel.UUID) (*order.Encounter, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	e, ok := lookup(r.uow, encounters, id)
	if !ok {
		return nil, nil
	}
	return copyEncounter(e)
}

type orderRepository struct {
	uow *UnitOfWork
}

func (r orderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	c, err := copyOrder(aggregate)
	if err != nil {
		return err
	}
	return r.uow.insert(kindOrder, c.ID(), func(cs *changeSet) {
		cs.orders[c.ID()] = c
	})
}

func (r orderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	c, err := copyOrder(aggregate)
	if err != nil {
		return err
	}
	return r.uow.update(kindOrder, c.ID(), func(cs *changeSet) {
		cs.orders[c.ID()] = c
	})
}

func (r orderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	o, ok := lookup(r.uow, orders, id)
	if !ok {
		return nil, nil
	}
	return copyOrder(o)
}

func (r orderRepository) Find(_ context.Context, criteria order.SearchCriteria) ([]*order.Order, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	matched := slices.DeleteFunc(scan(r.uow, orders), func(o *order.Order) bool {
		return !criteria.Matches(o)
	})
	slices.SortFunc(matched, func(a, b *order.Order) int {
		if c := a.OrderDate().Compare(b.OrderDate()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return copyAll(matched, copyOrder)
}

func encounters(cs *changeSet) map[kernel.UUID]*order.Encounter { return cs.encounters }
func orders(cs *changeSet) map[kernel.UUID]*order.Order         { return cs.orders }
