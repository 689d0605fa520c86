package memory

import (
	"context"
	"strings"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/pkg/errs"
)

type studyRepository struct {
	uow *UnitOfWork
}

func (r studyRepository) Add(_ context.Context, s *study.Study) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c, err := copyStudy(s)
	if err != nil {
		return err
	}
	return r.uow.insert(kindStudy, c.ID(), func(cs *changeSet) {
		cs.studies[c.ID()] = c
	})
}

func (r studyRepository) Update(_ context.Context, s *study.Study) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c, err := copyStudy(s)
	if err != nil {
		return err
	}
	return r.uow.update(kindStudy, c.ID(), func(cs *changeSet) {
		cs.studies[c.ID()] = c
	})
}

func (r studyRepository) Get(_ context.Context, id kernel.UUID) (*study.Study, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	s, ok := lookup(r.uow, studies, id)
	if !ok {
		return nil, nil
	}
	return copyStudy(s)
}

func (r studyRepository) GetByOrderID(_ context.Context, orderID kernel.UUID) (*study.Study, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	return r.first(func(s *study.Study) bool {
		return s.OrderID().IsEqual(orderID)
	})
}

func (r studyRepository) GetByStudyInstanceUID(_ context.Context, uid string) (*study.Study, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, errs.NewValueIsRequiredError("study instance uid")
	}
	return r.first(func(s *study.Study) bool {
		return s.StudyInstanceUID() == uid
	})
}

func (r studyRepository) GetByOrderIDs(_ context.Context, orderIDs []kernel.UUID) (map[kernel.UUID]*study.Study, error) {
	out := make(map[kernel.UUID]*study.Study, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	wanted := make(map[kernel.UUID]bool, len(orderIDs))
	for _, id := range orderIDs {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		wanted[id] = true
	}

	for _, s := range scan(r.uow, studies) {
		if !wanted[s.OrderID()] {
			continue
		}
		c, err := copyStudy(s)
		if err != nil {
			return nil, err
		}
		out[s.OrderID()] = c
	}
	return out, nil
}

func (r studyRepository) first(match func(s *study.Study) bool) (*study.Study, error) {
	for _, s := range scan(r.uow, studies) {
		if match(s) {
			return copyStudy(s)
		}
	}
	return nil, nil
}

func studies(cs *changeSet) map[kernel.UUID]*study.Study { return cs.studies }
