// Package memory provides an in-process implementation of the unit of work and
// the order, encounter, study and report repositories. It backs the service
// when STORE=memory and the end-to-end tests of the command handlers.
//
// Every entity is copied on the way in and on the way out, so callers never
// share state with the store. Writes made inside a unit of work are buffered
// and become visible to other units of work only on Commit.
package memory

import (
	"errors"
	"sync"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/ports"
	"radiology/internal/pkg/errs"
)

// ErrClaimedReportExists is the cause of the conflict returned by Commit when
// a study would have two current CLAIMED reports.
var ErrClaimedReportExists = errors.New("study already has a claimed report")

// Store holds committed state.
type Store struct {
	mu    sync.RWMutex
	state *changeSet
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{state: newChangeSet()}
}

// UnitOfWorkFactory creates units of work over a single Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// changeSet is a set of entities keyed by id. The store's committed state and
// each pending transaction are both change sets.
type changeSet struct {
	encounters map[kernel.UUID]*order.Encounter
	orders     map[kernel.UUID]*order.Order
	studies    map[kernel.UUID]*study.Study
	reports    map[kernel.UUID]*report.Report

	// added remembers which ids a transaction inserted, so Commit can detect a
	// concurrent insert of the same id.
	added map[kernel.UUID]string
}

func newChangeSet() *changeSet {
	return &changeSet{
		encounters: make(map[kernel.UUID]*order.Encounter),
		orders:     make(map[kernel.UUID]*order.Order),
		studies:    make(map[kernel.UUID]*study.Study),
		reports:    make(map[kernel.UUID]*report.Report),
		added:      make(map[kernel.UUID]string),
	}
}

func (cs *changeSet) isEmpty() bool {
	return len(cs.encounters) == 0 && len(cs.orders) == 0 && len(cs.studies) == 0 && len(cs.reports) == 0
}

// apply checks pending against committed state and merges it. Claimed report
// uniqueness per study is checked here, after every write of the transaction
// is known.
func (s *Store) apply(pending *changeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, kind := range pending.added {
		if s.state.contains(kind, id) {
			return errs.NewConflictError(kind, id.String())
		}
	}
	for id := range pending.orders {
		if _, isNew := pending.added[id]; !isNew && s.state.orders[id] == nil {
			return errs.NewObjectNotFoundError("order", id.String())
		}
	}
	for id := range pending.studies {
		if _, isNew := pending.added[id]; !isNew && s.state.studies[id] == nil {
			return errs.NewObjectNotFoundError("study", id.String())
		}
	}
	for id := range pending.reports {
		if _, isNew := pending.added[id]; !isNew && s.state.reports[id] == nil {
			return errs.NewObjectNotFoundError("report", id.String())
		}
	}
	if err := s.checkClaimedReports(pending); err != nil {
		return err
	}

	for id, e := range pending.encounters {
		s.state.encounters[id] = e
	}
	for id, o := range pending.orders {
		s.state.orders[id] = o
	}
	for id, st := range pending.studies {
		s.state.studies[id] = st
	}
	for id, r := range pending.reports {
		s.state.reports[id] = r
	}
	return nil
}

// checkClaimedReports fails when a study touched by pending would end up
// with more than one current CLAIMED report.
func (s *Store) checkClaimedReports(pending *changeSet) error {
	touched := make(map[kernel.UUID]bool)
	for _, r := range pending.reports {
		touched[r.StudyID()] = true
	}

	claimed := make(map[kernel.UUID]int)
	count := func(r *report.Report) error {
		if !touched[r.StudyID()] || r.Status() != report.Claimed || !r.IsCurrent() {
			return nil
		}
		claimed[r.StudyID()]++
		if claimed[r.StudyID()] > 1 {
			return errs.NewConflictErrorWithCause("report", r.StudyID().String(), ErrClaimedReportExists)
		}
		return nil
	}

	for id, r := range s.state.reports {
		if p, ok := pending.reports[id]; ok {
			r = p
		}
		if err := count(r); err != nil {
			return err
		}
	}
	for id, r := range pending.reports {
		if s.state.reports[id] != nil {
			continue
		}
		if err := count(r); err != nil {
			return err
		}
	}
	return nil
}

func (cs *changeSet) contains(kind string, id kernel.UUID) bool {
	switch kind {
	case kindEncounter:
		return cs.encounters[id] != nil
	case kindOrder:
		return cs.orders[id] != nil
	case kindStudy:
		return cs.studies[id] != nil
	case kindReport:
		return cs.reports[id] != nil
	}
	return false
}

const (
	kindEncounter = "encounter"
	kindOrder     = "order"
	kindStudy     = "study"
	kindReport    = "report"
)
