package memory

import (
	"context"
	"errors"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/ports"
	"radiology/internal/pkg/errs"
)

// ErrNoTransaction is returned by Commit when Begin was not called.
var ErrNoTransaction = errors.New("no transaction in progress")

// UnitOfWork buffers writes until Commit. Outside a transaction every write is
// committed immediately. Reads see the unit's own pending writes on top of
// committed state.
//
// A UnitOfWork is not safe for concurrent use; create one per operation.
type UnitOfWork struct {
	store *Store
	tx    *changeSet
}

// Begin starts a transaction. Calling it again while one is open is a no-op.
// Like a database driver, it refuses to start once ctx is done.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.tx == nil {
		u.tx = newChangeSet()
	}
	return nil
}

// Commit publishes the pending writes atomically. The transaction is closed
// whether or not the commit succeeds; a done ctx discards the writes.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return ErrNoTransaction
	}

	pending := u.tx
	u.tx = nil
	if err := ctx.Err(); err != nil {
		return err
	}
	if pending.isEmpty() {
		return nil
	}
	return u.store.apply(pending)
}

// Rollback discards the pending writes. It is a no-op without a transaction.
func (u *UnitOfWork) Rollback(_ context.Context) error {
	u.tx = nil
	return nil
}

func (u *UnitOfWork) EncounterRepository() ports.EncounterRepository {
	return encounterRepository{uow: u}
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return orderRepository{uow: u}
}

func (u *UnitOfWork) StudyRepository() ports.StudyRepository {
	return studyRepository{uow: u}
}

func (u *UnitOfWork) ReportRepository() ports.ReportRepository {
	return reportRepository{uow: u}
}

func (u *UnitOfWork) write(put func(cs *changeSet)) error {
	if u.tx != nil {
		put(u.tx)
		return nil
	}

	cs := newChangeSet()
	put(cs)
	return u.store.apply(cs)
}

func (u *UnitOfWork) insert(kind string, id kernel.UUID, put func(cs *changeSet)) error {
	if u.exists(kind, id) {
		return errs.NewConflictError(kind, id.String())
	}
	return u.write(func(cs *changeSet) {
		put(cs)
		cs.added[id] = kind
	})
}

func (u *UnitOfWork) update(kind string, id kernel.UUID, put func(cs *changeSet)) error {
	if !u.exists(kind, id) {
		return errs.NewObjectNotFoundError(kind, id.String())
	}
	return u.write(put)
}

func (u *UnitOfWork) exists(kind string, id kernel.UUID) bool {
	if u.tx != nil && u.tx.contains(kind, id) {
		return true
	}

	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return u.store.state.contains(kind, id)
}

// lookup returns the entity with id as this unit of work sees it.
func lookup[T any](u *UnitOfWork, pick func(cs *changeSet) map[kernel.UUID]T, id kernel.UUID) (T, bool) {
	if u.tx != nil {
		if v, ok := pick(u.tx)[id]; ok {
			return v, true
		}
	}

	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	v, ok := pick(u.store.state)[id]
	return v, ok
}

// scan returns every entity of a kind as this unit of work sees it, in no
// particular order. The values are the store's copies and must not escape.
func scan[T any](u *UnitOfWork, pick func(cs *changeSet) map[kernel.UUID]T) []T {
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()

	committed := pick(u.store.state)
	var pending map[kernel.UUID]T
	if u.tx != nil {
		pending = pick(u.tx)
	}

	out := make([]T, 0, len(committed)+len(pending))
	for id, v := range committed {
		if p, ok := pending[id]; ok {
			v = p
		}
		out = append(out, v)
	}
	for id, v := range pending {
		if _, ok := committed[id]; !ok {
			out = append(out, v)
		}
	}
	return out
}
