package depot

import (
	"errors"
	"unsafe"

	"github.com/rotisserie/eris"
)

type operation struct {
	typ       operationType
	ids       []EntityID
	descs     []*Descriptor
	value     unsafe.Pointer
	discarded bool
}

type operationType int

const (
	opCreate operationType = iota
	opDestroy
	opAddComponent
	opRemoveComponent
)

// opQueue holds structural operations requested while the storage was locked.
type opQueue struct {
	createOps      []operation
	componentOps   []operation
	destroyOps     []operation
	pendingDestroy map[EntityID]struct{}
	pendingMods    map[EntityID][]int
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDestroy: make(map[EntityID]struct{}),
		pendingMods:    make(map[EntityID][]int),
	}
}

func (q *opQueue) empty() bool {
	return len(q.createOps) == 0 && len(q.componentOps) == 0 && len(q.destroyOps) == 0
}

func (q *opQueue) enqueueCreate(ids []EntityID, descs []*Descriptor) {
	q.createOps = append(q.createOps, operation{
		typ:   opCreate,
		ids:   ids,
		descs: descs,
	})
}

func (q *opQueue) enqueueDestroy(ids []EntityID) {
	var newIDs []EntityID
	for _, id := range ids {
		if _, exists := q.pendingDestroy[id]; exists {
			continue
		}
		newIDs = append(newIDs, id)
		q.pendingDestroy[id] = struct{}{}

		// Component changes to an entity about to be destroyed are pointless.
		for _, idx := range q.pendingMods[id] {
			q.componentOps[idx].discard()
		}
		delete(q.pendingMods, id)
	}
	if len(newIDs) > 0 {
		q.destroyOps = append(q.destroyOps, operation{
			typ: opDestroy,
			ids: newIDs,
		})
	}
}

// enqueueComponentOp takes ownership of value, which is nil for removals.
func (q *opQueue) enqueueComponentOp(typ operationType, id EntityID, desc *Descriptor, value unsafe.Pointer) {
	op := operation{
		typ:   typ,
		ids:   []EntityID{id},
		descs: []*Descriptor{desc},
		value: value,
	}
	if _, isDestroyed := q.pendingDestroy[id]; isDestroyed {
		op.discard()
		return
	}
	q.pendingMods[id] = append(q.pendingMods[id], len(q.componentOps))
	q.componentOps = append(q.componentOps, op)
}

// discard drops a queued value that will never reach the storage.
func (op *operation) discard() {
	if op.discarded {
		return
	}
	op.discarded = true
	if op.value != nil {
		op.descs[0].release(op.value, 1)
		op.value = nil
	}
}

// reset discards everything still queued.
func (q *opQueue) reset() {
	for i := range q.componentOps {
		q.componentOps[i].discard()
	}
	q.createOps = q.createOps[:0]
	q.componentOps = q.componentOps[:0]
	q.destroyOps = q.destroyOps[:0]
	clear(q.pendingDestroy)
	clear(q.pendingMods)
}

// processOperationQueue applies deferred operations: creates first, then
// component changes in request order, then destroys.
func (sto *Storage) processOperationQueue() error {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if sto.locked() || sto.opQueue.empty() {
		return nil
	}

	var errs []error
	for _, op := range sto.opQueue.createOps {
		sto.newEntities(op.ids, op.descs)
	}

	for i := range sto.opQueue.componentOps {
		op := &sto.opQueue.componentOps[i]
		if op.discarded {
			continue
		}
		id, desc := op.ids[0], op.descs[0]
		switch op.typ {
		case opAddComponent:
			if err := sto.addComponent(id, desc, op.value); err != nil {
				op.discard()
				errs = append(errs, eris.Wrapf(err, "failed to add queued %s to %v", desc.Name(), id))
				continue
			}
			op.value = nil
			op.discarded = true
		case opRemoveComponent:
			if err := sto.removeComponent(id, desc); err != nil {
				errs = append(errs, eris.Wrapf(err, "failed to remove queued %s from %v", desc.Name(), id))
			}
		}
	}

	for _, op := range sto.opQueue.destroyOps {
		for _, id := range op.ids {
			if err := sto.destroyEntity(id); err != nil {
				errs = append(errs, eris.Wrapf(err, "failed to destroy queued %v", id))
			}
		}
	}

	sto.opQueue.reset()
	if len(errs) > 0 {
		sto.logger.Warn().Int("failures", len(errs)).Msg("deferred operations partially failed")
	}
	return errors.Join(errs...)
}

// EnqueueNewEntities creates n entities now if the storage is unlocked, or
// reserves their ids and creates them once it is.
func (sto *Storage) EnqueueNewEntities(n int, descs ...*Descriptor) ([]EntityID, error) {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if err := sto.checkDescriptors(descs); err != nil {
		return nil, err
	}
	ids := make([]EntityID, n)
	for i := range ids {
		ids[i] = sto.reserveEntity()
	}
	if !sto.locked() {
		sto.newEntities(ids, descs)
		return ids, nil
	}
	sto.opQueue.enqueueCreate(ids, descs)
	return ids, nil
}

func (sto *Storage) EnqueueDestroyEntities(ids ...EntityID) error {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if !sto.locked() {
		for _, id := range ids {
			if err := sto.destroyEntity(id); err != nil {
				return err
			}
		}
		return nil
	}
	sto.opQueue.enqueueDestroy(ids)
	return nil
}

// EnqueueAddComponent behaves like AddComponent, deferring the change while
// the storage is locked.
func EnqueueAddComponent[T any](sto *Storage, id EntityID, value T) error {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	desc, err := register[T](sto)
	if err != nil {
		return err
	}
	if !sto.locked() {
		return sto.addComponent(id, desc, unsafe.Pointer(&value))
	}
	boxed := desc.alloc(1)
	desc.move(boxed, unsafe.Pointer(&value), 1)
	sto.opQueue.enqueueComponentOp(opAddComponent, id, desc, boxed)
	return nil
}

// EnqueueRemoveComponent behaves like RemoveComponent, deferring the change
// while the storage is locked.
func EnqueueRemoveComponent[T any](sto *Storage, id EntityID) error {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	desc, err := register[T](sto)
	if err != nil {
		return err
	}
	if !sto.locked() {
		return sto.removeComponent(id, desc)
	}
	sto.opQueue.enqueueComponentOp(opRemoveComponent, id, desc, nil)
	return nil
}
