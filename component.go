package depot

import (
	"reflect"
	"unsafe"
)

// Register returns T's descriptor in sto, creating it on first use.
func Register[T any](sto *Storage) (*Descriptor, error) {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	return register[T](sto)
}

func register[T any](sto *Storage) (*Descriptor, error) {
	desc, created, err := descriptorFor[T](sto.registry)
	if err != nil {
		return nil, err
	}
	if created {
		sto.logRegistration(desc)
	}
	return desc, nil
}

// ComponentTypeOf returns T's descriptor without registering it.
func ComponentTypeOf[T any](sto *Storage) (*Descriptor, bool) {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	return sto.registry.lookup(reflect.TypeFor[T]())
}

// AddComponent stores value as id's T component, moving id to the archetype
// that includes T. If id already has a T, the old value is dropped and
// replaced unless the storage rejects duplicates.
func AddComponent[T any](sto *Storage, id EntityID, value T) error {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if sto.locked() {
		return LockedStorageError{}
	}
	desc, err := register[T](sto)
	if err != nil {
		return err
	}
	return sto.addComponent(id, desc, unsafe.Pointer(&value))
}

// RemoveComponent drops id's T component and moves id to the archetype
// without T.
func RemoveComponent[T any](sto *Storage, id EntityID) error {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if sto.locked() {
		return LockedStorageError{}
	}
	desc, ok := sto.registry.lookup(reflect.TypeFor[T]())
	if !ok {
		if _, live := sto.locations.Get(id); !live {
			return UnknownEntityError{ID: id}
		}
		return ComponentNotFoundError{ID: id, Component: reflect.TypeFor[T]().String()}
	}
	return sto.removeComponent(id, desc)
}

// GetComponent returns a pointer to id's T component. The pointer may be used
// to modify the value in place and is valid until the next structural call.
func GetComponent[T any](sto *Storage, id EntityID) (*T, bool) {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	ptr, ok := sto.component(reflect.TypeFor[T](), id)
	if !ok {
		return nil, false
	}
	return (*T)(ptr), true
}

// ReadComponent returns a copy of id's T component.
func ReadComponent[T any](sto *Storage, id EntityID) (T, bool) {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	ptr, ok := sto.component(reflect.TypeFor[T](), id)
	if !ok {
		var zero T
		return zero, false
	}
	return *(*T)(ptr), true
}

func HasComponent[T any](sto *Storage, id EntityID) bool {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	_, ok := sto.component(reflect.TypeFor[T](), id)
	return ok
}

func (sto *Storage) component(typ reflect.Type, id EntityID) (unsafe.Pointer, bool) {
	desc, ok := sto.registry.lookup(typ)
	if !ok {
		return nil, false
	}
	loc, ok := sto.locations.Get(id)
	if !ok {
		return nil, false
	}
	return sto.archetypes.asSlice[loc.archetype].Get(desc.ID(), loc.row)
}
