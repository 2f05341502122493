package depot

import "unsafe"

// AccessibleComponent pairs a registered component type with typed access to
// its columns.
type AccessibleComponent[T any] struct {
	desc *Descriptor
}

// FactoryNewComponent registers T in sto and returns typed access to it.
func FactoryNewComponent[T any](sto *Storage) (AccessibleComponent[T], error) {
	desc, err := Register[T](sto)
	if err != nil {
		return AccessibleComponent[T]{}, err
	}
	return AccessibleComponent[T]{desc: desc}, nil
}

func (c AccessibleComponent[T]) Descriptor() *Descriptor {
	return c.desc
}

func (c AccessibleComponent[T]) ID() ComponentTypeID {
	return c.desc.ID()
}

// column returns arch's T column, provided it really stores this
// descriptor's type.
func (c AccessibleComponent[T]) column(arch *Archetype) (*Column, bool) {
	col, ok := arch.Column(c.desc.ID())
	if !ok || col.Descriptor() != c.desc {
		return nil, false
	}
	return col, true
}

// Get returns the component in row of arch. It panics if arch lacks T.
func (c AccessibleComponent[T]) Get(row int, arch *Archetype) *T {
	col, ok := c.column(arch)
	if !ok {
		panic("depot: " + arch.ID().String() + " has no " + c.desc.Name())
	}
	return (*T)(col.Pointer(row))
}

// Check reports whether arch stores T.
func (c AccessibleComponent[T]) Check(arch *Archetype) bool {
	_, ok := c.column(arch)
	return ok
}

// GetFromCursor returns the component for the entity at the cursor position.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	return c.Get(cursor.Row(), cursor.Archetype())
}

// GetFromCursorSafe is GetFromCursor for cursors whose archetype may lack T.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	if !c.CheckCursor(cursor) {
		return false, nil
	}
	return true, c.GetFromCursor(cursor)
}

func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	return c.Check(cursor.Archetype())
}

// GetFromEntity returns id's component, or false if id is unknown or lacks T.
func (c AccessibleComponent[T]) GetFromEntity(sto *Storage, id EntityID) (*T, bool) {
	return GetComponent[T](sto, id)
}

// Slice views arch's T column as a []T. Like any column pointer it is only
// valid until the next structural change.
func (c AccessibleComponent[T]) Slice(arch *Archetype) []T {
	col, ok := c.column(arch)
	if !ok || col.Len() == 0 {
		return nil
	}
	return unsafe.Slice((*T)(col.Pointer(0)), col.Len())
}
