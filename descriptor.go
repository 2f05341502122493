package depot

import (
	"reflect"
	"unsafe"
)

// Dropper is implemented by component types that own something which must be
// released when a value leaves the storage for good. Drop is called exactly once
// per stored value that is destroyed, and never for values that are relocated.
// Drop may be called on a zero value, except that nil pointer (or other nilable)
// components are skipped.
type Dropper interface {
	Drop()
}

var dropperType = reflect.TypeFor[Dropper]()

// DropFunc destructs n contiguous values starting at p. It is only valid on
// memory allocated for the Descriptor it came from.
type DropFunc func(p unsafe.Pointer, n int)

// Layout is the in-memory shape of one component value.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// Descriptor is the type-erased metadata of one component type. It is created
// once per concrete type by a Storage's registry and never changes.
type Descriptor struct {
	id     ComponentTypeID
	typ    reflect.Type
	layout Layout
	drop   DropFunc

	alloc func(n int) unsafe.Pointer
	move  func(dst, src unsafe.Pointer, n int)
	zero  func(p unsafe.Pointer, n int)
}

// NewDescriptor captures the layout and value operations of T under id.
//
// Calling it twice for the same T yields descriptors with equal layouts and
// behaviour but whatever ids the caller passed; Storage memoizes one descriptor
// per type so ids stay stable.
func NewDescriptor[T any](id ComponentTypeID) *Descriptor {
	typ := reflect.TypeFor[T]()
	d := &Descriptor{
		id:  id,
		typ: typ,
		layout: Layout{
			Size:  typ.Size(),
			Align: uintptr(typ.Align()),
		},
		alloc: func(n int) unsafe.Pointer {
			return unsafe.Pointer(unsafe.SliceData(make([]T, n)))
		},
		move: func(dst, src unsafe.Pointer, n int) {
			copy(unsafe.Slice((*T)(dst), n), unsafe.Slice((*T)(src), n))
		},
		zero: func(p unsafe.Pointer, n int) {
			clear(unsafe.Slice((*T)(p), n))
		},
	}
	switch {
	case reflect.PointerTo(typ).Implements(dropperType):
		d.drop = func(p unsafe.Pointer, n int) {
			values := unsafe.Slice((*T)(p), n)
			for i := range values {
				any(&values[i]).(Dropper).Drop()
			}
		}
	case typ.Implements(dropperType):
		// T is itself a pointer or interface; only non-nil values own anything.
		d.drop = func(p unsafe.Pointer, n int) {
			values := unsafe.Slice((*T)(p), n)
			for i := range values {
				if isNil(reflect.ValueOf(&values[i]).Elem()) {
					continue
				}
				any(values[i]).(Dropper).Drop()
			}
		}
	}
	return d
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func (d *Descriptor) ID() ComponentTypeID {
	return d.id
}

// Type returns the native type identity the descriptor was built from.
func (d *Descriptor) Type() reflect.Type {
	return d.typ
}

func (d *Descriptor) Name() string {
	return d.typ.String()
}

func (d *Descriptor) Layout() Layout {
	return d.layout
}

// Drop returns the type's destructor, or nil when removal is a pure memory
// operation.
func (d *Descriptor) Drop() DropFunc {
	return d.drop
}

// release destructs n values at p and zeroes them so the collector can reclaim
// whatever they referenced.
func (d *Descriptor) release(p unsafe.Pointer, n int) {
	if n == 0 {
		return
	}
	if d.drop != nil {
		d.drop(p, n)
	}
	d.zero(p, n)
}
