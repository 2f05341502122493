package depot

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// MaxComponentTypes bounds the number of component types one Storage can
// register; every type needs a bit in the archetype mask.
const MaxComponentTypes = 64

// registry memoizes exactly one Descriptor per native type. The index a type
// gets in the cache is its ComponentTypeID.
type registry struct {
	types *SimpleCache[reflect.Type, *Descriptor]
}

func newRegistry() *registry {
	return &registry{
		types: FactoryNewCache[reflect.Type, *Descriptor](MaxComponentTypes).(*SimpleCache[reflect.Type, *Descriptor]),
	}
}

func (r *registry) lookup(typ reflect.Type) (*Descriptor, bool) {
	idx, ok := r.types.GetIndex(typ)
	if !ok {
		return nil, false
	}
	return *r.types.GetItem(idx), true
}

func (r *registry) byID(id ComponentTypeID) (*Descriptor, bool) {
	if id.Index() >= r.types.Len() {
		return nil, false
	}
	return *r.types.GetItem32(uint32(id)), true
}

// owns reports whether desc is the descriptor this registry issued for its id.
func (r *registry) owns(desc *Descriptor) bool {
	found, ok := r.byID(desc.ID())
	return ok && found == desc
}

// getOrCreate returns typ's descriptor, building it with create on first use.
func (r *registry) getOrCreate(typ reflect.Type, create func(ComponentTypeID) *Descriptor) (*Descriptor, bool, error) {
	if desc, ok := r.lookup(typ); ok {
		return desc, false, nil
	}
	desc := create(ComponentTypeID(r.types.Len()))
	if _, err := r.types.Register(typ, desc); err != nil {
		return nil, false, eris.Wrapf(err, "register component type %s", typ)
	}
	return desc, true, nil
}

func (r *registry) all() []*Descriptor {
	out := make([]*Descriptor, r.types.Len())
	for i := range out {
		out[i] = *r.types.GetItem(i)
	}
	return out
}

func descriptorFor[T any](r *registry) (*Descriptor, bool, error) {
	return r.getOrCreate(reflect.TypeFor[T](), NewDescriptor[T])
}
