package depot

import "strconv"

// EntityID identifies a live entity. Ids are issued monotonically by a Storage
// starting at 1; the zero value never names an entity.
type EntityID uint64

// ComponentTypeID identifies a registered component type within one Storage.
// It doubles as the type's bit in archetype masks.
type ComponentTypeID uint32

// ArchetypeID identifies an archetype within one Storage.
type ArchetypeID uint32

func (id EntityID) Index() int {
	return int(id)
}

func (id EntityID) String() string {
	return "entity(" + strconv.FormatUint(uint64(id), 10) + ")"
}

func (id ComponentTypeID) Index() int {
	return int(id)
}

func (id ComponentTypeID) String() string {
	return "component(" + strconv.FormatUint(uint64(id), 10) + ")"
}

func (id ArchetypeID) Index() int {
	return int(id)
}

func (id ArchetypeID) String() string {
	return "archetype(" + strconv.FormatUint(uint64(id), 10) + ")"
}
