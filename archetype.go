package depot

import (
	"unsafe"

	"github.com/TheBitDrifter/mask"
)

// Archetype stores every entity that has exactly one particular set of
// component types. Each member type has a Column and all columns share the
// same row count; row r of every column belongs to the entity at EntityAt(r).
type Archetype struct {
	id      ArchetypeID
	mask    mask.Mask
	types   []ComponentTypeID
	columns []*Column

	columnIndex SparseSet[ComponentTypeID]
	entityIndex SparseSet[EntityID]

	removed []Removed
}

// newArchetype builds an archetype over descs, which must be sorted by id and
// free of duplicates.
func newArchetype(id ArchetypeID, capacity int, descs ...*Descriptor) *Archetype {
	arch := &Archetype{
		id:      id,
		types:   make([]ComponentTypeID, len(descs)),
		columns: make([]*Column, len(descs)),
		removed: make([]Removed, 0, len(descs)),
	}
	for i, desc := range descs {
		arch.types[i] = desc.ID()
		arch.columns[i] = newColumn(desc, capacity)
		arch.columnIndex.Insert(desc.ID())
		arch.mask.Mark(uint32(desc.ID()))
	}
	return arch
}

func (a *Archetype) ID() ArchetypeID {
	return a.id
}

// Mask returns the archetype's component set as a bitmask of type ids.
func (a *Archetype) Mask() mask.Mask {
	return a.mask
}

// Types returns the member component types in ascending id order.
func (a *Archetype) Types() []ComponentTypeID {
	return a.types
}

// Len returns the number of rows (entities).
func (a *Archetype) Len() int {
	return a.entityIndex.Len()
}

// Entities returns the row-ordered entity ids. The slice is owned by the
// archetype and is invalidated by any structural change.
func (a *Archetype) Entities() []EntityID {
	return a.entityIndex.Dense()
}

func (a *Archetype) Has(id ComponentTypeID) bool {
	return a.columnIndex.Contains(id)
}

func (a *Archetype) Column(id ComponentTypeID) (*Column, bool) {
	pos, ok := a.columnIndex.Index(id)
	if !ok {
		return nil, false
	}
	return a.columns[pos], true
}

func (a *Archetype) Columns() []*Column {
	return a.columns
}

func (a *Archetype) Row(id EntityID) (int, bool) {
	return a.entityIndex.Index(id)
}

func (a *Archetype) EntityAt(row int) EntityID {
	return a.entityIndex.dense[row]
}

// InsertEntity gives id a row with zero-valued components. If id is already a
// member its existing row is returned and inserted is false.
func (a *Archetype) InsertEntity(id EntityID) (row int, inserted bool) {
	if row, ok := a.entityIndex.Index(id); ok {
		return row, false
	}
	a.entityIndex.Insert(id)
	for _, col := range a.columns {
		col.PushZero()
	}
	return a.entityIndex.Len() - 1, true
}

// RemoveEntity swap-removes id's row. The entity in the last row takes the
// vacated row in the index and in every column.
//
// The returned values parallel Columns() and each must be moved or dropped by
// the caller. The slice is reused by the next call.
func (a *Archetype) RemoveEntity(id EntityID) ([]Removed, bool) {
	set := &a.entityIndex
	row, ok := set.Index(id)
	if !ok {
		return nil, false
	}
	last := len(set.dense) - 1
	if row != last {
		moved := set.dense[last]
		set.dense[row] = moved
		set.sparse[moved.Index()] = row + 1
	}
	set.sparse[id.Index()] = 0
	set.dense = set.dense[:last]

	a.removed = a.removed[:0]
	for _, col := range a.columns {
		a.removed = append(a.removed, col.SwapRemove(row))
	}
	return a.removed, true
}

// Get returns the address of component id in row.
func (a *Archetype) Get(id ComponentTypeID, row int) (unsafe.Pointer, bool) {
	col, ok := a.Column(id)
	if !ok {
		return nil, false
	}
	return col.Pointer(row), true
}

// Set copies the value at src into component id of row.
func (a *Archetype) Set(id ComponentTypeID, row int, src unsafe.Pointer) bool {
	col, ok := a.Column(id)
	if !ok {
		return false
	}
	col.Set(row, src)
	return true
}

// clear drops every row and empties the entity index.
func (a *Archetype) clear() {
	for _, col := range a.columns {
		col.clear()
	}
	a.entityIndex = SparseSet[EntityID]{}
}
