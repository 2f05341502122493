package depot

// Entity is a convenience handle binding an id to the storage that issued it.
// It holds no state of its own; every call goes through the storage.
type Entity struct {
	id  EntityID
	sto *Storage
}

// Entity returns a handle for id, or UnknownEntityError if id is not live.
func (sto *Storage) Entity(id EntityID) (Entity, error) {
	if !sto.Contains(id) {
		return Entity{}, UnknownEntityError{ID: id}
	}
	return Entity{id: id, sto: sto}, nil
}

func (e Entity) ID() EntityID {
	return e.id
}

// Valid reports whether the entity is still live.
func (e Entity) Valid() bool {
	return e.sto != nil && e.sto.Contains(e.id)
}

func (e Entity) Archetype() (*Archetype, bool) {
	return e.sto.ArchetypeOf(e.id)
}

// Components returns the descriptors of the entity's current component types.
func (e Entity) Components() []*Descriptor {
	arch, ok := e.Archetype()
	if !ok {
		return nil
	}
	descs := make([]*Descriptor, 0, len(arch.Types()))
	for _, col := range arch.Columns() {
		descs = append(descs, col.Descriptor())
	}
	return descs
}

func (e Entity) Destroy() error {
	return e.sto.DestroyEntity(e.id)
}

func (e Entity) EnqueueDestroy() error {
	return e.sto.EnqueueDestroyEntities(e.id)
}

func (e Entity) String() string {
	return e.id.String()
}
