package depot

import "github.com/rs/zerolog"

func componentsArray(descs []*Descriptor) *zerolog.Array {
	arr := zerolog.Arr()
	for _, desc := range descs {
		arr = arr.Dict(zerolog.Dict().
			Int("component_id", int(desc.ID())).
			Str("component_name", desc.Name()))
	}
	return arr
}

func archetypeDescriptors(arch *Archetype) []*Descriptor {
	descs := make([]*Descriptor, len(arch.columns))
	for i, col := range arch.columns {
		descs[i] = col.Descriptor()
	}
	return descs
}

// LogComponents logs every registered component type.
func (sto *Storage) LogComponents(level zerolog.Level) {
	descs := sto.Descriptors()
	sto.logger.WithLevel(level).
		Int("total_components", len(descs)).
		Array("components", componentsArray(descs)).
		Send()
}

// LogArchetypes logs one event per archetype with its members and size.
func (sto *Storage) LogArchetypes(level zerolog.Level) {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	for _, arch := range sto.archetypes.asSlice {
		sto.logger.WithLevel(level).
			Int("archetype_id", int(arch.id)).
			Int("entities", arch.Len()).
			Array("components", componentsArray(archetypeDescriptors(arch))).
			Send()
	}
}

// LogEntity logs where id lives and which components it has.
func (sto *Storage) LogEntity(level zerolog.Level, id EntityID) error {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	loc, ok := sto.locations.Get(id)
	if !ok {
		err := UnknownEntityError{ID: id}
		sto.logger.Err(err).Msgf("Error in Logger when retrieving %v", id)
		return err
	}
	arch := sto.archetypes.asSlice[loc.archetype]
	sto.logger.WithLevel(level).
		Uint64("entity_id", uint64(id)).
		Int("archetype_id", int(loc.archetype)).
		Int("row", loc.row).
		Array("components", componentsArray(archetypeDescriptors(arch))).
		Send()
	return nil
}
