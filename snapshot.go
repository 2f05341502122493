package depot

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Snapshot is a read-only description of a storage's structure: which types
// are registered and which entities live in which archetype. Component values
// are not included.
type Snapshot struct {
	Components []ComponentSnapshot `json:"components"`
	Archetypes []ArchetypeSnapshot `json:"archetypes"`
}

type ComponentSnapshot struct {
	ID      ComponentTypeID `json:"id"`
	Name    string          `json:"name"`
	Size    uintptr         `json:"size"`
	Align   uintptr         `json:"align"`
	HasDrop bool            `json:"has_drop"`
}

type ArchetypeSnapshot struct {
	ID         ArchetypeID       `json:"id"`
	Components []ComponentTypeID `json:"components"`
	Entities   []EntityID        `json:"entities"`
}

// Snapshot captures the current structure of sto.
func (sto *Storage) Snapshot() Snapshot {
	sto.mu.RLock()
	defer sto.mu.RUnlock()

	descs := sto.registry.all()
	snap := Snapshot{
		Components: make([]ComponentSnapshot, len(descs)),
		Archetypes: make([]ArchetypeSnapshot, len(sto.archetypes.asSlice)),
	}
	for i, desc := range descs {
		snap.Components[i] = ComponentSnapshot{
			ID:      desc.ID(),
			Name:    desc.Name(),
			Size:    desc.Layout().Size,
			Align:   desc.Layout().Align,
			HasDrop: desc.Drop() != nil,
		}
	}
	for i, arch := range sto.archetypes.asSlice {
		snap.Archetypes[i] = ArchetypeSnapshot{
			ID:         arch.id,
			Components: append([]ComponentTypeID{}, arch.types...),
			Entities:   append([]EntityID{}, arch.Entities()...),
		}
	}
	return snap
}

// EntityCount sums the entities across every archetype.
func (s Snapshot) EntityCount() int {
	n := 0
	for _, arch := range s.Archetypes {
		n += len(arch.Entities)
	}
	return n
}

func (s Snapshot) Encode() ([]byte, error) {
	bz, err := json.Marshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "encode snapshot")
	}
	return bz, nil
}

func DecodeSnapshot(bz []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(bz, &snap); err != nil {
		return Snapshot{}, eris.Wrap(err, "decode snapshot")
	}
	return snap, nil
}
