package depot

import (
	"iter"
	"os"
	"slices"
	"sync"
	"unsafe"

	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
	"github.com/rs/zerolog"
)

// Storage owns every archetype and knows where each entity lives.
//
// Structural calls (creating or destroying entities, adding or removing
// components) are serialized with a write lock; component reads share a read
// lock. Pointers handed out by GetComponent and column accessors stay valid
// only until the next structural call.
type Storage struct {
	mu sync.RWMutex

	cfg    StorageConfig
	logger zerolog.Logger

	registry   *registry
	archetypes archetypes
	locations  *intmap.Map[EntityID, location]
	nextEntity EntityID

	locks   mask.Mask
	cursors int
	opQueue opQueue

	customLogger bool
}

type location struct {
	archetype ArchetypeID
	row       int
}

type archetypes struct {
	asSlice          []*Archetype
	idsGroupedByMask map[mask.Mask]ArchetypeID
}

// Option configures a Storage.
type Option func(*Storage)

// WithConfig replaces the default StorageConfig.
func WithConfig(cfg StorageConfig) Option {
	return func(sto *Storage) {
		sto.cfg = cfg
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(sto *Storage) {
		sto.logger = logger
		sto.customLogger = true
	}
}

func newStorage(opts ...Option) *Storage {
	sto := &Storage{
		cfg:        Config.Storage(),
		registry:   newRegistry(),
		locations:  intmap.New[EntityID, location](256),
		nextEntity: 1,
		archetypes: archetypes{
			idsGroupedByMask: make(map[mask.Mask]ArchetypeID),
		},
		opQueue: newOpQueue(),
	}
	for _, opt := range opts {
		opt(sto)
	}
	if !sto.customLogger {
		sto.logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(sto.cfg.Level())
	}
	// The empty archetype always exists and always has id 0.
	sto.getOrCreateArchetype(mask.Mask{}, nil)
	return sto
}

// CreateEntity places a new entity with no components in the empty archetype.
func (sto *Storage) CreateEntity() (EntityID, error) {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if sto.locked() {
		return 0, LockedStorageError{}
	}
	id := sto.reserveEntity()
	sto.placeEntity(id, sto.archetypes.asSlice[0])
	return id, nil
}

// NewEntities creates n entities directly in the archetype of descs, with
// every component zero-valued.
func (sto *Storage) NewEntities(n int, descs ...*Descriptor) ([]EntityID, error) {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if sto.locked() {
		return nil, LockedStorageError{}
	}
	if err := sto.checkDescriptors(descs); err != nil {
		return nil, err
	}
	ids := make([]EntityID, n)
	for i := range ids {
		ids[i] = sto.reserveEntity()
	}
	sto.newEntities(ids, descs)
	return ids, nil
}

// checkDescriptors rejects descriptors issued by another storage, whose ids
// would name a different type here.
func (sto *Storage) checkDescriptors(descs []*Descriptor) error {
	for _, desc := range descs {
		if desc == nil || !sto.registry.owns(desc) {
			name := "<nil>"
			if desc != nil {
				name = desc.Name()
			}
			return ForeignDescriptorError{Component: name}
		}
	}
	return nil
}

func (sto *Storage) newEntities(ids []EntityID, descs []*Descriptor) {
	var entityMask mask.Mask
	types := make([]ComponentTypeID, 0, len(descs))
	for _, desc := range descs {
		if !slices.Contains(types, desc.ID()) {
			types = append(types, desc.ID())
		}
		entityMask.Mark(uint32(desc.ID()))
	}
	arch := sto.getOrCreateArchetype(entityMask, types)
	for _, id := range ids {
		sto.placeEntity(id, arch)
	}
}

// DestroyEntity drops all of id's components and forgets it.
func (sto *Storage) DestroyEntity(id EntityID) error {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if sto.locked() {
		return LockedStorageError{}
	}
	return sto.destroyEntity(id)
}

// DestroyEntities destroys each id, stopping at the first unknown one.
func (sto *Storage) DestroyEntities(ids ...EntityID) error {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if sto.locked() {
		return LockedStorageError{}
	}
	for _, id := range ids {
		if err := sto.destroyEntity(id); err != nil {
			return err
		}
	}
	return nil
}

func (sto *Storage) destroyEntity(id EntityID) error {
	loc, ok := sto.locations.Get(id)
	if !ok {
		return UnknownEntityError{ID: id}
	}
	arch := sto.archetypes.asSlice[loc.archetype]
	removed, _ := arch.RemoveEntity(id)
	for _, r := range removed {
		r.Drop()
	}
	sto.relocate(arch, loc.row)
	sto.locations.Del(id)
	return nil
}

// Contains reports whether id is a live entity.
func (sto *Storage) Contains(id EntityID) bool {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	_, ok := sto.locations.Get(id)
	return ok
}

// Len returns the number of live entities.
func (sto *Storage) Len() int {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	return sto.locations.Len()
}

// ArchetypeOf returns the archetype id currently lives in.
func (sto *Storage) ArchetypeOf(id EntityID) (*Archetype, bool) {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	loc, ok := sto.locations.Get(id)
	if !ok {
		return nil, false
	}
	return sto.archetypes.asSlice[loc.archetype], true
}

// Archetype returns the archetype with the given id.
func (sto *Storage) Archetype(id ArchetypeID) (*Archetype, bool) {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	if id.Index() >= len(sto.archetypes.asSlice) {
		return nil, false
	}
	return sto.archetypes.asSlice[id], true
}

// Archetypes returns every archetype in creation order.
func (sto *Storage) Archetypes() []*Archetype {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	return slices.Clone(sto.archetypes.asSlice)
}

// ArchetypesWith yields the archetypes whose component set contains all of types.
func (sto *Storage) ArchetypesWith(types ...ComponentTypeID) iter.Seq[*Archetype] {
	var want mask.Mask
	for _, t := range types {
		want.Mark(uint32(t))
	}
	return func(yield func(*Archetype) bool) {
		for _, arch := range sto.Archetypes() {
			if arch.mask.ContainsAll(want) && !yield(arch) {
				return
			}
		}
	}
}

// Descriptors returns every registered component type in id order.
func (sto *Storage) Descriptors() []*Descriptor {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	return sto.registry.all()
}

// Close drops every live component value and removes every entity. Archetypes
// and registered types survive, so the storage can be reused.
func (sto *Storage) Close() error {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	if sto.locked() {
		return LockedStorageError{}
	}
	for _, arch := range sto.archetypes.asSlice {
		arch.clear()
	}
	sto.locations.Clear()
	sto.opQueue.reset()
	return nil
}

func (sto *Storage) Logger() *zerolog.Logger {
	return &sto.logger
}

// AddLock marks bit in the lock mask. While any bit is set structural calls
// fail and Enqueue variants are deferred.
func (sto *Storage) AddLock(bit uint32) {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	sto.locks.Mark(bit)
}

// RemoveLock clears bit. Once nothing holds the storage locked the deferred
// operations run, and their failures are returned.
func (sto *Storage) RemoveLock(bit uint32) error {
	sto.mu.Lock()
	sto.locks.Unmark(bit)
	locked := sto.locked()
	sto.mu.Unlock()
	if locked {
		return nil
	}
	return sto.processOperationQueue()
}

func (sto *Storage) Locked() bool {
	sto.mu.RLock()
	defer sto.mu.RUnlock()
	return sto.locked()
}

func (sto *Storage) locked() bool {
	return sto.cursors > 0 || sto.locks != (mask.Mask{})
}

func (sto *Storage) acquireCursor() {
	sto.mu.Lock()
	defer sto.mu.Unlock()
	sto.cursors++
}

func (sto *Storage) releaseCursor() {
	sto.mu.Lock()
	sto.cursors--
	locked := sto.locked()
	sto.mu.Unlock()
	if locked {
		return
	}
	if err := sto.processOperationQueue(); err != nil {
		sto.logger.Error().Err(err).Msg("deferred storage operations failed")
	}
}

func (sto *Storage) reserveEntity() EntityID {
	id := sto.nextEntity
	sto.nextEntity++
	return id
}

func (sto *Storage) placeEntity(id EntityID, arch *Archetype) {
	row, _ := arch.InsertEntity(id)
	sto.locations.Put(id, location{archetype: arch.id, row: row})
}

// relocate repoints the entity that a swap-remove moved into row.
func (sto *Storage) relocate(arch *Archetype, row int) {
	if row < arch.Len() {
		sto.locations.Put(arch.EntityAt(row), location{archetype: arch.id, row: row})
	}
}

func (sto *Storage) getOrCreateArchetype(m mask.Mask, types []ComponentTypeID) *Archetype {
	if id, found := sto.archetypes.idsGroupedByMask[m]; found {
		return sto.archetypes.asSlice[id]
	}
	sorted := slices.Clone(types)
	slices.Sort(sorted)
	descs := make([]*Descriptor, len(sorted))
	for i, t := range sorted {
		descs[i], _ = sto.registry.byID(t)
	}
	id := ArchetypeID(len(sto.archetypes.asSlice))
	created := newArchetype(id, sto.cfg.InitialColumnCapacity, descs...)
	sto.archetypes.asSlice = append(sto.archetypes.asSlice, created)
	sto.archetypes.idsGroupedByMask[m] = id

	names := zerolog.Arr()
	for _, desc := range descs {
		names = names.Str(desc.Name())
	}
	sto.logger.Debug().
		Int("archetype_id", int(id)).
		Array("components", names).
		Msg("archetype created")
	return created
}

// moveEntity transplants id from its row in from into a fresh row of to.
// Components to lacks are dropped, the rest are moved without being dropped.
func (sto *Storage) moveEntity(id EntityID, loc location, from, to *Archetype) int {
	row, _ := to.InsertEntity(id)
	removed, _ := from.RemoveEntity(id)
	for i, r := range removed {
		if dst, ok := to.Column(from.types[i]); ok {
			r.MoveTo(dst, row)
		} else {
			r.Drop()
		}
	}
	sto.relocate(from, loc.row)
	sto.locations.Put(id, location{archetype: to.id, row: row})
	return row
}

func (sto *Storage) addComponent(id EntityID, desc *Descriptor, src unsafe.Pointer) error {
	loc, ok := sto.locations.Get(id)
	if !ok {
		return UnknownEntityError{ID: id}
	}
	from := sto.archetypes.asSlice[loc.archetype]
	if col, ok := from.Column(desc.ID()); ok {
		if sto.cfg.RejectDuplicateComponents {
			return ComponentExistsError{ID: id, Component: desc.Name()}
		}
		desc.release(col.Pointer(loc.row), 1)
		col.Set(loc.row, src)
		return nil
	}

	destMask := from.mask
	destMask.Mark(uint32(desc.ID()))
	types := append(slices.Clone(from.types), desc.ID())
	to := sto.getOrCreateArchetype(destMask, types)

	row := sto.moveEntity(id, loc, from, to)
	to.Set(desc.ID(), row, src)
	return nil
}

func (sto *Storage) removeComponent(id EntityID, desc *Descriptor) error {
	loc, ok := sto.locations.Get(id)
	if !ok {
		return UnknownEntityError{ID: id}
	}
	from := sto.archetypes.asSlice[loc.archetype]
	if !from.Has(desc.ID()) {
		return ComponentNotFoundError{ID: id, Component: desc.Name()}
	}

	destMask := from.mask
	destMask.Unmark(uint32(desc.ID()))
	types := make([]ComponentTypeID, 0, len(from.types)-1)
	for _, t := range from.types {
		if t != desc.ID() {
			types = append(types, t)
		}
	}
	to := sto.getOrCreateArchetype(destMask, types)

	sto.moveEntity(id, loc, from, to)
	return nil
}

func (sto *Storage) logRegistration(desc *Descriptor) {
	sto.logger.Debug().
		Int("component_id", int(desc.ID())).
		Str("component_name", desc.Name()).
		Uint64("size", uint64(desc.Layout().Size)).
		Bool("drop", desc.Drop() != nil).
		Msg("component type registered")
}
