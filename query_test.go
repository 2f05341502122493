package depot

import (
	"testing"

	"gotest.tools/v3/assert"
)

type queryFixture struct {
	sto    *Storage
	pos    AccessibleComponent[Position]
	vel    AccessibleComponent[Velocity]
	health AccessibleComponent[Health]
}

func newQueryFixture(t *testing.T) queryFixture {
	t.Helper()
	sto := newTestStorage()
	pos, err := FactoryNewComponent[Position](sto)
	assert.NilError(t, err)
	vel, err := FactoryNewComponent[Velocity](sto)
	assert.NilError(t, err)
	health, err := FactoryNewComponent[Health](sto)
	assert.NilError(t, err)
	return queryFixture{sto: sto, pos: pos, vel: vel, health: health}
}

func TestQueryFiltering(t *testing.T) {
	type entitySetup struct {
		components []string
		count      int
	}

	tests := []struct {
		name            string
		entitySetups    []entitySetup
		queryType       string // "and", "or", "not", "complex"
		queryComponents []string
		expectedMatches int
	}{
		{
			name: "And query matches exact",
			entitySetups: []entitySetup{
				{[]string{"pos", "vel"}, 5},
				{[]string{"pos"}, 10},
				{[]string{"vel"}, 15},
			},
			queryType:       "and",
			queryComponents: []string{"pos", "vel"},
			expectedMatches: 5,
		},
		{
			name: "Or query matches either",
			entitySetups: []entitySetup{
				{[]string{"pos", "vel"}, 5},
				{[]string{"pos"}, 10},
				{[]string{"vel"}, 15},
			},
			queryType:       "or",
			queryComponents: []string{"pos", "vel"},
			expectedMatches: 30,
		},
		{
			name: "Not query excludes",
			entitySetups: []entitySetup{
				{[]string{"pos", "vel"}, 5},
				{[]string{"pos"}, 10},
				{[]string{"vel"}, 15},
				{[]string{"health"}, 20},
			},
			queryType:       "not",
			queryComponents: []string{"vel"},
			expectedMatches: 30,
		},
		{
			name: "Complex query",
			entitySetups: []entitySetup{
				{[]string{"pos", "vel"}, 5},
				{[]string{"pos", "vel", "health"}, 7},
				{[]string{"pos"}, 10},
			},
			queryType:       "complex",
			queryComponents: []string{"pos"},
			expectedMatches: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newQueryFixture(t)
			byName := map[string]*Descriptor{
				"pos":    f.pos.Descriptor(),
				"vel":    f.vel.Descriptor(),
				"health": f.health.Descriptor(),
			}
			descsFor := func(names []string) []*Descriptor {
				descs := make([]*Descriptor, len(names))
				for i, n := range names {
					descs[i] = byName[n]
				}
				return descs
			}

			for _, setup := range tt.entitySetups {
				_, err := f.sto.NewEntities(setup.count, descsFor(setup.components)...)
				assert.NilError(t, err)
			}

			query := Factory.NewQuery()
			var node QueryNode
			switch tt.queryType {
			case "and":
				node = query.And(descsFor(tt.queryComponents))
			case "or":
				node = query.Or(descsFor(tt.queryComponents))
			case "not":
				node = query.Not(descsFor(tt.queryComponents))
			case "complex":
				node = query.And(descsFor(tt.queryComponents), f.vel, query.Not(f.health))
			}

			cursor := Factory.NewCursor(node, f.sto)
			matched := 0
			for cursor.Next() {
				matched++
			}
			assert.Equal(t, matched, tt.expectedMatches)
			assert.Equal(t, cursor.TotalMatched(), tt.expectedMatches)
			assert.Assert(t, !f.sto.Locked(), "exhausted cursor releases the storage")
		})
	}
}

func TestQueryRootIsFirstNode(t *testing.T) {
	f := newQueryFixture(t)
	f.sto.NewEntities(2, f.pos.Descriptor())
	f.sto.NewEntities(3, f.vel.Descriptor())

	query := Factory.NewQuery()
	query.And(f.pos)
	query.And(f.vel)

	cursor := Factory.NewCursor(query, f.sto)
	assert.Equal(t, cursor.TotalMatched(), 2)

	empty := Factory.NewQuery()
	assert.Equal(t, Factory.NewCursor(empty, f.sto).TotalMatched(), 0)
}

func TestQueryAcceptsTypeIDs(t *testing.T) {
	f := newQueryFixture(t)
	f.sto.NewEntities(4, f.pos.Descriptor(), f.health.Descriptor())

	query := Factory.NewQuery()
	node := query.And(f.pos.ID(), []ComponentTypeID{f.health.ID()})
	assert.Equal(t, Factory.NewCursor(node, f.sto).TotalMatched(), 4)
}

func TestCursorUpdatesComponents(t *testing.T) {
	f := newQueryFixture(t)
	ids, _ := f.sto.NewEntities(3, f.pos.Descriptor(), f.vel.Descriptor())
	f.sto.NewEntities(2, f.pos.Descriptor())
	for i, id := range ids {
		vel, _ := f.vel.GetFromEntity(f.sto, id)
		vel.DX = float64(i + 1)
	}

	query := Factory.NewQuery()
	cursor := Factory.NewCursor(query.And(f.pos, f.vel), f.sto)
	for cursor.Next() {
		assert.Assert(t, f.sto.Locked())
		pos := f.pos.GetFromCursor(cursor)
		vel := f.vel.GetFromCursor(cursor)
		pos.X += vel.DX

		ok, _ := f.health.GetFromCursorSafe(cursor)
		assert.Assert(t, !ok)
	}

	for i, id := range ids {
		pos, _ := ReadComponent[Position](f.sto, id)
		assert.Equal(t, pos.X, float64(i+1))
	}
}

func TestCursorEntities(t *testing.T) {
	f := newQueryFixture(t)
	ids, _ := f.sto.NewEntities(4, f.pos.Descriptor())
	f.sto.NewEntities(2, f.pos.Descriptor(), f.health.Descriptor())

	query := Factory.NewQuery()
	cursor := Factory.NewCursor(query.And(f.pos), f.sto)

	seen := 0
	for row, arch := range cursor.Entities() {
		assert.Assert(t, row < arch.Len())
		assert.Equal(t, f.pos.Get(row, arch), &f.pos.Slice(arch)[row])
		seen++
	}
	assert.Equal(t, seen, 6)
	assert.Assert(t, !f.sto.Locked())

	for row, arch := range cursor.Entities() {
		assert.Equal(t, arch.EntityAt(row), ids[0])
		break
	}
	assert.Assert(t, !f.sto.Locked(), "breaking out of the loop releases the storage")
}

func TestCursorDefersStructuralChanges(t *testing.T) {
	f := newQueryFixture(t)
	f.sto.NewEntities(3, f.pos.Descriptor())

	query := Factory.NewQuery()
	cursor := Factory.NewCursor(query.And(f.pos), f.sto)
	visited := 0
	for cursor.Next() {
		visited++
		id := cursor.Entity()
		err := AddComponent(f.sto, id, Velocity{})
		assert.Assert(t, err != nil)
		assert.NilError(t, EnqueueAddComponent(f.sto, id, Velocity{DX: 1}))
	}
	assert.Equal(t, visited, 3)

	withVel := Factory.NewCursor(Factory.NewQuery().And(f.pos, f.vel), f.sto)
	assert.Equal(t, withVel.TotalMatched(), 3)
}

func TestCursorResetReleasesStorage(t *testing.T) {
	f := newQueryFixture(t)
	f.sto.NewEntities(3, f.pos.Descriptor())

	cursor := Factory.NewCursor(Factory.NewQuery().And(f.pos), f.sto)
	assert.Assert(t, cursor.Next())
	assert.Equal(t, cursor.RemainingInArchetype(), 2)
	assert.Assert(t, f.sto.Locked())

	cursor.Reset()
	assert.Assert(t, !f.sto.Locked())
	cursor.Reset()
	assert.Assert(t, !f.sto.Locked())
}

func TestAccessorSlice(t *testing.T) {
	f := newQueryFixture(t)
	ids, _ := f.sto.NewEntities(3, f.pos.Descriptor())
	arch, _ := f.sto.ArchetypeOf(ids[0])

	positions := f.pos.Slice(arch)
	assert.Equal(t, len(positions), 3)
	positions[2].Y = 9

	got, _ := ReadComponent[Position](f.sto, ids[2])
	assert.Equal(t, got.Y, 9.0)

	assert.Assert(t, f.vel.Slice(arch) == nil)
	empty, _ := f.sto.Archetype(0)
	assert.Assert(t, f.pos.Slice(empty) == nil)
	assert.Assert(t, !f.vel.Check(arch))
	mustPanic(t, func() { f.vel.Get(0, arch) })
}

func TestAccessorIgnoresForeignColumns(t *testing.T) {
	other := newTestStorage()
	foreignPos, err := FactoryNewComponent[Position](other)
	assert.NilError(t, err)

	sto := newTestStorage()
	name, _ := FactoryNewComponent[Name](sto)
	ids, _ := sto.NewEntities(1, name.Descriptor())
	arch, _ := sto.ArchetypeOf(ids[0])
	assert.Equal(t, foreignPos.ID(), name.ID())

	assert.Assert(t, !foreignPos.Check(arch))
	assert.Assert(t, foreignPos.Slice(arch) == nil)
	mustPanic(t, func() { foreignPos.Get(0, arch) })

	assert.Assert(t, name.Check(arch))
	assert.Equal(t, len(name.Slice(arch)), 1)
}
