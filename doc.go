/*
Package depot is the storage core of an archetype-based Entity-Component-System.

Entities that share exactly the same set of component types live together in
one Archetype, which stores each type in its own contiguous Column. Adding or
removing a component moves the entity, and its existing values, to the
archetype for the new set.

Core Concepts:

  - EntityID: an opaque, monotonically issued identifier.
  - Descriptor: the type-erased layout and drop behaviour of one component type.
  - Column: growable, typed storage for a single component type.
  - Archetype: every entity with one particular component set, row-aligned
    across columns.
  - Storage: the owner of all archetypes and of each entity's location.

Basic Usage:

	sto := depot.Factory.NewStorage()

	position, _ := depot.FactoryNewComponent[Position](sto)
	velocity, _ := depot.FactoryNewComponent[Velocity](sto)

	sto.NewEntities(100, position.Descriptor(), velocity.Descriptor())

	query := depot.Factory.NewQuery()
	cursor := depot.Factory.NewCursor(query.And(position, velocity), sto)

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

Component types that implement Dropper have Drop called exactly once for every
value that leaves the storage for good, and never for values that are merely
relocated between archetypes.
*/
package depot
