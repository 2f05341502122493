package depot_test

import (
	"fmt"
	"io"

	"github.com/TheBitDrifter/depot"
	"github.com/rs/zerolog"
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	X float64
	Y float64
}

type Name struct {
	Value string
}

// Example shows basic usage with entity creation and queries.
func Example_basic() {
	storage := depot.Factory.NewStorage(depot.WithLogger(zerolog.New(io.Discard)))

	position, _ := depot.FactoryNewComponent[Position](storage)
	velocity, _ := depot.FactoryNewComponent[Velocity](storage)
	name, _ := depot.FactoryNewComponent[Name](storage)

	storage.NewEntities(5, position.Descriptor())
	storage.NewEntities(3, position.Descriptor(), velocity.Descriptor())

	entities, _ := storage.NewEntities(1, position.Descriptor(), velocity.Descriptor(), name.Descriptor())
	nameComp, _ := name.GetFromEntity(storage, entities[0])
	nameComp.Value = "Player"

	pos, _ := position.GetFromEntity(storage, entities[0])
	vel, _ := velocity.GetFromEntity(storage, entities[0])
	pos.X, pos.Y = 10.0, 20.0
	vel.X, vel.Y = 1.0, 2.0

	query := depot.Factory.NewQuery()
	cursor := depot.Factory.NewCursor(query.And(position, velocity), storage)
	fmt.Printf("Found %d entities with position and velocity\n", cursor.TotalMatched())

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}

	player, _ := depot.ReadComponent[Position](storage, entities[0])
	fmt.Printf("Player moved to (%.1f, %.1f)\n", player.X, player.Y)

	// Output:
	// Found 4 entities with position and velocity
	// Player moved to (11.0, 22.0)
}

// Example_components shows adding and removing components one at a time.
func Example_components() {
	storage := depot.Factory.NewStorage(depot.WithLogger(zerolog.New(io.Discard)))

	e, _ := storage.CreateEntity()
	depot.AddComponent(storage, e, Position{X: 1, Y: 2})
	depot.AddComponent(storage, e, Velocity{X: 0, Y: 1})

	arch, _ := storage.ArchetypeOf(e)
	fmt.Println(arch.ID(), arch.Len(), len(arch.Types()))

	depot.RemoveComponent[Velocity](storage, e)
	pos, _ := depot.ReadComponent[Position](storage, e)
	fmt.Println(pos, depot.HasComponent[Velocity](storage, e))

	// Output:
	// archetype(2) 1 2
	// {1 2} false
}
