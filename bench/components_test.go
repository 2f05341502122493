package bench

// Both suites build the same world: nPos entities with only a Position and
// nPosVel entities with a Position and a Velocity.
const (
	nPos    = 9000
	nPosVel = 1000
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	X float64
	Y float64
}

func move(pos *Position, vel *Velocity) {
	pos.X += vel.X
	pos.Y += vel.Y
}
