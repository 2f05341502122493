package depot

import (
	"io"

	"github.com/rs/zerolog"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Health struct {
	Current, Max int
}

type Name struct {
	Value string
}

// Tracked counts its drops. The zero value is safe to drop.
type Tracked struct {
	Tag   int
	drops *int
}

func (t *Tracked) Drop() {
	if t.drops != nil {
		*t.drops++
	}
}

// newTestStorage returns a storage that discards its logs.
func newTestStorage(opts ...Option) *Storage {
	opts = append([]Option{WithLogger(zerolog.New(io.Discard))}, opts...)
	return Factory.NewStorage(opts...)
}
