package depot

import "iter"

// QueryNode decides whether an archetype's entities belong to a query.
type QueryNode interface {
	Evaluate(arch *Archetype) bool
}

// Query composes QueryNodes. Items passed to And, Or and Not may be
// a *Descriptor or anything with a Descriptor method, a ComponentTypeID,
// slices of either, or a QueryNode.
// The first node built becomes the query's root.
type Query interface {
	QueryNode
	And(items ...any) QueryNode
	Or(items ...any) QueryNode
	Not(items ...any) QueryNode
}

type iCursor interface {
	Entities() iter.Seq2[int, *Archetype]
	Next() bool
	Reset()
}

var (
	_ iCursor   = &Cursor{}
	_ Query     = &query{}
	_ QueryNode = &compositeNode{}
)
