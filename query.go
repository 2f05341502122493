package depot

import (
	"github.com/TheBitDrifter/mask"
)

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

func (op Operation) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpNot:
		return "not"
	}
	return "unknown"
}

type compositeNode struct {
	op       Operation
	children []QueryNode
	mask     mask.Mask
}

type describer interface {
	Descriptor() *Descriptor
}

type query struct {
	root QueryNode
}

func newQuery() *query {
	return &query{}
}

func newCompositeNode(op Operation, types []ComponentTypeID, children []QueryNode) *compositeNode {
	node := &compositeNode{
		op:       op,
		children: children,
	}
	for _, t := range types {
		node.mask.Mark(uint32(t))
	}
	return node
}

func (n *compositeNode) Evaluate(arch *Archetype) bool {
	archeMask := arch.Mask()

	switch n.op {
	case OpAnd:
		if !archeMask.ContainsAll(n.mask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(arch) {
				return false
			}
		}
		return true

	case OpOr:
		if archeMask.ContainsAny(n.mask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(arch) {
				return true
			}
		}
		return false

	case OpNot:
		for _, child := range n.children {
			if child.Evaluate(arch) {
				return false
			}
		}
		return archeMask.ContainsNone(n.mask)
	}
	return false
}

func (q *query) And(items ...any) QueryNode {
	return q.node(OpAnd, items)
}

func (q *query) Or(items ...any) QueryNode {
	return q.node(OpOr, items)
}

func (q *query) Not(items ...any) QueryNode {
	return q.node(OpNot, items)
}

func (q *query) node(op Operation, items []any) QueryNode {
	types, children := q.processItems(items...)
	node := newCompositeNode(op, types, children)
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) processItems(items ...any) ([]ComponentTypeID, []QueryNode) {
	types := make([]ComponentTypeID, 0, len(items))
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case *Descriptor:
			types = append(types, v.ID())
		case describer:
			types = append(types, v.Descriptor().ID())
		case []*Descriptor:
			for _, desc := range v {
				types = append(types, desc.ID())
			}
		case ComponentTypeID:
			types = append(types, v)
		case []ComponentTypeID:
			types = append(types, v...)
		case QueryNode:
			children = append(children, v)
		}
	}

	return types, children
}

func (q *query) Evaluate(arch *Archetype) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(arch)
}
