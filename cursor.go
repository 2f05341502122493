package depot

import (
	"iter"

	iter_util "github.com/TheBitDrifter/util/iter"
)

// Cursor walks the rows of every archetype a query matches. While a walk is in
// progress the storage is locked: structural calls fail and Enqueue calls are
// deferred until the cursor is exhausted or Reset.
type Cursor struct {
	query   QueryNode
	storage *Storage

	currentArchetype *Archetype
	archetypeIndex   int
	entityIndex      int
	remaining        int

	initialized       bool
	matchedArchetypes []*Archetype
}

func newCursor(query QueryNode, sto *Storage) *Cursor {
	return &Cursor{
		query:   query,
		storage: sto,
	}
}

// Next advances to the next matched row, returning false (and releasing the
// storage) once every row has been visited.
func (c *Cursor) Next() bool {
	if c.entityIndex < c.remaining {
		c.entityIndex++
		return true
	}
	return c.advance()
}

func (c *Cursor) advance() bool {
	if !c.initialized {
		c.initialize()
	} else {
		c.archetypeIndex++
		c.entityIndex = 0
	}
	for c.archetypeIndex < len(c.matchedArchetypes) {
		c.currentArchetype = c.matchedArchetypes[c.archetypeIndex]
		c.remaining = c.currentArchetype.Len()

		if c.entityIndex < c.remaining {
			c.entityIndex++
			return true
		}
		c.archetypeIndex++
		c.entityIndex = 0
	}
	c.Reset()
	return false
}

// Entities yields each matched row with its archetype.
func (c *Cursor) Entities() iter.Seq2[int, *Archetype] {
	return func(yield func(int, *Archetype) bool) {
		c.initialize()
		defer c.Reset()

		for c.archetypeIndex < len(c.matchedArchetypes) {
			c.currentArchetype = c.matchedArchetypes[c.archetypeIndex]
			c.remaining = c.currentArchetype.Len()

			for c.entityIndex < c.remaining {
				c.entityIndex++
				if !yield(c.entityIndex-1, c.currentArchetype) {
					return
				}
			}
			c.entityIndex = 0
			c.archetypeIndex++
		}
	}
}

func (c *Cursor) initialize() {
	if c.initialized {
		return
	}
	c.matchedArchetypes = iter_util.Collect(c.matches())
	c.archetypeIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	if len(c.matchedArchetypes) > 0 {
		c.currentArchetype = c.matchedArchetypes[0]
		c.remaining = c.currentArchetype.Len()
	}
	c.storage.acquireCursor()
	c.initialized = true
}

func (c *Cursor) matches() iter.Seq[*Archetype] {
	return func(yield func(*Archetype) bool) {
		for _, arch := range c.storage.Archetypes() {
			if c.query.Evaluate(arch) && !yield(arch) {
				return
			}
		}
	}
}

// Reset rewinds the cursor and releases its hold on the storage, applying any
// operations deferred in the meantime.
func (c *Cursor) Reset() {
	wasInitialized := c.initialized
	c.archetypeIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.currentArchetype = nil
	c.matchedArchetypes = nil
	c.initialized = false
	if wasInitialized {
		c.storage.releaseCursor()
	}
}

// CurrentEntity returns the current row and its archetype.
func (c *Cursor) CurrentEntity() (int, *Archetype) {
	return c.entityIndex - 1, c.currentArchetype
}

// Entity returns the id of the entity at the current row.
func (c *Cursor) Entity() EntityID {
	return c.currentArchetype.EntityAt(c.entityIndex - 1)
}

func (c *Cursor) Archetype() *Archetype {
	return c.currentArchetype
}

func (c *Cursor) Row() int {
	return c.entityIndex - 1
}

func (c *Cursor) RemainingInArchetype() int {
	return c.remaining - c.entityIndex
}

// TotalMatched counts the rows the query matches right now.
func (c *Cursor) TotalMatched() int {
	total := 0
	for arch := range c.matches() {
		total += arch.Len()
	}
	return total
}
