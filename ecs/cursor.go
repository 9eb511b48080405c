package ecs

import (
	"iter"
)

// Cursor iterates the entities in every ArchetypeBase matching a Query,
// locking the owning EntityManager against structural edits for its
// lifetime — the same lock/iterate/unlock shape TheBitDrifter-warehouse's
// Cursor uses, adapted to walk (archetype, base) pairs instead of a single
// table.Table.
type Cursor struct {
	query   Query
	manager *EntityManager

	bases        []*ArchetypeBase
	baseIndex    int
	entityIndex  int
	initialized  bool
}

func newCursor(query Query, manager *EntityManager) *Cursor {
	return &Cursor{query: query, manager: manager}
}

// Initialize resolves the matching base list (consulting the query cache)
// and locks the manager.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}
	c.manager.lock()
	c.bases = c.manager.matchingBases(c.query)
	c.initialized = true
}

// Reset clears iteration state and unlocks the manager.
func (c *Cursor) Reset() {
	c.baseIndex = 0
	c.entityIndex = 0
	c.bases = nil
	c.initialized = false
	c.manager.unlock()
}

// Next advances to the next matching entity, returning false (and
// resetting) once exhausted.
func (c *Cursor) Next() bool {
	if !c.initialized {
		c.Initialize()
	} else {
		c.entityIndex++
	}
	for c.baseIndex < len(c.bases) {
		if c.entityIndex < c.bases[c.baseIndex].Size() {
			return true
		}
		c.baseIndex++
		c.entityIndex = 0
	}
	c.Reset()
	return false
}

// CurrentBase returns the base the cursor is currently positioned in.
func (c *Cursor) CurrentBase() *ArchetypeBase {
	return c.bases[c.baseIndex]
}

// CurrentIndex returns the stream index within CurrentBase.
func (c *Cursor) CurrentIndex() int {
	return c.entityIndex
}

// CurrentEntity returns the entity at the cursor's current position.
func (c *Cursor) CurrentEntity() Entity {
	return c.bases[c.baseIndex].EntityAt(c.entityIndex)
}

// Entities returns a Go 1.23 range-over-func iterator over every matching
// (base, stream index) pair, mirroring the teacher's iter.Seq2-based
// Entities method.
func (c *Cursor) Entities() iter.Seq2[*ArchetypeBase, int] {
	return func(yield func(*ArchetypeBase, int) bool) {
		c.Initialize()
		for _, base := range c.bases {
			for i := 0; i < base.Size(); i++ {
				if !yield(base, i) {
					c.Reset()
					return
				}
			}
		}
		c.Reset()
	}
}

// TotalMatched returns the total number of entities across every matching
// base.
func (c *Cursor) TotalMatched() int {
	c.Initialize()
	total := 0
	for _, b := range c.bases {
		total += b.Size()
	}
	c.Reset()
	return total
}
