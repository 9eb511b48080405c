package ecs

import "github.com/TheBitDrifter/table"

// AccessibleComponent extends a base Component with table-based accessibility.
// It provides typed access to a unique component's value at a cursor
// position or for a specific (base, index) pair — the same ergonomic
// wrapper TheBitDrifter-warehouse's AccessibleComponent provides, adapted
// to read from an ArchetypeBase's table instead of a bare table.Table.
type AccessibleComponent[T any] struct {
	Component
	table.Accessor[T]
}

// GetFromCursor retrieves a pointer to the component value at the cursor's
// current position.
func (c AccessibleComponent[T]) GetFromCursor(cursor *Cursor) *T {
	return c.Accessor.Get(cursor.CurrentIndex(), cursor.CurrentBase().Table())
}

// GetFromCursorSafe retrieves a pointer to the component value at the
// cursor's current position, reporting whether the component is present.
func (c AccessibleComponent[T]) GetFromCursorSafe(cursor *Cursor) (bool, *T) {
	if !c.Accessor.Check(cursor.CurrentBase().Table()) {
		return false, nil
	}
	return true, c.GetFromCursor(cursor)
}

// CheckCursor reports whether the component exists in the archetype at the
// cursor's current position.
func (c AccessibleComponent[T]) CheckCursor(cursor *Cursor) bool {
	return c.Accessor.Check(cursor.CurrentBase().Table())
}

// Get retrieves a pointer to the component value for the entity at stream
// index i within base.
func (c AccessibleComponent[T]) Get(i int, base *ArchetypeBase) *T {
	return c.Accessor.Get(i, base.Table())
}

// Check reports whether base carries this component.
func (c AccessibleComponent[T]) Check(base *ArchetypeBase) bool {
	return c.Accessor.Check(base.Table())
}
