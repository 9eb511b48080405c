package ecs

import "github.com/TheBitDrifter/table"

// factory implements the package-level singleton construction pattern
// TheBitDrifter-warehouse exposes as its public entry point.
type factory struct{}

// Factory is the global factory instance for creating ecs package types.
var Factory factory

// NewEntityManager creates a new EntityManager backed by schema.
func (f factory) NewEntityManager(schema table.Schema) *EntityManager {
	return newEntityManager(schema)
}

// NewCursor creates a new Cursor scoped to query over manager.
func (f factory) NewCursor(query Query, manager *EntityManager) *Cursor {
	return newCursor(query, manager)
}

// FactoryNewComponent creates a new AccessibleComponent for type T, wrapping
// a table.ElementType identity and its generic table.Accessor.
func FactoryNewComponent[T any]() AccessibleComponent[T] {
	iden := table.FactoryNewElementType[T]()
	return AccessibleComponent[T]{
		Component: iden,
		Accessor:  table.FactoryNewAccessor[T](iden),
	}
}

// FactoryNewCache creates a new Cache with the specified capacity.
func FactoryNewCache[T any](cap int) Cache[T] {
	return NewSimpleCache[T](cap)
}
