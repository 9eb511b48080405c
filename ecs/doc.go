/*
Package ecs provides an archetype-based Entity-Component-System core for
games and simulations.

Entities are opaque {index, generation} handles. Components are split into
two namespaces: unique components, stored inline per entity, and shared
components, deduplicated by value and referenced by instance id. Entities
with the same unique signature live together in an Archetype; within an
Archetype, entities are further grouped into ArchetypeBases by which shared
instances they reference, so iteration never branches on a shared value
indirection.

Basic Usage:

	schema := table.Factory.NewSchema()
	manager := ecs.Factory.NewEntityManager(schema)

	position := ecs.FactoryNewComponent[Position]()
	velocity := ecs.FactoryNewComponent[Velocity]()

	posID := ecs.Register[Position](manager.Components(), ecs.Unique, nil)
	velID := ecs.Register[Velocity](manager.Components(), ecs.Unique, nil)

	entities, _ := manager.CreateEntities(100, ecs.NewSignature(posID, velID), nil)

	query := ecs.Query{IncludeUnique: ecs.NewSignature(posID, velID)}
	cursor := ecs.Factory.NewCursor(query, manager)

	for cursor.Next() {
		pos := position.GetFromCursor(cursor)
		vel := velocity.GetFromCursor(cursor)
		pos.X += vel.X
		pos.Y += vel.Y
	}
*/
package ecs
