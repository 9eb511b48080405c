package ecs

import "fmt"

// InvalidEntityError is returned when an accessor is given an entity whose
// generation is stale or whose index was never allocated. Per spec.md §7
// this is never a crash — callers get "not present".
type InvalidEntityError struct {
	Entity Entity
}

func (e InvalidEntityError) Error() string {
	return fmt.Sprintf("entity %d (gen %d) is invalid or stale", e.Entity.Index(), e.Entity.Generation())
}

// MissingComponentError is returned when a component id is absent from the
// target entity or archetype.
type MissingComponentError struct {
	Entity    Entity
	Component ComponentID
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("component %d not present on entity %d", e.Component, e.Entity.Index())
}

// ComponentExistsError is returned by structural edits that would duplicate
// a component the entity already carries.
type ComponentExistsError struct {
	Entity    Entity
	Component ComponentID
}

func (e ComponentExistsError) Error() string {
	return fmt.Sprintf("component %d already exists on entity %d", e.Component, e.Entity.Index())
}

// LockedStorageError reports that the entity manager is locked (e.g.
// mid-query iteration). No EntityManager method returns it: edits issued
// while locked are either queued or applied directly (see
// EntityManager.Locked).
type LockedStorageError struct{}

func (e LockedStorageError) Error() string { return "entity manager is locked" }

// SchemaViolationError is the fatal, invariant-breaking error class from
// spec.md §7: an unregistered component id, or a signature count out of
// bounds. The engine panics with this type rather than returning it,
// matching spec.md's crash-hook propagation policy; callers that must not
// crash should validate with ComponentRegistry.Meta first.
type SchemaViolationError struct {
	Component ComponentID
	Reason    string
}

func (e SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation on component %d: %s", e.Component, e.Reason)
}

// IOFailureError wraps a persisted-file failure (missing or corrupt scene
// or settings file).
type IOFailureError struct {
	Path string
	Err  error
}

func (e IOFailureError) Error() string {
	return fmt.Sprintf("io failure for %s: %v", e.Path, e.Err)
}

func (e IOFailureError) Unwrap() error { return e.Err }

// EntityRelationError is returned when SetParent would create a cycle. A
// child that already has a parent is reparented, not rejected.
type EntityRelationError struct {
	Child, Parent Entity
}

func (e EntityRelationError) Error() string {
	return fmt.Sprintf("entity %d cannot take parent %d", e.Child.Index(), e.Parent.Index())
}
