package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/table"
	"github.com/graniteforge/ecsengine/container"
)

// ComponentRegistry is the registry of component metadata EntityManager
// consults for size/alignment, default-init and the copy/deallocate/compare
// dispatch table. Component ids are assigned sequentially at registration
// and are stable for the registry's lifetime.
type ComponentRegistry struct {
	byID container.ByteKeyMap[ComponentMeta]
	next ComponentID
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{byID: *container.NewByteKeyMap[ComponentMeta]()}
}

func reflectFields(t reflect.Type) []FieldDescriptor {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	fields := make([]FieldDescriptor, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fields = append(fields, FieldDescriptor{Name: f.Name, Offset: f.Offset, Type: f.Type})
	}
	return fields
}

// Register assigns a fresh ComponentID for T and records its reflected
// metadata. kind distinguishes unique vs shared namespace membership; funcs
// may be nil to request the reflection-derived copy/deallocate/compare
// defaults described in spec.md §3.
func Register[T any](reg *ComponentRegistry, kind ComponentKind, funcs *ComponentFunctions) ComponentID {
	var zero T
	t := reflect.TypeOf(zero)
	id := reg.next
	reg.next++
	meta := ComponentMeta{
		ID:      id,
		Kind:    kind,
		GoType:  t,
		Size:    int(t.Size()),
		Align:   int(t.Align()),
		Funcs:   funcs,
		Fields:  reflectFields(t),
		Element: table.FactoryNewElementType[T](),
	}
	reg.byID.Set(uint16(id), meta)
	return id
}

// Meta returns the metadata registered for id.
func (reg *ComponentRegistry) Meta(id ComponentID) (ComponentMeta, bool) {
	return reg.byID.Get(uint16(id))
}

// MustMeta returns the metadata for id or panics with a schema-violation
// error — used on paths spec.md §7 classifies as invariant breaks rather
// than recoverable conditions (an unregistered component id reaching the
// storage layer is a caller bug, not a runtime condition).
func (reg *ComponentRegistry) MustMeta(id ComponentID) ComponentMeta {
	meta, ok := reg.byID.Get(uint16(id))
	if !ok {
		panic(SchemaViolationError{Component: id, Reason: "component id not registered"})
	}
	return meta
}
