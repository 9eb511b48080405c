package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Component is a data attribute that can be attached to entities. It is a
// table.ElementType so every Component doubles as a column identity the
// underlying table package can key a row on, exactly as
// TheBitDrifter-warehouse's Component did.
type Component interface {
	table.ElementType
}

// ComponentID is the stable 16-bit id spec.md assigns every registered
// component, unique or shared.
type ComponentID uint16

// ComponentKind distinguishes the two disjoint component namespaces: at
// most one unique component instance per entity, versus at most one shared
// reference (to a deduplicated value) per entity.
type ComponentKind int

const (
	Unique ComponentKind = iota
	Shared
)

// ComponentFunctions is the explicit dispatch table spec.md's Design Notes
// call for in place of virtual dispatch through function pointers: copy,
// deallocate and compare, any of which may be nil to request the
// reflection-derived default. Values are the component's Go value (not raw
// bytes) since archetype columns are typed table rows, not byte buffers —
// byte-level manipulation belongs to the wire/serialisation layer, which is
// out of this core's scope per spec.md §1.
type ComponentFunctions struct {
	Copy       func(value any) any
	Deallocate func(value any)
	Compare    func(a, b any) bool
}

// FieldDescriptor names one reflected field of a component, used by the
// diff/update path (C12).
type FieldDescriptor struct {
	Name   string
	Offset uintptr
	Type   reflect.Type
}

// ComponentMeta is the reflection contract spec.md §6 requires the core
// obtain for every component type: size/alignment, optional per-instance
// allocator size, optional function set, and field descriptors for diffing.
type ComponentMeta struct {
	ID                ComponentID
	Kind              ComponentKind
	GoType            reflect.Type
	Size              int
	Align             int
	InstanceAllocSize int
	Funcs             *ComponentFunctions
	Fields            []FieldDescriptor
	// Element is the table.ElementType identity this component registers
	// under — the column key ArchetypeBase's backing table.Table uses.
	Element Component
}

// CompareFor returns the component's Compare function, falling back to
// reflect.DeepEqual when the component omitted one — the reflection
// auto-derivation spec.md §3 describes.
func (m ComponentMeta) CompareFor() func(a, b any) bool {
	if m.Funcs != nil && m.Funcs.Compare != nil {
		return m.Funcs.Compare
	}
	return func(a, b any) bool { return reflect.DeepEqual(a, b) }
}

// CopyFor returns the component's Copy function, falling back to returning
// the value unchanged (correct for any value type without internal
// pointers/handles that need a deep copy).
func (m ComponentMeta) CopyFor() func(value any) any {
	if m.Funcs != nil && m.Funcs.Copy != nil {
		return m.Funcs.Copy
	}
	return func(v any) any { return v }
}

// DeallocateFor returns the component's Deallocate function, defaulting to
// a no-op.
func (m ComponentMeta) DeallocateFor() func(value any) {
	if m.Funcs != nil && m.Funcs.Deallocate != nil {
		return m.Funcs.Deallocate
	}
	return func(any) {}
}

// Signature is the ordered-then-normalised multiset of component ids
// defining an archetype's unique (or shared) component set. Two signatures
// compare equal iff they contain the same set, per spec.md §3.
type Signature []ComponentID

// NewSignature normalises ids into ascending order with duplicates removed.
func NewSignature(ids ...ComponentID) Signature {
	if len(ids) == 0 {
		return Signature{}
	}
	cp := append(Signature{}, ids...)
	for i := 1; i < len(cp); i++ {
		for j := i; j > 0 && cp[j-1] > cp[j]; j-- {
			cp[j-1], cp[j] = cp[j], cp[j-1]
		}
	}
	out := cp[:1]
	for _, id := range cp[1:] {
		if out[len(out)-1] != id {
			out = append(out, id)
		}
	}
	return out
}

// Contains reports whether id is present in the signature.
func (s Signature) Contains(id ComponentID) bool {
	for _, c := range s {
		if c == id {
			return true
		}
	}
	return false
}

// Equal reports whether s and o contain the same set of ids.
func (s Signature) Equal(o Signature) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Key returns a value usable as a map key uniquely identifying this
// normalised signature.
func (s Signature) Key() string {
	buf := make([]byte, 0, len(s)*3)
	for _, id := range s {
		buf = append(buf, byte(id>>8), byte(id), ',')
	}
	return string(buf)
}

// With returns a new signature with id inserted (already-present ids are a
// no-op), leaving s untouched.
func (s Signature) With(id ComponentID) Signature {
	return NewSignature(append(append(Signature{}, s...), id)...)
}

// Without returns a new signature with id removed, leaving s untouched.
func (s Signature) Without(id ComponentID) Signature {
	out := make(Signature, 0, len(s))
	for _, c := range s {
		if c != id {
			out = append(out, c)
		}
	}
	return out
}

// SharedInstance is the 16-bit id a shared component's value store assigns
// to a deduplicated value.
type SharedInstance uint16

// InvalidSharedInstance signals "auto-create a new instance from default
// values", per spec.md §4.4's create_entity behaviour.
const InvalidSharedInstance SharedInstance = 0xFFFF

// SharedComponentEntry pairs a shared component with a specific instance.
type SharedComponentEntry struct {
	Component ComponentID
	Instance  SharedInstance
}

// SharedComponentSignature is the ordered set of shared-component/instance
// pairs identifying one archetype base within an Archetype.
type SharedComponentSignature []SharedComponentEntry

// ComponentAt returns the instance bound to comp, if present.
func (s SharedComponentSignature) ComponentAt(comp ComponentID) (SharedInstance, bool) {
	for _, e := range s {
		if e.Component == comp {
			return e.Instance, true
		}
	}
	return 0, false
}

// Signature extracts just the component ids, for bitmap construction.
func (s SharedComponentSignature) Signature() Signature {
	ids := make([]ComponentID, len(s))
	for i, e := range s {
		ids[i] = e.Component
	}
	return NewSignature(ids...)
}
