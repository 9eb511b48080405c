package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// ArchetypeBase is the SoA storage block for every entity sharing one
// unique component signature *and* one shared-instance tuple (spec.md §3,
// §4.1). The per-component columns are the real table.Table the teacher
// library already implements — cache-line-aligned single-allocation
// columns are exactly what table.Table gives every archetype in
// TheBitDrifter-warehouse; ArchetypeBase adds the four copy layouts and the
// shared-instance tuple (the tuple's instance bitmap is kept by the owning
// Archetype), and keeps its own dense Entity[] in
// lockstep with the table's rows so the domain Entity type never has to
// alias table's own entry identity.
type ArchetypeBase struct {
	uniqueSignature Signature
	sharedSignature SharedComponentSignature
	tbl             table.Table
	entities        []Entity
}

func newArchetypeBase(schema table.Schema, entryIndex table.EntryIndex, unique Signature, shared SharedComponentSignature, components []Component, events table.TableEvents) (*ArchetypeBase, error) {
	elementTypes := make([]table.ElementType, len(components))
	for i, c := range components {
		elementTypes[i] = c
	}
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elementTypes...).
		WithEvents(events).
		Build()
	if err != nil {
		return nil, err
	}
	return &ArchetypeBase{
		uniqueSignature: unique,
		sharedSignature: shared,
		tbl:             tbl,
	}, nil
}

// Table returns the backing column storage.
func (b *ArchetypeBase) Table() table.Table { return b.tbl }

// Size returns the number of live entities (spec.md's "size").
func (b *ArchetypeBase) Size() int { return len(b.entities) }

// Entities returns the dense entity slice. Callers must not retain it across
// any call that structurally edits the base.
func (b *ArchetypeBase) Entities() []Entity { return b.entities }

// EntityAt returns the entity at stream position i.
func (b *ArchetypeBase) EntityAt(i int) Entity { return b.entities[i] }

// AddEntities reserves room for len(entities) more rows, appends them, and
// returns their assigned stream indices. Component values are left at the
// table's zero value; callers apply one of the copy layouts afterward.
func (b *ArchetypeBase) AddEntities(entities []Entity) ([]int, error) {
	n := len(entities)
	rows, err := b.tbl.NewEntries(n)
	if err != nil {
		return nil, err
	}
	start := len(b.entities)
	b.entities = append(b.entities, entities...)
	indices := make([]int, n)
	for i := range rows {
		indices[i] = start + i
	}
	return indices, nil
}

func (b *ArchetypeBase) rowFor(comp Component) (reflect.Value, bool) {
	valueType := comp.Type()
	for _, row := range b.tbl.Rows() {
		rv := reflect.Value(row)
		if rv.Type().Elem() == valueType {
			return rv, true
		}
	}
	return reflect.Value{}, false
}

// CopySplat writes one value to the comp column for every entity in
// [start, start+count), the "splat" layout of spec.md §4.1.
func (b *ArchetypeBase) CopySplat(comp Component, value any, start, count int) {
	row, ok := b.rowFor(comp)
	if !ok {
		return
	}
	rv := reflect.ValueOf(value)
	for i := start; i < start+count; i++ {
		row.Index(i).Set(rv)
	}
}

// CopyByEntityStrided writes data[entityIndex*len(components)+compIndex]
// into components[compIndex] for the entity at stream position
// start+entityIndex, the by-entity strided layout.
func (b *ArchetypeBase) CopyByEntityStrided(components []Component, data []any, start, entityCount int) {
	for entityIndex := 0; entityIndex < entityCount; entityIndex++ {
		for compIndex, comp := range components {
			row, ok := b.rowFor(comp)
			if !ok {
				continue
			}
			v := data[entityIndex*len(components)+compIndex]
			row.Index(start + entityIndex).Set(reflect.ValueOf(v))
		}
	}
}

// CopyByEntityContiguous writes one packed record per entity: records[i] is
// a struct or map carrying every component's value for the entity at
// stream position start+i. writer extracts a component's value from one
// record. This resolves the source's ambiguous loop (spec.md §9 Open
// Question 1) as a plain bounds loop over entityCount.
func (b *ArchetypeBase) CopyByEntityContiguous(components []Component, records []any, writer func(record any, comp Component) (any, bool), start, entityCount int) {
	for entityIndex := 0; entityIndex < entityCount; entityIndex++ {
		record := records[entityIndex]
		for _, comp := range components {
			v, ok := writer(record, comp)
			if !ok {
				continue
			}
			row, ok := b.rowFor(comp)
			if !ok {
				continue
			}
			row.Index(start + entityIndex).Set(reflect.ValueOf(v))
		}
	}
}

// CopyByComponent writes data[compIndex*entityCount+entityIndex] into
// components[compIndex] for the entity at start+entityIndex.
func (b *ArchetypeBase) CopyByComponent(components []Component, data []any, start, entityCount int) {
	for compIndex, comp := range components {
		row, ok := b.rowFor(comp)
		if !ok {
			continue
		}
		for entityIndex := 0; entityIndex < entityCount; entityIndex++ {
			v := data[compIndex*entityCount+entityIndex]
			row.Index(start + entityIndex).Set(reflect.ValueOf(v))
		}
	}
}

// RemoveEntity swap-back-removes the entity at stream index i: the table's
// own entry for that row is deleted (table.Table performs the column
// swap-back internally), and the dense Entity slice is swapped back to
// match. Returns the entity that was moved into slot i so the caller can
// fix up its EntityInfo; if i was already the last slot, nothing moved and
// the returned entity is InvalidEntity.
func (b *ArchetypeBase) RemoveEntity(i int) (moved Entity, movedToIndex int, err error) {
	entry, err := b.tbl.Entry(i)
	if err != nil {
		return InvalidEntity, 0, err
	}
	if _, err := b.tbl.DeleteEntries(int(entry.ID())); err != nil {
		return InvalidEntity, 0, err
	}
	last := len(b.entities) - 1
	if i != last {
		b.entities[i] = b.entities[last]
	}
	b.entities = b.entities[:last]
	if i < len(b.entities) {
		return b.entities[i], i, nil
	}
	return InvalidEntity, i, nil
}

// ValueAt returns the value stored in comp's column at stream index i.
func (b *ArchetypeBase) ValueAt(comp Component, i int) any {
	row, ok := b.rowFor(comp)
	if !ok {
		return nil
	}
	return row.Index(i).Interface()
}

// SetValueAt overwrites comp's column at stream index i.
func (b *ArchetypeBase) SetValueAt(comp Component, i int, value any) {
	row, ok := b.rowFor(comp)
	if !ok {
		return
	}
	row.Index(i).Set(reflect.ValueOf(value))
}

// Deallocate marks the base empty by dropping its entity list. The backing
// table itself is not released here; its lifetime is owned by the
// schema/entryIndex's allocator.
func (b *ArchetypeBase) Deallocate() {
	b.entities = nil
}

// UniqueSignature returns the base's fixed unique component set.
func (b *ArchetypeBase) UniqueSignature() Signature { return b.uniqueSignature }

// SharedSignature returns the base's fixed shared-instance tuple.
func (b *ArchetypeBase) SharedSignature() SharedComponentSignature { return b.sharedSignature }
