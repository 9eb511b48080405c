package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// ArchetypeID identifies an Archetype within an EntityManager.
type ArchetypeID uint32

// Archetype groups every ArchetypeBase sharing one unique component
// signature but differing in shared-instance tuple (spec.md §3, §4.2).
// Composition, not inheritance: an Archetype holds a list of
// ArchetypeBases rather than "being" one, replacing the source's
// base-class relationship per spec.md's Design Notes.
type Archetype struct {
	id              ArchetypeID
	uniqueSignature Signature
	sharedIDs       Signature
	components      []Component
	bases           []*ArchetypeBase
	bitmaps         []mask.Mask256

	schema     table.Schema
	entryIndex table.EntryIndex
	events     table.TableEvents
}

func newArchetype(id ArchetypeID, unique Signature, sharedIDs Signature, components []Component, schema table.Schema, entryIndex table.EntryIndex, events table.TableEvents) *Archetype {
	return &Archetype{
		id:              id,
		uniqueSignature: unique,
		sharedIDs:       sharedIDs,
		components:      components,
		schema:          schema,
		entryIndex:      entryIndex,
		events:          events,
	}
}

// ID returns the archetype's identifier.
func (a *Archetype) ID() ArchetypeID { return a.id }

// UniqueSignature returns the fixed unique component set shared by every
// base in this archetype.
func (a *Archetype) UniqueSignature() Signature { return a.uniqueSignature }

// Bases returns every base currently in this archetype.
func (a *Archetype) Bases() []*ArchetypeBase { return a.bases }

// Base returns the base at index i.
func (a *Archetype) Base(i int) *ArchetypeBase { return a.bases[i] }

func bitmapFor(sig SharedComponentSignature) mask.Mask256 {
	var m mask.Mask256
	for _, e := range sig {
		m.Mark(uint32(e.Instance))
	}
	return m
}

// CreateBase creates a new base for the given shared-instance tuple.
// Asserts the tuple names exactly this archetype's shared component set,
// per spec.md §4.2.
func (a *Archetype) CreateBase(shared SharedComponentSignature) (int, error) {
	if !shared.Signature().Equal(a.sharedIDs) {
		return -1, fmt.Errorf("shared signature count mismatch for archetype %d: got %v want %v", a.id, shared.Signature(), a.sharedIDs)
	}
	base, err := newArchetypeBase(a.schema, a.entryIndex, a.uniqueSignature, shared, a.components, a.events)
	if err != nil {
		return -1, err
	}
	a.bases = append(a.bases, base)
	a.bitmaps = append(a.bitmaps, bitmapFor(shared))
	return len(a.bases) - 1, nil
}

// FindBase linear-scans the instance bitmaps for a base matching shared,
// spec.md §4.2's "SIMD-friendly instance bitmap" lookup (expressed here as
// a bitmask equality compare rather than literal SIMD intrinsics, which
// spec.md's Design Notes explicitly leave as an implementation matter).
// The bitmap only records which instance ids occur, so a bitmap hit is
// confirmed against the base's full component/instance tuple.
func (a *Archetype) FindBase(shared SharedComponentSignature) (int, bool) {
	want := bitmapFor(shared)
	for i, bm := range a.bitmaps {
		if bm != want {
			continue
		}
		have := a.bases[i].SharedSignature()
		match := len(have) == len(shared)
		for _, e := range shared {
			if inst, ok := have.ComponentAt(e.Component); !ok || inst != e.Instance {
				match = false
				break
			}
		}
		if match {
			return i, true
		}
	}
	return -1, false
}

// DestroyBase deallocates base i and swap-back-removes it from the base
// list; if the last base is moved into slot i, the caller must update
// every moved entity's EntityInfo.BaseArchetype to i.
func (a *Archetype) DestroyBase(i int) (movedFromIndex int, moved bool) {
	a.bases[i].Deallocate()
	last := len(a.bases) - 1
	if i != last {
		a.bases[i] = a.bases[last]
		a.bitmaps[i] = a.bitmaps[last]
		a.bases = a.bases[:last]
		a.bitmaps = a.bitmaps[:last]
		return last, true
	}
	a.bases = a.bases[:last]
	a.bitmaps = a.bitmaps[:last]
	return 0, false
}
