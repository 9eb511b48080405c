// Package scheduler resolves a flat list of registered tasks into a wave
// plan: a sequence of barriers, each containing the tasks that may run
// concurrently without touching the same component in conflicting ways.
// Grounded on DangerosoDavo-ecs's scheduler_impl.go builder/registration
// shape, but replaces its ownership-exclusivity conflict model with
// spec.md §4.5's access-set conflict predicate and Kahn's-algorithm wave
// layering per task group.
package scheduler

import (
	"github.com/TheBitDrifter/mask"
	"github.com/graniteforge/ecsengine/container"
	"github.com/graniteforge/ecsengine/ecs"
)

// AccessMode is how a task touches one component across its query.
type AccessMode int

const (
	Read AccessMode = iota
	Write
)

// ComponentAccess names one component a task reads or writes.
type ComponentAccess struct {
	Component ecs.ComponentID
	Mode      AccessMode
}

// TaskComponentQuery is the access declaration a task registers alongside
// its function (spec.md §4.5). Unique and Shared each use container.SmallList,
// which keeps the first 4 entries inline and spills later ones into a heap
// slice: most tasks touch a handful of components and never allocate here.
// NewTaskComponentQuery builds the lists with no allocator.
type TaskComponentQuery struct {
	Unique container.SmallList[ComponentAccess]
	Shared container.SmallList[ComponentAccess]

	ExcludeUnique []ecs.ComponentID
	ExcludeShared []ecs.ComponentID
}

// NewTaskComponentQuery builds a query from plain slices, which is the
// common case at registration sites; callers needing to avoid the slice
// allocation entirely can build the SmallLists directly.
func NewTaskComponentQuery(unique, shared []ComponentAccess, excludeUnique, excludeShared []ecs.ComponentID) TaskComponentQuery {
	q := TaskComponentQuery{ExcludeUnique: excludeUnique, ExcludeShared: excludeShared}
	for _, a := range unique {
		q.Unique.Append(a)
	}
	for _, a := range shared {
		q.Shared.Append(a)
	}
	return q
}

func accessListConflict(a, b container.SmallList[ComponentAccess]) bool {
	// A bitmask pre-check lets two disjoint component sets skip the O(n*m)
	// pairwise scan entirely once either list grows past the inline window.
	var aMask, bMask mask.Mask
	a.Each(func(entry ComponentAccess) { aMask.Mark(uint32(entry.Component)) })
	b.Each(func(entry ComponentAccess) { bMask.Mark(uint32(entry.Component)) })
	if !aMask.ContainsAny(bMask) {
		return false
	}

	conflict := false
	a.Each(func(ae ComponentAccess) {
		if conflict {
			return
		}
		b.Each(func(be ComponentAccess) {
			if conflict {
				return
			}
			if ae.Component == be.Component && (ae.Mode == Write || be.Mode == Write) {
				conflict = true
			}
		})
	})
	return conflict
}

// conflict implements spec.md §4.5's predicate over both access lists a task
// declares: two tasks conflict if either one writes a component the other
// also touches, considering unique and shared components as independent
// namespaces (the resolved Open Question: a ComponentID collision between a
// unique and a shared registration never conflicts).
func conflict(a, b TaskComponentQuery) bool {
	if accessListConflict(a.Unique, b.Unique) {
		return true
	}
	if accessListConflict(a.Shared, b.Shared) {
		return true
	}
	return false
}
