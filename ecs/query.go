// Package ecs provides query mechanisms for component-based entity systems.
package ecs

import "github.com/TheBitDrifter/mask"

// Query is the spec.md §4.4 structural filter: include_unique/include_shared
// must all be present, exclude_unique/exclude_shared must all be absent.
// This replaces TheBitDrifter-warehouse's generic AND/OR/NOT composite tree
// with the fixed 4-list shape spec.md's EntityManager.query actually
// requires; the mask-based matching (ContainsAll/ContainsNone) is kept from
// the teacher's compositeNode.Evaluate, just applied directly to the
// 4-tuple instead of an arbitrary boolean tree.
type Query struct {
	IncludeUnique Signature
	IncludeShared Signature
	ExcludeUnique Signature
	ExcludeShared Signature
}

// Key returns a value that uniquely identifies this filter, used as the
// query cache key.
func (q Query) Key() string {
	return q.IncludeUnique.Key() + "|" + q.IncludeShared.Key() + "|" + q.ExcludeUnique.Key() + "|" + q.ExcludeShared.Key()
}

func maskFor(s Signature) mask.Mask {
	var m mask.Mask
	for _, id := range s {
		m.Mark(uint32(id))
	}
	return m
}

// MatchesArchetype reports whether the archetype's unique signature alone
// could satisfy the query (a necessary but not sufficient condition — base
// selection within the archetype still depends on shared component
// matching via MatchesBase).
func (q Query) MatchesArchetype(a *Archetype) bool {
	have := maskFor(a.uniqueSignature)
	include := maskFor(q.IncludeUnique)
	exclude := maskFor(q.ExcludeUnique)
	if !have.ContainsAll(include) {
		return false
	}
	if !exclude.IsEmpty() && have.ContainsAny(exclude) {
		return false
	}
	return true
}

// MatchesBase reports whether a specific base's shared-instance tuple
// satisfies the shared-component portion of the query.
func (q Query) MatchesBase(b *ArchetypeBase) bool {
	have := maskFor(b.sharedSignature.Signature())
	include := maskFor(q.IncludeShared)
	exclude := maskFor(q.ExcludeShared)
	if !have.ContainsAll(include) {
		return false
	}
	if !exclude.IsEmpty() && have.ContainsAny(exclude) {
		return false
	}
	return true
}
