package ecs

import "github.com/graniteforge/ecsengine/container"

// EntityPool is a paged, generation-checked mapping Entity → EntityInfo. It
// is a thin domain wrapper over container.Pool[EntityInfo]: the container
// package already implements the free-list-plus-generation recycling this
// needs, so EntityPool's job is purely translating between Entity's packed
// {index,generation} encoding and the pool's (index, generation uint32)
// pair.
type EntityPool struct {
	pool *container.Pool[EntityInfo]
}

// NewEntityPool creates an empty EntityPool.
func NewEntityPool() *EntityPool {
	return &EntityPool{pool: container.NewPool[EntityInfo]()}
}

// Create draws n entities from the free list (or allocates fresh slots),
// bumping generation on reuse, and writes template into each new slot
// (MainArchetype/BaseArchetype/StreamIndex are expected to be overwritten by
// the caller once the entity's storage location is known).
func (p *EntityPool) Create(n int, template EntityInfo) []Entity {
	out := make([]Entity, n)
	for i := 0; i < n; i++ {
		idx, gen := p.pool.Insert(template)
		info, _ := p.pool.GetIndex(idx)
		info.Generation = uint16(gen)
		out[i] = NewEntity(uint32(idx)+1, uint16(gen))
	}
	return out
}

// Delete marks e's slot free; the next Create to reuse it bumps generation.
func (p *EntityPool) Delete(e Entity) {
	if e.Index() == 0 {
		return
	}
	p.pool.Remove(int(e.Index()) - 1)
}

// Get returns e's info, or (_, false) if e's generation is stale or its
// index was never allocated.
func (p *EntityPool) Get(e Entity) (EntityInfo, bool) {
	if e.Index() == 0 {
		return EntityInfo{}, false
	}
	info, ok := p.pool.Get(int(e.Index())-1, uint32(e.Generation()))
	if !ok {
		return EntityInfo{}, false
	}
	return *info, true
}

// Set overwrites e's info in place. Returns false if e is stale.
func (p *EntityPool) Set(e Entity, info EntityInfo) bool {
	cur, ok := p.pool.Get(int(e.Index())-1, uint32(e.Generation()))
	if !ok {
		return false
	}
	info.Generation = cur.Generation
	*cur = info
	return true
}

// ForEach visits every live entity and its info.
func (p *EntityPool) ForEach(fn func(Entity, EntityInfo)) {
	p.pool.ForEach(func(idx int, info *EntityInfo) {
		fn(NewEntity(uint32(idx)+1, info.Generation), *info)
	})
}
