package ecs

// sharedSlot holds one deduplicated shared-component value plus the count
// of archetype bases currently citing it.
type sharedSlot struct {
	value    any
	refcount int
	occupied bool
}

// sharedComponentStore is the per-component content-addressed value table:
// find_or_create does not hash; it linearly scans the occupied slots and
// compares under the component's own Compare function before reusing a
// slot, so two values that differ only by an overridden Compare
// (e.g. case-insensitive strings) still dedup correctly.
type sharedComponentStore struct {
	slots    []sharedSlot
	freeList []SharedInstance
}

// SharedStore is the per-shared-component instance registry described in
// spec.md §3: find_or_create returns an existing instance id when the
// value already exists (compared via the component's Compare function,
// reflect.DeepEqual by default), else deep-copies the value (via Copy) and
// allocates a new id. This is grounded on DangerosoDavo-ecs's
// ecs/storage/shared.go sharedStrategy/sharedStore, generalised from a
// fixed reflect.DeepEqual comparison to the per-component dispatch table in
// ComponentMeta.
type SharedStore struct {
	registry *ComponentRegistry
	byComp   map[ComponentID]*sharedComponentStore
}

// NewSharedStore creates a store backed by reg for component metadata.
func NewSharedStore(reg *ComponentRegistry) *SharedStore {
	return &SharedStore{registry: reg, byComp: make(map[ComponentID]*sharedComponentStore)}
}

func (s *SharedStore) storeFor(comp ComponentID) *sharedComponentStore {
	cs, ok := s.byComp[comp]
	if !ok {
		cs = &sharedComponentStore{}
		s.byComp[comp] = cs
	}
	return cs
}

// FindOrCreate returns the instance id for value under comp, creating one
// if no existing instance compares equal. It does not itself change any
// refcount — callers bind entities to the returned instance with Retain, so
// a value that is found-or-created but never bound stays at refcount zero
// and is eligible for UnregisterUnreferenced.
func (s *SharedStore) FindOrCreate(comp ComponentID, value any) SharedInstance {
	meta := s.registry.MustMeta(comp)
	compare := meta.CompareFor()
	cs := s.storeFor(comp)

	for i := range cs.slots {
		if cs.slots[i].occupied && compare(cs.slots[i].value, value) {
			return SharedInstance(i)
		}
	}

	copied := meta.CopyFor()(value)
	if n := len(cs.freeList); n > 0 {
		idx := cs.freeList[n-1]
		cs.freeList = cs.freeList[:n-1]
		cs.slots[idx] = sharedSlot{value: copied, refcount: 0, occupied: true}
		return idx
	}
	cs.slots = append(cs.slots, sharedSlot{value: copied, refcount: 0, occupied: true})
	return SharedInstance(len(cs.slots) - 1)
}

// Value returns the value stored at instance, if still occupied.
func (s *SharedStore) Value(comp ComponentID, instance SharedInstance) (any, bool) {
	cs, ok := s.byComp[comp]
	if !ok || int(instance) >= len(cs.slots) || !cs.slots[instance].occupied {
		return nil, false
	}
	return cs.slots[instance].value, true
}

// Retain increments instance's refcount (a new base starts citing it).
func (s *SharedStore) Retain(comp ComponentID, instance SharedInstance) {
	if cs, ok := s.byComp[comp]; ok && int(instance) < len(cs.slots) {
		cs.slots[instance].refcount++
	}
}

// Release decrements instance's refcount, returning true if it reached
// zero (the caller should then call Unregister if it wants it collected
// immediately — spec.md describes this as a lazy, on-demand sweep).
func (s *SharedStore) Release(comp ComponentID, instance SharedInstance) bool {
	cs, ok := s.byComp[comp]
	if !ok || int(instance) >= len(cs.slots) || !cs.slots[instance].occupied {
		return false
	}
	cs.slots[instance].refcount--
	return cs.slots[instance].refcount <= 0
}

// Unregister frees instance's slot immediately, running the component's
// Deallocate hook, regardless of refcount. Callers are expected to have
// already confirmed refcount is zero (e.g. via Release's return value or an
// UnregisterUnreferenced sweep).
func (s *SharedStore) Unregister(comp ComponentID, instance SharedInstance) {
	cs, ok := s.byComp[comp]
	if !ok || int(instance) >= len(cs.slots) || !cs.slots[instance].occupied {
		return
	}
	meta := s.registry.MustMeta(comp)
	meta.DeallocateFor()(cs.slots[instance].value)
	cs.slots[instance] = sharedSlot{}
	cs.freeList = append(cs.freeList, instance)
}

// UnregisterUnreferenced sweeps every occupied, zero-refcount slot for comp
// and frees it, the lazy collection spec.md describes in place of immediate
// collection on every Release.
func (s *SharedStore) UnregisterUnreferenced(comp ComponentID) {
	cs, ok := s.byComp[comp]
	if !ok {
		return
	}
	for i := range cs.slots {
		if cs.slots[i].occupied && cs.slots[i].refcount <= 0 {
			s.Unregister(comp, SharedInstance(i))
		}
	}
}

// restoreSlot force-writes a slot at a specific instance id, used by
// EntityManager.Snapshot to reproduce a source store's instance numbering
// exactly (spec.md §8 property 6's "same shared dedup up to instance
// renumbering" — snapshotting preserves numbering outright rather than
// merely preserving dedup, which is a strictly stronger guarantee).
func (s *SharedStore) restoreSlot(comp ComponentID, instance SharedInstance, value any, refcount int) {
	cs := s.storeFor(comp)
	for len(cs.slots) <= int(instance) {
		cs.slots = append(cs.slots, sharedSlot{})
	}
	cs.slots[instance] = sharedSlot{value: value, refcount: refcount, occupied: true}
}

// RefCount returns instance's current reference count.
func (s *SharedStore) RefCount(comp ComponentID, instance SharedInstance) int {
	cs, ok := s.byComp[comp]
	if !ok || int(instance) >= len(cs.slots) {
		return 0
	}
	return cs.slots[instance].refcount
}
