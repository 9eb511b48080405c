package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/table"
)

// EntityManager is the top-level entity store (spec.md §3 C7): an entity
// pool, a component registry, a unique-signature-keyed archetype set, the
// shared-instance store, parent-child hierarchies and a query cache, all
// owned by one schema/entry-index pair. Two EntityManagers (e.g. a
// sandbox's scene and runtime copies) never share archetypes or shared
// instances even when built from the same schema — each call to
// Factory.NewEntityManager starts a fresh store.
type EntityManager struct {
	schema     table.Schema
	entryIndex table.EntryIndex

	registry *ComponentRegistry
	shared   *SharedStore
	pool     *EntityPool

	archetypesByKey map[string]*Archetype
	archetypesByID  map[ArchetypeID]*Archetype
	archetypes      []*Archetype
	nextArchetypeID ArchetypeID

	queryCache  *SimpleCache[[]*ArchetypeBase]
	hierarchies []*EntityHierarchy

	locked  int
	opQueue entityOperationsQueue
	config  tableEventsConfig
}

func newEntityManager(schema table.Schema) *EntityManager {
	mgr := &EntityManager{
		schema:          schema,
		entryIndex:      table.Factory.NewEntryIndex(),
		registry:        NewComponentRegistry(),
		pool:            NewEntityPool(),
		archetypesByKey: make(map[string]*Archetype),
		archetypesByID:  make(map[ArchetypeID]*Archetype),
		queryCache:      NewSimpleCache[[]*ArchetypeBase](4096),
		nextArchetypeID: 1,
	}
	mgr.shared = NewSharedStore(mgr.registry)
	return mgr
}

// Components returns the registry new components must be registered
// against before they can appear in a signature.
func (mgr *EntityManager) Components() *ComponentRegistry { return mgr.registry }

// Shared returns the shared-instance store backing this manager's shared
// components.
func (mgr *EntityManager) Shared() *SharedStore { return mgr.shared }

// Get returns e's info, or (_, false) if e is invalid or stale.
func (mgr *EntityManager) Get(e Entity) (EntityInfo, bool) { return mgr.pool.Get(e) }

// Locked reports whether a Cursor currently holds this manager open for
// iteration. DeleteEntity, AddComponent and RemoveComponent issued while
// locked are queued and applied on the next full unlock; CreateEntities,
// SetComponent and the shared-component edits are applied immediately even
// while locked.
func (mgr *EntityManager) Locked() bool { return mgr.locked > 0 }

func (mgr *EntityManager) lock() { mgr.locked++ }

func (mgr *EntityManager) unlock() {
	if mgr.locked > 0 {
		mgr.locked--
	}
	if mgr.locked == 0 {
		if err := mgr.opQueue.ProcessAll(mgr); err != nil {
			panic(bark.AddTrace(err))
		}
	}
}

// Enqueue defers op until the manager next fully unlocks.
func (mgr *EntityManager) Enqueue(op EntityOperation) { mgr.opQueue.Enqueue(op) }

func (mgr *EntityManager) archetypeByID(id ArchetypeID) *Archetype {
	return mgr.archetypesByID[id]
}

func archetypeKey(unique, sharedIDs Signature) string {
	return unique.Key() + "#" + sharedIDs.Key()
}

func (mgr *EntityManager) componentsFor(sig Signature) []Component {
	out := make([]Component, len(sig))
	for i, id := range sig {
		out[i] = mgr.registry.MustMeta(id).Element
	}
	return out
}

// getOrCreateArchetype finds-or-creates the Archetype for the pair (unique,
// sharedIDs). Every archetype creation invalidates the query cache
// wholesale, per spec.md §4.4 ("the cache is invalidated whenever an
// archetype is created or destroyed").
func (mgr *EntityManager) getOrCreateArchetype(unique, sharedIDs Signature) (*Archetype, error) {
	key := archetypeKey(unique, sharedIDs)
	if a, ok := mgr.archetypesByKey[key]; ok {
		return a, nil
	}
	a := newArchetype(mgr.nextArchetypeID, unique, sharedIDs, mgr.componentsFor(unique), mgr.schema, mgr.entryIndex, mgr.config.tableEvents)
	mgr.nextArchetypeID++
	mgr.archetypesByKey[key] = a
	mgr.archetypesByID[a.ID()] = a
	mgr.archetypes = append(mgr.archetypes, a)
	mgr.queryCache.Clear()
	return a, nil
}

// resolveSharedSignature fills in an instance for every shared component in
// ids, auto-creating a default-valued instance (spec.md §4.4) for any entry
// missing from shared or explicitly marked InvalidSharedInstance.
func (mgr *EntityManager) resolveSharedSignature(ids Signature, shared SharedComponentSignature) SharedComponentSignature {
	out := make(SharedComponentSignature, len(ids))
	for i, id := range ids {
		inst, ok := shared.ComponentAt(id)
		if !ok || inst == InvalidSharedInstance {
			meta := mgr.registry.MustMeta(id)
			inst = mgr.shared.FindOrCreate(id, reflect.Zero(meta.GoType).Interface())
		}
		out[i] = SharedComponentEntry{Component: id, Instance: inst}
	}
	return out
}

// findOrCreateBase resolves the (archetype, base) pair for a full
// (unique, shared) composition, retaining every shared instance whenever
// the base goes from empty (newly created, or emptied and released
// earlier) to citing it.
func (mgr *EntityManager) findOrCreateBase(unique Signature, shared SharedComponentSignature) (*Archetype, int, error) {
	sharedIDs := shared.Signature()
	arche, err := mgr.getOrCreateArchetype(unique, sharedIDs)
	if err != nil {
		return nil, -1, err
	}
	resolved := mgr.resolveSharedSignature(sharedIDs, shared)
	baseIdx, ok := arche.FindBase(resolved)
	if !ok {
		baseIdx, err = arche.CreateBase(resolved)
		if err != nil {
			return nil, -1, err
		}
		mgr.queryCache.Clear()
	}
	if arche.Base(baseIdx).Size() == 0 {
		for _, entry := range resolved {
			mgr.shared.Retain(entry.Component, entry.Instance)
		}
	}
	return arche, baseIdx, nil
}

func (mgr *EntityManager) defaultInitRange(base *ArchetypeBase, unique Signature, start, count int) {
	for _, id := range unique {
		meta := mgr.registry.MustMeta(id)
		base.CopySplat(meta.Element, reflect.Zero(meta.GoType).Interface(), start, count)
	}
}

// CreateEntities allocates n entities with the given unique/shared
// composition (spec.md §4.4's create_entity, generalised to batch creation
// per SPEC_FULL.md §4). Unique components are default-initialised to their
// Go zero value; shared components missing an explicit instance get an
// auto-created default instance.
func (mgr *EntityManager) CreateEntities(n int, unique Signature, shared SharedComponentSignature) ([]Entity, error) {
	if n <= 0 {
		return nil, nil
	}
	arche, baseIdx, err := mgr.findOrCreateBase(unique, shared)
	if err != nil {
		return nil, err
	}
	base := arche.Base(baseIdx)

	template := EntityInfo{MainArchetype: arche.ID(), BaseArchetype: baseIdx}
	entities := mgr.pool.Create(n, template)
	indices, err := base.AddEntities(entities)
	if err != nil {
		return nil, err
	}
	for i, e := range entities {
		info, _ := mgr.pool.Get(e)
		info.StreamIndex = uint32(indices[i])
		mgr.pool.Set(e, info)
	}
	mgr.defaultInitRange(base, unique, indices[0], n)
	return entities, nil
}

// CreateEntity is the singular convenience wrapper around CreateEntities.
func (mgr *EntityManager) CreateEntity(unique Signature, shared SharedComponentSignature) (Entity, error) {
	entities, err := mgr.CreateEntities(1, unique, shared)
	if err != nil {
		return InvalidEntity, err
	}
	return entities[0], nil
}

// location resolves e's current (archetype, base, stream index).
func (mgr *EntityManager) location(e Entity) (*Archetype, *ArchetypeBase, int, bool) {
	info, ok := mgr.pool.Get(e)
	if !ok {
		return nil, nil, 0, false
	}
	arche := mgr.archetypeByID(info.MainArchetype)
	if arche == nil {
		return nil, nil, 0, false
	}
	return arche, arche.Base(info.BaseArchetype), int(info.StreamIndex), true
}

func (mgr *EntityManager) releaseBaseSharedInstances(base *ArchetypeBase) {
	if base.Size() != 0 {
		return
	}
	for _, entry := range base.SharedSignature() {
		mgr.shared.Release(entry.Component, entry.Instance)
	}
}

func (mgr *EntityManager) fixupMoved(moved Entity, movedIdx int) {
	if !moved.Valid() {
		return
	}
	info, ok := mgr.pool.Get(moved)
	if !ok {
		return
	}
	info.StreamIndex = uint32(movedIdx)
	mgr.pool.Set(moved, info)
}

// DeleteEntity removes e: deallocate hooks run on every unique component,
// the base swap-back-removes the row, the moved entity's info is fixed up,
// and any shared instance the emptied base was the last citer of is
// released (not unregistered — spec.md §4.4's unregister_unreferenced is an
// explicit, separate sweep).
func (mgr *EntityManager) DeleteEntity(e Entity) error {
	if mgr.Locked() {
		mgr.opQueue.Enqueue(DestroyEntityOperation{Entity: e})
		return nil
	}
	arche, base, idx, ok := mgr.location(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	for _, id := range arche.UniqueSignature() {
		meta := mgr.registry.MustMeta(id)
		meta.DeallocateFor()(base.ValueAt(meta.Element, idx))
	}
	moved, movedIdx, err := base.RemoveEntity(idx)
	if err != nil {
		return err
	}
	mgr.fixupMoved(moved, movedIdx)
	mgr.pool.Delete(e)
	for _, h := range mgr.hierarchies {
		h.RemoveFromHierarchy(e)
	}
	mgr.releaseBaseSharedInstances(base)
	return nil
}

// moveEntity is the shared engine behind AddComponent/RemoveComponent/
// AddSharedComponent/RemoveSharedComponent/ChangeEntitySharedInstance: it
// relocates e into the (possibly new) archetype/base for newUnique+newShared,
// copying every retained unique component's value (deep-copied via the
// component's Copy function), applying overrides for components whose
// value the caller already has in hand, zero-initialising anything newly
// added, and running Deallocate on anything dropped.
func (mgr *EntityManager) moveEntity(e Entity, newUnique Signature, newShared SharedComponentSignature, overrides map[ComponentID]any) error {
	oldArche, oldBase, oldIdx, ok := mgr.location(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	info, _ := mgr.pool.Get(e)

	newArche, baseIdx, err := mgr.findOrCreateBase(newUnique, newShared)
	if err != nil {
		return err
	}
	newBase := newArche.Base(baseIdx)

	destIdx, err := newBase.AddEntities([]Entity{e})
	if err != nil {
		return err
	}
	destRow := destIdx[0]

	for _, id := range newUnique {
		meta := mgr.registry.MustMeta(id)
		var value any
		if v, has := overrides[id]; has {
			value = v
		} else if oldArche.UniqueSignature().Contains(id) {
			value = meta.CopyFor()(oldBase.ValueAt(meta.Element, oldIdx))
		} else {
			value = reflect.Zero(meta.GoType).Interface()
		}
		newBase.SetValueAt(meta.Element, destRow, value)
	}

	for _, id := range oldArche.UniqueSignature() {
		if !newUnique.Contains(id) {
			meta := mgr.registry.MustMeta(id)
			meta.DeallocateFor()(oldBase.ValueAt(meta.Element, oldIdx))
		}
	}

	moved, movedIdx, err := oldBase.RemoveEntity(oldIdx)
	if err != nil {
		return err
	}
	mgr.fixupMoved(moved, movedIdx)
	mgr.releaseBaseSharedInstances(oldBase)

	mgr.pool.Set(e, EntityInfo{
		MainArchetype: newArche.ID(),
		BaseArchetype: baseIdx,
		StreamIndex:   uint32(destRow),
		Generation:    info.Generation,
		Tags:          info.Tags,
	})
	return nil
}

func (mgr *EntityManager) currentSharedSignature(e Entity) SharedComponentSignature {
	_, base, _, ok := mgr.location(e)
	if !ok {
		return nil
	}
	return base.SharedSignature()
}

// AddComponent attaches a unique component with an initial value, migrating
// e into the archetype for its signature plus comp (spec.md §4.4, S1).
func (mgr *EntityManager) AddComponent(e Entity, comp ComponentID, value any) error {
	if mgr.Locked() {
		mgr.opQueue.Enqueue(AddComponentOperation{Entity: e, Component: comp, Value: value})
		return nil
	}
	arche, _, _, ok := mgr.location(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if arche.UniqueSignature().Contains(comp) {
		return ComponentExistsError{Entity: e, Component: comp}
	}
	return mgr.moveEntity(e, arche.UniqueSignature().With(comp), mgr.currentSharedSignature(e), map[ComponentID]any{comp: value})
}

// RemoveComponent detaches a unique component, migrating e into the
// archetype for its signature minus comp.
func (mgr *EntityManager) RemoveComponent(e Entity, comp ComponentID) error {
	if mgr.Locked() {
		mgr.opQueue.Enqueue(RemoveComponentOperation{Entity: e, Component: comp})
		return nil
	}
	arche, _, _, ok := mgr.location(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if !arche.UniqueSignature().Contains(comp) {
		return MissingComponentError{Entity: e, Component: comp}
	}
	return mgr.moveEntity(e, arche.UniqueSignature().Without(comp), mgr.currentSharedSignature(e), nil)
}

// AddSharedComponent attaches a shared component reference, migrating e
// into the archetype whose shared component set additionally includes comp.
func (mgr *EntityManager) AddSharedComponent(e Entity, comp ComponentID, instance SharedInstance) error {
	arche, base, _, ok := mgr.location(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if _, exists := base.SharedSignature().ComponentAt(comp); exists {
		return ComponentExistsError{Entity: e, Component: comp}
	}
	newShared := append(append(SharedComponentSignature{}, base.SharedSignature()...), SharedComponentEntry{Component: comp, Instance: instance})
	return mgr.moveEntity(e, arche.UniqueSignature(), newShared, nil)
}

// RemoveSharedComponent detaches a shared component reference. If that was
// the instance's last citing base, the instance is released and unregistered
// (running the component's Deallocate hook on its stored value).
func (mgr *EntityManager) RemoveSharedComponent(e Entity, comp ComponentID) error {
	arche, base, _, ok := mgr.location(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	prevInstance, exists := base.SharedSignature().ComponentAt(comp)
	if !exists {
		return MissingComponentError{Entity: e, Component: comp}
	}
	newShared := SharedComponentSignature{}
	for _, entry := range base.SharedSignature() {
		if entry.Component != comp {
			newShared = append(newShared, entry)
		}
	}
	if err := mgr.moveEntity(e, arche.UniqueSignature(), newShared, nil); err != nil {
		return err
	}
	// moveEntity already released prevInstance if e's old base emptied.
	if mgr.shared.RefCount(comp, prevInstance) <= 0 {
		mgr.shared.Unregister(comp, prevInstance)
	}
	return nil
}

// ChangeEntitySharedInstance rebinds e's comp reference to newInstance,
// moving it within the same Archetype if a base for that instance tuple
// already exists there, or creating one otherwise (spec.md §4.4). Returns
// the instance e previously referenced so the caller can release/unregister
// it if appropriate.
func (mgr *EntityManager) ChangeEntitySharedInstance(e Entity, comp ComponentID, newInstance SharedInstance) (SharedInstance, error) {
	arche, base, _, ok := mgr.location(e)
	if !ok {
		return 0, InvalidEntityError{Entity: e}
	}
	prevInstance, exists := base.SharedSignature().ComponentAt(comp)
	if !exists {
		return 0, MissingComponentError{Entity: e, Component: comp}
	}
	newShared := make(SharedComponentSignature, len(base.SharedSignature()))
	for i, entry := range base.SharedSignature() {
		if entry.Component == comp {
			entry.Instance = newInstance
		}
		newShared[i] = entry
	}
	if err := mgr.moveEntity(e, arche.UniqueSignature(), newShared, nil); err != nil {
		return 0, err
	}
	return prevInstance, nil
}

// FindOrCreateSharedInstance delegates to the shared-instance store (spec.md
// §4.4's find_or_create_shared_instance).
func (mgr *EntityManager) FindOrCreateSharedInstance(comp ComponentID, value any) SharedInstance {
	return mgr.shared.FindOrCreate(comp, value)
}

// UnregisterUnreferenced sweeps comp's shared store for zero-refcount
// instances and frees them.
func (mgr *EntityManager) UnregisterUnreferenced(comp ComponentID) {
	mgr.shared.UnregisterUnreferenced(comp)
}

// GetComponent returns e's current value for a unique component.
func (mgr *EntityManager) GetComponent(e Entity, comp ComponentID) (any, bool) {
	arche, base, idx, ok := mgr.location(e)
	if !ok || !arche.UniqueSignature().Contains(comp) {
		return nil, false
	}
	meta := mgr.registry.MustMeta(comp)
	return base.ValueAt(meta.Element, idx), true
}

// SetComponent overwrites e's current value for a unique component it
// already carries.
func (mgr *EntityManager) SetComponent(e Entity, comp ComponentID, value any) error {
	arche, base, idx, ok := mgr.location(e)
	if !ok {
		return InvalidEntityError{Entity: e}
	}
	if !arche.UniqueSignature().Contains(comp) {
		return MissingComponentError{Entity: e, Component: comp}
	}
	meta := mgr.registry.MustMeta(comp)
	base.SetValueAt(meta.Element, idx, value)
	return nil
}

// GetSharedInstance returns the shared instance id e currently references
// for comp.
func (mgr *EntityManager) GetSharedInstance(e Entity, comp ComponentID) (SharedInstance, bool) {
	_, base, _, ok := mgr.location(e)
	if !ok {
		return 0, false
	}
	return base.SharedSignature().ComponentAt(comp)
}

// GetSharedValue returns the deduplicated value e's comp reference points
// at.
func (mgr *EntityManager) GetSharedValue(e Entity, comp ComponentID) (any, bool) {
	instance, ok := mgr.GetSharedInstance(e, comp)
	if !ok {
		return nil, false
	}
	return mgr.shared.Value(comp, instance)
}

// CopyEntity allocates n new entities in src's archetype/base and deep
// copies every unique component value (spec.md §4.4's copy_entity).
func (mgr *EntityManager) CopyEntity(src Entity, n int) ([]Entity, error) {
	arche, base, idx, ok := mgr.location(src)
	if !ok {
		return nil, InvalidEntityError{Entity: src}
	}
	entities, err := mgr.CreateEntities(n, arche.UniqueSignature(), base.SharedSignature())
	if err != nil {
		return nil, err
	}
	for _, ne := range entities {
		for _, id := range arche.UniqueSignature() {
			meta := mgr.registry.MustMeta(id)
			if err := mgr.SetComponent(ne, id, meta.CopyFor()(base.ValueAt(meta.Element, idx))); err != nil {
				return nil, err
			}
		}
	}
	return entities, nil
}

// matchingBases resolves q against the query cache, populating it on a
// miss. Per spec.md §4.4, archetype creation invalidates the whole cache
// (getOrCreateArchetype calls queryCache.Clear directly); base insertion
// into an existing archetype only needs to invalidate entries whose shared
// filter matches, which findOrCreateBase approximates by also clearing the
// whole cache on first-base-of-a-new-tuple (a conservative superset of the
// spec's narrower invalidation, safe but not maximally cache-friendly).
func (mgr *EntityManager) matchingBases(q Query) []*ArchetypeBase {
	key := q.Key()
	if idx, ok := mgr.queryCache.GetIndex(key); ok {
		return *mgr.queryCache.GetItem(idx)
	}
	var out []*ArchetypeBase
	for _, a := range mgr.archetypes {
		if !q.MatchesArchetype(a) {
			continue
		}
		for _, b := range a.Bases() {
			if q.MatchesBase(b) {
				out = append(out, b)
			}
		}
	}
	mgr.queryCache.Register(key, out)
	return out
}

// Query returns every ArchetypeBase matching q.
func (mgr *EntityManager) Query(q Query) []*ArchetypeBase { return mgr.matchingBases(q) }

// NewHierarchy creates a fresh, empty parent-child hierarchy and returns its
// index for use with Hierarchy.
func (mgr *EntityManager) NewHierarchy() int {
	mgr.hierarchies = append(mgr.hierarchies, newEntityHierarchy())
	return len(mgr.hierarchies) - 1
}

// Hierarchy returns the hierarchy created at index i.
func (mgr *EntityManager) Hierarchy(i int) *EntityHierarchy { return mgr.hierarchies[i] }

// Snapshot deep-copies this manager's entire live state — pool, archetypes,
// shared instances and hierarchies — into a freshly constructed
// EntityManager of equal schema (spec.md §4.4's scene-save / sandbox-Stop
// restore contract). Because the destination starts empty and entities are
// replayed in the source's creation order, the destination's EntityPool
// assigns identical {index, generation} pairs, so Entity handles captured
// before a Snapshot remain valid keys into it afterward.
func (mgr *EntityManager) Snapshot() *EntityManager {
	dst := newEntityManager(mgr.schema)
	dst.registry = mgr.registry
	dst.shared = NewSharedStore(dst.registry)
	dst.config = mgr.config

	for comp, cs := range mgr.shared.byComp {
		meta := mgr.registry.MustMeta(comp)
		for i := range cs.slots {
			slot := cs.slots[i]
			if !slot.occupied {
				continue
			}
			// Refcount starts at zero: dst.CreateEntities below retains each
			// instance once per base it recreates.
			dst.shared.restoreSlot(comp, SharedInstance(i), meta.CopyFor()(slot.value), 0)
		}
	}

	mgr.pool.ForEach(func(e Entity, info EntityInfo) {
		arche := mgr.archetypeByID(info.MainArchetype)
		base := arche.Base(info.BaseArchetype)
		idx := int(info.StreamIndex)
		newEntities, err := dst.CreateEntities(1, arche.UniqueSignature(), base.SharedSignature())
		if err != nil {
			panic(bark.AddTrace(err))
		}
		ne := newEntities[0]
		for _, id := range arche.UniqueSignature() {
			meta := mgr.registry.MustMeta(id)
			if err := dst.SetComponent(ne, id, meta.CopyFor()(base.ValueAt(meta.Element, idx))); err != nil {
				panic(bark.AddTrace(err))
			}
		}
	})

	for _, h := range mgr.hierarchies {
		nh := dst.Hierarchy(dst.NewHierarchy())
		for child, parent := range h.parent {
			if err := nh.SetParent(child, parent); err != nil {
				panic(bark.AddTrace(err))
			}
		}
	}
	return dst
}

// RestoreFrom replaces mgr's entire contents with a fresh snapshot of src,
// the sandbox Stop operation's "reset runtime manager to scene contents"
// (spec.md §4.6).
func (mgr *EntityManager) RestoreFrom(src *EntityManager) {
	fresh := src.Snapshot()
	*mgr = *fresh
}
