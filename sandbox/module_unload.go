package sandbox

import "github.com/graniteforge/ecsengine/ecs"

// UnloadModule unloads name from the sandbox's module bridge and strips
// every component it owned from both the scene and runtime managers before
// considering the unload complete (spec.md §4.6: "live removal of a module
// clears every component it owned from both scene and runtime managers
// before the binary is unloaded"; spec scenario S6). Entities that carried
// the component survive with it removed; shared instances it referenced
// are released and swept.
func (s *Sandbox) UnloadModule(name string) error {
	binding, err := s.bridge.Unload(name)
	if err != nil {
		return err
	}
	for _, id := range binding.ComponentIDs {
		clearComponent(s.scene, id)
		if s.runtime != nil {
			clearComponent(s.runtime, id)
		}
	}
	s.dirty = true
	return nil
}

func clearComponent(mgr *ecs.EntityManager, id ecs.ComponentID) {
	meta, ok := mgr.Components().Meta(id)
	if !ok {
		return
	}
	if meta.Kind == ecs.Shared {
		sweepShared(mgr, id)
		return
	}
	sweepUnique(mgr, id)
}

func entitiesOf(base *ecs.ArchetypeBase) []ecs.Entity {
	out := make([]ecs.Entity, base.Size())
	for i := range out {
		out[i] = base.EntityAt(i)
	}
	return out
}

func sweepUnique(mgr *ecs.EntityManager, id ecs.ComponentID) {
	for _, base := range mgr.Query(ecs.Query{IncludeUnique: ecs.NewSignature(id)}) {
		for _, e := range entitiesOf(base) {
			mgr.RemoveComponent(e, id)
		}
	}
}

func sweepShared(mgr *ecs.EntityManager, id ecs.ComponentID) {
	for _, base := range mgr.Query(ecs.Query{IncludeShared: ecs.NewSignature(id)}) {
		for _, e := range entitiesOf(base) {
			mgr.RemoveSharedComponent(e, id)
		}
	}
	mgr.UnregisterUnreferenced(id)
}
