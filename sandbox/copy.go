package sandbox

import "github.com/graniteforge/ecsengine/ecs"

// CopyEntities duplicates entities from src's scene manager into dst's
// scene manager, built on the same diff/apply machinery C12 already
// provides rather than a bespoke copy path (SPEC_FULL.md §4, supplementing
// spec.md from original_source/Editor/src/Editor/
// EditorSandboxEntityOperations.cpp's "copy selection between sandboxes").
// Each entity is diffed against a freshly created blank entity in dst,
// which produces an all-Add change list, then applied with the source
// values as the add data.
func CopyEntities(src, dst *Sandbox, entities ...ecs.Entity) ([]ecs.Entity, error) {
	srcMgr, dstMgr := src.Scene(), dst.Scene()
	created := make([]ecs.Entity, 0, len(entities))

	for _, e := range entities {
		blank, err := dstMgr.CreateEntity(nil, nil)
		if err != nil {
			return created, err
		}

		changes := ecs.Diff(dstMgr, blank, srcMgr, e)
		uniqueData := make(map[ecs.ComponentID]any)
		sharedData := make(map[ecs.ComponentID]any)
		for _, c := range changes {
			if c.Kind != ecs.ChangeAdd {
				continue
			}
			if c.Shared {
				instance, ok := srcMgr.GetSharedInstance(e, c.Component)
				if !ok {
					continue
				}
				if value, ok := srcMgr.Shared().Value(c.Component, instance); ok {
					sharedData[c.Component] = value
				}
				continue
			}
			if value, ok := srcMgr.GetComponent(e, c.Component); ok {
				uniqueData[c.Component] = value
			}
		}

		if err := ecs.ApplyChanges(dstMgr, []ecs.Entity{blank}, changes, uniqueData, sharedData); err != nil {
			return created, err
		}
		created = append(created, blank)
	}

	dst.MarkDirty()
	return created, nil
}
