package ecs

import "reflect"

// EntityChangeKind distinguishes the three shapes an EntityChange can take
// (spec.md §4.7 / C12).
type EntityChangeKind int

const (
	ChangeAdd EntityChangeKind = iota
	ChangeRemove
	ChangeUpdate
)

// ReflectionFieldChange names one field an Update touched, carrying both
// the old and new value for callers that want to merge rather than
// overwrite.
type ReflectionFieldChange struct {
	Field    FieldDescriptor
	OldValue any
	NewValue any
}

// EntityChange is one tagged record in a diff produced by Diff and replayed
// by ApplyChanges.
type EntityChange struct {
	Component ComponentID
	Shared    bool
	Kind      EntityChangeKind
	Fields    []ReflectionFieldChange
}

func diffFields(meta ComponentMeta, srcVal, dstVal any) []ReflectionFieldChange {
	if meta.GoType == nil || meta.GoType.Kind() != reflect.Struct {
		return nil
	}
	srcRV := reflect.ValueOf(srcVal)
	dstRV := reflect.ValueOf(dstVal)
	var out []ReflectionFieldChange
	for _, fd := range meta.Fields {
		sf := srcRV.FieldByName(fd.Name)
		df := dstRV.FieldByName(fd.Name)
		if !sf.IsValid() || !df.IsValid() {
			continue
		}
		if !reflect.DeepEqual(sf.Interface(), df.Interface()) {
			out = append(out, ReflectionFieldChange{Field: fd, OldValue: sf.Interface(), NewValue: df.Interface()})
		}
	}
	return out
}

// Diff compares srcEntity (in srcMgr) against dstEntity (in dstMgr) and
// produces the change list that would turn src into dst: Add for
// components present only in dst, Remove for components present only in
// src, Update for components present in both whose reflected fields differ
// (spec.md §4.7). srcMgr and dstMgr are expected to share a component
// registry (e.g. two EntityManagers of the same World/sandbox); mismatched
// registries produce nonsensical ComponentIDs and is a caller error.
func Diff(srcMgr *EntityManager, srcEntity Entity, dstMgr *EntityManager, dstEntity Entity) []EntityChange {
	srcArche, srcBase, _, srcOK := srcMgr.location(srcEntity)
	dstArche, dstBase, _, dstOK := dstMgr.location(dstEntity)

	var srcUnique, dstUnique Signature
	var srcShared, dstShared SharedComponentSignature
	if srcOK {
		srcUnique = srcArche.UniqueSignature()
		srcShared = srcBase.SharedSignature()
	}
	if dstOK {
		dstUnique = dstArche.UniqueSignature()
		dstShared = dstBase.SharedSignature()
	}

	var changes []EntityChange

	for _, id := range dstUnique {
		if !srcUnique.Contains(id) {
			changes = append(changes, EntityChange{Component: id, Kind: ChangeAdd})
		}
	}
	for _, id := range srcUnique {
		if !dstUnique.Contains(id) {
			changes = append(changes, EntityChange{Component: id, Kind: ChangeRemove})
		}
	}
	for _, id := range srcUnique {
		if !dstUnique.Contains(id) {
			continue
		}
		srcVal, _ := srcMgr.GetComponent(srcEntity, id)
		dstVal, _ := dstMgr.GetComponent(dstEntity, id)
		meta := srcMgr.registry.MustMeta(id)
		if meta.CompareFor()(srcVal, dstVal) {
			continue
		}
		changes = append(changes, EntityChange{Component: id, Kind: ChangeUpdate, Fields: diffFields(meta, srcVal, dstVal)})
	}

	for _, entry := range dstShared {
		if _, ok := srcShared.ComponentAt(entry.Component); !ok {
			changes = append(changes, EntityChange{Component: entry.Component, Shared: true, Kind: ChangeAdd})
		}
	}
	for _, entry := range srcShared {
		if _, ok := dstShared.ComponentAt(entry.Component); !ok {
			changes = append(changes, EntityChange{Component: entry.Component, Shared: true, Kind: ChangeRemove})
		}
	}
	for _, entry := range srcShared {
		dstInstance, ok := dstShared.ComponentAt(entry.Component)
		if !ok {
			continue
		}
		srcVal, _ := srcMgr.shared.Value(entry.Component, entry.Instance)
		dstVal, _ := dstMgr.shared.Value(entry.Component, dstInstance)
		meta := srcMgr.registry.MustMeta(entry.Component)
		if meta.CompareFor()(srcVal, dstVal) {
			continue
		}
		changes = append(changes, EntityChange{Component: entry.Component, Shared: true, Kind: ChangeUpdate, Fields: diffFields(meta, srcVal, dstVal)})
	}

	return changes
}

// ApplyChanges replays changes against every entity in entities (spec.md
// §4.7's apply). uniqueData/sharedData supply the full replacement value for
// Add/Update entries, keyed by component id. A unique Add with no data adds
// the component at its Go zero value; a shared Add with no data is skipped
// (there is no value to find-or-create an instance from); an Update with no
// data is ignored (nothing to overwrite with). Shared instances touched by the batch are swept for
// unregistration once every entity has been processed.
func ApplyChanges(mgr *EntityManager, entities []Entity, changes []EntityChange, uniqueData map[ComponentID]any, sharedData map[ComponentID]any) error {
	touchedShared := make(map[ComponentID]bool)
	for _, e := range entities {
		for _, change := range changes {
			if change.Shared {
				if err := applySharedChange(mgr, e, change, sharedData); err != nil {
					return err
				}
				touchedShared[change.Component] = true
				continue
			}
			if err := applyUniqueChange(mgr, e, change, uniqueData); err != nil {
				return err
			}
		}
	}
	for comp := range touchedShared {
		mgr.UnregisterUnreferenced(comp)
	}
	return nil
}

func applyUniqueChange(mgr *EntityManager, e Entity, change EntityChange, data map[ComponentID]any) error {
	_, has := mgr.GetComponent(e, change.Component)
	switch change.Kind {
	case ChangeAdd:
		if has {
			return nil
		}
		value, ok := data[change.Component]
		if !ok {
			value = reflect.Zero(mgr.registry.MustMeta(change.Component).GoType).Interface()
		}
		return mgr.AddComponent(e, change.Component, value)
	case ChangeRemove:
		if !has {
			return nil
		}
		return mgr.RemoveComponent(e, change.Component)
	case ChangeUpdate:
		value, ok := data[change.Component]
		if !ok {
			return nil
		}
		if !has {
			return mgr.AddComponent(e, change.Component, value)
		}
		return mgr.SetComponent(e, change.Component, value)
	}
	return nil
}

func applySharedChange(mgr *EntityManager, e Entity, change EntityChange, data map[ComponentID]any) error {
	_, has := mgr.GetSharedInstance(e, change.Component)
	switch change.Kind {
	case ChangeAdd:
		if has {
			return nil
		}
		value, ok := data[change.Component]
		if !ok {
			return nil
		}
		return mgr.AddSharedComponent(e, change.Component, mgr.FindOrCreateSharedInstance(change.Component, value))
	case ChangeRemove:
		if !has {
			return nil
		}
		return mgr.RemoveSharedComponent(e, change.Component)
	case ChangeUpdate:
		value, ok := data[change.Component]
		if !ok {
			return nil
		}
		instance := mgr.FindOrCreateSharedInstance(change.Component, value)
		if !has {
			return mgr.AddSharedComponent(e, change.Component, instance)
		}
		_, err := mgr.ChangeEntitySharedInstance(e, change.Component, instance)
		return err
	}
	return nil
}
