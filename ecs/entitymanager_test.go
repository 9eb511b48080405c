package ecs

import (
	"testing"

	"github.com/TheBitDrifter/table"
)

type position struct{ X, Y float64 }
type velocity struct{ X, Y float64 }
type material struct{ Albedo string }

func newTestManager() *EntityManager {
	schema := table.Factory.NewSchema()
	return Factory.NewEntityManager(schema)
}

// TestArchetypeMigration covers spec scenario S1: adding a component moves
// an entity into a new archetype without disturbing its existing values.
func TestArchetypeMigration(t *testing.T) {
	mgr := newTestManager()
	posID := Register[position](mgr.Components(), Unique, nil)
	velID := Register[velocity](mgr.Components(), Unique, nil)

	e, err := mgr.CreateEntity(NewSignature(posID), nil)
	if err != nil {
		t.Fatalf("CreateEntity: %v", err)
	}
	if err := mgr.SetComponent(e, posID, position{X: 1, Y: 2}); err != nil {
		t.Fatalf("SetComponent: %v", err)
	}

	if err := mgr.AddComponent(e, velID, velocity{X: 1, Y: 2}); err != nil {
		t.Fatalf("AddComponent: %v", err)
	}

	info, ok := mgr.Get(e)
	if !ok {
		t.Fatal("entity missing after migration")
	}
	arche := mgr.archetypeByID(info.MainArchetype)
	if !arche.UniqueSignature().Equal(NewSignature(posID, velID)) {
		t.Fatalf("unexpected archetype signature: %v", arche.UniqueSignature())
	}

	vel, ok := mgr.GetComponent(e, velID)
	if !ok || vel.(velocity) != (velocity{X: 1, Y: 2}) {
		t.Fatalf("velocity not carried over: %v", vel)
	}
	pos, ok := mgr.GetComponent(e, posID)
	if !ok || pos.(position) != (position{X: 1, Y: 2}) {
		t.Fatalf("position lost across migration: %v", pos)
	}
}

// TestSharedInstanceDedup covers spec scenario S2.
func TestSharedInstanceDedup(t *testing.T) {
	mgr := newTestManager()
	posID := Register[position](mgr.Components(), Unique, nil)
	matID := Register[material](mgr.Components(), Shared, nil)

	red := material{Albedo: "red"}
	instance := mgr.FindOrCreateSharedInstance(matID, red)

	e1, err := mgr.CreateEntity(NewSignature(posID), SharedComponentSignature{{Component: matID, Instance: instance}})
	if err != nil {
		t.Fatalf("create e1: %v", err)
	}
	e2, err := mgr.CreateEntity(NewSignature(posID), SharedComponentSignature{{Component: matID, Instance: instance}})
	if err != nil {
		t.Fatalf("create e2: %v", err)
	}

	i1, _ := mgr.GetSharedInstance(e1, matID)
	i2, _ := mgr.GetSharedInstance(e2, matID)
	if i1 != i2 {
		t.Fatalf("expected same shared instance, got %d and %d", i1, i2)
	}

	blueInstance := mgr.FindOrCreateSharedInstance(matID, material{Albedo: "blue"})
	if blueInstance == i1 {
		t.Fatal("distinct shared values collapsed onto the same instance")
	}
}

func TestDeleteEntitySwapBack(t *testing.T) {
	mgr := newTestManager()
	posID := Register[position](mgr.Components(), Unique, nil)
	entities, err := mgr.CreateEntities(3, NewSignature(posID), nil)
	if err != nil {
		t.Fatalf("CreateEntities: %v", err)
	}

	if err := mgr.DeleteEntity(entities[0]); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}
	if _, ok := mgr.Get(entities[0]); ok {
		t.Fatal("deleted entity still reports valid info")
	}
	for _, e := range entities[1:] {
		info, ok := mgr.Get(e)
		if !ok {
			t.Fatal("survivor entity lost its info")
		}
		arche := mgr.archetypeByID(info.MainArchetype)
		base := arche.Base(info.BaseArchetype)
		if base.EntityAt(int(info.StreamIndex)) != e {
			t.Fatal("survivor's stream index does not point back at itself")
		}
	}
}

func TestHierarchyCycleRejected(t *testing.T) {
	mgr := newTestManager()
	posID := Register[position](mgr.Components(), Unique, nil)
	a, _ := mgr.CreateEntity(NewSignature(posID), nil)
	b, _ := mgr.CreateEntity(NewSignature(posID), nil)

	h := mgr.Hierarchy(mgr.NewHierarchy())
	if err := h.SetParent(b, a); err != nil {
		t.Fatalf("SetParent: %v", err)
	}
	if err := h.SetParent(a, b); err == nil {
		t.Fatal("expected cycle rejection, got nil error")
	}
}

func TestDiffApplyRoundTrip(t *testing.T) {
	mgr := newTestManager()
	posID := Register[position](mgr.Components(), Unique, nil)
	velID := Register[velocity](mgr.Components(), Unique, nil)

	src, _ := mgr.CreateEntity(NewSignature(posID), nil)
	mgr.SetComponent(src, posID, position{X: 3, Y: 4})

	dst, _ := mgr.CreateEntity(NewSignature(posID, velID), nil)
	mgr.SetComponent(dst, posID, position{X: 3, Y: 4})
	mgr.SetComponent(dst, velID, velocity{X: 9, Y: 9})

	changes := Diff(mgr, src, mgr, dst)
	if len(changes) != 1 || changes[0].Component != velID || changes[0].Kind != ChangeAdd {
		t.Fatalf("unexpected diff: %+v", changes)
	}

	if err := ApplyChanges(mgr, []Entity{src}, changes, map[ComponentID]any{velID: velocity{X: 9, Y: 9}}, nil); err != nil {
		t.Fatalf("ApplyChanges: %v", err)
	}

	after := Diff(mgr, src, mgr, dst)
	if len(after) != 0 {
		t.Fatalf("expected empty diff after apply, got %+v", after)
	}
}

func TestSnapshotRestore(t *testing.T) {
	mgr := newTestManager()
	posID := Register[position](mgr.Components(), Unique, nil)
	entities, _ := mgr.CreateEntities(4, NewSignature(posID), nil)
	mgr.SetComponent(entities[0], posID, position{X: 1, Y: 1})

	snap := mgr.Snapshot()

	if err := mgr.DeleteEntity(entities[1]); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}
	if err := mgr.DeleteEntity(entities[2]); err != nil {
		t.Fatalf("DeleteEntity: %v", err)
	}

	mgr.RestoreFrom(snap)

	for _, e := range entities {
		if _, ok := mgr.Get(e); !ok {
			t.Fatalf("entity %v missing after restore", e)
		}
	}
	pos, ok := mgr.GetComponent(entities[0], posID)
	if !ok || pos.(position) != (position{X: 1, Y: 1}) {
		t.Fatalf("restored value mismatch: %v", pos)
	}
}
