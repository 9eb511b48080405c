package sandbox

import (
	"testing"

	"github.com/TheBitDrifter/table"
	"github.com/graniteforge/ecsengine/ecs"
	"github.com/graniteforge/ecsengine/module"
	"github.com/graniteforge/ecsengine/world"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }
type tint struct{ R, G, B uint8 }

func newTestSandbox(t *testing.T) (*Sandbox, ecs.ComponentID) {
	t.Helper()
	schema := table.Factory.NewSchema()
	w := world.New(schema, 2, nil)
	t.Cleanup(w.Shutdown)

	reg := w.Entities().Components()
	posID := ecs.Register[position](reg, ecs.Unique, nil)

	bridge := module.NewBridge(reg, w.Scheduler(), module.DefaultLimits())
	sb := New("TestWorld", schema, bridge, w, nil)
	return sb, posID
}

// TestPlayStopRoundTrip covers spec scenario S5: play, mutate runtime,
// stop, expect scene untouched and runtime reset to scene contents.
func TestPlayStopRoundTrip(t *testing.T) {
	sb, posID := newTestSandbox(t)

	entities, err := sb.Scene().CreateEntities(4, ecs.NewSignature(posID), nil)
	require.NoError(t, err)

	require.NoError(t, sb.Play())
	require.Equal(t, StateRunning, sb.State())

	require.NoError(t, sb.Runtime().DeleteEntity(entities[0]))
	require.NoError(t, sb.Runtime().DeleteEntity(entities[1]))

	require.NoError(t, sb.Stop())
	require.Equal(t, StateScene, sb.State())

	for _, e := range entities {
		_, ok := sb.Runtime().Get(e)
		require.True(t, ok, "entity should be restored after Stop")
		_, ok = sb.Scene().Get(e)
		require.True(t, ok, "scene should be untouched by runtime mutation")
	}

	require.NoError(t, sb.Play())
	for _, e := range entities {
		_, ok := sb.Runtime().Get(e)
		require.True(t, ok)
	}
}

func TestPlayRejectedWhileRunning(t *testing.T) {
	sb, _ := newTestSandbox(t)
	require.NoError(t, sb.Play())
	require.Error(t, sb.Play())
}

func TestPauseResume(t *testing.T) {
	sb, _ := newTestSandbox(t)
	require.NoError(t, sb.Play())
	require.NoError(t, sb.Pause())
	require.Equal(t, StatePaused, sb.State())
	require.NoError(t, sb.Resume())
	require.Equal(t, StateRunning, sb.State())
}

// TestModuleUnloadClearsComponent covers spec scenario S6.
func TestModuleUnloadClearsComponent(t *testing.T) {
	schema := table.Factory.NewSchema()
	w := world.New(schema, 1, nil)
	t.Cleanup(w.Shutdown)
	reg := w.Entities().Components()
	bridge := module.NewBridge(reg, w.Scheduler(), module.DefaultLimits())
	sb := New("TestWorld", schema, bridge, w, nil)

	var tintID ecs.ComponentID
	m := module.Module{
		Name: "paint",
		Components: []module.ComponentDescriptor{
			{
				Name: "tint",
				Kind: ecs.Unique,
				Register: func(reg *ecs.ComponentRegistry) ecs.ComponentID {
					tintID = ecs.Register[tint](reg, ecs.Unique, nil)
					return tintID
				},
			},
		},
	}
	_, err := bridge.Load(m)
	require.NoError(t, err)

	entities, err := sb.Scene().CreateEntities(100, ecs.NewSignature(tintID), nil)
	require.NoError(t, err)
	require.NoError(t, sb.Play())

	require.NoError(t, sb.UnloadModule("paint"))

	for _, e := range entities {
		_, ok := sb.Scene().Get(e)
		require.True(t, ok, "entity should survive module unload")
		_, ok = sb.Scene().GetComponent(e, tintID)
		require.False(t, ok, "removed module's component should be gone from scene")
		_, ok = sb.Runtime().GetComponent(e, tintID)
		require.False(t, ok, "removed module's component should be gone from runtime")
	}
	require.True(t, sb.Dirty())
}

func TestCopyEntitiesBetweenSandboxes(t *testing.T) {
	schema := table.Factory.NewSchema()
	w := world.New(schema, 1, nil)
	t.Cleanup(w.Shutdown)
	reg := w.Entities().Components()
	posID := ecs.Register[position](reg, ecs.Unique, nil)

	bridge := module.NewBridge(reg, w.Scheduler(), module.DefaultLimits())
	src := New("TestWorld", schema, bridge, w, nil)
	dst := New("TestWorld", schema, bridge, w, nil)

	e, err := src.Scene().CreateEntity(ecs.NewSignature(posID), nil)
	require.NoError(t, err)
	require.NoError(t, src.Scene().SetComponent(e, posID, position{X: 5, Y: 6}))

	created, err := CopyEntities(src, dst, e)
	require.NoError(t, err)
	require.Len(t, created, 1)

	pos, ok := dst.Scene().GetComponent(created[0], posID)
	require.True(t, ok)
	require.Equal(t, position{X: 5, Y: 6}, pos)
	require.True(t, dst.Dirty())
}

func TestLockWaitForZero(t *testing.T) {
	sb, _ := newTestSandbox(t)
	sb.Lock()
	done := make(chan struct{})
	go func() {
		sb.WaitForZero()
		close(done)
	}()
	sb.Unlock()
	<-done
}
