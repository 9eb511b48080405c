package module

import (
	"testing"

	"github.com/graniteforge/ecsengine/ecs"
	"github.com/graniteforge/ecsengine/scheduler"
	"github.com/stretchr/testify/require"
)

type health struct{ HP int }

func newTestBridge() (*Bridge, *ecs.ComponentRegistry, *scheduler.Scheduler) {
	reg := ecs.NewComponentRegistry()
	sched := scheduler.New(1, nil)
	return NewBridge(reg, sched, DefaultLimits()), reg, sched
}

func TestLoadRegistersComponentsAndTasks(t *testing.T) {
	bridge, _, sched := newTestBridge()

	m := Module{
		Name: "combat",
		Components: []ComponentDescriptor{
			{
				Name: "health",
				Kind: ecs.Unique,
				Register: func(reg *ecs.ComponentRegistry) ecs.ComponentID {
					return ecs.Register[health](reg, ecs.Unique, nil)
				},
			},
		},
		Tasks: []scheduler.TaskSchedulerElement{
			{Name: "regen", Task: func(*scheduler.TaskContext) {}, Group: scheduler.SimulateMid},
		},
	}

	binding, err := bridge.Load(m)
	require.NoError(t, err)
	require.Len(t, binding.ComponentIDs, 1)
	require.Equal(t, []string{"regen"}, binding.TaskNames)

	_, err = sched.Solve()
	require.NoError(t, err)
	require.Contains(t, bridge.Loaded(), "combat")
}

func TestUnloadRemovesTasksFromScheduler(t *testing.T) {
	bridge, _, sched := newTestBridge()
	m := Module{
		Name: "combat",
		Tasks: []scheduler.TaskSchedulerElement{
			{Name: "regen", Task: func(*scheduler.TaskContext) {}, Group: scheduler.SimulateMid},
		},
	}
	_, err := bridge.Load(m)
	require.NoError(t, err)

	_, err = bridge.Unload("combat")
	require.NoError(t, err)

	plan, err := sched.Solve()
	require.NoError(t, err)
	require.Empty(t, plan.Waves)

	_, err = bridge.Unload("combat")
	require.Error(t, err)
}

func TestLoadRejectsDuplicateName(t *testing.T) {
	bridge, _, _ := newTestBridge()
	m := Module{Name: "combat"}
	_, err := bridge.Load(m)
	require.NoError(t, err)
	_, err = bridge.Load(m)
	require.Error(t, err)
}
