package world

import (
	"testing"
	"time"

	"github.com/TheBitDrifter/table"
	"github.com/graniteforge/ecsengine/ecs"
	"github.com/graniteforge/ecsengine/scheduler"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }

func TestWorldTicksScheduledTasks(t *testing.T) {
	w := New(table.Factory.NewSchema(), 2, nil)
	defer w.Shutdown()

	posID := ecs.Register[position](w.Entities().Components(), ecs.Unique, nil)
	_, err := w.Entities().CreateEntity(ecs.NewSignature(posID), nil)
	require.NoError(t, err)

	ran := false
	w.Scheduler().Register(scheduler.TaskSchedulerElement{
		Name: "move",
		Task: func(ctx *scheduler.TaskContext) {
			ran = true
			_, ok := ctx.World.(*World)
			require.True(t, ok)
		},
		Query: scheduler.NewTaskComponentQuery(
			[]scheduler.ComponentAccess{{Component: posID, Mode: scheduler.Write}}, nil, nil, nil,
		),
		Group: scheduler.SimulateMid,
	})

	require.Equal(t, Preinitialized, w.State())
	w.SetInput(FrameInput{DeltaTime: 16 * time.Millisecond})
	require.NoError(t, w.Tick())
	require.True(t, ran)
	require.Equal(t, Live, w.State())
}

func TestSettingsTableGroups(t *testing.T) {
	s := NewSettingsTable()
	s.Set("physics", "gravity", -9.8)
	v, ok := s.Get("physics", "gravity")
	require.True(t, ok)
	require.Equal(t, -9.8, v)

	s.ClearGroup("physics")
	_, ok = s.Get("physics", "gravity")
	require.False(t, ok)
}
