package scheduler

import (
	"testing"

	"github.com/graniteforge/ecsengine/alloc"
	"github.com/graniteforge/ecsengine/ecs"
	"github.com/stretchr/testify/require"
)

func access(id ecs.ComponentID, mode AccessMode) TaskComponentQuery {
	return NewTaskComponentQuery([]ComponentAccess{{Component: id, Mode: mode}}, nil, nil, nil)
}

// TestTwoWaveOrderingSymmetric covers spec scenario S3: a writer and a
// reader of the same component must land in separate waves, and which one
// comes first depends only on registration order, not on how they're
// listed in the input slice.
func TestTwoWaveOrderingSymmetric(t *testing.T) {
	const posID = ecs.ComponentID(1)

	writer := TaskSchedulerElement{Name: "writer", Task: func(*TaskContext) {}, Query: access(posID, Write), Group: SimulateMid}
	reader := TaskSchedulerElement{Name: "reader", Task: func(*TaskContext) {}, Query: access(posID, Read), Group: SimulateMid}

	plan, err := Solve([]TaskSchedulerElement{writer, reader})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 2)
	require.Equal(t, "writer", plan.Waves[0].Tasks[0].Name)
	require.Equal(t, "reader", plan.Waves[1].Tasks[0].Name)

	reversedPlan, err := Solve([]TaskSchedulerElement{reader, writer})
	require.NoError(t, err)
	require.Len(t, reversedPlan.Waves, 2)
	require.Equal(t, "reader", reversedPlan.Waves[0].Tasks[0].Name)
	require.Equal(t, "writer", reversedPlan.Waves[1].Tasks[0].Name)
}

// TestIndependentReadersShareAWave covers the non-conflicting half of S3:
// two readers of the same component never conflict and stay in one wave.
func TestIndependentReadersShareAWave(t *testing.T) {
	const posID = ecs.ComponentID(1)

	a := TaskSchedulerElement{Name: "a", Task: func(*TaskContext) {}, Query: access(posID, Read), Group: SimulateMid}
	b := TaskSchedulerElement{Name: "b", Task: func(*TaskContext) {}, Query: access(posID, Read), Group: SimulateMid}

	plan, err := Solve([]TaskSchedulerElement{a, b})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 1)
	require.Len(t, plan.Waves[0].Tasks, 2)
}

// TestCycleDetectionNamesOffendingTasks covers spec scenario S4.
func TestCycleDetectionNamesOffendingTasks(t *testing.T) {
	a := TaskSchedulerElement{Name: "a", Task: func(*TaskContext) {}, Dependencies: []string{"b"}, Group: SimulateMid}
	b := TaskSchedulerElement{Name: "b", Task: func(*TaskContext) {}, Dependencies: []string{"a"}, Group: SimulateMid}

	_, err := Solve([]TaskSchedulerElement{a, b})
	require.Error(t, err)
	var cycleErr *SchedulingCycleError
	require.ErrorAs(t, err, &cycleErr)
	require.ElementsMatch(t, []string{"a", "b"}, cycleErr.Tasks)
}

func TestUnknownDependencyIsFatal(t *testing.T) {
	a := TaskSchedulerElement{Name: "a", Task: func(*TaskContext) {}, Dependencies: []string{"missing"}, Group: SimulateMid}

	_, err := Solve([]TaskSchedulerElement{a})
	require.Error(t, err)
	var depErr *UnknownDependencyError
	require.ErrorAs(t, err, &depErr)
	require.Equal(t, "a", depErr.Task)
	require.Equal(t, "missing", depErr.Dependency)
}

// TestUniqueAndSharedAreIndependentNamespaces covers the resolved Open
// Question: a ComponentID that happens to match between a unique access and
// a shared access on two different tasks must not be treated as a conflict.
func TestUniqueAndSharedAreIndependentNamespaces(t *testing.T) {
	const id = ecs.ComponentID(5)

	uniqueWriter := TaskSchedulerElement{
		Name: "uniqueWriter", Task: func(*TaskContext) {},
		Query: NewTaskComponentQuery([]ComponentAccess{{Component: id, Mode: Write}}, nil, nil, nil),
		Group: SimulateMid,
	}
	sharedWriter := TaskSchedulerElement{
		Name: "sharedWriter", Task: func(*TaskContext) {},
		Query: NewTaskComponentQuery(nil, []ComponentAccess{{Component: id, Mode: Write}}, nil, nil),
		Group: SimulateMid,
	}

	plan, err := Solve([]TaskSchedulerElement{uniqueWriter, sharedWriter})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 1)
	require.Len(t, plan.Waves[0].Tasks, 2)
}

// TestCrossGroupDependencySatisfiedByPipelineOrder covers spec.md §4.5 step
// 2: a task may depend on a task in an earlier group, which the fixed
// Initialize/Simulate/Finalize pipeline already guarantees has finished —
// it must not be treated as an unresolved indegree within its own group.
func TestCrossGroupDependencySatisfiedByPipelineOrder(t *testing.T) {
	early := TaskSchedulerElement{Name: "early", Task: func(*TaskContext) {}, Group: InitializeLate}
	late := TaskSchedulerElement{Name: "late", Task: func(*TaskContext) {}, Dependencies: []string{"early"}, Group: SimulateMid}

	plan, err := Solve([]TaskSchedulerElement{early, late})
	require.NoError(t, err)
	require.Len(t, plan.Waves, 2)
	require.Equal(t, "early", plan.Waves[0].Tasks[0].Name)
	require.Equal(t, "late", plan.Waves[1].Tasks[0].Name)
}

// TestInvertedCrossGroupDependencyIsFatal covers the other half: a task
// cannot depend on work a later group hasn't run yet.
func TestInvertedCrossGroupDependencyIsFatal(t *testing.T) {
	early := TaskSchedulerElement{Name: "early", Task: func(*TaskContext) {}, Dependencies: []string{"late"}, Group: InitializeLate}
	late := TaskSchedulerElement{Name: "late", Task: func(*TaskContext) {}, Group: SimulateMid}

	_, err := Solve([]TaskSchedulerElement{early, late})
	require.Error(t, err)
	var invErr *InvertedDependencyError
	require.ErrorAs(t, err, &invErr)
	require.Equal(t, "early", invErr.Task)
	require.Equal(t, "late", invErr.Dependency)
}

func TestTaskManagerExecutesWaves(t *testing.T) {
	var order []string
	a := TaskSchedulerElement{Name: "a", Task: func(*TaskContext) { order = append(order, "a") }, Query: access(1, Write), Group: SimulateMid}
	b := TaskSchedulerElement{Name: "b", Task: func(*TaskContext) { order = append(order, "b") }, Query: access(1, Read), Group: SimulateMid}

	s := New(2, nil)
	defer s.Shutdown()
	s.Register(a)
	s.Register(b)

	plan, err := s.Solve()
	require.NoError(t, err)
	require.Len(t, plan.Waves, 2)

	scratch := alloc.NewArena(64)
	err = s.Execute(nil, func() alloc.Allocator { return scratch })
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, order)
}
