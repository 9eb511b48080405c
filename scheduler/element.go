package scheduler

import "github.com/graniteforge/ecsengine/alloc"

// TaskGroup is one of the nine fixed scheduling phases spec.md §4.5 defines:
// the three top-level stages (Initialize, Simulate, Finalize) each split
// into Early/Mid/Late sub-phases. Waves never cross a group boundary.
type TaskGroup int

const (
	InitializeEarly TaskGroup = iota
	InitializeMid
	InitializeLate
	SimulateEarly
	SimulateMid
	SimulateLate
	FinalizeEarly
	FinalizeMid
	FinalizeLate
	numTaskGroups
)

func (g TaskGroup) String() string {
	switch g {
	case InitializeEarly:
		return "InitializeEarly"
	case InitializeMid:
		return "InitializeMid"
	case InitializeLate:
		return "InitializeLate"
	case SimulateEarly:
		return "SimulateEarly"
	case SimulateMid:
		return "SimulateMid"
	case SimulateLate:
		return "SimulateLate"
	case FinalizeEarly:
		return "FinalizeEarly"
	case FinalizeMid:
		return "FinalizeMid"
	case FinalizeLate:
		return "FinalizeLate"
	default:
		return "TaskGroup(invalid)"
	}
}

// WorldContext is the narrow surface a task needs from its owning world.
// Defined here rather than imported from the world package to avoid an
// import cycle (world.World embeds a *Scheduler); world.World satisfies
// this trivially since the interface is empty by design — tasks assert to
// their own known concrete world type, mirroring how DangerosoDavo-ecs's
// task functions take a bare `any` world parameter.
type WorldContext interface{}

// TaskContext is passed to every running TaskFunc. Scratch is whatever the
// scratch function passed to Execute returns for this task (world.Tick
// creates a fresh MultiPool per task) (spec.md §5: "each task gets a
// thread-local scratch allocator it never shares"). AddTask lets a task fan
// out dynamic work that still participates in the current wave's barrier.
type TaskContext struct {
	World   WorldContext
	Scratch alloc.Allocator

	addTask func(TaskFunc)
}

// AddTask enqueues fn to run within the same wave as the calling task,
// joining the wave's completion barrier rather than deferring to the next
// one.
func (c *TaskContext) AddTask(fn TaskFunc) {
	c.addTask(fn)
}

// TaskFunc is one unit of scheduled work.
type TaskFunc func(ctx *TaskContext)

// TaskSchedulerElement is one registered task: its function, its declared
// component access, its named dependencies, and the group/phase it runs in
// (spec.md §4.5 / C8).
type TaskSchedulerElement struct {
	Name         string
	Task         TaskFunc
	Query        TaskComponentQuery
	Dependencies []string
	Group        TaskGroup
	BatchSize    int

	// CommitPhaseOnly marks a task as a structural-edit commit: the
	// scheduler places it in its own single-task wave within its group so
	// no other task observes a half-applied archetype migration.
	CommitPhaseOnly bool
}
