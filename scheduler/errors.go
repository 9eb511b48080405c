package scheduler

import (
	"fmt"
	"strings"
)

// UnknownDependencyError is fatal at Solve time: a task named a dependency
// that no registered task carries (spec.md §4.5, "unknown dependency name
// is a fatal scheduling error naming the offending system").
type UnknownDependencyError struct {
	Task       string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("task %q declares unknown dependency %q", e.Task, e.Dependency)
}

// DuplicateTaskError is fatal when two registered tasks share a name.
type DuplicateTaskError struct{ Name string }

func (e *DuplicateTaskError) Error() string {
	return fmt.Sprintf("task %q registered more than once", e.Name)
}

// InvertedDependencyError is fatal when a task names a dependency scheduled
// in a later task group: the group pipeline runs Initialize, Simulate,
// Finalize (each Early/Mid/Late) strictly in order, so a task can never
// legally depend on work a later group hasn't performed yet.
type InvertedDependencyError struct {
	Task            string
	TaskGroup       TaskGroup
	Dependency      string
	DependencyGroup TaskGroup
}

func (e *InvertedDependencyError) Error() string {
	return fmt.Sprintf("task %q (group %s) declares dependency %q which runs later (group %s)",
		e.Task, e.TaskGroup, e.Dependency, e.DependencyGroup)
}

// SchedulingCycleError is fatal when Kahn's algorithm cannot fully drain a
// task group: Tasks names every task still blocked, which together form (or
// are downstream of) the cycle.
type SchedulingCycleError struct {
	Group TaskGroup
	Tasks []string
}

func (e *SchedulingCycleError) Error() string {
	return fmt.Sprintf("scheduling conflict in group %s: cycle among tasks [%s]", e.Group, strings.Join(e.Tasks, ", "))
}
