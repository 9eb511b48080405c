package scheduler

import (
	"github.com/graniteforge/ecsengine/alloc"
	"github.com/graniteforge/ecsengine/log"
)

// Scheduler owns a task list, the wave plan solved from it, and the worker
// pool waves execute on. A World holds exactly one Scheduler for its
// lifetime. Register and Unregister (called as modules load and unload)
// change the task list; the wave plan changes only when Solve is called,
// and Execute solves on its own only when no plan exists yet.
type Scheduler struct {
	log     log.Logger
	manager *TaskManager

	elements []TaskSchedulerElement
	plan     *Plan
}

// New creates a Scheduler with workers goroutines in its pool. logger may
// be nil, in which case scheduling diagnostics are discarded.
func New(workers int, logger log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Nop()
	}
	return &Scheduler{
		log:     logger,
		manager: NewTaskManager(workers),
	}
}

// Register appends el to the scheduler's task list. The new task only
// takes effect once Solve is called again.
func (s *Scheduler) Register(el TaskSchedulerElement) {
	s.elements = append(s.elements, el)
}

// Unregister removes every task whose name is in names, for module unload.
func (s *Scheduler) Unregister(names ...string) {
	remove := make(map[string]bool, len(names))
	for _, n := range names {
		remove[n] = true
	}
	kept := s.elements[:0]
	for _, el := range s.elements {
		if !remove[el.Name] {
			kept = append(kept, el)
		}
	}
	s.elements = kept
}

// Solve resolves the current task list into a wave Plan, storing it as the
// scheduler's active plan on success. A scheduling error (unknown
// dependency, conflict cycle) leaves the previous plan untouched.
func (s *Scheduler) Solve() (*Plan, error) {
	plan, err := Solve(s.elements)
	if err != nil {
		s.log.Errorf("scheduler: %v", err)
		return nil, err
	}
	s.plan = plan
	s.log.Debugf("scheduler: solved %d tasks into %d waves", len(s.elements), len(plan.Waves))
	return plan, nil
}

// Plan returns the most recently solved Plan, or nil if Solve has never
// succeeded.
func (s *Scheduler) Plan() *Plan {
	return s.plan
}

// Execute runs the active plan against world, using scratch to mint each
// spawned task's per-task allocator.
func (s *Scheduler) Execute(world WorldContext, scratch func() alloc.Allocator) error {
	if s.plan == nil {
		if _, err := s.Solve(); err != nil {
			return err
		}
	}
	return s.manager.Execute(s.plan, world, scratch)
}

// Shutdown stops the scheduler's worker pool, waiting for any in-flight
// wave to finish first.
func (s *Scheduler) Shutdown() {
	s.manager.TerminateThreads()
}
