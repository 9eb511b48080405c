package scheduler

import (
	"fmt"
	"sync"

	"github.com/graniteforge/ecsengine/alloc"
)

// TaskManager is the fixed-size worker pool every wave dispatches onto.
// The scheduler itself never spawns goroutines per tick; one TaskManager is
// shared across a World's whole lifetime (spec.md §5: "workers are a fixed
// pool sized at startup, not spawned per frame").
type TaskManager struct {
	jobs chan func()
	wg   sync.WaitGroup
	stop chan struct{}
	once sync.Once
}

// NewTaskManager starts workers goroutines pulling from a shared job queue.
func NewTaskManager(workers int) *TaskManager {
	if workers < 1 {
		workers = 1
	}
	tm := &TaskManager{
		jobs: make(chan func()),
		stop: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go tm.loop()
	}
	return tm
}

func (tm *TaskManager) loop() {
	for {
		select {
		case job, ok := <-tm.jobs:
			if !ok {
				return
			}
			job()
		case <-tm.stop:
			return
		}
	}
}

// RunWave executes every task in w concurrently via the pool and blocks
// until all of them (including any dynamically added via
// TaskContext.AddTask) complete — the barrier spec.md §5 requires between
// waves. scratch is called once per spawned task to hand it a fresh
// per-task allocator.
func (tm *TaskManager) RunWave(w Wave, world WorldContext, scratch func() alloc.Allocator) []error {
	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	var spawn func(fn TaskFunc)
	spawn = func(fn TaskFunc) {
		wg.Add(1)
		tm.wg.Add(1)
		tm.jobs <- func() {
			defer wg.Done()
			defer tm.wg.Done()
			ctx := &TaskContext{World: world, Scratch: scratch(), addTask: spawn}
			if err := runTaskFn(fn, ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}
	}

	for _, task := range w.Tasks {
		spawn(task.Task)
	}
	wg.Wait()
	return errs
}

func runTaskFn(fn TaskFunc, ctx *TaskContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	fn(ctx)
	return nil
}

// Execute runs every wave of plan in order, returning the first error
// encountered. A wave's tasks all complete (successfully or not) before the
// next wave starts.
func (tm *TaskManager) Execute(plan *Plan, world WorldContext, scratch func() alloc.Allocator) error {
	for _, wave := range plan.Waves {
		for _, err := range tm.RunWave(wave, world, scratch) {
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// TerminateThreads waits for any in-flight work to drain and stops every
// worker goroutine, matching spec.md §5's cooperative terminate_threads
// shutdown (no forced cancellation of a running task).
func (tm *TaskManager) TerminateThreads() {
	tm.wg.Wait()
	tm.once.Do(func() { close(tm.stop) })
}
