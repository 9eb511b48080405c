// Package world bundles the pieces a running simulation needs: an entity
// manager, the task scheduler and its worker pool, a system-wide settings
// table, and a per-frame input snapshot (spec.md §2, C9). Grounded on
// TheBitDrifter-warehouse's top-level engine wiring, generalised from one
// fixed Ebitengine game loop into a reusable bundle any host loop can
// drive a tick at a time.
package world

import (
	"fmt"

	"github.com/TheBitDrifter/table"
	"github.com/graniteforge/ecsengine/alloc"
	"github.com/graniteforge/ecsengine/ecs"
	"github.com/graniteforge/ecsengine/log"
	"github.com/graniteforge/ecsengine/scheduler"
)

// State distinguishes a freshly constructed World (resources owned, worker
// threads started, no entities yet) from one that has started creating
// entities and running ticks (spec.md §2: "preinitialised" vs "live").
type State int

const (
	Preinitialized State = iota
	Live
)

func (s State) String() string {
	if s == Live {
		return "Live"
	}
	return "Preinitialized"
}

// World is the C9 bundle.
type World struct {
	log       log.Logger
	state     State
	manager   *ecs.EntityManager
	scheduler *scheduler.Scheduler
	settings  *SettingsTable
	input     FrameInput

	scratchClasses []int
}

// SettingsTable is a group of named configuration values a module contributes
// to the world's shared settings table (spec.md §3's "system-wide settings
// table").
type SettingsTable struct {
	groups map[string]map[string]any
}

// NewSettingsTable creates an empty settings table.
func NewSettingsTable() *SettingsTable {
	return &SettingsTable{groups: make(map[string]map[string]any)}
}

// Set stores value under group/key, creating the group if needed.
func (t *SettingsTable) Set(group, key string, value any) {
	g, ok := t.groups[group]
	if !ok {
		g = make(map[string]any)
		t.groups[group] = g
	}
	g[key] = value
}

// Get looks up group/key.
func (t *SettingsTable) Get(group, key string) (any, bool) {
	g, ok := t.groups[group]
	if !ok {
		return nil, false
	}
	v, ok := g[key]
	return v, ok
}

// ClearGroup drops every key belonging to group, for module unload.
func (t *SettingsTable) ClearGroup(group string) {
	delete(t.groups, group)
}

// New constructs a Preinitialized World: the scheduler's worker pool is
// already running, but schema is the entity manager's only content so far.
func New(schema table.Schema, workers int, logger log.Logger) *World {
	if logger == nil {
		logger = log.Nop()
	}
	return &World{
		log:            logger,
		state:          Preinitialized,
		manager:        ecs.Factory.NewEntityManager(schema),
		scheduler:      scheduler.New(workers, logger.WithField("component", "scheduler")),
		settings:       NewSettingsTable(),
		scratchClasses: []int{64, 256, 4096, 64 * 1024},
	}
}

// Entities returns the world's entity manager.
func (w *World) Entities() *ecs.EntityManager { return w.manager }

// Scheduler returns the world's task scheduler.
func (w *World) Scheduler() *scheduler.Scheduler { return w.scheduler }

// Settings returns the world's system-wide settings table.
func (w *World) Settings() *SettingsTable { return w.settings }

// State reports whether the world has started ticking yet.
func (w *World) State() State { return w.state }

// Input returns the most recently set per-frame input snapshot.
func (w *World) Input() FrameInput { return w.input }

// SetInput replaces the world's current frame input snapshot; a host loop
// calls this once per frame before Tick.
func (w *World) SetInput(in FrameInput) { w.input = in }

// Tick runs one frame: solves the scheduler's plan if none has been solved
// yet, then
// executes every wave in order, handing each spawned task a fresh scratch
// allocator. Moves the world from Preinitialized to Live on its first call.
//
// Each task gets its own MultiPool sized by scratchClasses rather than a
// single raw arena: most per-task scratch requests are small and
// short-lived (component staging buffers, query result slices), so serving
// them from size-classed pools avoids the arena falling back to a fresh
// backing allocation for every odd-sized request.
func (w *World) Tick() error {
	w.state = Live
	if err := w.scheduler.Execute(w, func() alloc.Allocator { return alloc.NewMultiPool(w.scratchClasses) }); err != nil {
		return fmt.Errorf("world tick: %w", err)
	}
	return nil
}

// Shutdown stops the world's scheduler worker pool.
func (w *World) Shutdown() {
	w.scheduler.Shutdown()
}
