// Package sandbox implements the editor-facing wrapper around a pair of
// entity managers (spec.md §4.6, C11): a "scene" manager holding the
// authoritative edited state and a "runtime" manager used while the
// simulation plays. Grounded on original_source/Editor/src/Editor/
// EditorSandbox.cpp's scene/runtime split and module-binding list, and on
// TheBitDrifter-warehouse's top-level wiring for how an entity manager is
// bundled with a scheduler into something a host loop drives.
package sandbox

import (
	"fmt"
	"sync/atomic"

	"github.com/TheBitDrifter/table"
	"github.com/google/uuid"
	"github.com/graniteforge/ecsengine/config"
	"github.com/graniteforge/ecsengine/ecs"
	"github.com/graniteforge/ecsengine/log"
	"github.com/graniteforge/ecsengine/module"
	"github.com/graniteforge/ecsengine/world"
)

// RunState is the sandbox's Scene/Running/Paused state machine (spec.md
// §4.6).
type RunState int

const (
	StateScene RunState = iota
	StateRunning
	StatePaused
)

func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	default:
		return "Scene"
	}
}

// CameraTransform is the saved viewport camera state spec.md §6's sandbox
// file persists per viewport.
type CameraTransform struct {
	X, Y, Zoom float64
}

// ModuleBinding is one entry of the sandbox's module list (spec.md §2/§4.6):
// which module, what configuration it's bound with, its settings file, and
// which of its debug-draw tasks are enabled in this sandbox.
type ModuleBinding struct {
	ModuleIndex       int
	Configuration     string
	SettingsName      string
	Settings          *config.Settings
	ReflectedSettings map[string]any
	EnabledDebugTasks []string
	Deactivated       bool
}

// Sandbox bundles a scene/runtime entity manager pair sharing one schema, a
// module bridge, a task scheduler-backed World, and the editor-facing state
// spec.md §4.6 lists: dirty flag, lock counter, run state, saved camera
// transforms.
type Sandbox struct {
	ID              uuid.UUID
	WorldDescriptor string

	log log.Logger

	schema  table.Schema
	scene   *ecs.EntityManager
	runtime *ecs.EntityManager

	bridge  *module.Bridge
	world   *world.World
	modules []ModuleBinding

	dirty bool
	lock  int32
	state RunState

	SceneCamera   CameraTransform
	RuntimeCamera CameraTransform
}

// New creates a sandbox in the Scene state. Its scene manager is a Snapshot
// of w's entity manager, so it shares w's component registry and starts
// with a copy of w's entities (none for a freshly created World).
func New(worldDescriptor string, schema table.Schema, bridge *module.Bridge, w *world.World, logger log.Logger) *Sandbox {
	if logger == nil {
		logger = log.Nop()
	}
	return &Sandbox{
		ID:              uuid.New(),
		WorldDescriptor: worldDescriptor,
		log:             logger,
		schema:          schema,
		scene:           w.Entities().Snapshot(),
		bridge:          bridge,
		world:           w,
		state:           StateScene,
	}
}

// Scene returns the authoritative, disk-serialised entity manager.
func (s *Sandbox) Scene() *ecs.EntityManager { return s.scene }

// Runtime returns the working-copy entity manager used while playing or
// paused. It is nil before the sandbox's first Play.
func (s *Sandbox) Runtime() *ecs.EntityManager { return s.runtime }

// State reports the sandbox's current run state.
func (s *Sandbox) State() RunState { return s.state }

// Dirty reports whether the scene has unsaved changes.
func (s *Sandbox) Dirty() bool { return s.dirty }

// MarkDirty flags the scene as having unsaved changes.
func (s *Sandbox) MarkDirty() { s.dirty = true }

// ClearDirty clears the dirty flag, typically right after a save.
func (s *Sandbox) ClearDirty() { s.dirty = false }

// Lock increments the sandbox's reference counter. Callers that start work
// which may outlive the sandbox (e.g. an async render submission) must
// Lock on entry and Unlock on exit (spec.md §5's "atomic counter with
// lock/unlock/wait_for_zero semantics").
func (s *Sandbox) Lock() { atomic.AddInt32(&s.lock, 1) }

// Unlock decrements the counter.
func (s *Sandbox) Unlock() { atomic.AddInt32(&s.lock, -1) }

// WaitForZero blocks the caller until the lock counter reaches zero. It
// busy-polls rather than using a condition variable since unlocks are rare
// and this is only ever called from teardown paths, matching the
// original's lightweight spin-wait.
func (s *Sandbox) WaitForZero() {
	for atomic.LoadInt32(&s.lock) != 0 {
	}
}

// AddModule appends a binding to the sandbox's module list and marks the
// sandbox dirty. It does not touch the scheduler, and Deactivated is not
// consulted here or by Play. The component/task registration itself happens
// through bridge.Load outside this package — AddModule only records the
// binding sandbox-side.
func (s *Sandbox) AddModule(binding ModuleBinding) {
	s.modules = append(s.modules, binding)
	s.dirty = true
}

// Modules returns the sandbox's module bindings.
func (s *Sandbox) Modules() []ModuleBinding { return s.modules }

// Play copies scene into runtime as a Snapshot, re-solves the scheduler's
// wave plan from whatever task list is currently registered, and
// transitions to Running. Tasks are registered against the scheduler by
// module.Bridge.Load, not by Play: Play does not walk the sandbox's module
// bindings, so a binding's Deactivated flag has no effect on the plan, and
// it does not bind module settings into the world's settings table.
func (s *Sandbox) Play() error {
	if s.state != StateScene {
		return fmt.Errorf("sandbox %s: Play only valid from Scene, currently %s", s.ID, s.state)
	}
	s.runtime = s.scene.Snapshot()

	if _, err := s.world.Scheduler().Solve(); err != nil {
		return fmt.Errorf("sandbox %s: Play: %w", s.ID, err)
	}
	s.state = StateRunning
	return nil
}

// Pause transitions Running -> Paused without touching the runtime manager.
func (s *Sandbox) Pause() error {
	if s.state != StateRunning {
		return fmt.Errorf("sandbox %s: Pause only valid from Running, currently %s", s.ID, s.state)
	}
	s.state = StatePaused
	return nil
}

// Resume transitions Paused -> Running.
func (s *Sandbox) Resume() error {
	if s.state != StatePaused {
		return fmt.Errorf("sandbox %s: Resume only valid from Paused, currently %s", s.ID, s.state)
	}
	s.state = StateRunning
	return nil
}

// Stop restores the runtime manager to the saved scene snapshot and
// transitions back to Scene (spec.md §8 scenario S5: "Stop... runtime
// manager reset to scene contents; subsequent Play produces identical
// pre-tick state").
func (s *Sandbox) Stop() error {
	if s.state == StateScene {
		return fmt.Errorf("sandbox %s: already in Scene state", s.ID)
	}
	if s.runtime != nil {
		s.runtime.RestoreFrom(s.scene)
	}
	s.state = StateScene
	return nil
}

// TickSettingsReload polls every module binding's settings file for an
// mtime advance and reloads it, invoking the module's default-
// initialisation path is left to the caller (spec.md §4.6: "a periodic lazy
// tick inspects on-disk timestamps of referenced settings files and
// reloads any that changed"). This is the poll fallback; config.Watcher
// covers the fsnotify-driven primary path.
func (s *Sandbox) TickSettingsReload() []error {
	var errs []error
	for i := range s.modules {
		b := &s.modules[i]
		if b.Settings == nil {
			continue
		}
		reloaded, err := b.Settings.ReloadIfChanged()
		if err != nil {
			errs = append(errs, fmt.Errorf("module %d settings: %w", b.ModuleIndex, err))
			continue
		}
		if reloaded {
			b.ReflectedSettings = b.Settings.Raw()
			s.log.Infof("sandbox %s: reloaded settings for module %d (%s)", s.ID, b.ModuleIndex, b.SettingsName)
		}
	}
	return errs
}
