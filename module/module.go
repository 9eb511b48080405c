// Package module defines the contract a dynamically loaded module publishes
// to the engine (spec.md §6's "Module contract (consumed)", C10), and the
// Bridge that imports a module's components and tasks into a world/sandbox.
// Grounded on totodo713-vamplite's internal/core/ecs/mod package — the
// restricted ModECSAPI/ModContext/ModConfig shape there is repurposed here
// from "sandbox a script's access to the ECS" to "describe what a hot-
// reloadable engine module publishes", which is the opposite direction of
// access control but the same registration/metadata vocabulary.
package module

import (
	"github.com/graniteforge/ecsengine/ecs"
	"github.com/graniteforge/ecsengine/scheduler"
)

// ComponentDescriptor is one component a module publishes, carrying enough
// of the reflection contract (spec.md §6) for the engine to register it.
type ComponentDescriptor struct {
	Name  string
	Kind  ecs.ComponentKind
	Funcs *ecs.ComponentFunctions

	// Register performs the actual ecs.Register[T] call against reg and
	// returns the assigned id. Kept as a closure (rather than requiring
	// the descriptor to carry a type parameter, which Go structs cannot)
	// so a module can publish an arbitrary set of concrete component
	// types through one uniform list.
	Register func(reg *ecs.ComponentRegistry) ecs.ComponentID

	// Build constructs a runtime component value from an editor-facing
	// "link" component when the two differ (spec.md §6's optional
	// build-function, e.g. asset handle -> loaded resource pointer). Nil
	// if the runtime and editor representations are identical.
	Build func(link any) any
}

// DebugTask is a task-scheduler element published for editor-only
// visualisation, with a default enablement flag a sandbox may override
// per spec.md §4.6.
type DebugTask struct {
	Element        scheduler.TaskSchedulerElement
	EnabledDefault bool
}

// Limits bounds what a single module may register, preventing one
// misbehaving module from starving the rest of a sandbox's schedule.
type Limits struct {
	MaxComponents int
	MaxTasks      int
}

// DefaultLimits mirrors totodo713-vamplite's mod.DefaultModConfig scale,
// generous enough for a real gameplay module rather than a sandboxed
// script.
func DefaultLimits() Limits {
	return Limits{MaxComponents: 256, MaxTasks: 512}
}

// Module is what a dynamically loaded library publishes to the engine.
type Module struct {
	Name       string
	Components []ComponentDescriptor
	Tasks      []scheduler.TaskSchedulerElement
	DebugTasks []DebugTask
}
