package module

import (
	"fmt"

	"github.com/graniteforge/ecsengine/ecs"
	"github.com/graniteforge/ecsengine/scheduler"
)

// Binding is the record a Bridge keeps for one loaded Module: the
// component ids it was assigned (so Unload knows what to purge) and the
// task names it registered (so Unload knows what to unregister from the
// scheduler).
type Binding struct {
	Module        Module
	ComponentIDs  []ecs.ComponentID
	TaskNames     []string
	DebugTaskName map[string]bool
}

// Bridge imports modules into a registry/scheduler pair and tracks enough
// state to cleanly unload them later (spec.md §4.6 "live removal of a
// module clears every component it owned... before the binary is
// unloaded").
type Bridge struct {
	registry  *ecs.ComponentRegistry
	scheduler *scheduler.Scheduler
	bindings  map[string]*Binding
	limits    Limits
}

// NewBridge creates a Bridge that registers components into reg and tasks
// into sched.
func NewBridge(reg *ecs.ComponentRegistry, sched *scheduler.Scheduler, limits Limits) *Bridge {
	return &Bridge{registry: reg, scheduler: sched, bindings: make(map[string]*Binding), limits: limits}
}

// Load registers every component and task m publishes, returning the
// Binding tracking what was registered for a later Unload.
func (b *Bridge) Load(m Module) (*Binding, error) {
	if _, exists := b.bindings[m.Name]; exists {
		return nil, fmt.Errorf("module %q already loaded", m.Name)
	}
	if len(m.Components) > b.limits.MaxComponents {
		return nil, fmt.Errorf("module %q publishes %d components, limit is %d", m.Name, len(m.Components), b.limits.MaxComponents)
	}
	if len(m.Tasks)+len(m.DebugTasks) > b.limits.MaxTasks {
		return nil, fmt.Errorf("module %q publishes %d tasks, limit is %d", m.Name, len(m.Tasks)+len(m.DebugTasks), b.limits.MaxTasks)
	}

	binding := &Binding{Module: m, DebugTaskName: make(map[string]bool)}
	for _, cd := range m.Components {
		id := cd.Register(b.registry)
		binding.ComponentIDs = append(binding.ComponentIDs, id)
	}
	for _, task := range m.Tasks {
		b.scheduler.Register(task)
		binding.TaskNames = append(binding.TaskNames, task.Name)
	}
	for _, dt := range m.DebugTasks {
		if dt.EnabledDefault {
			b.scheduler.Register(dt.Element)
			binding.TaskNames = append(binding.TaskNames, dt.Element.Name)
		}
		binding.DebugTaskName[dt.Element.Name] = dt.EnabledDefault
	}

	b.bindings[m.Name] = binding
	return binding, nil
}

// Unload unregisters every task name belonging to the module. It does not
// itself touch any entity manager: sandbox.Sandbox.UnloadModule calls this
// first to obtain the returned Binding, then strips the module's components
// from its scene and runtime managers.
func (b *Bridge) Unload(name string) (*Binding, error) {
	binding, ok := b.bindings[name]
	if !ok {
		return nil, fmt.Errorf("module %q not loaded", name)
	}
	b.scheduler.Unregister(binding.TaskNames...)
	delete(b.bindings, name)
	return binding, nil
}

// Binding returns the tracked Binding for a loaded module.
func (b *Bridge) Binding(name string) (*Binding, bool) {
	bd, ok := b.bindings[name]
	return bd, ok
}

// Loaded lists every currently loaded module's name.
func (b *Bridge) Loaded() []string {
	names := make([]string, 0, len(b.bindings))
	for name := range b.bindings {
		names = append(names, name)
	}
	return names
}
