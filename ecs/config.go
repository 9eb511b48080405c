package ecs

import "github.com/TheBitDrifter/table"

// tableEventsConfig holds the table.TableEvents callbacks an EntityManager
// installs on every archetype base it creates. This replaces
// TheBitDrifter-warehouse's package-level var Config singleton: per spec.md's
// note against shared mutable globals, event callbacks are now a field
// carried on the owning EntityManager rather than process-wide state, so two
// EntityManagers (e.g. a sandbox's Scene and Runtime managers) can register
// independent callbacks.
type tableEventsConfig struct {
	tableEvents table.TableEvents
}

// SetTableEvents configures the table event callbacks this manager installs
// on archetype bases it creates from this point on.
func (mgr *EntityManager) SetTableEvents(te table.TableEvents) {
	mgr.config.tableEvents = te
}
