package ecs

// EntityHierarchy is one parent→children map plus its inverse child→parent
// map (spec.md §4.4). An EntityManager may hold several independent
// hierarchies (e.g. a transform hierarchy and a UI-focus hierarchy) created
// through EntityManager.NewHierarchy.
type EntityHierarchy struct {
	parent   map[Entity]Entity
	children map[Entity][]Entity
}

func newEntityHierarchy() *EntityHierarchy {
	return &EntityHierarchy{
		parent:   make(map[Entity]Entity),
		children: make(map[Entity][]Entity),
	}
}

// SetParent reparents child under parent, detaching any previous parent
// first. Cycles are rejected by walking parent's own ancestor chain before
// committing, per spec.md §4.4.
func (h *EntityHierarchy) SetParent(child, parent Entity) error {
	for p := parent; ; {
		if p == child {
			return EntityRelationError{Child: child, Parent: parent}
		}
		next, ok := h.parent[p]
		if !ok {
			break
		}
		p = next
	}
	if old, ok := h.parent[child]; ok {
		h.detachChild(old, child)
	}
	h.parent[child] = parent
	h.children[parent] = append(h.children[parent], child)
	return nil
}

func (h *EntityHierarchy) detachChild(parent, child Entity) {
	kids := h.children[parent]
	for i, k := range kids {
		if k == child {
			h.children[parent] = append(kids[:i], kids[i+1:]...)
			return
		}
	}
}

// RemoveFromHierarchy detaches e from its parent (if any) and from every one
// of its own children, leaving the children parentless.
func (h *EntityHierarchy) RemoveFromHierarchy(e Entity) {
	if p, ok := h.parent[e]; ok {
		h.detachChild(p, e)
		delete(h.parent, e)
	}
	for _, child := range h.children[e] {
		delete(h.parent, child)
	}
	delete(h.children, e)
}

// Parent returns e's parent, if any.
func (h *EntityHierarchy) Parent(e Entity) (Entity, bool) {
	p, ok := h.parent[e]
	return p, ok
}

// Children returns e's direct children. Callers must not mutate the
// returned slice.
func (h *EntityHierarchy) Children(e Entity) []Entity { return h.children[e] }
