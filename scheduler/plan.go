package scheduler

import "sort"

// Wave is one barrier's worth of tasks: every task in a Wave may run
// concurrently because none of them conflicts (spec.md §4.5) with any
// other, and none depends on any other.
type Wave struct {
	Group TaskGroup
	Tasks []*TaskSchedulerElement
}

// Plan is the ordered sequence of waves Solve produces. Waves execute in
// order; within a wave, tasks may run in any order or concurrently.
type Plan struct {
	Waves []Wave
}

type taskNode struct {
	elem     *TaskSchedulerElement
	order    int
	indeg    int
	outEdges []*taskNode
}

func dependsOn(n *taskNode, name string) bool {
	for _, d := range n.elem.Dependencies {
		if d == name {
			return true
		}
	}
	return false
}

// Solve resolves elements into a Plan. It bucketizes tasks by group,
// builds dependency edges (erroring on an unknown dependency name), adds
// conflict edges between same-group tasks whose queries conflict (skipping
// pairs already ordered by an explicit dependency, and breaking ties by
// registration order so the result is deterministic and, per spec.md §8 S3,
// symmetric under reversed registration order up to which task ends up
// first), then layers each group into waves with Kahn's algorithm.
func Solve(elements []TaskSchedulerElement) (*Plan, error) {
	nodes := make(map[string]*taskNode, len(elements))
	groups := make([][]*taskNode, numTaskGroups)

	for i := range elements {
		el := &elements[i]
		if _, dup := nodes[el.Name]; dup {
			return nil, &DuplicateTaskError{Name: el.Name}
		}
		n := &taskNode{elem: el, order: i}
		nodes[el.Name] = n
		groups[el.Group] = append(groups[el.Group], n)
	}

	for _, n := range nodes {
		for _, dep := range n.elem.Dependencies {
			d, ok := nodes[dep]
			if !ok {
				return nil, &UnknownDependencyError{Task: n.elem.Name, Dependency: dep}
			}
			if d.elem.Group > n.elem.Group {
				return nil, &InvertedDependencyError{
					Task: n.elem.Name, TaskGroup: n.elem.Group,
					Dependency: dep, DependencyGroup: d.elem.Group,
				}
			}
			if d.elem.Group < n.elem.Group {
				// Satisfied by the fixed group pipeline order alone: every
				// task in d's group finishes before n's group starts, so no
				// graph edge (and no indegree contribution) is needed here.
				continue
			}
			d.outEdges = append(d.outEdges, n)
			n.indeg++
		}
	}

	for _, grp := range groups {
		for i := 0; i < len(grp); i++ {
			for j := i + 1; j < len(grp); j++ {
				a, b := grp[i], grp[j]
				if dependsOn(a, b.elem.Name) || dependsOn(b, a.elem.Name) {
					continue
				}
				if a.elem.CommitPhaseOnly || b.elem.CommitPhaseOnly {
					addEdge(a, b)
					continue
				}
				if conflict(a.elem.Query, b.elem.Query) {
					addEdge(a, b)
				}
			}
		}
	}

	var plan Plan
	for gi, grp := range groups {
		if len(grp) == 0 {
			continue
		}
		waves, err := layerGroup(TaskGroup(gi), grp)
		if err != nil {
			return nil, err
		}
		plan.Waves = append(plan.Waves, waves...)
	}
	return &plan, nil
}

// addEdge orders the pair by registration order so the produced graph (and
// therefore the resulting wave assignment) does not depend on slice
// iteration order.
func addEdge(a, b *taskNode) {
	first, second := a, b
	if b.order < a.order {
		first, second = b, a
	}
	first.outEdges = append(first.outEdges, second)
	second.indeg++
}

func layerGroup(group TaskGroup, nodes []*taskNode) ([]Wave, error) {
	indeg := make(map[*taskNode]int, len(nodes))
	done := make(map[*taskNode]bool, len(nodes))
	for _, n := range nodes {
		indeg[n] = n.indeg
	}

	var waves []Wave
	for len(done) < len(nodes) {
		var ready []*taskNode
		for _, n := range nodes {
			if !done[n] && indeg[n] == 0 {
				ready = append(ready, n)
			}
		}
		if len(ready) == 0 {
			var stuck []string
			for _, n := range nodes {
				if !done[n] {
					stuck = append(stuck, n.elem.Name)
				}
			}
			sort.Strings(stuck)
			return nil, &SchedulingCycleError{Group: group, Tasks: stuck}
		}

		sort.Slice(ready, func(i, j int) bool { return ready[i].order < ready[j].order })

		wave := Wave{Group: group}
		for _, n := range ready {
			wave.Tasks = append(wave.Tasks, n.elem)
			done[n] = true
		}
		for _, n := range ready {
			for _, succ := range n.outEdges {
				indeg[succ]--
			}
		}
		waves = append(waves, wave)
	}
	return waves, nil
}
