package treeview

import (
	"sort"

	"github.com/titpetric/xpipe/model"
)

// Roots returns the tasks in all that no other task directly depends on -
// the starting frontier for depth layering, and the tasks
// exec.Executor.RunPipeline starts its recursion from.
func Roots(all []*model.Task) []*model.Task {
	depended := map[*model.Task]bool{}
	for _, t := range all {
		for _, d := range t.Dependencies {
			depended[d] = true
		}
	}
	var out []*model.Task
	for _, t := range all {
		if !depended[t] {
			out = append(out, t)
		}
	}
	return out
}

// TaskDepths assigns each task a layer index by breadth-first expansion
// from the roots into their dependencies: roots sit at depth 0, and each
// step outward increases depth by one. A task reachable by more than one
// path ends up at whichever depth last overwrote it; the depth is an
// ordering aid, not a guarantee.
func TaskDepths(all []*model.Task) map[*model.Task]int {
	depths := map[*model.Task]int{}
	layer := Roots(all)
	for _, t := range layer {
		depths[t] = 0
	}

	depth := 0
	for len(layer) > 0 {
		depth++
		seen := map[*model.Task]bool{}
		var next []*model.Task
		for _, t := range layer {
			for _, d := range t.Dependencies {
				depths[d] = depth
				if !seen[d] {
					seen[d] = true
					next = append(next, d)
				}
			}
		}
		layer = next
	}
	return depths
}

// VisitationOrder orders all so every dependency appears before whatever
// depends on it: deepest-dependency tasks first, root tasks last. Ties
// break by qualified name for a deterministic listing.
func VisitationOrder(all []*model.Task) []*model.Task {
	depths := TaskDepths(all)
	out := make([]*model.Task, len(all))
	copy(out, all)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := depths[out[i]], depths[out[j]]
		if di != dj {
			return di > dj
		}
		return out[i].QualifiedName() < out[j].QualifiedName()
	})
	return out
}
