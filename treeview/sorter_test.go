package treeview

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/titpetric/xpipe/model"
)

func task(name string, deps ...*model.Task) *model.Task {
	t := &model.Task{Name: name}
	for _, d := range deps {
		t.AddDependency(d)
	}
	return t
}

func TestVisitationOrderSingleChain(t *testing.T) {
	t1 := task("t1")
	t2 := task("t2", t1)
	t3 := task("t3", t2)

	order := VisitationOrder([]*model.Task{t1, t2, t3})
	require.Equal(t, []*model.Task{t1, t2, t3}, order)
}

func TestVisitationOrderIndependentRoots(t *testing.T) {
	a := task("a")
	b := task("b")

	order := VisitationOrder([]*model.Task{a, b})
	require.Equal(t, []*model.Task{a, b}, order)
}

func TestVisitationOrderDiamond(t *testing.T) {
	base := task("base")
	left := task("left", base)
	right := task("right", base)
	top := task("top", left, right)

	order := VisitationOrder([]*model.Task{base, left, right, top})
	require.Equal(t, base, order[0])
	require.Equal(t, top, order[len(order)-1])

	indexOf := func(want *model.Task) int {
		for i, t := range order {
			if t == want {
				return i
			}
		}
		return -1
	}
	require.Less(t, indexOf(base), indexOf(left))
	require.Less(t, indexOf(base), indexOf(right))
	require.Less(t, indexOf(left), indexOf(top))
	require.Less(t, indexOf(right), indexOf(top))
}

func TestTaskDepthsTargetHasZeroDepth(t *testing.T) {
	a := task("a")
	b := task("b", a)

	depths := TaskDepths([]*model.Task{a, b})
	require.Equal(t, 0, depths[b], "b is the root nothing depends on")
	require.Equal(t, 1, depths[a], "a is b's dependency, one layer deeper")
}
