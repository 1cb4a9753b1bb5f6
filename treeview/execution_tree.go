package treeview

import (
	"github.com/titpetric/xpipe/model"
)

// ExecutionTree holds the entire tree for one run: the pipeline as its
// root, and one node per visited task. The tree-level mutex guards the
// root's child list; individual node state uses each Node's own lock.
type ExecutionTree struct {
	*TreeNode
}

// NewExecutionTree creates a new execution tree rooted at pipelineName.
func NewExecutionTree(pipelineName string) *ExecutionTree {
	return &ExecutionTree{
		TreeNode: NewTreeNode(pipelineName),
	}
}

// AddTask adds a task node to the tree, its status seeded from whether the
// task is already marked (done) or not (pending).
func (et *ExecutionTree) AddTask(t *model.Task) *TreeNode {
	status := StatusPending
	if t.IsMarked() {
		status = StatusPassed
	}

	deps := make([]string, len(t.Dependencies))
	for i, d := range t.Dependencies {
		deps[i] = d.QualifiedName()
	}

	node := NewTreeNode(t.QualifiedName())
	node.Status = status
	node.Dependencies = deps

	et.AddChild(node.Node)
	return node
}

// RenderTree renders the entire tree to a string (live rendering).
func (et *ExecutionTree) RenderTree() string {
	renderer := NewRenderer()
	return renderer.Render(et.Node)
}

// CountLines returns the number of lines the tree will render.
func (et *ExecutionTree) CountLines() int {
	return CountLines(et.Node)
}
