package treeview

import "github.com/titpetric/xpipe/model"

// BuildFromPipeline renders the full dependency closure of p's own tasks
// (including tasks reached only through used pipelines) as a flat,
// depth-then-name ordered tree: the tree BuildExecutionTree builds, without
// its task-to-node index.
func BuildFromPipeline(p *model.Pipeline) *Node {
	tree, _ := BuildExecutionTree(p)
	return tree.Node
}

// BuildExecutionTree is BuildFromPipeline plus the task-to-node index the
// executor needs to reflect run progress (running/passed/failed) onto the
// live tree as each task completes.
func BuildExecutionTree(p *model.Pipeline) (*ExecutionTree, map[*model.Task]*TreeNode) {
	tree := NewExecutionTree(p.Name)
	tree.Node.Status = StatusPending

	nodes := make(map[*model.Task]*TreeNode, len(p.Tasks))
	for _, t := range VisitationOrder(p.AllTasks()) {
		nodes[t] = tree.AddTask(t)
	}
	return tree, nodes
}
