package treeview

// TreeNode is the handle the executor holds on a task's node; it forwards
// everything to the embedded Node.
type TreeNode struct {
	*Node
}

// NewTreeNode creates a new tree node.
func NewTreeNode(name string) *TreeNode {
	return &TreeNode{
		Node: NewNode(name),
	}
}
