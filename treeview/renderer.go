package treeview

import (
	"fmt"
	"strings"
	"sync"

	colors "github.com/titpetric/xpipe/ansicolor"
)

// DefaultMaxArgLen is the default maximum length for argument values before compaction.
const DefaultMaxArgLen = 25

// Renderer handles rendering of tree nodes to strings with proper formatting.
type Renderer struct {
	mu        sync.Mutex
	trimmer   *Trimmer
	maxArgLen int
}

// NewRenderer creates a new tree renderer.
func NewRenderer() *Renderer {
	return &Renderer{
		trimmer:   NewTrimmer(),
		maxArgLen: DefaultMaxArgLen,
	}
}

// trimLabel applies argument compaction and viewport trimming to a label.
func (r *Renderer) trimLabel(label string, prefixLen int) string {
	if r.trimmer == nil {
		return label
	}
	return r.trimmer.TrimLabel(label, r.maxArgLen, prefixLen)
}

// Render converts the tree to its live representation, refreshing the
// viewport width so in-place redraws track terminal resizes.
func (r *Renderer) Render(root *Node) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.trimmer != nil {
		r.trimmer.RefreshViewport()
	}
	return r.render(root, true)
}

// RenderStatic renders the tree once, without live-redraw concerns: no
// status dot on tasks that never started, durations on those that did.
func (r *Renderer) RenderStatic(root *Node) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.render(root, false)
}

func (r *Renderer) render(root *Node, live bool) string {
	output := colors.BrightWhite(root.Name) + "\n"

	children := root.GetChildren()
	for i, child := range children {
		isLast := i == len(children)-1
		output += r.renderNode(child, "", isLast, live)
	}
	return output
}

func (r *Renderer) renderNode(node *Node, prefix string, isLast bool, live bool) string {
	branch := "├─ "
	if isLast {
		branch = "└─ "
	}

	label := node.Label()

	if len(node.Dependencies) > 0 {
		depItems := make([]string, len(node.Dependencies))
		for j, dep := range node.Dependencies {
			depItems[j] = colors.BrightOrange(dep)
		}
		label += fmt.Sprintf(" (depends_on: %s)", strings.Join(depItems, ", "))
	}

	showStatus := live || node.Status != StatusPending
	if showStatus {
		label += " " + node.StatusColor()
	}
	if node.Duration > 0 {
		label += " " + colors.Gray(fmt.Sprintf("(%.1fs)", node.Duration))
	}

	prefixLen := colors.VisualLength(prefix + branch)
	label = r.trimLabel(label, prefixLen)

	output := prefix + branch + label + "\n"

	children := node.GetChildren()
	if len(children) > 0 {
		continuation := "│  "
		if isLast {
			continuation = "   "
		}
		for j, child := range children {
			output += r.renderNode(child, prefix+continuation, j == len(children)-1, live)
		}
	}

	return output
}

// CountLines returns the number of lines the tree will render.
func CountLines(root *Node) int {
	count := 1 // root line
	for _, child := range root.GetChildren() {
		count += countNodeLines(child)
	}
	return count
}

func countNodeLines(node *Node) int {
	count := 1 // this node
	for _, child := range node.GetChildren() {
		count += countNodeLines(child)
	}
	return count
}
