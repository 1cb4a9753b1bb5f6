package treeview

import (
	"sync"
	"time"

	colors "github.com/titpetric/xpipe/ansicolor"
)

// Node represents one task in the execution tree, or the pipeline itself
// at the root.
type Node struct {
	Name         string
	ID           string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
	StartOffset  float64 // Seconds offset from run start
	Duration     float64 // Duration in seconds
	Children     []*Node
	Dependencies []string
	mu           sync.Mutex
}

// NewNode creates a new tree node.
func NewNode(name string) *Node {
	now := time.Now()
	return &Node{
		Name:         name,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
		Children:     make([]*Node, 0),
		Dependencies: make([]string, 0),
	}
}

// StatusColor will return the status indicator for the node.
// The indicator contains ANSI color sequences.
func (n *Node) StatusColor() string {
	if status := n.Status.String(); status != "" {
		return status
	}
	return colors.Green("●")
}

func (n *Node) Label() string {
	name := n.Name

	switch n.Status {
	case StatusRunning:
		if n.HasChildren() {
			return colors.BrightOrange(name)
		}
		return colors.White(name)
	case StatusPassed:
		return colors.BrightWhite(name)
	case StatusFailed:
		return colors.BrightRed(name)
	case StatusSkipped:
		return colors.BrightYellow(name)
	default:
		if n.HasChildren() || len(n.Dependencies) > 0 {
			return colors.BrightOrange(name)
		}
	}
	return colors.White(name)
}

// SetStatus updates a node's status thread-safely.
func (n *Node) SetStatus(status Status) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Status = status
	n.UpdatedAt = time.Now()
}

// SetStartOffset sets the start offset from run start.
func (n *Node) SetStartOffset(offset float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.StartOffset = offset
}

// SetDuration sets the duration in seconds.
func (n *Node) SetDuration(duration float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Duration = duration
	n.UpdatedAt = time.Now()
}

// AddChild adds a child node.
func (n *Node) AddChild(child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Children = append(n.Children, child)
}

// HasChildren returns true or false if the node has children.
func (n *Node) HasChildren() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.Children) > 0
}

// GetChildren returns a copy of the children slice (thread-safe).
func (n *Node) GetChildren() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	children := make([]*Node, len(n.Children))
	copy(children, n.Children)
	return children
}
