package main

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/titpetric/xpipe/spinner"
	"github.com/titpetric/xpipe/treeview"
)

// liveRenderer redraws the execution tree in place with ANSI cursor
// control, plus a spinner footer while the run is still going. Rendering
// is suppressed entirely when stdout is not a TTY, so piped output only
// ever sees the final static tree.
type liveRenderer struct {
	lastLineCount int
	mu            sync.Mutex
	isTerminal    bool
	spinner       *spinner.Spinner
}

func newLiveRenderer() *liveRenderer {
	return &liveRenderer{
		isTerminal: term.IsTerminal(int(os.Stdout.Fd())),
		spinner:    spinner.New(),
	}
}

// Active reports whether live redrawing will happen at all.
func (tr *liveRenderer) Active() bool {
	return tr.isTerminal
}

func (tr *liveRenderer) Start() {
	tr.spinner.Start()
}

func (tr *liveRenderer) Stop() {
	tr.spinner.Stop()
}

// Render outputs the tree, replacing the previously drawn frame. The
// running argument toggles the trailing spinner line.
func (tr *liveRenderer) Render(tree *treeview.ExecutionTree, running bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if !tr.isTerminal {
		return
	}

	if tr.lastLineCount > 0 {
		fmt.Printf("\033[%dA\033[J", tr.lastLineCount)
	}

	output := tree.RenderTree()
	if running {
		output += tr.spinner.String() + "\n"
	}
	fmt.Print(output)

	tr.lastLineCount = strings.Count(output, "\n")
}
