package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/titpetric/cli"

	"github.com/titpetric/xpipe/parse"
)

func main() {
	if err := start(); err != nil {
		renderError(err)
		os.Exit(1)
	}
}

func start() error {
	app := cli.NewApp("xpipe")
	app.AddCommand("run", "Run pipeline tasks", Run)
	app.AddCommand("tasks", "List tasks in visitation order", Tasks)
	app.AddCommand("mark", "Create task mark files", Mark)
	app.AddCommand("unmark", "Remove task mark files", Unmark)
	app.AddCommand("codeblock_info", "Describe registered code block runners", CodeblockInfo)
	app.AddCommand("shell", "Open an interactive shell in a task's context", Shell)

	app.DefaultCommand = "run"

	return app.Run()
}

// renderError is the single boundary where typed errors from the parser,
// expander, resolver and executor become user-facing output. Parse errors
// get the classic one-line form; everything else prints as-is.
func renderError(err error) {
	var parseErr *parse.Error
	if errors.As(err, &parseErr) {
		fmt.Fprintf(os.Stderr, "parsing error on line %d: %s\n", parseErr.Line, parseErr.Message)
		logDebugf("%s", parseErr.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
