package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"

	"github.com/titpetric/xpipe/eventlog"
	"github.com/titpetric/xpipe/exec"
	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/treeview"
)

// Run provides the cli.Command that executes pipeline tasks.
func Run() *cli.Command {
	opts := NewOptions()

	return &cli.Command{
		Name:    "run",
		Title:   "Run pipeline tasks",
		Default: true,
		Bind: func(fs *pflag.FlagSet) {
			opts.BindRun(fs)
		},
		Run: func(ctx context.Context, args []string) error {
			return runRun(ctx, opts, args)
		},
	}
}

// resolveForce reduces the --force value and its -T/-A/-S shorthands to a
// single model.ForceMode, rejecting combinations.
func resolveForce(opts *Options) (model.ForceMode, error) {
	set := 0
	force := model.ForceNone

	if opts.Force != "" {
		set++
		switch strings.ToUpper(opts.Force) {
		case "NONE":
			force = model.ForceNone
		case "TOP":
			force = model.ForceTop
		case "ALL":
			force = model.ForceAll
		case "SOLO":
			force = model.ForceSolo
		default:
			return force, fmt.Errorf("unknown force mode: %s", opts.Force)
		}
	}
	if opts.ForceTop {
		set++
		force = model.ForceTop
	}
	if opts.ForceAll {
		set++
		force = model.ForceAll
	}
	if opts.ForceSolo {
		set++
		force = model.ForceSolo
	}
	if set > 1 {
		return force, fmt.Errorf("force flags are mutually exclusive")
	}
	return force, nil
}

func runRun(ctx context.Context, opts *Options, args []string) error {
	if err := setLogLevel(opts.LogLevel); err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: xpipe run [-f NONE|TOP|ALL|SOLO] [-T|-A|-S] <pipeline-file> [task]")
	}
	file := args[0]

	force, err := resolveForce(opts)
	if err != nil {
		return err
	}

	var taskName string
	if len(args) > 1 {
		taskName = args[1]
	}
	if force == model.ForceSolo && taskName == "" {
		return fmt.Errorf("force mode SOLO requires a named task")
	}

	tc := newToolchain()
	reg, err := tc.newRegistry(opts.Kernels)
	if err != nil {
		return err
	}

	p, err := tc.Resolver.Get(file)
	if err != nil {
		return err
	}

	logger := eventlog.NewLogger(opts.LogFile, p.Name, file, currentLevel <= levelDebug)

	ex := exec.New(reg, tc.Shell)
	ex.Logger = logger

	tree, nodes := treeview.BuildExecutionTree(p)
	ex.Nodes = nodes

	renderer := newLiveRenderer()
	live := renderer.Active() && !opts.FinalOnly

	done := make(chan struct{})
	if live {
		renderer.Start()
		go func() {
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					renderer.Render(tree, true)
				}
			}
		}()
	}

	start := time.Now()
	var ran []*model.Task
	var runErr error
	if taskName != "" {
		var t *model.Task
		t, runErr = findTask(p, taskName)
		if runErr == nil {
			ran, runErr = ex.RunTask(ctx, t, force)
		}
	} else {
		ran, runErr = ex.RunPipeline(ctx, p, force)
	}

	close(done)
	if live {
		renderer.Stop()
		renderer.Render(tree, false)
	} else {
		fmt.Print(treeview.NewRenderer().RenderStatic(tree.Node))
	}

	if err := writeRunLog(logger, tree, ran, time.Since(start), runErr); err != nil {
		logWarnf("writing run log: %v", err)
	}

	if runErr != nil {
		return runErr
	}
	if len(ran) == 0 {
		logInfof("all tasks up to date, nothing ran")
	} else {
		logInfof("%d task(s) ran", len(ran))
	}
	return nil
}

// writeRunLog converts the final execution tree into the event log's state
// shape and persists it alongside the accumulated events.
func writeRunLog(logger *eventlog.Logger, tree *treeview.ExecutionTree, ran []*model.Task, elapsed time.Duration, runErr error) error {
	if logger == nil {
		return nil
	}

	result := eventlog.ResultPass
	failed := 0
	if runErr != nil {
		result = eventlog.ResultFail
		failed = 1
	}

	stats := eventlog.CaptureRuntimeStats()
	summary := &eventlog.RunSummary{
		Duration:    elapsed.Seconds(),
		TotalSteps:  len(ran) + failed,
		PassedSteps: len(ran),
		FailedSteps: failed,
		Result:      result,
		MemoryAlloc: stats.MemoryAlloc,
		Goroutines:  stats.Goroutines,
	}
	return logger.Write(stateFromNode(tree.Node), summary)
}

func stateFromNode(n *treeview.Node) *eventlog.StateNode {
	state := &eventlog.StateNode{
		Name:      n.Name,
		ID:        n.ID,
		Status:    n.Status.Label(),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		Start:     n.StartOffset,
		Duration:  n.Duration,
	}
	for _, child := range n.Children {
		state.Children = append(state.Children, stateFromNode(child))
	}
	return state
}
