package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"

	"github.com/titpetric/xpipe/treeview"
)

// Tasks provides the cli.Command that lists a pipeline's tasks in
// visitation order, with each task's mark timestamp.
func Tasks() *cli.Command {
	opts := NewOptions()

	return &cli.Command{
		Name:  "tasks",
		Title: "List tasks in visitation order",
		Bind: func(fs *pflag.FlagSet) {
			opts.BindCommon(fs)
		},
		Run: func(ctx context.Context, args []string) error {
			return runTasks(ctx, opts, args)
		},
	}
}

func runTasks(_ context.Context, opts *Options, args []string) error {
	if err := setLogLevel(opts.LogLevel); err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: xpipe tasks <pipeline-file>")
	}

	tc := newToolchain()
	p, err := tc.Resolver.Get(args[0])
	if err != nil {
		return err
	}

	order := treeview.VisitationOrder(p.AllTasks())
	nameWidth := 0
	for _, t := range order {
		if l := len(t.QualifiedName()); l > nameWidth {
			nameWidth = l
		}
	}

	for _, t := range order {
		markTime := "--"
		if ts, ok := t.MarkTime(); ok {
			markTime = ts.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%-*s%s\n", nameWidth+4, t.QualifiedName(), markTime)
	}
	return nil
}
