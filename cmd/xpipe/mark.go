package main

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"
)

// Mark provides the cli.Command that creates task mark files.
func Mark() *cli.Command {
	return markCommand("mark", "Create task mark files", true)
}

// Unmark provides the cli.Command that removes task mark files.
func Unmark() *cli.Command {
	return markCommand("unmark", "Remove task mark files", false)
}

func markCommand(name, title string, mark bool) *cli.Command {
	opts := NewOptions()

	return &cli.Command{
		Name:  name,
		Title: title,
		Bind: func(fs *pflag.FlagSet) {
			opts.BindMark(fs)
		},
		Run: func(ctx context.Context, args []string) error {
			return runMark(ctx, opts, args, name, mark)
		},
	}
}

// runMark implements mark and unmark: with task names it touches or
// removes the named tasks' mark files; without, it requires --force and
// operates on the whole pipeline, cascading into used pipelines when
// --recur is given.
func runMark(_ context.Context, opts *Options, args []string, name string, mark bool) error {
	if err := setLogLevel(opts.LogLevel); err != nil {
		return err
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: xpipe %s [-r] [-f] <pipeline-file> [task ...]", name)
	}

	tc := newToolchain()
	p, err := tc.Resolver.Get(args[0])
	if err != nil {
		return err
	}

	taskNames := args[1:]
	if len(taskNames) == 0 {
		if !opts.Bulk {
			return fmt.Errorf("refusing to %s every task of %s without --force", name, p.Name)
		}
		if mark {
			return p.MarkAllTasks(opts.Recur)
		}
		return p.UnmarkAllTasks(opts.Recur)
	}

	for _, taskName := range taskNames {
		t, err := findTask(p, taskName)
		if err != nil {
			return err
		}
		if mark {
			err = t.Mark()
		} else {
			err = t.Unmark()
		}
		if err != nil {
			return err
		}
	}
	return nil
}
