package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"

	"github.com/titpetric/xpipe/expand"
	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/psexec"
)

// Shell provides the cli.Command that drops the user into an interactive
// shell carrying a task's working context: the pipeline's base variables
// with the task's export blocks applied, overlaid on the OS environment,
// with the pipeline directory as the working directory. Code blocks are
// not executed; this exists to poke at what a block would see.
func Shell() *cli.Command {
	opts := NewOptions()

	return &cli.Command{
		Name:  "shell",
		Title: "Open an interactive shell in a task's context",
		Bind: func(fs *pflag.FlagSet) {
			opts.BindCommon(fs)
		},
		Run: func(ctx context.Context, args []string) error {
			return runShell(ctx, opts, args)
		},
	}
}

func runShell(ctx context.Context, opts *Options, args []string) error {
	if err := setLogLevel(opts.LogLevel); err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: xpipe shell <pipeline-file> <task>")
	}

	tc := newToolchain()
	p, err := tc.Resolver.Get(args[0])
	if err != nil {
		return err
	}
	t, err := findTask(p, args[1])
	if err != nil {
		return err
	}

	vars, err := taskWorkingContext(ctx, tc, t)
	if err != nil {
		return err
	}

	shellName := os.Getenv("SHELL")
	if shellName == "" {
		shellName = "bash"
	}
	logInfof("entering %s with the context of task %s", shellName, t.QualifiedName())

	cmd := psexec.NewCommand(shellName).
		WithDir(t.Pipeline.Dir()).
		WithEnv(vars.Environ()).
		AsInteractive()

	res := tc.Exec.Run(ctx, cmd)
	if !res.Success() {
		return fmt.Errorf("shell exited with code %d", res.ExitCode)
	}
	return nil
}

// taskWorkingContext replays t's export blocks over a copy of the
// pipeline's base context, the same derivation the executor performs
// before dispatching code blocks.
func taskWorkingContext(ctx context.Context, tc *toolchain, t *model.Task) (model.Context, error) {
	p := t.Pipeline
	vars := p.Context.Clone()

	for _, block := range t.Blocks {
		exportBlock, ok := block.(*model.ExportBlock)
		if !ok {
			continue
		}
		for _, stmt := range exportBlock.Statements {
			switch s := stmt.(type) {
			case *model.VariableAssignment:
				val, err := expand.Expand(ctx, s.Value, vars, p.Dir(), p.UsedPipelines, tc.Shell, s.Source, s.Line)
				if err != nil {
					return nil, err
				}
				vars[s.Name] = val
			case *model.DeleteVariable:
				delete(vars, s.Name)
			}
		}
	}
	return vars, nil
}
