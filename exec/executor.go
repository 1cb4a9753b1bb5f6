// Package exec drives incremental task execution: given a resolved
// pipeline, it decides which tasks actually need to run, expands and
// dispatches their blocks through registry.Runner, and records mark files
// and (optionally) an eventlog.Logger/treeview tree as it goes.
package exec

import (
	"context"
	"time"

	"github.com/titpetric/xpipe/eventlog"
	"github.com/titpetric/xpipe/expand"
	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/registry"
	"github.com/titpetric/xpipe/treeview"
)

// Executor ties together the pieces a run needs beyond the pipeline graph
// itself: a code-block registry, a shell for $() expansion, and two
// optional observers (Logger, Nodes) that are both nil-safe, so an
// Executor built for `xpipe tasks` or a test can omit them entirely.
type Executor struct {
	Registry *registry.Registry
	Shell    expand.Shell
	Logger   *eventlog.Logger

	// Nodes maps a task to its live tree node, set by the CLI once it has
	// built the run view with treeview.BuildExecutionTree. Left nil when
	// there is no tree to update (e.g. in tests).
	Nodes map[*model.Task]*treeview.TreeNode
}

// New returns an Executor with the given registry and shell. Logger and
// Nodes are left nil; assign them directly if the caller wants progress
// observation.
func New(reg *registry.Registry, sh expand.Shell) *Executor {
	return &Executor{Registry: reg, Shell: sh}
}

// RunPipeline runs every root task of p (the tasks nothing in p depends
// on) under force. Only p's own declared tasks seed the recursion; a
// root's dependency chain already reaches everything else.
func (e *Executor) RunPipeline(ctx context.Context, p *model.Pipeline, force model.ForceMode) ([]*model.Task, error) {
	if p.Abstract {
		return nil, &AbstractRunError{Pipeline: p.Name}
	}

	var ran []*model.Task
	for _, t := range treeview.Roots(p.Tasks) {
		sub, err := e.RunTask(ctx, t, force)
		ran = append(ran, sub...)
		if err != nil {
			return ran, err
		}
	}
	return ran, nil
}

// RunTask runs t and, unless force is ForceSolo, its dependencies first,
// returning every task that actually executed (as opposed to being
// skipped because its mark was still fresh).
func (e *Executor) RunTask(ctx context.Context, t *model.Task, force model.ForceMode) ([]*model.Task, error) {
	if t.Pipeline.Abstract {
		return nil, &AbstractRunError{Pipeline: t.Pipeline.Name}
	}
	if err := t.EnsurePrefixDir(); err != nil {
		return nil, err
	}

	var ran []*model.Task

	// ForceAll propagates to every dependency; any other force mode forces
	// only t itself, leaving dependencies to decide for themselves via
	// their own mark timestamps. ForceSolo skips dependency recursion
	// entirely.
	if force != model.ForceSolo {
		depForce := model.ForceNone
		if force == model.ForceAll {
			depForce = model.ForceAll
		}
		for _, dep := range t.Dependencies {
			sub, err := e.RunTask(ctx, dep, depForce)
			ran = append(ran, sub...)
			if err != nil {
				return ran, err
			}
		}
	}

	runTask := force != model.ForceNone || !t.IsMarked()
	if !runTask {
		ownTime, _ := t.MarkTime()
		for _, dep := range t.Dependencies {
			if depTime, ok := dep.MarkTime(); ok && depTime.After(ownTime) {
				runTask = true
				break
			}
		}
	}

	if !runTask {
		return ran, nil
	}

	if err := e.runBlocks(ctx, t); err != nil {
		return ran, err
	}
	if err := t.Mark(); err != nil {
		return ran, err
	}
	return append(ran, t), nil
}

// runBlocks expands and dispatches every block in t in order, against a
// context cloned fresh from the pipeline's base context - a task's own
// export statements never leak into its siblings or its next run.
func (e *Executor) runBlocks(ctx context.Context, t *model.Task) error {
	node := e.Nodes[t]
	if node != nil {
		node.SetStatus(treeview.StatusRunning)
	}

	startOffset := e.Logger.GetElapsed()
	start := time.Now()
	runErr := e.runBlocksLocked(ctx, t)
	elapsed := time.Since(start)

	result := eventlog.ResultPass
	if runErr != nil {
		result = eventlog.ResultFail
	}
	e.Logger.LogExec(result, t.QualifiedName(), t.QualifiedName(), startOffset, elapsed.Milliseconds(), runErr)

	if node != nil {
		node.SetDuration(elapsed.Seconds())
		if runErr != nil {
			node.SetStatus(treeview.StatusFailed)
		} else {
			node.SetStatus(treeview.StatusPassed)
		}
	}
	return runErr
}

func (e *Executor) runBlocksLocked(ctx context.Context, t *model.Task) error {
	p := t.Pipeline
	vars := p.Context.Clone()
	cwd := p.Dir()

	for _, block := range t.Blocks {
		switch b := block.(type) {
		case *model.ExportBlock:
			if err := e.runExportBlock(ctx, b, vars, cwd, p); err != nil {
				return err
			}
		case *model.CodeBlock:
			if err := e.runCodeBlock(ctx, t, b, vars, cwd, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Executor) runExportBlock(ctx context.Context, b *model.ExportBlock, vars model.Context, cwd string, p *model.Pipeline) error {
	for _, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *model.VariableAssignment:
			val, err := expand.Expand(ctx, s.Value, vars, cwd, p.UsedPipelines, e.Shell, s.Source, s.Line)
			if err != nil {
				return err
			}
			vars[s.Name] = val
		case *model.DeleteVariable:
			delete(vars, s.Name)
		}
	}
	return nil
}

func (e *Executor) runCodeBlock(ctx context.Context, t *model.Task, b *model.CodeBlock, vars model.Context, cwd string, p *model.Pipeline) error {
	runner, ok := e.Registry.Get(b.Lang)
	if !ok {
		return &UnknownBlockTypeError{Task: t.QualifiedName(), Lang: b.Lang, Source: b.Source, Line: b.Line}
	}

	argStr, err := expand.Expand(ctx, b.ArgStr, vars, cwd, p.UsedPipelines, e.Shell, b.Source, b.Line)
	if err != nil {
		return err
	}

	content := make([]string, len(b.Lines))
	for i, line := range b.Lines {
		expanded, err := expand.Expand(ctx, line, vars, cwd, p.UsedPipelines, e.Shell, b.Source, b.Line+i+1)
		if err != nil {
			return err
		}
		content[i] = expanded
	}

	startOffset := e.Logger.GetElapsed()
	start := time.Now()
	err = runner.Run(ctx, argStr, vars, cwd, content)
	elapsed := time.Since(start)

	e.Logger.LogCommand(eventlog.LogEntry{
		Type:       eventlog.EventTypeStep,
		ID:         t.QualifiedName(),
		Command:    argStr,
		Dir:        cwd,
		Start:      startOffset,
		DurationMs: elapsed.Milliseconds(),
		Env:        vars.Environ(),
	})

	if err != nil {
		return &BlockFailedError{Task: t.QualifiedName(), Lang: b.Lang, Source: b.Source, Line: b.Line, Err: err}
	}
	return nil
}
