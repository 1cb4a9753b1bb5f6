package main

import (
	"fmt"

	"github.com/titpetric/xpipe/expand"
	"github.com/titpetric/xpipe/fuzzy"
	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/psexec"
	"github.com/titpetric/xpipe/registry"
	"github.com/titpetric/xpipe/resolve"
)

// toolchain bundles the process executor, shell adapter and resolver one
// CLI invocation shares: a single psexec.Executor backs both $(...)
// substitution and every code block runner.
type toolchain struct {
	Exec     *psexec.Executor
	Shell    expand.Shell
	Resolver *resolve.Resolver
}

func newToolchain() *toolchain {
	px := psexec.New()
	sh := &expand.PsExecShell{Executor: px}
	return &toolchain{
		Exec:  px,
		Shell: sh,
		// A pipeline without an explicit prefix statement gets a
		// <name>_data/ directory prefix, created before its first run.
		Resolver: resolve.New(model.DirPrefix, sh),
	}
}

// newRegistry builds the code block registry, either from the built-in
// defaults or, when a kernels configuration file is given, from its
// declared entries only.
func (tc *toolchain) newRegistry(kernelsConfig string) (*registry.Registry, error) {
	if kernelsConfig == "" {
		return registry.NewDefault(tc.Exec), nil
	}
	cfg, err := registry.LoadConfig(kernelsConfig)
	if err != nil {
		return nil, err
	}
	reg := registry.New()
	if err := cfg.Apply(reg, tc.Exec, registry.DefaultFactories()); err != nil {
		return nil, err
	}
	return reg, nil
}

// findTask looks a task name up in p, with a fuzzy suggestion on a miss.
func findTask(p *model.Pipeline, name string) (*model.Task, error) {
	if t, ok := p.Task(name); ok {
		return t, nil
	}
	msg := fmt.Sprintf("no task %q in pipeline %s", name, p.Name)
	if s := fuzzy.SuggestOne(name, p.TaskNames()); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return nil, fmt.Errorf("%s", msg)
}
