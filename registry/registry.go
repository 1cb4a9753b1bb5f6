// Package registry implements the pluggable code-block runner lookup: a
// mapping from language tag to a Runner, populated either by direct
// registration at construction or by reading a configuration file.
package registry

import (
	"context"
	"fmt"

	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/psexec"
)

// Runner executes one code block's content once its argument string and
// content lines have already been expanded by the caller.
type Runner interface {
	ShortHelp() string
	LongHelp() string
	EnvVarsHelp() map[string]string
	Run(ctx context.Context, argStr string, env model.Context, cwd string, content []string) error
}

// Registry is a language-tag keyed lookup of Runners. Duplicate
// registration under the same tag is a fatal configuration error.
type Registry struct {
	runners map[string]Runner
	order   []string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{runners: map[string]Runner{}}
}

// NewDefault returns a Registry with every built-in runner registered
// under its standard tag.
func NewDefault(exec *psexec.Executor) *Registry {
	r := New()
	for tag, runner := range defaultRunners(exec) {
		if err := r.Register(tag, runner); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a runner under tag. It is an error to register the same
// tag twice.
func (r *Registry) Register(tag string, runner Runner) error {
	if _, exists := r.runners[tag]; exists {
		return fmt.Errorf("attempt to register two code blocks for the same tag: %s", tag)
	}
	r.runners[tag] = runner
	r.order = append(r.order, tag)
	return nil
}

// Get looks up the runner for tag.
func (r *Registry) Get(tag string) (Runner, bool) {
	runner, ok := r.runners[tag]
	return runner, ok
}

// Tags returns registered tags in registration order, used by
// `xpipe codeblock_info` listings.
func (r *Registry) Tags() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
