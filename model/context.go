package model

import "fmt"

// Context is the variable environment threaded through expansion,
// preamble evaluation and code block execution. It is a flat string map;
// callers that need OS environment semantics use Environ.
type Context map[string]string

// NewContext returns an empty, ready-to-use Context.
func NewContext() Context {
	return Context{}
}

// Clone returns an independent copy, used whenever a task or pipeline must
// extend a parent context without mutating it.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Merge overlays other on top of c, returning a new Context. Keys in other
// win, matching how a used pipeline's context layers under the prefix of
// the using pipeline's own assignments.
func (c Context) Merge(other Context) Context {
	out := c.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Environ renders the context as "KEY=VALUE" pairs suitable for
// os/exec.Cmd.Env, in the same shape psexec.Executor expects.
func (c Context) Environ() []string {
	out := make([]string, 0, len(c))
	for k, v := range c {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}
