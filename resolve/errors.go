package resolve

import (
	"fmt"

	"github.com/titpetric/xpipe/fuzzy"
)

// NotFoundError reports a pipeline file that could not be read, referenced
// by an extend or use statement (or the initial CLI invocation).
type NotFoundError struct {
	Path   string
	Source string
	Line   int
	Err    error
}

func (e *NotFoundError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: pipeline not found: %s: %v", e.Source, e.Line, e.Path, e.Err)
	}
	return fmt.Sprintf("pipeline not found: %s: %v", e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// CycleError reports an extend or use chain that loops back on a pipeline
// currently being initialized.
type CycleError struct {
	Path   string
	Source string
	Line   int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s:%d: pipeline cycle detected at: %s", e.Source, e.Line, e.Path)
}

// AliasConflictError reports the same alias bound to two different target
// pipelines, once directly and once through an extended pipeline's own use
// statements.
type AliasConflictError struct {
	Alias    string
	Existing string
	New      string
	Source   string
	Line     int
}

func (e *AliasConflictError) Error() string {
	return fmt.Sprintf("%s:%d: alias %q already bound to %s, cannot rebind to %s",
		e.Source, e.Line, e.Alias, e.Existing, e.New)
}

// MissingDepError reports a dependency name that does not resolve to any
// task, either in the pipeline's own task set or (for a dotted name) in an
// aliased pipeline's task set. Suggestion carries the best fuzzy match
// among the candidates considered, empty if nothing scored.
type MissingDepError struct {
	Task       string
	Dep        string
	Pipeline   string
	Candidates []string
	Source     string
	Line       int
}

func (e *MissingDepError) Error() string {
	msg := fmt.Sprintf("%s:%d: task %q depends on unknown %q in pipeline %s",
		e.Source, e.Line, e.Task, e.Dep, e.Pipeline)
	if s := fuzzy.SuggestOne(e.Dep, e.Candidates); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return msg
}

// UnknownAliasError reports a dotted dependency referencing an alias no
// `use` statement registered.
type UnknownAliasError struct {
	Alias      string
	Candidates []string
	Source     string
	Line       int
}

func (e *UnknownAliasError) Error() string {
	msg := fmt.Sprintf("%s:%d: unknown pipeline alias %q", e.Source, e.Line, e.Alias)
	if s := fuzzy.SuggestOne(e.Alias, e.Candidates); s != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", s)
	}
	return msg
}

