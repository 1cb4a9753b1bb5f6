// Package model defines the data types shared by the parser, expander,
// resolver and executor: pipelines, tasks, blocks, preamble statements and
// the run-time context.
package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PipelineSuffix is stripped from a pipeline's basename to produce its
// display name. AbstractSuffix marks a pipeline as a library that refuses
// to run directly.
const (
	PipelineSuffix = ".pipeline"
	AbstractSuffix = ".base-pipeline"

	// PipelinePrefixVar is the reserved context variable exposed to every
	// pipeline and code block, carrying the resolved prefix string.
	PipelinePrefixVar = "PLN_PREFIX"
)

// PrefixKind distinguishes the two prefix flavors a pipeline can declare.
type PrefixKind string

const (
	FilePrefix PrefixKind = "file"
	DirPrefix  PrefixKind = "dir"
)

// ForceMode controls how the executor decides whether a task (re)runs.
type ForceMode string

const (
	ForceNone ForceMode = "none"
	ForceTop  ForceMode = "top"
	ForceAll  ForceMode = "all"
	ForceSolo ForceMode = "solo"
)

// NormalizePipelineName strips PipelineSuffix from a basename, if present.
func NormalizePipelineName(basename string) string {
	if strings.HasSuffix(basename, PipelineSuffix) {
		return basename[:len(basename)-len(PipelineSuffix)]
	}
	return basename
}

// Pipeline is the root structure parsed from, or composed from, a pipeline
// file. Its identity is AbsPath: the resolver keys its caches on it.
type Pipeline struct {
	AbsPath  string
	Name     string
	Abstract bool

	Preamble []Statement
	Tasks    []*Task

	PrefixStmt *PrefixStatement

	// UsedPipelines maps alias -> pipeline, populated by the resolver from
	// UseStatement entries (including those inherited through Extend).
	UsedPipelines map[string]*Pipeline

	// Context is the pipeline's base context, built by replaying Preamble.
	// Populated by the resolver's buildContext.
	Context Context

	// taskIndex supports O(1) lookup by name; rebuilt by the resolver
	// whenever Tasks changes.
	taskIndex map[string]*Task
}

// NewPipeline constructs a Pipeline shell from a canonical path and a parsed
// preamble/task list. Prefix defaults to defaultPrefix until a
// PrefixStatement in the preamble overrides it.
func NewPipeline(absPath string, preamble []Statement, tasks []*Task, defaultPrefix PrefixKind) *Pipeline {
	p := &Pipeline{
		AbsPath:       absPath,
		Name:          NormalizePipelineName(filepath.Base(absPath)),
		Abstract:      strings.HasSuffix(absPath, AbstractSuffix),
		Preamble:      preamble,
		Tasks:         tasks,
		UsedPipelines: map[string]*Pipeline{},
		PrefixStmt:    &PrefixStatement{Kind: defaultPrefix, Value: nil},
	}
	for _, t := range tasks {
		t.Pipeline = p
	}
	return p
}

// Dir returns the directory containing the pipeline file.
func (p *Pipeline) Dir() string {
	return filepath.Dir(p.AbsPath)
}

// Prefix returns the resolved prefix string for this pipeline.
func (p *Pipeline) Prefix() string {
	return p.PrefixStmt.Resolve(p.AbsPath)
}

// SetTasks replaces the task list and rebuilds the name index, which is how
// the resolver performs "last definition wins, keep its position" overriding.
func (p *Pipeline) SetTasks(tasks []*Task) {
	p.Tasks = tasks
	p.taskIndex = make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		t.Pipeline = p
		p.taskIndex[t.Name] = t
	}
}

// Task looks up a task defined directly in this pipeline by name.
func (p *Pipeline) Task(name string) (*Task, bool) {
	if p.taskIndex == nil {
		p.SetTasks(p.Tasks)
	}
	t, ok := p.taskIndex[name]
	return t, ok
}

// TaskNames returns the names of tasks defined directly in this pipeline,
// used by fuzzy-match suggestions.
func (p *Pipeline) TaskNames() []string {
	names := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		names = append(names, t.Name)
	}
	return names
}

// UsedPipelinesCopy returns a defensive shallow copy of UsedPipelines, so
// callers cannot mutate resolver-owned state.
func (p *Pipeline) UsedPipelinesCopy() map[string]*Pipeline {
	out := make(map[string]*Pipeline, len(p.UsedPipelines))
	for k, v := range p.UsedPipelines {
		out[k] = v
	}
	return out
}

// AllTasks returns the transitive closure of tasks reachable from this
// pipeline's own tasks, following Dependencies edges (which may cross into
// used pipelines).
func (p *Pipeline) AllTasks() []*Task {
	seen := map[*Task]bool{}
	var order []*Task
	var visit func(*Task)
	visit = func(t *Task) {
		if seen[t] {
			return
		}
		seen[t] = true
		order = append(order, t)
		for _, d := range t.Dependencies {
			visit(d)
		}
	}
	for _, t := range p.Tasks {
		visit(t)
	}
	return order
}

// Task represents one named unit of work: a set of dependency names
// (unresolved at parse time) and an ordered list of blocks.
type Task struct {
	Name     string
	DepNames []string
	Blocks   []Block

	Source string
	Line   int

	// Dependencies is filled in by the resolver once dep names have been
	// linked to Task objects, possibly across pipeline boundaries.
	Dependencies []*Task

	// Pipeline is a non-owning back-reference set by whichever Pipeline
	// currently owns this Task (the resolver re-parents copies made
	// during extend composition).
	Pipeline *Pipeline
}

// Copy produces an independent Task with its dependency-resolution state
// cleared, used when a pipeline's tasks are inherited via extend.
func (t *Task) Copy() *Task {
	blocks := make([]Block, len(t.Blocks))
	for i, b := range t.Blocks {
		blocks[i] = b.Copy()
	}
	depNames := make([]string, len(t.DepNames))
	copy(depNames, t.DepNames)
	return &Task{
		Name:     t.Name,
		DepNames: depNames,
		Blocks:   blocks,
		Source:   t.Source,
		Line:     t.Line,
	}
}

// ClearDependencies resets resolved dependencies, e.g. before relinking
// after an override.
func (t *Task) ClearDependencies() {
	t.Dependencies = nil
}

// AddDependency records a resolved dependency edge.
func (t *Task) AddDependency(dep *Task) {
	t.Dependencies = append(t.Dependencies, dep)
}

// QualifiedName returns "pipeline/task", used in CLI listings.
func (t *Task) QualifiedName() string {
	if t.Pipeline == nil {
		return t.Name
	}
	return fmt.Sprintf("%s/%s", t.Pipeline.Name, t.Name)
}
