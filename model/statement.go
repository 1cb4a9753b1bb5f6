package model

import "path/filepath"

// Statement is one preamble entry: a variable assignment/deletion, an
// extend, a use, or a prefix declaration. The resolver's buildContext applies Vars/Dels in
// file order; Extend/Use/Prefix are handled separately by the resolver
// since they require loading other pipelines.
type Statement interface {
	statement()
}

// VariableAssignment sets a context variable to a literal or expandable
// value. Value is expanded against the pipeline's own context at apply
// time, so later assignments may reference earlier ones.
type VariableAssignment struct {
	Name  string
	Value string

	Source string
	Line   int
}

func (*VariableAssignment) statement()       {}
func (*VariableAssignment) exportStatement() {}

// DeleteVariable removes a variable that an extended pipeline defined.
type DeleteVariable struct {
	Name string

	Source string
	Line   int
}

func (*DeleteVariable) statement()       {}
func (*DeleteVariable) exportStatement() {}

// ExportStatement narrows Statement to the two kinds legal inside an
// ExportBlock's body: variable assignment and deletion.
type ExportStatement interface {
	Statement
	exportStatement()
}

// ExtendStatement inherits the preamble and tasks of another pipeline
// file, found relative to the referencing pipeline's directory (or an
// absolute path). The extended file's prefix statement is not inherited.
type ExtendStatement struct {
	Path string

	Source string
	Line   int
}

func (*ExtendStatement) statement() {}

// UseStatement aliases another pipeline's tasks under a dotted name, e.g.
// "util.build" once `use ./util.pipeline as util` is declared.
type UseStatement struct {
	Alias string
	Path  string

	Source string
	Line   int
}

func (*UseStatement) statement() {}

// PrefixStatement declares the pipeline-scoped string exposed as
// PipelinePrefixVar and prepended to artifact paths by $PLN(...). Value is
// nil unless the pipeline's own `prefix` line gives a value; Resolve falls
// back to a name derived from the pipeline path: a trailing "_" for
// FilePrefix, a trailing "_data/" directory for DirPrefix. A custom value
// is resolved relative to the pipeline's own directory.
type PrefixStatement struct {
	Kind  PrefixKind
	Value *string

	Source string
	Line   int
}

func (*PrefixStatement) statement() {}

// Resolve computes the effective prefix string for a pipeline located at
// pipelinePath. For DirPrefix the caller is responsible for creating the
// directory (model.Task.EnsurePrefixDir) before first use.
func (s *PrefixStatement) Resolve(pipelinePath string) string {
	dir := filepath.Dir(pipelinePath)
	base := basenameNoExt(pipelinePath)
	if s.Value != nil {
		v := *s.Value
		if filepath.IsAbs(v) {
			return v
		}
		return filepath.Join(dir, v)
	}
	if s.Kind == DirPrefix {
		return filepath.Join(dir, base+"_data") + string(filepath.Separator)
	}
	return filepath.Join(dir, base+"_")
}

func basenameNoExt(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
