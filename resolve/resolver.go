// Package resolve composes a parsed *model.Pipeline into a fully linked
// one: extend chains flattened, use aliases registered, tasks deduplicated
// and their dependency names turned into direct *model.Task edges, and the
// pipeline's base context built by replaying its reduced preamble.
package resolve

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/titpetric/xpipe/expand"
	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/parse"
)

// Resolver caches resolved pipelines by canonical path and detects
// extend/use cycles. All state is instance state: the CLI threads one
// Resolver through a whole invocation.
type Resolver struct {
	DefaultPrefix model.PrefixKind
	Shell         expand.Shell

	loaded            map[string]*model.Pipeline
	underConstruction map[string]bool
}

// New returns a Resolver ready to load pipelines, using defaultPrefix for
// any pipeline that declares no explicit `prefix` statement and sh for
// $(...) shell calls encountered while building preamble contexts.
func New(defaultPrefix model.PrefixKind, sh expand.Shell) *Resolver {
	return &Resolver{
		DefaultPrefix:     defaultPrefix,
		Shell:             sh,
		loaded:            map[string]*model.Pipeline{},
		underConstruction: map[string]bool{},
	}
}

// Get loads and fully resolves the pipeline at path (relative paths are
// resolved against the current working directory), returning the cached
// instance on repeat calls for the same canonical file.
func (r *Resolver) Get(path string) (*model.Pipeline, error) {
	return r.get(path, "", 0)
}

func (r *Resolver) get(path, fromSource string, fromLine int) (*model.Pipeline, error) {
	canonical, err := canonicalize(path)
	if err != nil {
		return nil, &NotFoundError{Path: path, Source: fromSource, Line: fromLine, Err: err}
	}

	if p, ok := r.loaded[canonical]; ok {
		return p, nil
	}
	if r.underConstruction[canonical] {
		return nil, &CycleError{Path: canonical, Source: fromSource, Line: fromLine}
	}

	p, err := parse.File(canonical, r.DefaultPrefix)
	if err != nil {
		return nil, err
	}

	r.underConstruction[canonical] = true
	if err := r.initialize(p); err != nil {
		delete(r.underConstruction, canonical)
		return nil, err
	}
	delete(r.underConstruction, canonical)

	r.loaded[canonical] = p
	return p, nil
}

// initialize mutates p in place from its raw parsed preamble: flattening
// extend chains, registering use aliases, applying the effective prefix
// statement, deduplicating tasks, linking dependency names and building
// the base context.
func (r *Resolver) initialize(p *model.Pipeline) error {
	var newPreamble []model.Statement
	usedPipelines := map[string]*model.Pipeline{}
	var extendedTasks []*model.Task
	var prefixStmt *model.PrefixStatement

	mergeUsed := func(from map[string]*model.Pipeline, source string, line int) error {
		for alias, pln := range from {
			if existing, ok := usedPipelines[alias]; ok && existing.AbsPath != pln.AbsPath {
				return &AliasConflictError{Alias: alias, Existing: existing.AbsPath, New: pln.AbsPath, Source: source, Line: line}
			}
			usedPipelines[alias] = pln
		}
		return nil
	}

	for _, stmt := range p.Preamble {
		switch s := stmt.(type) {
		case *model.ExtendStatement:
			extPath := resolvePath(p.Dir(), s.Path)
			extPipeline, err := r.get(extPath, s.Source, s.Line)
			if err != nil {
				return err
			}

			// The extended pipeline's preamble arrives already reduced: its
			// own prefix statement was split out during its initialize and
			// does not carry over; a prefix only applies to the file that
			// declares it.
			newPreamble = append(newPreamble, extPipeline.Preamble...)
			if err := mergeUsed(extPipeline.UsedPipelines, s.Source, s.Line); err != nil {
				return err
			}
			for _, t := range extPipeline.Tasks {
				extendedTasks = append(extendedTasks, t.Copy())
			}

		case *model.VariableAssignment:
			newPreamble = append(newPreamble, s)
		case *model.DeleteVariable:
			newPreamble = append(newPreamble, s)

		case *model.UseStatement:
			usePath := resolvePath(p.Dir(), s.Path)
			usedPipeline, err := r.get(usePath, s.Source, s.Line)
			if err != nil {
				return err
			}
			if existing, ok := usedPipelines[s.Alias]; ok && existing.AbsPath != usedPipeline.AbsPath {
				return &AliasConflictError{Alias: s.Alias, Existing: existing.AbsPath, New: usedPipeline.AbsPath, Source: s.Source, Line: s.Line}
			}
			usedPipelines[s.Alias] = usedPipeline

		case *model.PrefixStatement:
			prefixStmt = s
		}
	}

	p.Preamble = newPreamble
	if prefixStmt != nil {
		p.PrefixStmt = prefixStmt
	}
	p.UsedPipelines = usedPipelines

	combined := append(extendedTasks, p.Tasks...)
	p.SetTasks(dedupeTasks(combined))

	if err := linkDependencies(p); err != nil {
		return err
	}

	ctx, err := r.buildContext(p)
	if err != nil {
		return err
	}
	p.Context = ctx

	return nil
}

// dedupeTasks keeps only the last occurrence of each task name, in the
// position that occurrence naturally falls at within combined - so a
// locally redefined task moves to wherever the local definition sits,
// while everything else keeps its relative order.
func dedupeTasks(combined []*model.Task) []*model.Task {
	lastIndex := make(map[string]int, len(combined))
	for i, t := range combined {
		lastIndex[t.Name] = i
	}

	out := make([]*model.Task, 0, len(lastIndex))
	for i, t := range combined {
		if lastIndex[t.Name] == i {
			out = append(out, t)
		}
	}
	return out
}

func linkDependencies(p *model.Pipeline) error {
	for _, t := range p.Tasks {
		t.ClearDependencies()
		for _, depName := range t.DepNames {
			if idx := strings.IndexByte(depName, '.'); idx >= 0 {
				alias, name := depName[:idx], depName[idx+1:]
				aliasPipeline, ok := p.UsedPipelines[alias]
				if !ok {
					aliases := make([]string, 0, len(p.UsedPipelines))
					for a := range p.UsedPipelines {
						aliases = append(aliases, a)
					}
					return &UnknownAliasError{Alias: alias, Candidates: aliases, Source: t.Source, Line: t.Line}
				}
				depTask, ok := aliasPipeline.Task(name)
				if !ok {
					return &MissingDepError{Task: t.Name, Dep: depName, Pipeline: p.Name, Candidates: aliasPipeline.TaskNames(), Source: t.Source, Line: t.Line}
				}
				t.AddDependency(depTask)
			} else {
				depTask, ok := p.Task(depName)
				if !ok {
					return &MissingDepError{Task: t.Name, Dep: depName, Pipeline: p.Name, Candidates: p.TaskNames(), Source: t.Source, Line: t.Line}
				}
				t.AddDependency(depTask)
			}
		}
	}
	return nil
}

// buildContext replays p's reduced preamble (extend/use/prefix already
// stripped out by initialize) to produce the pipeline's base variable
// context, seeded with the resolved prefix string.
func (r *Resolver) buildContext(p *model.Pipeline) (model.Context, error) {
	ctx := model.NewContext()
	ctx[model.PipelinePrefixVar] = p.Prefix()

	for _, stmt := range p.Preamble {
		switch s := stmt.(type) {
		case *model.VariableAssignment:
			val, err := expand.Expand(context.Background(), s.Value, ctx, p.Dir(), p.UsedPipelines, r.Shell, s.Source, s.Line)
			if err != nil {
				return nil, err
			}
			ctx[s.Name] = val
		case *model.DeleteVariable:
			delete(ctx, s.Name)
		}
	}

	return ctx, nil
}

func resolvePath(dir, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, ref)
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}
