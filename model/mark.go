package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MarkPath returns the filesystem path the executor touches to record a
// successful run of t: a zero-byte sentinel in the pipeline's own
// directory, named ".<pipeline-name>-<task-name>.mark".
func (t *Task) MarkPath() string {
	p := t.Pipeline
	return filepath.Join(p.Dir(), fmt.Sprintf(".%s-%s.mark", p.Name, t.Name))
}

// EnsurePrefixDir creates the pipeline's dir-prefix directory, if the
// pipeline declares one. A no-op for FilePrefix pipelines.
func (t *Task) EnsurePrefixDir() error {
	if t.Pipeline.PrefixStmt.Kind != DirPrefix {
		return nil
	}
	return os.MkdirAll(t.Pipeline.Prefix(), 0o755)
}

// Mark touches the task's mark file to the current time, recording a
// successful run.
func (t *Task) Mark() error {
	path := t.MarkPath()
	now := time.Now()
	if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		f.Close()
	} else {
		return err
	}
	return os.Chtimes(path, now, now)
}

// Unmark removes the task's mark file, if present, forcing the next run to
// treat the task as never having completed.
func (t *Task) Unmark() error {
	err := os.Remove(t.MarkPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsMarked reports whether the task has a mark file at all.
func (t *Task) IsMarked() bool {
	_, err := os.Stat(t.MarkPath())
	return err == nil
}

// MarkTime returns the modification time of the task's mark file, and
// whether it exists.
func (t *Task) MarkTime() (time.Time, bool) {
	info, err := os.Stat(t.MarkPath())
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// MarkAllTasks touches the mark file of every task defined directly in p,
// optionally recursing into every pipeline reached through a use
// statement.
func (p *Pipeline) MarkAllTasks(recur bool) error {
	for _, t := range p.Tasks {
		if err := t.Mark(); err != nil {
			return err
		}
	}
	if recur {
		for _, used := range p.UsedPipelines {
			if err := used.MarkAllTasks(true); err != nil {
				return err
			}
		}
	}
	return nil
}

// UnmarkAllTasks removes the mark file of every task defined directly in
// p, optionally recursing into every pipeline reached through a use
// statement.
func (p *Pipeline) UnmarkAllTasks(recur bool) error {
	for _, t := range p.Tasks {
		if err := t.Unmark(); err != nil {
			return err
		}
	}
	if recur {
		for _, used := range p.UsedPipelines {
			if err := used.UnmarkAllTasks(true); err != nil {
				return err
			}
		}
	}
	return nil
}
