package eventlog

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	yaml "gopkg.in/yaml.v3"
)

// Logger accumulates execution events for a single run and writes them to a
// YAML log file on Write. A nil *Logger is valid and silently discards
// everything, so callers can construct one conditionally (only when
// --log is set) and pass it through everywhere else unconditionally.
type Logger struct {
	mu        sync.Mutex
	path      string
	metadata  RunMetadata
	startTime time.Time
	debug     bool
	events    []*Event
}

// NewLogger builds a Logger that writes to path on Write. It returns nil if
// path is empty, so run sites can do `logger := NewLogger(flagValue, ...)`
// and call every method below unconditionally.
func NewLogger(path, pipeline, file string, debug bool) *Logger {
	if path == "" {
		return nil
	}
	return &Logger{
		path:      path,
		startTime: time.Now(),
		debug:     debug,
		metadata: RunMetadata{
			RunID:      ulid.Make().String(),
			CreatedAt:  time.Now(),
			Pipeline:   pipeline,
			File:       file,
			ModulePath: CaptureModulePath(),
			Git:        CaptureGitInfo(),
		},
	}
}

// LogExec records a step's overall pass/fail/skip outcome.
func (l *Logger) LogExec(result Result, id, run string, start float64, durationMs int64, err error) {
	if l == nil {
		return
	}

	ev := &Event{
		ID:       id,
		Type:     EventTypeStep,
		Run:      run,
		Result:   result,
		Start:    start,
		Duration: float64(durationMs) / 1000,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if l.debug {
		ev.GoroutineID = getGoroutineID()
	}

	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

// LogCommand records a single command invocation: a step's own run line, or
// a $() substitution nested inside one. Env is only retained when the
// logger was built with debug enabled, to avoid leaking secrets into the
// log file by default.
func (l *Logger) LogCommand(e LogEntry) {
	if l == nil {
		return
	}

	ev := &Event{
		ID:       e.ID,
		Type:     e.Type,
		ParentID: e.ParentID,
		Command:  e.Command,
		Dir:      e.Dir,
		Output:   e.Output,
		Error:    e.Error,
		ExitCode: e.ExitCode,
		Start:    e.Start,
		Duration: float64(e.DurationMs) / 1000,
	}
	if l.debug {
		ev.Env = e.Env
	}

	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

// GetEvents returns the events recorded so far, in recording order.
func (l *Logger) GetEvents() []*Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events
}

// GetElapsed returns the number of seconds since the logger was created.
func (l *Logger) GetElapsed() float64 {
	if l == nil {
		return 0
	}
	return time.Since(l.startTime).Seconds()
}

// GetStartTime returns the time the logger was created.
func (l *Logger) GetStartTime() time.Time {
	if l == nil {
		return time.Time{}
	}
	return l.startTime
}

// Write serializes the accumulated metadata, final state tree, events and
// summary to the logger's path as YAML.
func (l *Logger) Write(state *StateNode, summary *RunSummary) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	log := Log{
		Metadata: l.metadata,
		State:    state,
		Events:   l.events,
		Summary:  summary,
	}
	l.mu.Unlock()

	data, err := yaml.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshal eventlog: %w", err)
	}
	return os.WriteFile(l.path, data, 0o644)
}

// getGoroutineID extracts the calling goroutine's ID from its stack trace
// header ("goroutine 123 [running]:"). Debug-only diagnostic, not meant to
// be fast or to work once the runtime stops exposing the header this way.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(string(buf[:n]))
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
