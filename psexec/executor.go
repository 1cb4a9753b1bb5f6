package psexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// Executor spawns the processes behind code blocks, inline `$( )` command
// substitution and the debug shell, applying a shared set of defaults to
// each. The zero value runs shell commands through bash with no timeout;
// fields may be set directly before first use.
type Executor struct {
	// Shell is the program ShellCommand wraps scripts in, bash by default.
	Shell string

	// Dir is the working directory for commands that set none.
	Dir string

	// Env is layered over the OS environment for every command, below the
	// command's own Env entries.
	Env []string

	// Timeout bounds commands that carry none of their own. Zero means
	// unbounded.
	Timeout time.Duration
}

// New returns an Executor that runs shell commands through bash.
func New() *Executor {
	return &Executor{Shell: "bash"}
}

// ShellCommand wraps a script in an invocation of the executor's shell.
func (e *Executor) ShellCommand(script string) *Command {
	shell := e.Shell
	if shell == "" {
		shell = "bash"
	}
	return NewCommand(shell, "-c", script)
}

// Run executes cmd and blocks until it finishes. Interactive commands
// bind the caller's terminal; UsePTY commands run under a pseudo-terminal
// with their output still captured; everything else runs on plain pipes.
func (e *Executor) Run(ctx context.Context, cmd *Command) Result {
	start := time.Now()

	var res Result
	switch {
	case cmd.Interactive:
		res = e.runInteractive(ctx, cmd)
	case cmd.UsePTY:
		res = e.runPTY(ctx, cmd)
	default:
		res = e.runCaptured(ctx, cmd)
	}

	res.Duration = time.Since(start)
	return res
}

// build turns cmd into a ready exec.Cmd with the executor's defaults
// applied. The returned cancel must be called once the process is done.
func (e *Executor) build(ctx context.Context, cmd *Command) (*exec.Cmd, context.CancelFunc) {
	timeout := cmd.Timeout
	if timeout == 0 {
		timeout = e.Timeout
	}
	cancel := func() {}
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if c.Dir == "" {
		c.Dir = e.Dir
	}
	c.Env = e.environ(cmd.Env)
	return c, cancel
}

// environ layers extra over e.Env over the OS environment. Later entries
// replace earlier ones with the same key, so a task's working context
// wins over inherited variables.
func (e *Executor) environ(extra []string) []string {
	var env []string
	index := map[string]int{}

	add := func(kv string) {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			return
		}
		key := kv[:eq]
		if i, ok := index[key]; ok {
			env[i] = kv
			return
		}
		index[key] = len(env)
		env = append(env, kv)
	}

	for _, kv := range os.Environ() {
		add(kv)
	}
	for _, kv := range e.Env {
		add(kv)
	}
	for _, kv := range extra {
		add(kv)
	}
	return env
}

func (e *Executor) runCaptured(ctx context.Context, cmd *Command) Result {
	c, cancel := e.build(ctx, cmd)
	defer cancel()

	var stdout, stderr bytes.Buffer
	c.Stdin = cmd.Stdin
	c.Stdout = io.Writer(&stdout)
	if cmd.Stdout != nil {
		c.Stdout = io.MultiWriter(&stdout, cmd.Stdout)
	}
	c.Stderr = io.Writer(&stderr)
	if cmd.Stderr != nil {
		c.Stderr = io.MultiWriter(&stderr, cmd.Stderr)
	}

	err := c.Run()
	return Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(c, err),
		Err:      err,
	}
}

func (e *Executor) runPTY(ctx context.Context, cmd *Command) Result {
	c, cancel := e.build(ctx, cmd)
	defer cancel()

	ptmx, err := e.startPTY(c)
	if err != nil {
		return Result{ExitCode: 1, Err: err}
	}
	defer ptmx.Close()

	if cmd.Stdin != nil {
		go func() { _, _ = io.Copy(ptmx, cmd.Stdin) }()
	}

	var out bytes.Buffer
	sink := io.Writer(&out)
	if cmd.Stdout != nil {
		sink = io.MultiWriter(&out, cmd.Stdout)
	}
	// The copy ends with EIO once the child closes its side of the pty;
	// that is the normal exit path, not an error worth surfacing.
	_, _ = io.Copy(sink, ptmx)

	err = c.Wait()
	return Result{
		Stdout:   out.String(),
		ExitCode: exitCode(c, err),
		Err:      err,
	}
}

func (e *Executor) runInteractive(ctx context.Context, cmd *Command) Result {
	c, cancel := e.build(ctx, cmd)
	defer cancel()

	ptmx, err := e.startPTY(c)
	if err != nil {
		return Result{ExitCode: 1, Err: err}
	}
	defer ptmx.Close()

	restore, err := rawTerminal()
	if err != nil {
		return Result{ExitCode: 1, Err: err}
	}
	defer restore()

	go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
	go func() { _, _ = io.Copy(os.Stdout, ptmx) }()

	err = c.Wait()
	return Result{ExitCode: exitCode(c, err), Err: err}
}

// startPTY launches c under a pseudo-terminal sized to the caller's
// terminal, when one is attached.
func (e *Executor) startPTY(c *exec.Cmd) (*os.File, error) {
	ptmx, err := pty.Start(c)
	if err != nil {
		return nil, fmt.Errorf("starting pty: %w", err)
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(h), Cols: uint16(w)})
	}
	return ptmx, nil
}

// rawTerminal puts the caller's stdin into raw mode and returns the
// restore function.
func rawTerminal() (func(), error) {
	fd := int(os.Stdin.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("entering raw terminal mode: %w", err)
	}
	return func() { _ = term.Restore(fd, state) }, nil
}

// exitCode extracts the process exit status after Run or Wait returned.
func exitCode(c *exec.Cmd, err error) int {
	if c.ProcessState != nil {
		return c.ProcessState.ExitCode()
	}
	if err != nil {
		return 1
	}
	return 0
}
