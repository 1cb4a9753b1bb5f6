// Package psexec runs the external processes a pipeline needs: shell and
// interpreter code blocks, inline $( ) command substitution, and the
// interactive debug shell. One Executor is shared across a whole CLI
// invocation so every process sees the same shell, environment overlay
// and timeout policy.
//
// # Basic usage
//
//	exec := psexec.New()
//	res := exec.Run(ctx, exec.ShellCommand("make all"))
//	if !res.Success() {
//		return res.Err
//	}
//	fmt.Print(res.Stdout)
//
// # Command configuration
//
// Commands configure themselves with chained builders:
//
//	cmd := psexec.NewCommand("python", script).
//		WithDir(pipelineDir).
//		WithEnv(taskContext.Environ()).
//		WithTimeout(time.Minute)
//
// The environment a process sees is the OS environment overlaid with the
// executor's Env and then the command's own entries, so a task's working
// context wins over inherited variables.
//
// # Terminals
//
// An interactive command (AsInteractive) binds the caller's terminal in
// raw mode through a pseudo-terminal; the debug shell runs this way.
// WithPTY allocates a pseudo-terminal but still captures output, for
// programs that refuse to talk to a pipe.
package psexec
