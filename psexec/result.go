package psexec

import "time"

// Result is the outcome of one external process run.
type Result struct {
	// Stdout and Stderr hold captured output. Interactive runs leave both
	// empty, since the process owned the caller's terminal.
	Stdout string
	Stderr string

	// ExitCode is the process exit status, -1 if the process was
	// terminated by a signal before exiting.
	ExitCode int

	// Duration is the wall time from spawn to exit.
	Duration time.Duration

	// Err is the spawn or wait error, if any. A non-zero exit surfaces
	// here as an *exec.ExitError as well as in ExitCode.
	Err error
}

// Success reports a clean zero-status exit.
func (r Result) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}
