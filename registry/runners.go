package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/psexec"
)

// defaultRunners builds the standard tag -> Runner table.
func defaultRunners(exec *psexec.Executor) map[string]Runner {
	return map[string]Runner{
		"shell":                   &shellRunner{exec: exec},
		"python":                  &interpreterRunner{exec: exec, envVar: "PYTHON", defaultCmd: "python", suffix: "py"},
		"gnuplot":                 &interpreterRunner{exec: exec, envVar: "GNUPLOT", defaultCmd: "gnuplot", suffix: "gp"},
		"awk":                     &awkRunner{exec: exec},
		"test":                    &testRunner{},
		"python-hadoop-mapreduce": &pyhmrRunner{exec: exec},
	}
}

func blockFailed(cmd string, res psexec.Result) error {
	if res.Err != nil {
		return fmt.Errorf("block failed (exit %d): %s: %w", res.ExitCode, cmd, res.Err)
	}
	return fmt.Errorf("block failed (exit %d): %s", res.ExitCode, cmd)
}

func writeTempFile(content []string, suffix string) (string, error) {
	f, err := os.CreateTemp("", "xpipe-*."+suffix)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(strings.Join(content, "\n")); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// shellRunner joins content and runs it through the host shell.
type shellRunner struct {
	exec *psexec.Executor
}

func (r *shellRunner) ShortHelp() string { return "run a shell script (OS-specific)" }
func (r *shellRunner) LongHelp() string {
	return "run the commands in whatever the default shell on the host operating system"
}
func (r *shellRunner) EnvVarsHelp() map[string]string { return nil }

func (r *shellRunner) Run(ctx context.Context, argStr string, env model.Context, cwd string, content []string) error {
	cmd := strings.Join(content, "\n")
	c := r.exec.ShellCommand(cmd)
	c.Dir = cwd
	c.Env = env.Environ()
	res := r.exec.Run(ctx, c)
	if !res.Success() {
		return blockFailed(cmd, res)
	}
	return nil
}

// interpreterRunner covers python and gnuplot: write content to a temp
// file, invoke an interpreter named by envVar (falling back to
// defaultCmd), splicing argStr between the interpreter and the file.
type interpreterRunner struct {
	exec       *psexec.Executor
	envVar     string
	defaultCmd string
	suffix     string
}

func (r *interpreterRunner) ShortHelp() string {
	return fmt.Sprintf("run %s code", r.defaultCmd)
}
func (r *interpreterRunner) LongHelp() string {
	return fmt.Sprintf("run the commands in whatever the default %s is on the host system", r.defaultCmd)
}
func (r *interpreterRunner) EnvVarsHelp() map[string]string {
	return map[string]string{strings.ToUpper(r.envVar): "the interpreter executable to invoke, default: " + r.defaultCmd}
}

func (r *interpreterRunner) Run(ctx context.Context, argStr string, env model.Context, cwd string, content []string) error {
	tmpFile, err := writeTempFile(content, r.suffix)
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile)

	execName := env[r.envVar]
	if execName == "" {
		execName = r.defaultCmd
	}
	cmd := fmt.Sprintf("%s %s %s", execName, argStr, tmpFile)

	c := r.exec.ShellCommand(cmd)
	c.Dir = cwd
	c.Env = env.Environ()
	res := r.exec.Run(ctx, c)
	if !res.Success() {
		return blockFailed(cmd, res)
	}
	return nil
}

// awkRunner mirrors interpreterRunner but splices the arg string after the
// temp file ("-f file arg"), matching run_awk's distinct argument order.
type awkRunner struct {
	exec *psexec.Executor
}

func (r *awkRunner) ShortHelp() string { return "run an AWK script" }
func (r *awkRunner) LongHelp() string {
	return "run an awk script. Note that in order to read/write particular files, use the BEGIN preamble."
}
func (r *awkRunner) EnvVarsHelp() map[string]string {
	return map[string]string{"AWK": "the awk executable to invoke, default: awk"}
}

func (r *awkRunner) Run(ctx context.Context, argStr string, env model.Context, cwd string, content []string) error {
	tmpFile, err := writeTempFile(content, "awk")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile)

	execName := env["AWK"]
	if execName == "" {
		execName = "awk"
	}
	cmd := fmt.Sprintf("%s -f %s %s", execName, tmpFile, argStr)

	c := r.exec.ShellCommand(cmd)
	c.Dir = cwd
	c.Env = env.Environ()
	res := r.exec.Run(ctx, c)
	if !res.Success() {
		return blockFailed(cmd, res)
	}
	return nil
}

// testRunner creates zero-byte files named by whitespace-split tokens in
// the argument string and prints content, used by the registry's own
// tests.
type testRunner struct{}

func (r *testRunner) ShortHelp() string { return "a codeblock for internal testing" }
func (r *testRunner) LongHelp() string {
	return "this codeblock creates an empty file for each name in the argument string and prints the content to stdout"
}
func (r *testRunner) EnvVarsHelp() map[string]string { return nil }

func (r *testRunner) Run(ctx context.Context, argStr string, env model.Context, cwd string, content []string) error {
	for _, name := range strings.Fields(argStr) {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		f.Close()
	}
	fmt.Println(strings.Join(content, "\n"))
	return nil
}
