package psexec_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titpetric/xpipe/psexec"
)

func run(t *testing.T, cmd *psexec.Command) psexec.Result {
	t.Helper()
	return psexec.New().Run(context.Background(), cmd)
}

func TestRunCapturesStdout(t *testing.T) {
	res := run(t, psexec.NewCommand("echo", "hello"))

	require.True(t, res.Success())
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestRunCapturesStderr(t *testing.T) {
	res := run(t, psexec.NewShellCommand("echo oops >&2"))

	require.True(t, res.Success())
	assert.Contains(t, res.Stderr, "oops")
	assert.Empty(t, res.Stdout)
}

func TestRunNonZeroExit(t *testing.T) {
	res := run(t, psexec.NewShellCommand("exit 42"))

	assert.False(t, res.Success())
	assert.Equal(t, 42, res.ExitCode)
	assert.Error(t, res.Err)
}

func TestRunMissingExecutable(t *testing.T) {
	res := run(t, psexec.NewCommand("no-such-program-xyz"))

	assert.False(t, res.Success())
	assert.Error(t, res.Err)
}

func TestShellCommandUsesExecutorShell(t *testing.T) {
	e := psexec.New()
	cmd := e.ShellCommand("echo hi")
	assert.Equal(t, "bash", cmd.Name)
	assert.Equal(t, []string{"-c", "echo hi"}, cmd.Args)

	e.Shell = "sh"
	assert.Equal(t, "sh", e.ShellCommand("echo hi").Name)
}

func TestRunCommandEnvWinsOverOSEnvironment(t *testing.T) {
	t.Setenv("XPIPE_ENV_TEST", "from-os")

	cmd := psexec.NewShellCommand("printf %s \"$XPIPE_ENV_TEST\"").
		WithEnv([]string{"XPIPE_ENV_TEST=from-command"})
	res := run(t, cmd)

	require.True(t, res.Success())
	assert.Equal(t, "from-command", res.Stdout)
}

func TestRunExecutorEnvBelowCommandEnv(t *testing.T) {
	e := psexec.New()
	e.Env = []string{"XPIPE_LAYER=executor"}

	res := e.Run(context.Background(), e.ShellCommand("printf %s \"$XPIPE_LAYER\""))
	require.True(t, res.Success())
	assert.Equal(t, "executor", res.Stdout)

	cmd := e.ShellCommand("printf %s \"$XPIPE_LAYER\"").
		WithEnv([]string{"XPIPE_LAYER=command"})
	res = e.Run(context.Background(), cmd)
	require.True(t, res.Success())
	assert.Equal(t, "command", res.Stdout)
}

func TestRunRespectsDir(t *testing.T) {
	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	res := run(t, psexec.NewCommand("pwd").WithDir(dir))
	require.True(t, res.Success())
	assert.Equal(t, resolved, strings.TrimSpace(res.Stdout))
}

func TestRunExecutorDefaultDir(t *testing.T) {
	dir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	e := psexec.New()
	e.Dir = dir
	res := e.Run(context.Background(), psexec.NewCommand("pwd"))
	require.True(t, res.Success())
	assert.Equal(t, resolved, strings.TrimSpace(res.Stdout))
}

func TestRunStdin(t *testing.T) {
	cmd := psexec.NewCommand("head", "-1").
		WithStdin(strings.NewReader("first\nsecond\n"))
	res := run(t, cmd)

	require.True(t, res.Success())
	assert.Equal(t, "first\n", res.Stdout)
}

func TestRunTeesStdout(t *testing.T) {
	var tee bytes.Buffer
	cmd := psexec.NewCommand("echo", "teed")
	cmd.Stdout = &tee

	res := run(t, cmd)
	require.True(t, res.Success())
	assert.Equal(t, "teed\n", res.Stdout)
	assert.Equal(t, "teed\n", tee.String())
}

func TestRunCommandTimeout(t *testing.T) {
	cmd := psexec.NewShellCommand("sleep 10").WithTimeout(50 * time.Millisecond)

	start := time.Now()
	res := run(t, cmd)

	assert.False(t, res.Success())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunExecutorDefaultTimeout(t *testing.T) {
	e := psexec.New()
	e.Timeout = 50 * time.Millisecond

	res := e.Run(context.Background(), psexec.NewShellCommand("sleep 10"))
	assert.False(t, res.Success())
}

func TestRunContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	res := psexec.New().Run(ctx, psexec.NewShellCommand("sleep 10"))
	assert.False(t, res.Success())
}

func TestRunRecordsDuration(t *testing.T) {
	res := run(t, psexec.NewShellCommand("sleep 0.05"))

	require.True(t, res.Success())
	assert.GreaterOrEqual(t, res.Duration, 50*time.Millisecond)
}

func TestRunPTYCapturesOutput(t *testing.T) {
	res := run(t, psexec.NewShellCommand("echo from-pty").WithPTY())

	if res.Err != nil && res.Stdout == "" {
		t.Skipf("pty unavailable: %v", res.Err)
	}
	assert.Contains(t, res.Stdout, "from-pty")
}

func TestRunSequentialCommandsShareExecutor(t *testing.T) {
	e := psexec.New()
	for _, want := range []string{"one", "two", "three"} {
		res := e.Run(context.Background(), psexec.NewCommand("echo", want))
		require.True(t, res.Success())
		assert.Equal(t, want+"\n", res.Stdout)
	}
}

func TestRunWritesFiles(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	res := run(t, psexec.NewShellCommand("touch "+marker))
	require.True(t, res.Success())

	_, err := os.Stat(marker)
	assert.NoError(t, err)
}
