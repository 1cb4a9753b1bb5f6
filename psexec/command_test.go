package psexec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/titpetric/xpipe/psexec"
)

func TestNewCommand(t *testing.T) {
	cmd := psexec.NewCommand("echo", "hello", "world")

	assert.Equal(t, "echo", cmd.Name)
	assert.Equal(t, []string{"hello", "world"}, cmd.Args)
}

func TestNewShellCommand(t *testing.T) {
	cmd := psexec.NewShellCommand("echo $HOME && ls")

	assert.Equal(t, "bash", cmd.Name)
	assert.Equal(t, []string{"-c", "echo $HOME && ls"}, cmd.Args)
}

func TestCommandBuildersChain(t *testing.T) {
	stdin := strings.NewReader("input")
	cmd := psexec.NewCommand("python", "script.py").
		WithDir("/work").
		WithEnv([]string{"PYTHON=python3"}).
		WithTimeout(time.Minute).
		WithStdin(stdin)

	assert.Equal(t, "/work", cmd.Dir)
	assert.Equal(t, []string{"PYTHON=python3"}, cmd.Env)
	assert.Equal(t, time.Minute, cmd.Timeout)
	assert.Equal(t, stdin, cmd.Stdin)
	assert.False(t, cmd.UsePTY)
	assert.False(t, cmd.Interactive)
}

func TestCommandTerminalModes(t *testing.T) {
	assert.True(t, psexec.NewCommand("top").WithPTY().UsePTY)
	assert.True(t, psexec.NewCommand("bash").AsInteractive().Interactive)
}
