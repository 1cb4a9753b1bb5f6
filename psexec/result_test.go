package psexec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/titpetric/xpipe/psexec"
)

func TestResultSuccess(t *testing.T) {
	ctx := context.Background()
	e := psexec.New()

	res := e.Run(ctx, psexec.NewShellCommand("exit 0"))
	assert.True(t, res.Success())
	assert.Equal(t, 0, res.ExitCode)
	assert.NoError(t, res.Err)

	res = e.Run(ctx, psexec.NewShellCommand("exit 3"))
	assert.False(t, res.Success())
	assert.Equal(t, 3, res.ExitCode)
	assert.Error(t, res.Err)
}

func TestResultSeparatesStreams(t *testing.T) {
	res := psexec.New().Run(context.Background(),
		psexec.NewShellCommand("echo out && echo err >&2"))

	assert.True(t, res.Success())
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestResultZeroValueIsSuccess(t *testing.T) {
	var res psexec.Result
	assert.True(t, res.Success())
}
