package expand

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/titpetric/xpipe/model"
)

type stubShell struct {
	out string
	err error
}

func (s *stubShell) Run(ctx context.Context, script, cwd string, env []string) (string, error) {
	return s.out, s.err
}

func TestExpandPLNWithCurlyVariable(t *testing.T) {
	vars := model.Context{"var1": "hello", model.PipelinePrefixVar: "/foo/bar_"}
	out, err := Expand(context.Background(), "touch $PLN(${var1}.txt)", vars, "/tmp", nil, &stubShell{}, "preamble1", 3)
	require.NoError(t, err)
	require.Equal(t, "touch /foo/bar_hello.txt", out)
}

func TestExpandEscape(t *testing.T) {
	vars := model.Context{"var1": "hello"}
	out, err := Expand(context.Background(), `\$var1.txt`, vars, "/tmp", nil, &stubShell{}, "preamble1", 1)
	require.NoError(t, err)
	require.Equal(t, "$var1.txt", out)
}

func TestExpandShellRejectsMultilineOutput(t *testing.T) {
	vars := model.Context{}
	sh := &stubShell{out: "a\nb\n"}
	_, err := Expand(context.Background(), "touch $(ls)", vars, "/tmp", nil, sh, "preamble1", 1)
	require.Error(t, err)
}

func TestExpandUnknownVariable(t *testing.T) {
	vars := model.Context{}
	_, err := Expand(context.Background(), "$missing", vars, "/tmp", nil, &stubShell{}, "s", 5)
	require.Error(t, err)
	var uv *UnknownVariableError
	require.ErrorAs(t, err, &uv)
	require.Equal(t, 5, uv.Line)
}

func TestExpandAliasedVariable(t *testing.T) {
	other := &model.Pipeline{Context: model.Context{"X": "42"}}
	pipelines := map[string]*model.Pipeline{"util": other}
	vars := model.Context{}
	out, err := Expand(context.Background(), "value=${util.X}", vars, "/tmp", pipelines, &stubShell{}, "s", 1)
	require.NoError(t, err)
	require.Equal(t, "value=42", out)
}

func TestExpandIdempotentWithoutSpecialChars(t *testing.T) {
	vars := model.Context{}
	out, err := Expand(context.Background(), "plain text, no refs here", vars, "/tmp", nil, &stubShell{}, "s", 1)
	require.NoError(t, err)
	require.Equal(t, "plain text, no refs here", out)
}
