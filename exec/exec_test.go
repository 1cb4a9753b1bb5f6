package exec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/psexec"
	"github.com/titpetric/xpipe/registry"
	"github.com/titpetric/xpipe/resolve"
)

func writePipeline(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// copyTestdata copies the package's shared pipeline fixtures into a fresh
// temp dir, so a test that actually runs tasks (writing mark files and
// artifacts next to the pipeline) never dirties the committed testdata/.
func copyTestdata(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir("testdata")
	require.NoError(t, err)
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join("testdata", entry.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, entry.Name()), data, 0o644))
	}
	return dir
}

func newFixture(t *testing.T, pipelineFile string) (*model.Pipeline, *Executor) {
	t.Helper()
	dir := copyTestdata(t)

	r := resolve.New(model.DirPrefix, nil)
	p, err := r.Get(filepath.Join(dir, pipelineFile))
	require.NoError(t, err)

	reg := registry.NewDefault(psexec.New())
	return p, New(reg, nil)
}

func names(tasks []*model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.QualifiedName()
	}
	return out
}

func TestRunTaskRunsDependenciesFirst(t *testing.T) {
	p, ex := newFixture(t, "tasks2.pipeline")
	task2, ok := p.Task("task2")
	require.True(t, ok)

	ran, err := ex.RunTask(context.Background(), task2, model.ForceNone)
	require.NoError(t, err)
	require.Equal(t, []string{"tasks2/task1", "tasks2/task2"}, names(ran))

	_, err = os.Stat(filepath.Join(p.Dir(), "task1_marker"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(p.Dir(), "task2_foobar.sh"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(p.Dir(), "task2_foobar.py"))
	require.NoError(t, err)

	task1, _ := p.Task("task1")
	require.True(t, task1.IsMarked())
	require.True(t, task2.IsMarked())
}

func TestRunTaskSecondRunIsNoop(t *testing.T) {
	p, ex := newFixture(t, "tasks2.pipeline")
	task2, _ := p.Task("task2")

	_, err := ex.RunTask(context.Background(), task2, model.ForceNone)
	require.NoError(t, err)

	ran, err := ex.RunTask(context.Background(), task2, model.ForceNone)
	require.NoError(t, err)
	require.Empty(t, ran)
}

func TestRunTaskForceTopForcesOnlySelf(t *testing.T) {
	p, ex := newFixture(t, "tasks2.pipeline")
	task2, _ := p.Task("task2")

	_, err := ex.RunTask(context.Background(), task2, model.ForceNone)
	require.NoError(t, err)

	ran, err := ex.RunTask(context.Background(), task2, model.ForceTop)
	require.NoError(t, err)
	require.Equal(t, []string{"tasks2/task2"}, names(ran))
}

func TestRunTaskForceAllPropagatesToDependencies(t *testing.T) {
	p, ex := newFixture(t, "tasks2.pipeline")
	task2, _ := p.Task("task2")

	_, err := ex.RunTask(context.Background(), task2, model.ForceNone)
	require.NoError(t, err)

	ran, err := ex.RunTask(context.Background(), task2, model.ForceAll)
	require.NoError(t, err)
	require.Equal(t, []string{"tasks2/task1", "tasks2/task2"}, names(ran))
}

func TestRunTaskForceSoloSkipsDependencies(t *testing.T) {
	p, ex := newFixture(t, "tasks2.pipeline")
	task1, _ := p.Task("task1")
	task2, _ := p.Task("task2")

	ran, err := ex.RunTask(context.Background(), task2, model.ForceSolo)
	require.NoError(t, err)
	require.Equal(t, []string{"tasks2/task2"}, names(ran))
	require.False(t, task1.IsMarked())

	_, err = os.Stat(filepath.Join(p.Dir(), "task1_marker"))
	require.True(t, os.IsNotExist(err))
}

func TestRunTaskRerunsWhenDependencyMarkIsNewer(t *testing.T) {
	p, ex := newFixture(t, "tasks2.pipeline")
	task1, _ := p.Task("task1")
	task2, _ := p.Task("task2")

	_, err := ex.RunTask(context.Background(), task2, model.ForceNone)
	require.NoError(t, err)

	require.NoError(t, task1.Unmark())
	_, err = ex.RunTask(context.Background(), task1, model.ForceNone)
	require.NoError(t, err)

	ran, err := ex.RunTask(context.Background(), task2, model.ForceNone)
	require.NoError(t, err)
	require.Equal(t, []string{"tasks2/task2"}, names(ran))
}

func TestRunPipelineRunsFromRoots(t *testing.T) {
	p, ex := newFixture(t, "tasks2.pipeline")

	ran, err := ex.RunPipeline(context.Background(), p, model.ForceNone)
	require.NoError(t, err)
	require.Equal(t, []string{"tasks2/task1", "tasks2/task2"}, names(ran))
}

func TestRunTaskExtendedPipelineSharesDependencyWithBase(t *testing.T) {
	p, ex := newFixture(t, "extend1.pipeline")

	ran, err := ex.RunPipeline(context.Background(), p, model.ForceNone)
	require.NoError(t, err)
	require.Equal(t, []string{"extend1/task1", "extend1/task2", "extend1/extra1"}, names(ran))

	_, err = os.Stat(filepath.Join(p.Dir(), "extend1_2.txt"))
	require.NoError(t, err)
}

func TestRunTaskForceChainThroughThreeLevels(t *testing.T) {
	p, ex := newFixture(t, "force_test.pipeline")
	t3, ok := p.Task("t3")
	require.True(t, ok)

	ran, err := ex.RunTask(context.Background(), t3, model.ForceNone)
	require.NoError(t, err)
	require.Equal(t, []string{"force_test/t1", "force_test/t2", "force_test/t3"}, names(ran))

	ran, err = ex.RunTask(context.Background(), t3, model.ForceTop)
	require.NoError(t, err)
	require.Equal(t, []string{"force_test/t3"}, names(ran))
}

func TestRunTaskAbstractPipelineErrors(t *testing.T) {
	dir := t.TempDir()
	path := writePipeline(t, dir, "lib.base-pipeline", "task1:\n\tcode.test: marker\n\t\tc\n")

	r := resolve.New(model.DirPrefix, nil)
	p, err := r.Get(path)
	require.NoError(t, err)

	reg := registry.NewDefault(psexec.New())
	ex := New(reg, nil)

	task1, _ := p.Task("task1")
	_, err = ex.RunTask(context.Background(), task1, model.ForceNone)
	require.Error(t, err)
	var abstractErr *AbstractRunError
	require.ErrorAs(t, err, &abstractErr)

	_, err = ex.RunPipeline(context.Background(), p, model.ForceNone)
	require.ErrorAs(t, err, &abstractErr)
}

func TestRunTaskUnknownBlockTypeErrors(t *testing.T) {
	dir := t.TempDir()
	path := writePipeline(t, dir, "bad.pipeline", "task1:\n\tcode.nosuchlang: arg\n\t\tbody\n")

	r := resolve.New(model.DirPrefix, nil)
	p, err := r.Get(path)
	require.NoError(t, err)

	ex := New(registry.NewDefault(psexec.New()), nil)
	task1, _ := p.Task("task1")

	_, err = ex.RunTask(context.Background(), task1, model.ForceNone)
	require.Error(t, err)
	var blockErr *UnknownBlockTypeError
	require.ErrorAs(t, err, &blockErr)
	require.Equal(t, "nosuchlang", blockErr.Lang)
}
