package treeview

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/titpetric/xpipe/model"
)

func TestBuildFromPipelineSingleTask(t *testing.T) {
	build := task("build")
	p := model.NewPipeline("/tmp/x.pipeline", nil, []*model.Task{build}, model.FilePrefix)

	node := BuildFromPipeline(p)
	require.Equal(t, "x", node.Name)
	require.True(t, node.HasChildren())

	children := node.GetChildren()
	require.Len(t, children, 1)
	require.Equal(t, "x/build", children[0].Name)
}

func TestBuildFromPipelineOrdersByDepth(t *testing.T) {
	base := task("base")
	left := task("left", base)
	right := task("right", base)
	top := task("top", left, right)
	p := model.NewPipeline("/tmp/x.pipeline", nil, []*model.Task{base, left, right, top}, model.FilePrefix)

	node := BuildFromPipeline(p)
	children := node.GetChildren()
	require.Len(t, children, 4)
	require.Equal(t, "x/base", children[0].Name)
	require.Equal(t, "x/top", children[3].Name)
}

func TestBuildFromPipelineEmpty(t *testing.T) {
	p := model.NewPipeline("/tmp/empty.pipeline", nil, nil, model.FilePrefix)

	node := BuildFromPipeline(p)
	require.NotNil(t, node)
	require.False(t, node.HasChildren())
}

func TestBuildFromPipelineMarkedTaskIsPassed(t *testing.T) {
	dir := t.TempDir()
	build := task("build")
	p := model.NewPipeline(dir+"/x.pipeline", nil, []*model.Task{build}, model.FilePrefix)
	p.SetTasks([]*model.Task{build})

	require.NoError(t, build.Mark())
	defer build.Unmark()

	node := BuildFromPipeline(p)
	require.Equal(t, StatusPassed, node.GetChildren()[0].Status)
}
