package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/titpetric/xpipe/model"
	"github.com/titpetric/xpipe/psexec"
)

func TestRegisterDuplicateTagFails(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("test", &testRunner{}))
	err := r.Register("test", &testRunner{})
	require.Error(t, err)
}

func TestNewDefaultRegistersBuiltins(t *testing.T) {
	r := NewDefault(psexec.New())
	for _, tag := range []string{"shell", "python", "gnuplot", "awk", "test", "python-hadoop-mapreduce"} {
		_, ok := r.Get(tag)
		require.True(t, ok, "expected tag %s to be registered", tag)
	}
}

func TestTestRunnerCreatesFiles(t *testing.T) {
	dir := t.TempDir()
	r := &testRunner{}
	err := r.Run(context.Background(), "a.txt b.txt", model.Context{}, dir, []string{"hello"})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
}

func TestConfigApplyUnknownKernel(t *testing.T) {
	cfg := &Config{Kernels: []KernelEntry{{Name: "nonexistent"}}}
	err := cfg.Apply(New(), psexec.New(), DefaultFactories())
	require.Error(t, err)
}

func TestConfigApplyRegistersWithTagOverride(t *testing.T) {
	cfg := &Config{Kernels: []KernelEntry{{Name: "test", Tag: "t"}}}
	reg := New()
	require.NoError(t, cfg.Apply(reg, psexec.New(), DefaultFactories()))
	_, ok := reg.Get("t")
	require.True(t, ok)
}

func TestLoadConfigValidKernelPaths(t *testing.T) {
	dir := t.TempDir()
	kernels := filepath.Join(dir, "kernels")
	require.NoError(t, os.Mkdir(kernels, 0o755))

	cfgPath := filepath.Join(dir, "registry.yml")
	content := "kernel_paths:\n  - " + kernels + "\nkernels:\n  - name: shell\n  - name: test\n    tag: t\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := LoadConfig(cfgPath)
	require.NoError(t, err)
	require.Len(t, cfg.Kernels, 2)

	reg := New()
	require.NoError(t, cfg.Apply(reg, psexec.New(), DefaultFactories()))
	_, ok := reg.Get("shell")
	require.True(t, ok)
	_, ok = reg.Get("t")
	require.True(t, ok)
}

func TestLoadConfigMissingKernelPath(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "registry.yml")
	content := "kernel_paths:\n  - " + filepath.Join(dir, "no-such-dir") + "\nkernels:\n  - name: shell\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	_, err := LoadConfig(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "kernel path")
}

func TestLoadConfigKernelPathIsFile(t *testing.T) {
	dir := t.TempDir()
	notADir := filepath.Join(dir, "plain-file")
	require.NoError(t, os.WriteFile(notADir, []byte("x"), 0o644))

	cfgPath := filepath.Join(dir, "registry.yml")
	content := "kernel_paths:\n  - " + notADir + "\nkernels: []\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	_, err := LoadConfig(cfgPath)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a directory")
}
