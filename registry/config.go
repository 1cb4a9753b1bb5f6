package registry

import (
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/titpetric/xpipe/psexec"
)

// Factory constructs a Runner bound to a shared process executor. Known
// runner names resolve against a static table of these; there is no
// dynamic loading of runner code.
type Factory func(exec *psexec.Executor) Runner

// KernelEntry names one runner to activate, with an optional tag
// override.
type KernelEntry struct {
	Name string `yaml:"name"`
	Tag  string `yaml:"tag,omitempty"`
}

// Config is the parsed form of a registry configuration file.
type Config struct {
	KernelPaths []string      `yaml:"kernel_paths,omitempty"`
	Kernels     []KernelEntry `yaml:"kernels"`
}

// DefaultFactories returns the static name -> Factory table used to
// resolve a Config's kernel entries, one per built-in runner.
func DefaultFactories() map[string]Factory {
	return map[string]Factory{
		"shell":                   func(e *psexec.Executor) Runner { return &shellRunner{exec: e} },
		"python":                  func(e *psexec.Executor) Runner { return &interpreterRunner{exec: e, envVar: "PYTHON", defaultCmd: "python", suffix: "py"} },
		"gnuplot":                 func(e *psexec.Executor) Runner { return &interpreterRunner{exec: e, envVar: "GNUPLOT", defaultCmd: "gnuplot", suffix: "gp"} },
		"awk":                     func(e *psexec.Executor) Runner { return &awkRunner{exec: e} },
		"test":                    func(e *psexec.Executor) Runner { return &testRunner{} },
		"python-hadoop-mapreduce": func(e *psexec.Executor) Runner { return &pyhmrRunner{exec: e} },
	}
}

// LoadConfig reads a YAML registry configuration from path. Any
// kernel-search directories named in cfg.KernelPaths are validated
// concurrently; a missing one is a configuration error. No registry
// state is touched until Apply runs.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing registry config %s: %w", path, err)
	}

	var g errgroup.Group
	for _, dir := range cfg.KernelPaths {
		dir := dir
		g.Go(func() error {
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("kernel path %s: %w", dir, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("kernel path %s: not a directory", dir)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Apply registers every kernel entry in cfg against factories, using its
// declared tag override or the runner's own default name. Duplicate tags
// surface as the same fatal error Register returns.
func (cfg *Config) Apply(reg *Registry, exec *psexec.Executor, factories map[string]Factory) error {
	for _, k := range cfg.Kernels {
		factory, ok := factories[k.Name]
		if !ok {
			return fmt.Errorf("unknown kernel name: %s", k.Name)
		}
		tag := k.Tag
		if tag == "" {
			tag = k.Name
		}
		if err := reg.Register(tag, factory(exec)); err != nil {
			return err
		}
	}
	return nil
}
