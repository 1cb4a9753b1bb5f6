package main

import "github.com/spf13/pflag"

// Options holds command-line arguments shared by the xpipe subcommands.
// Each subcommand binds only the flags it understands.
type Options struct {
	Force     string
	ForceTop  bool
	ForceAll  bool
	ForceSolo bool

	Recur bool
	Bulk  bool

	LogFile   string
	FinalOnly bool
	Kernels   string
	LogLevel  string

	FlagSet *pflag.FlagSet
}

func NewOptions() *Options {
	return &Options{}
}

// BindCommon binds the flags every subcommand carries.
func (o *Options) BindCommon(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	o.FlagSet = fs
}

// BindRun binds the run subcommand's flags.
func (o *Options) BindRun(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Force, "force", "f", "", "Force mode (NONE|TOP|ALL|SOLO)")
	fs.BoolVarP(&o.ForceTop, "force-top", "T", false, "Force the named task to run (same as -f TOP)")
	fs.BoolVarP(&o.ForceAll, "force-all", "A", false, "Force every task to run (same as -f ALL)")
	fs.BoolVarP(&o.ForceSolo, "force-solo", "S", false, "Run only the named task (same as -f SOLO)")
	fs.StringVar(&o.LogFile, "log", "", "Log file path for command execution")
	fs.BoolVar(&o.FinalOnly, "final", false, "Only render final output without redrawing (no interactive tree)")
	fs.StringVar(&o.Kernels, "kernels", "", "Registry configuration file listing active code block runners")
	o.BindCommon(fs)
}

// BindMark binds the flags shared by mark and unmark.
func (o *Options) BindMark(fs *pflag.FlagSet) {
	fs.BoolVarP(&o.Recur, "recur", "r", false, "Cascade into used pipelines")
	fs.BoolVarP(&o.Bulk, "force", "f", false, "Permit operating on every task of the pipeline at once")
	o.BindCommon(fs)
}
