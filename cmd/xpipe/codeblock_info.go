package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/pflag"
	"github.com/titpetric/cli"

	"github.com/titpetric/xpipe/fuzzy"
)

// CodeblockInfo provides the cli.Command that lists registered code block
// runners, or prints the long help for one.
func CodeblockInfo() *cli.Command {
	opts := NewOptions()

	return &cli.Command{
		Name:  "codeblock_info",
		Title: "Describe registered code block runners",
		Bind: func(fs *pflag.FlagSet) {
			fs.StringVar(&opts.Kernels, "kernels", "", "Registry configuration file listing active code block runners")
			opts.BindCommon(fs)
		},
		Run: func(ctx context.Context, args []string) error {
			return runCodeblockInfo(ctx, opts, args)
		},
	}
}

func runCodeblockInfo(_ context.Context, opts *Options, args []string) error {
	if err := setLogLevel(opts.LogLevel); err != nil {
		return err
	}

	tc := newToolchain()
	reg, err := tc.newRegistry(opts.Kernels)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		for _, tag := range reg.Tags() {
			runner, _ := reg.Get(tag)
			fmt.Printf("%-25s %s\n", tag, runner.ShortHelp())
		}
		return nil
	}

	tag := args[0]
	runner, ok := reg.Get(tag)
	if !ok {
		msg := fmt.Sprintf("no code block registered under tag %q", tag)
		if s := fuzzy.SuggestOne(tag, reg.Tags()); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return fmt.Errorf("%s", msg)
	}

	fmt.Printf("%s: %s\n\n%s\n", tag, runner.ShortHelp(), runner.LongHelp())
	if envVars := runner.EnvVarsHelp(); len(envVars) > 0 {
		names := make([]string, 0, len(envVars))
		for name := range envVars {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nEnvironment variables:")
		for _, name := range names {
			fmt.Printf("  %-28s %s\n", name, envVars[name])
		}
	}
	return nil
}
