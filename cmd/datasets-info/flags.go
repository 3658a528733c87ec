package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/mkoziy/hdxinfo/internal/config"
)

const (
	outputDirFlag      = "output_dir"
	outputDirShorthand = "-od"
)

type options struct {
	OutputDir string
}

// parseFlags parses the command line. pflag shorthands are single letters,
// so the two-letter -od form is rewritten to --output_dir first.
func parseFlags(args []string) (options, error) {
	var opts options

	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	fs.StringVar(&opts.OutputDir, outputDirFlag, config.DefaultOutputDir, "Output folder (also -od)")

	if err := fs.Parse(normalizeArgs(args)); err != nil {
		return options{}, err
	}
	return opts, nil
}

func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		switch {
		case arg == outputDirShorthand:
			arg = "--" + outputDirFlag
		case strings.HasPrefix(arg, outputDirShorthand+"="):
			arg = "--" + outputDirFlag + strings.TrimPrefix(arg, outputDirShorthand)
		}
		out = append(out, arg)
	}
	return out
}
