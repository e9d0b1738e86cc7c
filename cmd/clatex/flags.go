package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common  commonFlags
	format  string
	start   string
	target  string
	output  string
	assets  string
	pdf     bool
	timeout string
	workers int
	watch   bool
}

// initFlags holds flags for the init command.
type initFlags struct {
	force bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show progress and timing")
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, []string, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &buildFlags{}

	fs.StringVarP(&f.format, "format", "f", "latex", "output format: latex, html")
	fs.StringVarP(&f.start, "start", "s", "", "main document of a single target")
	fs.StringVarP(&f.target, "target", "t", "", "output name (with --start) or configured target to build")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.assets, "assets", "", "custom template and style directory")
	fs.BoolVar(&f.pdf, "pdf", false, "also print HTML output to PDF")
	fs.StringVar(&f.timeout, "timeout", "", "PDF page load timeout (e.g., 30s, 2m)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.watch, "watch", false, "rebuild when sources or the config change")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printBuildUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseInitFlags parses init command flags and returns positional args.
func parseInitFlags(args []string, stderr io.Writer) (*initFlags, []string, error) {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &initFlags{}

	fs.BoolVar(&f.force, "force", false, "overwrite an existing config")
	fs.Usage = func() { printInitUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
