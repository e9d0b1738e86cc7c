package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: clatex <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Render the project's documents to LaTeX or HTML")
	fmt.Fprintln(w, "  init       Write a starter config file")
	fmt.Fprintln(w, "  doctor     Check the project and the PDF environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'clatex help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: clatex build [source-dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every configured document, or a single one with --start.")
	fmt.Fprintln(w, "Output goes to <output>/<format>/<target>.tex|.html.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  source-dir    Markdown sources (default: project.sourceDir, relative to the config)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path (default: clatex.yaml if present)")
	fmt.Fprintln(w, "  -f, --format <s>          Output format: latex, html (default: latex)")
	fmt.Fprintln(w, "  -s, --start <doc>         Main document of a single target, e.g. index")
	fmt.Fprintln(w, "  -t, --target <name>       Output name with --start, else the configured target to build")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: project.outputDir)")
	fmt.Fprintln(w, "      --assets <dir>        Custom templates/ and styles/ directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --watch               Rebuild when sources or the config change")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --pdf                 Also print HTML output to PDF (requires Chrome)")
	fmt.Fprintln(w, "      --timeout <d>         Page load timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show progress and timing")
}

// printInitUsage prints usage for the init command.
func printInitUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: clatex init [path] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Write a config with the default settings (default path: clatex.yaml).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --force               Overwrite an existing file")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: clatex doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the config, sources, templates and Chrome installation.")
	fmt.Fprintln(w, "Exits with 1 when a build would fail.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --json                Print results as JSON")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "init":
		printInitUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: clatex version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: clatex help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
