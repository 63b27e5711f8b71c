package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbsite [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Generate one HTML page per registry entry (default)")
	fmt.Fprintln(w, "  watch      Build, then rebuild when sources change")
	fmt.Fprintln(w, "  doctor     Check the site configuration without writing pages")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  completion Generate shell completion script")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'nbsite help <command>' for details on a specific command.")
}

// printSiteFlags prints the flags shared by build, watch and doctor.
func printSiteFlags(w io.Writer) {
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "  -c, --config <name>       Site config name or path")
	fmt.Fprintln(w, "      --registry <path>     Registry file (default: registry.yaml)")
	fmt.Fprintln(w, "      --authors <path>      Authors file (default: authors.yaml)")
	fmt.Fprintln(w, "      --examples <dir>      Examples directory (default: examples)")
	fmt.Fprintln(w, "      --wiki <dir>          Wiki directory (default: wiki)")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: site)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --style <name|path>   Embedded style (default, notebook) or CSS file")
	fmt.Fprintln(w, "      --date-format <s>     Display format for YYYY-MM-DD dates")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets (case-insensitive): iso, european, us, long")
	fmt.Fprintln(w, "      --escape              Escape metadata and sanitize embedded HTML")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Execution:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel conversions (0 = auto, default: 1)")
	fmt.Fprintln(w, "      --keep-going          Skip pages that fail to convert")
	fmt.Fprintln(w, "      --metrics-file <path> Write Prometheus metrics to a textfile")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show skips, warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Log resolution and timing details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  NBSITE_CONFIG, NBSITE_REGISTRY, NBSITE_AUTHORS, NBSITE_EXAMPLES_DIR,")
	fmt.Fprintln(w, "  NBSITE_WIKI_DIR, NBSITE_OUTPUT_DIR, NBSITE_STYLE, NBSITE_DATE_FORMAT,")
	fmt.Fprintln(w, "  NBSITE_ESCAPE, NBSITE_WORKERS, NBSITE_KEEP_GOING, NBSITE_METRICS_FILE")
	fmt.Fprintln(w, "  Values may also come from a .env file in the working directory.")
}

// printCommandUsage prints usage for build, watch or doctor.
func printCommandUsage(w io.Writer, cmd string) {
	switch cmd {
	case "watch":
		fmt.Fprintln(w, "Usage: nbsite watch [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Build the site, then rebuild when the registry, the authors file,")
		fmt.Fprintln(w, "or anything under the examples or wiki directory changes.")
		fmt.Fprintln(w, "Stops on Ctrl+C.")
	case "doctor":
		fmt.Fprintln(w, "Usage: nbsite doctor [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check configuration files, directories, sources, authors and")
		fmt.Fprintln(w, "output collisions without writing any page.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "      --json                Print the report as JSON")
	default:
		fmt.Fprintln(w, "Usage: nbsite build [flags]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Generate one HTML page per registry entry.")
	}
	fmt.Fprintln(w)
	printSiteFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "build", "watch", "doctor":
		printCommandUsage(env.Stdout, args[0])
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: nbsite version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "completion":
		printCompletionUsage(env.Stdout)
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: nbsite help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
