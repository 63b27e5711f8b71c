package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocsLogger(env.Stderr, wantsVerbose(os.Args[1:])))

	os.Exit(runMain(os.Args, env))
}

// maxprocsLogger prints GOMAXPROCS adjustments when verbose.
func maxprocsLogger(w io.Writer, verbose bool) maxprocs.Option {
	if !verbose {
		return maxprocs.Logger(func(string, ...interface{}) {})
	}
	return maxprocs.Logger(func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	})
}

// wantsVerbose scans raw arguments for the verbose flag before the
// command's flag set is parsed.
func wantsVerbose(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// runMain dispatches to a command and returns the process exit code.
// With no command, or when the first argument is a flag, it builds the site.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		return report(runBuild(args[:0], env), env)
	}

	cmd, rest := args[1], args[2:]
	if len(cmd) > 0 && cmd[0] == '-' {
		return report(runBuild(args[1:], env), env)
	}

	switch cmd {
	case "build":
		return report(runBuild(rest, env), env)
	case "watch":
		return report(runWatch(rest, env), env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "go-nbsite %s\n", Version)
		return ExitSuccess
	case "help":
		runHelp(rest, env)
		return ExitSuccess
	case "completion":
		return report(runCompletion(rest, env), env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// report prints err to stderr and maps it to an exit code.
func report(err error, env *Environment) int {
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
	}
	return exitCodeFor(err)
}
