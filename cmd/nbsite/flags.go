package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrInvalidFlags wraps flag parsing failures.
var ErrInvalidFlags = errors.New("invalid flags")

// workersUnset detects if --workers was explicitly set.
// 0 is valid (auto), so an out-of-range sentinel is used.
const workersUnset = -1

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags holds flags that override the site configuration.
type siteFlags struct {
	registry    string
	authors     string
	examples    string
	wiki        string
	output      string
	style       string
	dateFormat  string
	escape      bool
	workers     int
	keepGoing   bool
	metricsFile string

	// escapeSet and keepGoingSet record an explicit --escape or
	// --keep-going, so "=false" can override env and config.
	escapeSet    bool
	keepGoingSet bool
}

// buildFlags holds all flags for the build and watch commands.
type buildFlags struct {
	common commonFlags
	site   siteFlags
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common     commonFlags
	site       siteFlags
	jsonOutput bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "site config name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show skips, warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log resolution and timing details")
}

// addSiteFlags adds site layout and rendering flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVar(&f.registry, "registry", "", "registry file")
	fs.StringVar(&f.authors, "authors", "", "authors file")
	fs.StringVar(&f.examples, "examples", "", "examples directory")
	fs.StringVar(&f.wiki, "wiki", "", "wiki directory")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.dateFormat, "date-format", "", "date display format or preset")
	fs.BoolVar(&f.escape, "escape", false, "escape metadata and sanitize embedded HTML")
	fs.IntVarP(&f.workers, "workers", "w", workersUnset, "parallel conversions (0 = auto)")
	fs.BoolVar(&f.keepGoing, "keep-going", false, "skip pages that fail to convert")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
}

// newBuildFlagSet registers the build and watch flags into f.
// Shared by parsing and shell completion.
func newBuildFlagSet(cmd string, f *buildFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	return fs
}

// newDoctorFlagSet registers the doctor flags into f.
func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	fs.BoolVar(&f.jsonOutput, "json", false, "print the report as JSON")
	return fs
}

// parseBuildFlags parses build or watch flags and returns positional args.
func parseBuildFlags(cmd string, args []string, usage io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet(cmd, f)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printCommandUsage(usage, cmd)
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidFlags, err)
	}

	markChanged(fs, &f.site)
	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string, usage io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := newDoctorFlagSet(f)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printCommandUsage(usage, "doctor")
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFlags, err)
	}

	markChanged(fs, &f.site)
	return f, nil
}

// markChanged records which boolean site flags were given explicitly.
func markChanged(fs *flag.FlagSet, f *siteFlags) {
	f.escapeSet = fs.Changed("escape")
	f.keepGoingSet = fs.Changed("keep-going")
}
