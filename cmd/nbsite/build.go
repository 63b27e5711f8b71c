package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"

	nbsite "github.com/alnah/go-nbsite"
	"github.com/alnah/go-nbsite/internal/config"
	"github.com/alnah/go-nbsite/internal/hints"
)

// ErrUnexpectedArgs is returned when a command gets positional arguments.
var ErrUnexpectedArgs = errors.New("unexpected arguments")

// generatedPrefix starts the success line printed for each page.
const generatedPrefix = "Generated: "

// runBuild builds the site once.
func runBuild(args []string, env *Environment) error {
	flags, positional, err := parseBuildFlags("build", args, env.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: %s", ErrUnexpectedArgs, strings.Join(positional, " "))
	}

	cfg, err := resolveConfig(&flags.common, &flags.site, env)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	return buildSite(ctx, cfg, &flags.common, env)
}

// resolveConfig merges defaults, the site config file, NBSITE_* variables
// and flags, in increasing order of precedence.
func resolveConfig(common *commonFlags, site *siteFlags, env *Environment) (*config.Config, error) {
	lookup, err := newEnvLookup(env)
	if err != nil {
		return nil, err
	}
	if env.Environ != nil {
		warnUnknownEnvVars(env.Stderr, lookup.names(env.Environ()))
	}
	envCfg := loadEnvConfig(lookup)

	configName := common.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if configName != "" {
		cfg, err = config.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForSiteConfigNotFound(config.SearchPaths(configName)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(site, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(f *siteFlags, cfg *config.Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&cfg.Registry, f.registry)
	setString(&cfg.Authors, f.authors)
	setString(&cfg.ExamplesDir, f.examples)
	setString(&cfg.WikiDir, f.wiki)
	setString(&cfg.OutputDir, f.output)
	setString(&cfg.Style, f.style)
	setString(&cfg.DateFormat, f.dateFormat)
	setString(&cfg.MetricsFile, f.metricsFile)

	if f.escapeSet {
		cfg.Escape = f.escape
	}
	if f.keepGoingSet {
		cfg.KeepGoing = f.keepGoing
	}
	if f.workers != workersUnset {
		cfg.Workers = f.workers
	}
}

// newLogger returns a debug-level text logger on w when verbose,
// and a logger that discards everything otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// builderOptions translates the resolved config into builder options.
func builderOptions(cfg *config.Config, stdout io.Writer, logger *slog.Logger) []nbsite.Option {
	return []nbsite.Option{
		nbsite.WithRegistryFile(cfg.Registry),
		nbsite.WithAuthorsFile(cfg.Authors),
		nbsite.WithExamplesDir(cfg.ExamplesDir),
		nbsite.WithWikiDir(cfg.WikiDir),
		nbsite.WithOutputDir(cfg.OutputDir),
		nbsite.WithStyle(cfg.Style),
		nbsite.WithDateFormat(cfg.DateFormat),
		nbsite.WithEscape(cfg.Escape),
		nbsite.WithWorkers(cfg.Workers),
		nbsite.WithContinueOnError(cfg.KeepGoing),
		nbsite.WithStdout(stdout),
		nbsite.WithLogger(logger),
	}
}

// buildSite runs one build with the resolved configuration and prints a
// summary when verbose. Failures get actionable hints appended.
func buildSite(ctx context.Context, cfg *config.Config, common *commonFlags, env *Environment) error {
	var stdout io.Writer = env.Stdout
	if common.quiet {
		stdout = &quietWriter{w: env.Stdout}
	}
	logger := newLogger(env.Stderr, common.verbose)
	opts := builderOptions(cfg, stdout, logger)

	var registry *prometheus.Registry
	if cfg.MetricsFile != "" {
		registry = prometheus.NewRegistry()
		metrics, err := nbsite.NewMetrics(registry)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		opts = append(opts, nbsite.WithMetrics(metrics))
	}

	builder, err := nbsite.NewBuilder(opts...)
	if err != nil {
		return err
	}
	if common.verbose {
		fmt.Fprintf(env.Stderr, "Workers: %d\n", builder.Workers())
	}

	start := env.Now()
	report, buildErr := builder.Run(ctx)

	if registry != nil {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
			fmt.Fprintf(env.Stderr, "warning: writing metrics to %s: %v\n", cfg.MetricsFile, err)
		}
	}

	if buildErr != nil {
		return withHints(buildErr, cfg)
	}

	if common.verbose {
		fmt.Fprintf(env.Stderr, "Built %d page(s), skipped %d, failed %d in %v\n",
			report.Count(nbsite.StatusGenerated),
			report.Count(nbsite.StatusNotFound)+report.Count(nbsite.StatusUnsupported),
			report.Count(nbsite.StatusFailed),
			env.Now().Sub(start).Round(time.Millisecond))
	}

	if failed := report.Count(nbsite.StatusFailed); failed > 0 {
		return fmt.Errorf("%w: %d page(s) failed", nbsite.ErrConversion, failed)
	}
	return nil
}

// withHints appends actionable hints to a build error.
func withHints(err error, cfg *config.Config) error {
	switch {
	case errors.Is(err, nbsite.ErrConfigRead):
		path := cfg.Registry
		var cfe *nbsite.ConfigFileError
		if errors.As(err, &cfe) {
			path = cfe.Path
		}
		return fmt.Errorf("%w%s", err, hints.ForConfigRead(path, nbsite.IsNotFound(err)))
	case errors.Is(err, nbsite.ErrConversion):
		return fmt.Errorf("%w%s", err, hints.ForNotebook())
	case errors.Is(err, nbsite.ErrWriteOutput), errors.Is(err, nbsite.ErrOutputDir):
		return fmt.Errorf("%w%s", err, hints.ForWrite(cfg.OutputDir))
	default:
		return err
	}
}

// quietWriter drops per-page success lines and passes everything else.
// The builder writes each line with a single Write call.
type quietWriter struct {
	w io.Writer
}

func (q *quietWriter) Write(p []byte) (int, error) {
	if bytes.HasPrefix(p, []byte(generatedPrefix)) {
		return len(p), nil
	}
	return q.w.Write(p)
}
