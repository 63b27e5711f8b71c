package nbsite

import (
	"io"
	"log/slog"
)

// Default site layout, relative to the site root.
const (
	DefaultExamplesDir = "examples"
	DefaultWikiDir     = "wiki"
	DefaultOutputDir   = "site"
)

// Option configures a Builder.
type Option func(*builderConfig)

// builderConfig holds the settings collected from options.
type builderConfig struct {
	registryFile    string
	authorsFile     string
	examplesDir     string
	wikiDir         string
	outputDir       string
	stdout          io.Writer
	logger          *slog.Logger
	workers         int
	escape          bool
	style           string
	dateFormat      string
	metrics         *Metrics
	continueOnError bool
}

func defaultConfig() builderConfig {
	return builderConfig{
		registryFile: DefaultRegistryFile,
		authorsFile:  DefaultAuthorsFile,
		examplesDir:  DefaultExamplesDir,
		wikiDir:      DefaultWikiDir,
		outputDir:    DefaultOutputDir,
		stdout:       io.Discard,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers:      1,
	}
}

// WithRegistryFile sets the registry file read by Run.
func WithRegistryFile(path string) Option {
	return func(c *builderConfig) { c.registryFile = path }
}

// WithAuthorsFile sets the authors file read by Run.
func WithAuthorsFile(path string) Option {
	return func(c *builderConfig) { c.authorsFile = path }
}

// WithExamplesDir sets the directory searched first for sources.
func WithExamplesDir(dir string) Option {
	return func(c *builderConfig) { c.examplesDir = dir }
}

// WithWikiDir sets the fallback directory for Markdown sources.
func WithWikiDir(dir string) Option {
	return func(c *builderConfig) { c.wikiDir = dir }
}

// WithOutputDir sets the directory pages are written to.
func WithOutputDir(dir string) Option {
	return func(c *builderConfig) { c.outputDir = dir }
}

// WithStdout sets the writer for progress lines ("Generated: ...").
// Progress is discarded by default.
func WithStdout(w io.Writer) Option {
	return func(c *builderConfig) {
		if w != nil {
			c.stdout = w
		}
	}
}

// WithLogger sets the structured debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *builderConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWorkers sets how many documents are converted concurrently.
// 1 (the default) is fully sequential. 0 picks a count from GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *builderConfig) { c.workers = n }
}

// WithEscape enables hardened rendering: page metadata is HTML-escaped,
// raw HTML in Markdown is dropped and scripts are removed from notebook
// HTML outputs.
func WithEscape(escape bool) Option {
	return func(c *builderConfig) { c.escape = escape }
}

// WithStyle injects a stylesheet into every page. Accepts an embedded style
// name (see StyleNames) or a path to a CSS file. Empty means no stylesheet.
func WithStyle(nameOrPath string) Option {
	return func(c *builderConfig) { c.style = nameOrPath }
}

// WithDateFormat reformats YYYY-MM-DD dates for display. Accepts a preset
// (iso, european, us, long) or a token format such as "DD/MM/YYYY".
func WithDateFormat(format string) Option {
	return func(c *builderConfig) { c.dateFormat = format }
}

// WithMetrics records build metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *builderConfig) { c.metrics = m }
}

// WithContinueOnError logs conversion failures and moves on instead of
// aborting the build.
func WithContinueOnError(keepGoing bool) Option {
	return func(c *builderConfig) { c.continueOnError = keepGoing }
}
