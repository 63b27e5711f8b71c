package nbsite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alnah/go-nbsite/internal/assets"
	"github.com/alnah/go-nbsite/internal/dateutil"
	"github.com/alnah/go-nbsite/internal/pipeline"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: pages are published
)

// Compile-time interface implementation checks.
var (
	_ pipeline.Converter      = (*pipeline.MarkdownConverter)(nil)
	_ pipeline.Converter      = (*pipeline.NotebookConverter)(nil)
	_ pipeline.AuthorResolver = AuthorDirectory(nil)
)

// Builder generates the site: one HTML page per registry entry.
// Create with NewBuilder, then call Run (reads the configuration files)
// or Build (uses an already loaded registry and author directory).
type Builder struct {
	cfg        builderConfig
	converters map[SourceKind]pipeline.Converter
	pageOpts   pipeline.PageOptions
	workers    int
}

// NewBuilder creates a Builder with default configuration.
// Returns an error if the worker count, style or date format is invalid.
func NewBuilder(opts ...Option) (*Builder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.workers < 0 || cfg.workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d (must be 0 to %d)", ErrInvalidWorkers, cfg.workers, MaxWorkers)
	}

	b := &Builder{
		cfg: cfg,
		converters: map[SourceKind]pipeline.Converter{
			KindMarkdown: pipeline.NewMarkdownConverter(cfg.escape),
			KindNotebook: pipeline.NewNotebookConverter(cfg.escape),
		},
		pageOpts: pipeline.PageOptions{Escape: cfg.escape},
		workers:  ResolveWorkers(cfg.workers),
	}

	if err := b.resolveStyle(); err != nil {
		return nil, err
	}

	if cfg.dateFormat != "" {
		layout, err := dateutil.ResolveLayout(cfg.dateFormat)
		if err != nil {
			return nil, err
		}
		b.pageOpts.DateLayout = layout
	}

	return b, nil
}

// resolveStyle loads the configured stylesheet and appends the code
// highlighting rules it depends on.
func (b *Builder) resolveStyle() error {
	if b.cfg.style == "" {
		return nil
	}
	css, err := assets.Resolve(b.cfg.style)
	if err != nil {
		return fmt.Errorf("resolving style %q: %w", b.cfg.style, err)
	}
	highlight, err := pipeline.HighlightCSS()
	if err != nil {
		return err
	}
	b.pageOpts.CSS = css + "\n" + highlight
	return nil
}

// Workers returns the resolved number of conversion workers.
func (b *Builder) Workers() int {
	return b.workers
}

// OutputDir returns the directory pages are written to.
func (b *Builder) OutputDir() string {
	return b.cfg.outputDir
}

// Run creates the output directory, loads the registry and author files,
// then builds every entry.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	if err := os.MkdirAll(b.cfg.outputDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOutputDir, b.cfg.outputDir, err)
	}

	reg, err := LoadRegistry(b.cfg.registryFile)
	if err != nil {
		return nil, err
	}
	authors, err := LoadAuthors(b.cfg.authorsFile)
	if err != nil {
		return nil, err
	}

	return b.Build(ctx, reg, authors)
}

// Plan resolves every entry without converting anything.
// Predicted output collisions are included in the report.
func (b *Builder) Plan(reg Registry) *Report {
	report := &Report{Pages: make([]PageResult, 0, len(reg))}
	tracker := newCollisionTracker()
	for _, e := range reg {
		r := b.resolve(e)
		if r.Status == StatusReady {
			if c, ok := tracker.record(r.Output, r.Source); ok {
				report.Collisions = append(report.Collisions, c)
			}
		}
		report.Pages = append(report.Pages, r)
	}
	return report
}

// Build converts and writes one page per entry, in registry order.
// Missing sources and unsupported extensions are logged and skipped.
// Conversion and write failures stop the build unless continue-on-error
// is set; pages written before the failure stay on disk.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (b *Builder) Build(ctx context.Context, reg Registry, authors AuthorDirectory) (report *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	start := time.Now()
	plan := b.Plan(reg)
	report = &Report{Pages: plan.Pages}
	renderer := pipeline.NewPageRenderer(authors, b.pageOpts)
	tracker := newCollisionTracker()

	convs := b.startConversions(ctx, report.Pages)
	defer convs.stop()

	b.cfg.logger.Debug("build started", "entries", len(reg), "workers", b.workers)

	for i := range report.Pages {
		page := &report.Pages[i]
		if err := ctx.Err(); err != nil {
			return report, err
		}

		switch page.Status {
		case StatusUnsupported:
			b.printf("Unsupported file type: %s\n", page.Entry.Path)
			b.cfg.metrics.entrySkipped(page.Status)
			continue
		case StatusNotFound:
			b.printf("%s not found: %s\n", notFoundLabel(page.Kind), page.Source)
			b.cfg.metrics.entrySkipped(page.Status)
			continue
		}

		conv := convs.get(i)
		page.Duration = conv.duration
		if conv.err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			page.Status = StatusFailed
			page.Err = conv.err
			b.cfg.metrics.conversionFailed(page.Kind)
			if b.cfg.continueOnError {
				b.printf("Failed: %s: %v\n", page.Source, conv.err)
				continue
			}
			return report, fmt.Errorf("converting %s: %w", page.Source, conv.err)
		}
		b.cfg.metrics.observeConversion(page.Kind, conv.duration)

		html := renderer.Render(pipeline.PageData{
			Title:   page.Entry.Title,
			Date:    page.Entry.Date,
			Authors: page.Entry.Authors,
			Tags:    page.Entry.Tags,
			Content: conv.html,
		})

		if c, ok := tracker.record(page.Output, page.Source); ok {
			report.Collisions = append(report.Collisions, c)
			b.cfg.metrics.outputCollision()
			b.printf("Warning: %s overwritten by %s (previously %s)\n", c.Output, c.Source, c.Previous)
		}

		// #nosec G306 -- pages are meant to be readable
		if err := os.WriteFile(page.Output, []byte(html), filePermissions); err != nil {
			page.Status = StatusFailed
			page.Err = err
			return report, fmt.Errorf("%w: %s: %w", ErrWriteOutput, page.Output, err)
		}

		page.Status = StatusGenerated
		b.cfg.metrics.pageGenerated(page.Kind)
		b.printf("Generated: %s\n", page.Output)
		b.cfg.logger.Debug("page generated",
			"source", page.Source,
			"output", page.Output,
			"duration_ms", conv.duration.Milliseconds())
	}

	b.cfg.logger.Debug("build finished",
		"generated", report.Count(StatusGenerated),
		"skipped", report.Count(StatusNotFound)+report.Count(StatusUnsupported),
		"failed", report.Count(StatusFailed),
		"duration_ms", time.Since(start).Milliseconds())

	return report, nil
}

func (b *Builder) printf(format string, args ...any) {
	fmt.Fprintf(b.cfg.stdout, format, args...)
}

// conversion is the outcome of converting one source.
type conversion struct {
	html     string
	err      error
	duration time.Duration
}

// convert runs the converter for one resolved page.
// Panics in a converter are reported as errors.
func (b *Builder) convert(ctx context.Context, page PageResult) (c conversion) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c = conversion{err: fmt.Errorf("internal error: %v", r)}
		}
		c.duration = time.Since(start)
	}()

	html, err := b.converters[page.Kind].Convert(ctx, page.Source)
	return conversion{html: html, err: err}
}

// conversions hands out conversion results in registry order.
type conversions struct {
	get  func(i int) conversion
	stop func()
}

// startConversions prepares conversion of every ready page. With one worker
// each page is converted when asked for. With more, a bounded pool converts
// ahead while results are still consumed in order.
func (b *Builder) startConversions(ctx context.Context, pages []PageResult) conversions {
	if b.workers <= 1 {
		return conversions{
			get:  func(i int) conversion { return b.convert(ctx, pages[i]) },
			stop: func() {},
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	slots := make([]chan conversion, len(pages))
	for i := range pages {
		if pages[i].Status == StatusReady {
			slots[i] = make(chan conversion, 1)
		}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				slots[i] <- b.convert(ctx, pages[i])
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range pages {
			if slots[i] == nil {
				continue
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	return conversions{
		get: func(i int) conversion {
			select {
			case c := <-slots[i]:
				return c
			case <-ctx.Done():
				return conversion{err: ctx.Err()}
			}
		},
		stop: func() {
			cancel()
			wg.Wait()
		},
	}
}

// IsNotFound reports whether err means a configuration file is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
