package nbsite

// Notes:
// - Tests run against real temp directories; nothing is mocked below the
//   Builder, so resolution, conversion and writes are exercised together.
// - Parallel builds are compared to sequential builds by output, not by
//   timing: ordering is the observable contract.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testSite struct {
	root     string
	examples string
	wiki     string
	out      string
}

func newTestSite(t *testing.T) testSite {
	t.Helper()
	root := t.TempDir()
	s := testSite{
		root:     root,
		examples: filepath.Join(root, "examples"),
		wiki:     filepath.Join(root, "wiki"),
		out:      filepath.Join(root, "site"),
	}
	for _, dir := range []string{s.examples, s.wiki, s.out} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func (s testSite) builder(t *testing.T, stdout *bytes.Buffer, opts ...Option) *Builder {
	t.Helper()
	base := []Option{
		WithExamplesDir(s.examples),
		WithWikiDir(s.wiki),
		WithOutputDir(s.out),
		WithRegistryFile(filepath.Join(s.root, "registry.yaml")),
		WithAuthorsFile(filepath.Join(s.root, "authors.yaml")),
		WithStdout(stdout),
	}
	b, err := NewBuilder(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b
}

func readPage(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("%s exists, want no file (stat err = %v)", path, err)
	}
}

const goodNotebook = `{
 "nbformat": 4, "nbformat_minor": 5, "metadata": {},
 "cells": [{"cell_type": "markdown", "metadata": {}, "source": "# From a notebook"}]
}`

// ---------------------------------------------------------------------------
// TestRun_EndToEnd - Registry, authors and one Markdown page
// ---------------------------------------------------------------------------

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	writeFile(t, filepath.Join(s.root, "registry.yaml"),
		"- path: a.md\n  title: Hello\n  authors: [alice]\n  tags: [intro]\n")
	writeFile(t, filepath.Join(s.root, "authors.yaml"),
		"alice:\n  name: Alice A.\n  website: http://a.example\n")
	writeFile(t, filepath.Join(s.examples, "a.md"), "Body text.\n")

	var stdout bytes.Buffer
	report, err := s.builder(t, &stdout).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := filepath.Join(s.out, "a.html")
	page := readPage(t, out)
	for _, want := range []string{
		"<h1>Hello</h1>",
		`<a href="http://a.example">Alice A.</a>`,
		"<strong>Tags:</strong> intro",
		"<p>Body text.</p>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q\ngot: %s", want, page)
		}
	}

	if got, want := stdout.String(), "Generated: "+out+"\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if n := report.Count(StatusGenerated); n != 1 {
		t.Errorf("generated = %d, want 1", n)
	}
}

func TestRun_CreatesOutputDirBeforeReadingConfig(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	out := filepath.Join(s.root, "public", "nested")

	var stdout bytes.Buffer
	_, err := s.builder(t, &stdout, WithOutputDir(out)).Run(context.Background())
	if !errors.Is(err, ErrConfigRead) {
		t.Fatalf("error = %v, want ErrConfigRead", err)
	}
	if info, statErr := os.Stat(out); statErr != nil || !info.IsDir() {
		t.Errorf("output dir not created: %v", statErr)
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing authors file", func(t *testing.T) {
		t.Parallel()

		s := newTestSite(t)
		writeFile(t, filepath.Join(s.root, "registry.yaml"), "- path: a.md\n")

		var stdout bytes.Buffer
		_, err := s.builder(t, &stdout).Run(context.Background())
		if !errors.Is(err, ErrConfigRead) {
			t.Errorf("error = %v, want ErrConfigRead", err)
		}
		if !IsNotFound(err) {
			t.Errorf("IsNotFound(%v) = false, want true", err)
		}
	})

	t.Run("output dir is a file", func(t *testing.T) {
		t.Parallel()

		s := newTestSite(t)
		blocker := writeFile(t, filepath.Join(s.root, "blocker"), "x")

		var stdout bytes.Buffer
		_, err := s.builder(t, &stdout, WithOutputDir(blocker)).Run(context.Background())
		if !errors.Is(err, ErrOutputDir) {
			t.Errorf("error = %v, want ErrOutputDir", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuild_Resolution - Source lookup, skips and output naming
// ---------------------------------------------------------------------------

func TestBuild_Resolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		files      map[string]string // relative to site root
		dirs       []string
		entry      Entry
		wantStatus PageStatus
		wantLog    string // "%s" is replaced by the site root
		wantOut    string // relative to output dir, "" for none
		wantBody   string
	}{
		{
			name:       "notebook in examples",
			files:      map[string]string{"examples/foo.ipynb": goodNotebook},
			entry:      Entry{Path: "examples/foo.ipynb", Title: "Foo"},
			wantStatus: StatusGenerated,
			wantLog:    "Generated: %s/site/foo.html\n",
			wantOut:    "foo.html",
			wantBody:   "<h1>From a notebook</h1>",
		},
		{
			name:       "notebook only in wiki is not found",
			files:      map[string]string{"wiki/foo.ipynb": goodNotebook},
			entry:      Entry{Path: "foo.ipynb"},
			wantStatus: StatusNotFound,
			wantLog:    "Notebook not found: %s/examples/foo.ipynb\n",
		},
		{
			name:       "markdown in wiki",
			files:      map[string]string{"wiki/bar.md": "wiki bar"},
			entry:      Entry{Path: "wiki/bar.md"},
			wantStatus: StatusGenerated,
			wantLog:    "Generated: %s/site/bar.html\n",
			wantOut:    "bar.html",
			wantBody:   "wiki bar",
		},
		{
			name:       "markdown prefers examples",
			files:      map[string]string{"examples/bar.md": "examples bar", "wiki/bar.md": "wiki bar"},
			entry:      Entry{Path: "wiki/bar.md"},
			wantStatus: StatusGenerated,
			wantLog:    "Generated: %s/site/bar.html\n",
			wantOut:    "bar.html",
			wantBody:   "examples bar",
		},
		{
			name:       "only the base name is used",
			files:      map[string]string{"wiki/deep.md": "deep"},
			entry:      Entry{Path: "docs/guides/2024/deep.md"},
			wantStatus: StatusGenerated,
			wantLog:    "Generated: %s/site/deep.html\n",
			wantOut:    "deep.html",
			wantBody:   "deep",
		},
		{
			name:       "markdown missing everywhere logs last tried path",
			entry:      Entry{Path: "gone.md"},
			wantStatus: StatusNotFound,
			wantLog:    "Markdown not found: %s/wiki/gone.md\n",
		},
		{
			name:       "directory is not a source",
			dirs:       []string{"examples/dir.md"},
			files:      map[string]string{"wiki/dir.md": "from wiki"},
			entry:      Entry{Path: "dir.md"},
			wantStatus: StatusGenerated,
			wantLog:    "Generated: %s/site/dir.html\n",
			wantOut:    "dir.html",
			wantBody:   "from wiki",
		},
		{
			name:       "unsupported extension",
			files:      map[string]string{"examples/notes.txt": "x"},
			entry:      Entry{Path: "notes.txt"},
			wantStatus: StatusUnsupported,
			wantLog:    "Unsupported file type: notes.txt\n",
		},
		{
			name:       "extension match is case-sensitive",
			files:      map[string]string{"examples/README.MD": "x"},
			entry:      Entry{Path: "README.MD"},
			wantStatus: StatusUnsupported,
			wantLog:    "Unsupported file type: README.MD\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestSite(t)
			for _, d := range tt.dirs {
				if err := os.MkdirAll(filepath.Join(s.root, d), 0o750); err != nil {
					t.Fatal(err)
				}
			}
			for rel, content := range tt.files {
				writeFile(t, filepath.Join(s.root, rel), content)
			}

			var stdout bytes.Buffer
			report, err := s.builder(t, &stdout).Build(context.Background(), Registry{tt.entry}, nil)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			if got := report.Pages[0].Status; got != tt.wantStatus {
				t.Errorf("status = %q, want %q", got, tt.wantStatus)
			}
			wantLog := strings.ReplaceAll(tt.wantLog, "%s", s.root)
			if got := stdout.String(); got != wantLog {
				t.Errorf("stdout = %q, want %q", got, wantLog)
			}

			entries, err := os.ReadDir(s.out)
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantOut == "" {
				if len(entries) != 0 {
					t.Errorf("output dir has %d files, want none", len(entries))
				}
				return
			}
			page := readPage(t, filepath.Join(s.out, tt.wantOut))
			if !strings.Contains(page, tt.wantBody) {
				t.Errorf("page missing %q\ngot: %s", tt.wantBody, page)
			}
		})
	}
}

func TestBuild_UnknownAuthorDefaults(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	writeFile(t, filepath.Join(s.examples, "a.md"), "x")

	var stdout bytes.Buffer
	_, err := s.builder(t, &stdout).Build(context.Background(),
		Registry{{Path: "a.md", Title: "A", Authors: []string{"ghost"}}},
		AuthorDirectory{"alice": {Name: "Alice"}})
	if err != nil {
		t.Fatal(err)
	}

	page := readPage(t, filepath.Join(s.out, "a.html"))
	want := `<div><img src="" width="32" style="vertical-align:middle;"> <a href="#">ghost</a></div>`
	if !strings.Contains(page, want) {
		t.Errorf("page missing %q\ngot: %s", want, page)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	writeFile(t, filepath.Join(s.examples, "a.md"), "# A\n\ntext")
	writeFile(t, filepath.Join(s.examples, "n.ipynb"), goodNotebook)
	reg := Registry{
		{Path: "a.md", Title: "A", Date: "2024-01-01", Authors: []string{"x", "y"}, Tags: []string{"t1", "t2"}},
		{Path: "n.ipynb", Title: "N"},
	}

	var stdout bytes.Buffer
	b := s.builder(t, &stdout)
	if _, err := b.Build(context.Background(), reg, nil); err != nil {
		t.Fatal(err)
	}
	first := readPage(t, filepath.Join(s.out, "a.html")) + readPage(t, filepath.Join(s.out, "n.html"))

	if _, err := b.Build(context.Background(), reg, nil); err != nil {
		t.Fatal(err)
	}
	second := readPage(t, filepath.Join(s.out, "a.html")) + readPage(t, filepath.Join(s.out, "n.html"))

	if first != second {
		t.Error("pages differ between identical builds")
	}
}

// ---------------------------------------------------------------------------
// TestBuild_Collisions - Overwrite warnings
// ---------------------------------------------------------------------------

func TestBuild_Collisions(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	writeFile(t, filepath.Join(s.examples, "a.md"), "markdown a")
	writeFile(t, filepath.Join(s.examples, "a.ipynb"), goodNotebook)

	var stdout bytes.Buffer
	report, err := s.builder(t, &stdout).Build(context.Background(), Registry{
		{Path: "a.md", Title: "First"},
		{Path: "a.ipynb", Title: "Second"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(s.out, "a.html")
	mdSrc := filepath.Join(s.examples, "a.md")
	nbSrc := filepath.Join(s.examples, "a.ipynb")
	want := "Generated: " + out + "\n" +
		"Warning: " + out + " overwritten by " + nbSrc + " (previously " + mdSrc + ")\n" +
		"Generated: " + out + "\n"
	if got := stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	if len(report.Collisions) != 1 {
		t.Fatalf("collisions = %d, want 1", len(report.Collisions))
	}
	if c := report.Collisions[0]; c.Source != nbSrc || c.Previous != mdSrc {
		t.Errorf("collision = %+v", c)
	}

	if page := readPage(t, out); !strings.Contains(page, "<h1>Second</h1>") {
		t.Errorf("last entry should win\ngot: %s", page)
	}
}

func TestBuild_CaseFoldedCollision(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	writeFile(t, filepath.Join(s.examples, "Intro.md"), "upper")
	writeFile(t, filepath.Join(s.wiki, "intro.md"), "lower")

	var stdout bytes.Buffer
	report, err := s.builder(t, &stdout).Build(context.Background(), Registry{
		{Path: "Intro.md"},
		{Path: "intro.md"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Collisions) != 1 {
		t.Errorf("collisions = %d, want 1\nstdout: %s", len(report.Collisions), stdout.String())
	}
	if !strings.Contains(stdout.String(), "Warning: ") {
		t.Errorf("missing warning line\nstdout: %s", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestBuild_ConversionFailure - Fatal by default, skipped when keep-going
// ---------------------------------------------------------------------------

func TestBuild_ConversionFailure(t *testing.T) {
	t.Parallel()

	reg := Registry{
		{Path: "first.md", Title: "First"},
		{Path: "broken.ipynb", Title: "Broken"},
		{Path: "last.md", Title: "Last"},
	}
	setup := func(t *testing.T) testSite {
		s := newTestSite(t)
		writeFile(t, filepath.Join(s.examples, "first.md"), "first")
		writeFile(t, filepath.Join(s.examples, "broken.ipynb"), `{"nbformat": 4, "cells": [`)
		writeFile(t, filepath.Join(s.examples, "last.md"), "last")
		return s
	}

	t.Run("aborts and keeps earlier pages", func(t *testing.T) {
		t.Parallel()

		s := setup(t)
		var stdout bytes.Buffer
		report, err := s.builder(t, &stdout).Build(context.Background(), reg, nil)
		if !errors.Is(err, ErrConversion) {
			t.Fatalf("error = %v, want ErrConversion", err)
		}
		if report == nil || report.Pages[1].Status != StatusFailed {
			t.Errorf("broken entry not marked failed: %+v", report)
		}
		readPage(t, filepath.Join(s.out, "first.html"))
		assertNoFile(t, filepath.Join(s.out, "last.html"))
	})

	t.Run("keep going skips the failure", func(t *testing.T) {
		t.Parallel()

		s := setup(t)
		var stdout bytes.Buffer
		report, err := s.builder(t, &stdout, WithContinueOnError(true)).Build(context.Background(), reg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout.String(), "Failed: "+filepath.Join(s.examples, "broken.ipynb")+": ") {
			t.Errorf("missing Failed line\nstdout: %s", stdout.String())
		}
		if report.Count(StatusGenerated) != 2 || report.Count(StatusFailed) != 1 {
			t.Errorf("generated=%d failed=%d, want 2 and 1",
				report.Count(StatusGenerated), report.Count(StatusFailed))
		}
		readPage(t, filepath.Join(s.out, "last.html"))
		assertNoFile(t, filepath.Join(s.out, "broken.html"))
	})
}

func TestBuild_WriteFailure(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	writeFile(t, filepath.Join(s.examples, "a.md"), "a")
	if err := os.MkdirAll(filepath.Join(s.out, "a.html"), 0o750); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	_, err := s.builder(t, &stdout).Build(context.Background(), Registry{{Path: "a.md"}}, nil)
	if !errors.Is(err, ErrWriteOutput) {
		t.Errorf("error = %v, want ErrWriteOutput", err)
	}
}

func TestBuild_CancelledContext(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	writeFile(t, filepath.Join(s.examples, "a.md"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		var stdout bytes.Buffer
		_, err := s.builder(t, &stdout, WithWorkers(workers)).Build(ctx, Registry{{Path: "a.md"}}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: error = %v, want context.Canceled", workers, err)
		}
	}
	assertNoFile(t, filepath.Join(s.out, "a.html"))
}

// ---------------------------------------------------------------------------
// TestBuild_ParallelMatchesSequential - Ordering with a worker pool
// ---------------------------------------------------------------------------

func TestBuild_ParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	var reg Registry
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		writeFile(t, filepath.Join(s.examples, name+".md"), "# "+name)
		reg = append(reg, Entry{Path: name + ".md", Title: strings.ToUpper(name)})
	}
	writeFile(t, filepath.Join(s.examples, "nb.ipynb"), goodNotebook)
	reg = append(reg,
		Entry{Path: "nb.ipynb", Title: "NB"},
		Entry{Path: "missing.md"},
		Entry{Path: "x.txt"},
		Entry{Path: "a.md", Title: "A again"},
	)

	build := func(workers int) (string, map[string]string) {
		out := filepath.Join(s.root, "site-"+strings.Repeat("w", workers))
		if err := os.MkdirAll(out, 0o750); err != nil {
			t.Fatal(err)
		}
		var stdout bytes.Buffer
		if _, err := s.builder(t, &stdout, WithWorkers(workers), WithOutputDir(out)).
			Build(context.Background(), reg, nil); err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		pages := map[string]string{}
		entries, _ := os.ReadDir(out)
		for _, e := range entries {
			pages[e.Name()] = readPage(t, filepath.Join(out, e.Name()))
		}
		return strings.ReplaceAll(stdout.String(), out, "OUT"), pages
	}

	seqLog, seqPages := build(1)
	parLog, parPages := build(4)

	if seqLog != parLog {
		t.Errorf("log differs\nsequential:\n%s\nparallel:\n%s", seqLog, parLog)
	}
	if len(seqPages) != len(parPages) {
		t.Fatalf("page count: sequential %d, parallel %d", len(seqPages), len(parPages))
	}
	for name, page := range seqPages {
		if parPages[name] != page {
			t.Errorf("page %s differs", name)
		}
	}
	if !strings.Contains(seqPages["a.html"], "<h1>A again</h1>") {
		t.Error("later duplicate entry should overwrite a.html")
	}
}

// ---------------------------------------------------------------------------
// TestBuild_Options - Escape, style and date format reach the pages
// ---------------------------------------------------------------------------

func TestBuild_Options(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	writeFile(t, filepath.Join(s.examples, "a.md"), "<div>raw</div>\n")
	reg := Registry{{Path: "a.md", Title: "<T>", Date: "2024-03-05"}}

	var stdout bytes.Buffer
	b := s.builder(t, &stdout, WithEscape(true), WithStyle("default"), WithDateFormat("european"))
	if _, err := b.Build(context.Background(), reg, nil); err != nil {
		t.Fatal(err)
	}

	page := readPage(t, filepath.Join(s.out, "a.html"))
	for _, want := range []string{"<h1>&lt;T&gt;</h1>", "<style>", ".chroma", "05/03/2024"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, "<div>raw</div>") {
		t.Error("raw HTML should be dropped when escaping")
	}
}

func TestNewBuilder_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{name: "negative workers", opts: []Option{WithWorkers(-1)}, wantErr: ErrInvalidWorkers},
		{name: "too many workers", opts: []Option{WithWorkers(MaxWorkers + 1)}, wantErr: ErrInvalidWorkers},
		{name: "unknown style", opts: []Option{WithStyle("no-such-style")}, wantErr: ErrStyleNotFound},
		{name: "missing style file", opts: []Option{WithStyle("./missing.css")}, wantErr: ErrStyleNotFound},
		{name: "bad date format", opts: []Option{WithDateFormat("[YYYY")}, wantErr: ErrInvalidDateFormat},
		{name: "defaults", opts: nil, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewBuilder(tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewBuilder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPlan - Dry run
// ---------------------------------------------------------------------------

func TestPlan(t *testing.T) {
	t.Parallel()

	s := newTestSite(t)
	writeFile(t, filepath.Join(s.examples, "a.md"), "a")
	writeFile(t, filepath.Join(s.wiki, "a.md"), "wiki a")
	writeFile(t, filepath.Join(s.examples, "a.ipynb"), goodNotebook)

	var stdout bytes.Buffer
	report := s.builder(t, &stdout).Plan(Registry{
		{Path: "a.md"},
		{Path: "a.ipynb"},
		{Path: "b.md"},
		{Path: "c.rst"},
	})

	wantStatus := []PageStatus{StatusReady, StatusReady, StatusNotFound, StatusUnsupported}
	for i, want := range wantStatus {
		if got := report.Pages[i].Status; got != want {
			t.Errorf("page %d status = %q, want %q", i, got, want)
		}
	}
	if got := report.Pages[0].Source; got != filepath.Join(s.examples, "a.md") {
		t.Errorf("a.md source = %q", got)
	}
	if got := report.Pages[2].Tried; len(got) != 2 {
		t.Errorf("b.md tried = %v, want examples and wiki", got)
	}
	if len(report.Collisions) != 1 {
		t.Errorf("predicted collisions = %d, want 1", len(report.Collisions))
	}
	if stdout.Len() != 0 {
		t.Errorf("Plan wrote to stdout: %q", stdout.String())
	}
	entries, _ := os.ReadDir(s.out)
	if len(entries) != 0 {
		t.Errorf("Plan wrote %d files", len(entries))
	}
}
