package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment and site fixtures
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for concurrent writes and reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testEnv returns an Environment whose process environment is vars only.
func testEnv(vars map[string]string) (*Environment, *syncBuffer, *syncBuffer) {
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env := &Environment{
		Now:    func() time.Time { return fixed },
		Stdout: stdout,
		Stderr: stderr,
		LookupEnv: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	return env, stdout, stderr
}

// testSite is a site root in a temp directory.
type testSite struct {
	root string
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	s := &testSite{root: t.TempDir()}
	for _, dir := range []string{"examples", "wiki"} {
		if err := os.MkdirAll(filepath.Join(s.root, dir), 0o750); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func (s *testSite) path(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

func (s *testSite) write(t *testing.T, rel, content string) {
	t.Helper()
	p := s.path(rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// flags returns the layout flags pointing every path into the site root.
func (s *testSite) flags(extra ...string) []string {
	return append([]string{
		"--registry", s.path("registry.yaml"),
		"--authors", s.path("authors.yaml"),
		"--examples", s.path("examples"),
		"--wiki", s.path("wiki"),
		"--output", s.path("site"),
	}, extra...)
}

// readPage returns the generated page content.
func (s *testSite) readPage(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(s.path("site/" + name))
	if err != nil {
		t.Fatalf("reading page %s: %v", name, err)
	}
	return string(data)
}

// standardSite writes one Markdown page, one missing notebook and one
// unsupported entry.
func standardSite(t *testing.T) *testSite {
	t.Helper()
	s := newTestSite(t)
	s.write(t, "registry.yaml", strings.Join([]string{
		"- path: intro.md",
		"  title: Intro",
		"  date: 2024-01-15",
		"  authors: [alice]",
		"  tags: [start]",
		"- path: missing.ipynb",
		"- path: data.csv",
		"",
	}, "\n"))
	s.write(t, "authors.yaml", "alice:\n  name: Alice A.\n  website: https://alice.example\n")
	s.write(t, "wiki/intro.md", "# Welcome\n\nFirst page.\n")
	return s
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}
