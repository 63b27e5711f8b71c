//go:build bench

package nbsite

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// BenchmarkResolveWorkers benchmarks worker count calculation.
func BenchmarkResolveWorkers(b *testing.B) {
	for _, w := range []int{0, 1, 4, 64} {
		b.Run(workerName(w), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				_ = ResolveWorkers(w)
			}
		})
	}
}

func workerName(w int) string {
	if w == 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", w)
}

// BenchmarkBuild measures a full build of markdown pages across worker counts.
func BenchmarkBuild(b *testing.B) {
	const pages = 32

	root := b.TempDir()
	wiki := filepath.Join(root, "wiki")
	if err := os.MkdirAll(wiki, 0o750); err != nil {
		b.Fatal(err)
	}

	reg := make(Registry, 0, pages)
	body := strings.Repeat("Some *markdown* text.\n\n```go\nfunc f() int { return 1 }\n```\n\n", 20)
	for i := range pages {
		name := fmt.Sprintf("page%02d.md", i)
		if err := os.WriteFile(filepath.Join(wiki, name), []byte(body), 0o600); err != nil {
			b.Fatal(err)
		}
		reg = append(reg, Entry{Path: name, Title: name})
	}

	for _, w := range []int{1, 2, 4, 8} {
		b.Run(workerName(w), func(b *testing.B) {
			out := filepath.Join(root, "site", workerName(w))
			if err := os.MkdirAll(out, 0o750); err != nil {
				b.Fatal(err)
			}
			builder, err := NewBuilder(
				WithExamplesDir(filepath.Join(root, "examples")),
				WithWikiDir(wiki),
				WithOutputDir(out),
				WithStdout(io.Discard),
				WithWorkers(w),
			)
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			for b.Loop() {
				if _, err := builder.Build(context.Background(), reg, AuthorDirectory{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
