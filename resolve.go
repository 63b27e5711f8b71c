package nbsite

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-nbsite/internal/fileutil"
)

// Source and page extensions. Matching is case-sensitive.
const (
	notebookExt = ".ipynb"
	markdownExt = ".md"
	pageExt     = "html"
)

// classify picks the source kind from the entry path's suffix.
func classify(path string) SourceKind {
	switch {
	case strings.HasSuffix(path, notebookExt):
		return KindNotebook
	case strings.HasSuffix(path, markdownExt):
		return KindMarkdown
	default:
		return KindUnsupported
	}
}

// candidates lists where a source with the given base name may live,
// in lookup order. Notebooks only live in the examples directory.
func (b *Builder) candidates(kind SourceKind, base string) []string {
	switch kind {
	case KindNotebook:
		return []string{filepath.Join(b.cfg.examplesDir, base)}
	case KindMarkdown:
		return []string{
			filepath.Join(b.cfg.examplesDir, base),
			filepath.Join(b.cfg.wikiDir, base),
		}
	default:
		return nil
	}
}

// resolve classifies an entry and locates its source by base name.
// Only regular files count as found.
func (b *Builder) resolve(e Entry) PageResult {
	r := PageResult{Entry: e, Kind: classify(e.Path)}
	if r.Kind == KindUnsupported {
		r.Status = StatusUnsupported
		return r
	}

	base := filepath.Base(e.Path)
	name, _ := fileutil.ReplaceExt(base, pageExt) // pageExt is a valid extension
	r.Output = filepath.Join(b.cfg.outputDir, name)

	r.Tried = b.candidates(r.Kind, base)
	for _, path := range r.Tried {
		r.Source = path
		if fileutil.FileExists(path) {
			r.Status = StatusReady
			b.cfg.logger.Debug("source resolved", "entry", e.Path, "source", path)
			return r
		}
	}

	r.Status = StatusNotFound
	b.cfg.logger.Debug("source not found", "entry", e.Path, "tried", r.Tried)
	return r
}

// notFoundLabel names the source kind in skip messages.
func notFoundLabel(kind SourceKind) string {
	if kind == KindNotebook {
		return "Notebook"
	}
	return "Markdown"
}
