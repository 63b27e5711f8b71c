// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-nbsite/internal/fileutil"
)

// InSiteRoot reports whether the working directory looks like a site root.
var InSiteRoot = func() bool {
	return fileutil.DirExists("examples") || fileutil.DirExists("wiki")
}

// ForConfigRead returns hints for a registry or authors file that could not be read.
// When the file is missing and the working directory has no examples/ folder,
// the user is most likely running outside the site root.
func ForConfigRead(path string, missing bool) string {
	var hints []string

	if missing {
		if !InSiteRoot() {
			hints = append(hints, "run nbsite from the site root (the directory holding examples/ and wiki/)")
		}
		switch filepath.Base(path) {
		case "authors.yaml", "authors.yml":
			hints = append(hints, "use --authors /path/to/authors.yaml")
		default:
			hints = append(hints, "use --registry /path/to/registry.yaml")
		}
	} else {
		hints = append(hints, "check the YAML syntax of "+path)
	}

	return formatHints(hints)
}

// ForSiteConfigNotFound returns hints for site config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-nbsite/.
func ForSiteConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/nbsite.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, filepath.Join(".config", "go-nbsite")) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForNotebook returns a hint for notebooks that fail to decode.
func ForNotebook() string {
	return formatHints([]string{
		"open and save the notebook in Jupyter to upgrade it to nbformat 4",
		"use --keep-going to skip broken notebooks",
	})
}

// ForWrite returns a hint for output write failures.
func ForWrite(outputDir string) string {
	return format("check that " + outputDir + " is writable or pass --output")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
