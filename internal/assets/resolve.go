package assets

import (
	"fmt"
	"os"

	"github.com/alnah/go-nbsite/internal/fileutil"
)

// Resolve returns the CSS for a built-in style name or a CSS file path.
// An empty input resolves to no CSS.
func Resolve(nameOrPath string) (string, error) {
	return ResolveFrom(Builtin{}, nameOrPath)
}

// ResolveFrom is Resolve with names looked up in src.
// Anything that looks like a path is read from disk instead.
func ResolveFrom(src StyleSource, nameOrPath string) (string, error) {
	if nameOrPath == "" {
		return "", nil
	}
	if !fileutil.IsFilePath(nameOrPath) {
		return src.Style(nameOrPath)
	}

	content, err := os.ReadFile(nameOrPath) // #nosec G304 -- user-provided stylesheet
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrStyleNotFound, nameOrPath)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrStyleRead, nameOrPath, err)
	}
	return string(content), nil
}
