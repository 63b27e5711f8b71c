package assets

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"
)

//go:embed styles/*.css
var styles embed.FS

// Sentinel errors for style resolution.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrInvalidStyleName = errors.New("invalid style name")
	ErrStyleRead        = errors.New("cannot read stylesheet")
)

// StyleSource looks up a stylesheet by name.
type StyleSource interface {
	Style(name string) (string, error)
}

// Builtin serves the styles embedded in the binary.
type Builtin struct{}

// Style returns the embedded stylesheet called name (without .css).
func (Builtin) Style(name string) (string, error) {
	if err := ValidateStyleName(name); err != nil {
		return "", err
	}
	content, err := styles.ReadFile("styles/" + strings.ToLower(name) + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q (built-in: %s)", ErrStyleNotFound, name, strings.Join(StyleNames(), ", "))
	}
	return string(content), nil
}

// StyleNames lists the built-in style names, sorted.
func StyleNames() []string {
	entries, err := styles.ReadDir("styles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	sort.Strings(names)
	return names
}

// ValidateStyleName rejects names that are empty or hold anything other
// than ASCII letters, digits, '-' and '_'.
func ValidateStyleName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidStyleName)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidStyleName, name)
		}
	}
	return nil
}

var _ StyleSource = Builtin{}
