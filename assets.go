package nbsite

import "github.com/alnah/go-nbsite/internal/assets"

// Built-in style names.
const (
	// DefaultStyle is a plain article stylesheet.
	DefaultStyle = "default"

	// NotebookStyle adds cell, output and code highlighting rules.
	NotebookStyle = "notebook"
)

// StyleNames lists the built-in styles accepted by WithStyle.
func StyleNames() []string {
	return assets.StyleNames()
}

// LoadStyle returns the CSS for a built-in style name or a CSS file path.
func LoadStyle(nameOrPath string) (string, error) {
	return assets.Resolve(nameOrPath)
}
