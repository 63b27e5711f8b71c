package nbsite

import (
	"errors"
	"fmt"

	"github.com/alnah/go-nbsite/internal/yamlutil"
)

// Default configuration file names, relative to the site root.
const (
	DefaultRegistryFile = "registry.yaml"
	DefaultAuthorsFile  = "authors.yaml"
)

// registryEntry mirrors one registry item as written in YAML.
// Pointers distinguish an absent key from an empty value.
type registryEntry struct {
	Path    *string  `yaml:"path"`
	Title   *string  `yaml:"title"`
	Date    any      `yaml:"date"`
	Authors []string `yaml:"authors"`
	Tags    []string `yaml:"tags"`
}

// LoadRegistry reads the YAML sequence of entries at path.
// Missing titles default to DefaultTitle. Every entry must have a path.
// An empty file is an empty registry.
func LoadRegistry(path string) (Registry, error) {
	var raw []registryEntry
	if err := yamlutil.ReadFile(path, &raw); err != nil {
		if errors.Is(err, yamlutil.ErrNilData) {
			return Registry{}, nil
		}
		return nil, &ConfigFileError{Path: path, Err: err}
	}

	reg := make(Registry, 0, len(raw))
	for i, r := range raw {
		if r.Path == nil {
			return nil, &ConfigFileError{Path: path, Err: fmt.Errorf("entry %d has no path", i+1)}
		}
		e := Entry{
			Path:    *r.Path,
			Title:   DefaultTitle,
			Date:    formatDate(r.Date),
			Authors: r.Authors,
			Tags:    r.Tags,
		}
		if r.Title != nil {
			e.Title = *r.Title
		}
		reg = append(reg, e)
	}
	return reg, nil
}

// LoadAuthors reads the YAML mapping of author id to record at path.
// An empty file is an empty directory.
func LoadAuthors(path string) (AuthorDirectory, error) {
	var dir AuthorDirectory
	if err := yamlutil.ReadFile(path, &dir); err != nil {
		if errors.Is(err, yamlutil.ErrNilData) {
			return AuthorDirectory{}, nil
		}
		return nil, &ConfigFileError{Path: path, Err: err}
	}
	if dir == nil {
		dir = AuthorDirectory{}
	}
	return dir, nil
}

// formatDate renders a decoded YAML date value as page text.
// Unquoted timestamps decode as their source text, so only numbers and
// other scalars need formatting.
func formatDate(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	default:
		return fmt.Sprint(d)
	}
}
