// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// ValidateExtension checks that the extension is safe for use in file names.
// The extension is given without its leading dot.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// ReplaceExt returns the base name of path with its extension replaced.
// Leading dots belong to the name, so ".md" has no extension.
//
// Examples:
//   - ("examples/foo.ipynb", "html") -> "foo.html"
//   - ("wiki/bar.md", "html") -> "bar.html"
//   - ("noext", "html") -> "noext.html"
//   - (".md", "html") -> ".md.html"
func ReplaceExt(path, extension string) (string, error) {
	if err := ValidateExtension(extension); err != nil {
		return "", err
	}
	base := filepath.Base(path)
	ext := filepath.Ext(strings.TrimLeft(base, "."))
	return strings.TrimSuffix(base, ext) + "." + extension, nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) or ending in .css is treated as a path.
//
// Examples:
//   - "notebook" -> false (name)
//   - "./custom.css" -> true (relative path)
//   - "site.css" -> true (css file in working directory)
//   - "/absolute/path.css" -> true (absolute)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\") || strings.HasSuffix(strings.ToLower(s), ".css")
}

// CheckWritable verifies that dir accepts new files by creating and
// removing a scratch file.
func CheckWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".nbsite-write-*")
	if err != nil {
		return fmt.Errorf("directory not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("removing scratch file: %w", err)
	}
	return nil
}
