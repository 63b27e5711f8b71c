// Package config loads the optional site configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-nbsite/internal/dateutil"
	"github.com/alnah/go-nbsite/internal/fileutil"
	"github.com/alnah/go-nbsite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field limits.
const (
	MaxPathLength       = 4096 // PATH_MAX on Linux
	MaxStyleLength      = 4096 // style name or CSS file path
	MaxDateFormatLength = dateutil.MaxDateFormatLength
	MaxWorkers          = 32
)

// AppDirName is the directory under the user config dir searched for
// named configs.
const AppDirName = "go-nbsite"

// Config holds the site configuration. Every field has a usable default,
// so an absent key keeps DefaultConfig's value.
type Config struct {
	Registry    string `yaml:"registry"`
	Authors     string `yaml:"authors"`
	ExamplesDir string `yaml:"examplesDir"`
	WikiDir     string `yaml:"wikiDir"`
	OutputDir   string `yaml:"outputDir"`
	Style       string `yaml:"style"`      // embedded style name or CSS file path (empty = no CSS)
	DateFormat  string `yaml:"dateFormat"` // token format or preset (empty = dates verbatim)
	Escape      bool   `yaml:"escape"`
	Workers     int    `yaml:"workers"` // 0 = auto
	KeepGoing   bool   `yaml:"keepGoing"`
	MetricsFile string `yaml:"metricsFile"` // node-exporter textfile (empty = none)
}

// DefaultConfig returns the layout of a site root: registry.yaml and
// authors.yaml next to examples/ and wiki/, pages written to site/.
func DefaultConfig() *Config {
	return &Config{
		Registry:    "registry.yaml",
		Authors:     "authors.yaml",
		ExamplesDir: "examples",
		WikiDir:     "wiki",
		OutputDir:   "site",
		Workers:     1,
	}
}

// Validate checks field lengths, worker bounds and the date format.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	paths := []struct {
		name  string
		value string
	}{
		{"registry", c.Registry},
		{"authors", c.Authors},
		{"examplesDir", c.ExamplesDir},
		{"wikiDir", c.WikiDir},
		{"outputDir", c.OutputDir},
		{"metricsFile", c.MetricsFile},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.name, p.value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("style", c.Style, MaxStyleLength); err != nil {
		return err
	}

	if c.Workers < 0 || c.Workers > MaxWorkers {
		return fmt.Errorf("%w: workers must be between 0 and %d, got %d", ErrInvalidValue, MaxWorkers, c.Workers)
	}

	if c.DateFormat != "" {
		if _, err := dateutil.ResolveLayout(c.DateFormat); err != nil {
			return fmt.Errorf("dateFormat: %w", err)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// A value with a path separator or a .yaml/.yml suffix is a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil && !errors.Is(err, yamlutil.ErrNilData) {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	lower := strings.ToLower(s)
	return strings.ContainsAny(s, "/\\") ||
		strings.HasSuffix(lower, ".yaml") ||
		strings.HasSuffix(lower, ".yml")
}

// SearchPaths lists where a config name is looked up, in order.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/go-nbsite/
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDirName, name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing search path for name.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
