package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/go-nbsite/internal/config"
	"github.com/alnah/go-nbsite/internal/fileutil"
)

// dotEnvFile is read from the working directory when present.
const dotEnvFile = ".env"

// envPrefix marks variables read by nbsite.
const envPrefix = "NBSITE_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string // NBSITE_CONFIG: site config name or path
	Registry    string // NBSITE_REGISTRY: registry file
	Authors     string // NBSITE_AUTHORS: authors file
	ExamplesDir string // NBSITE_EXAMPLES_DIR
	WikiDir     string // NBSITE_WIKI_DIR
	OutputDir   string // NBSITE_OUTPUT_DIR
	Style       string // NBSITE_STYLE: CSS style name or path
	DateFormat  string // NBSITE_DATE_FORMAT
	MetricsFile string // NBSITE_METRICS_FILE

	Escape    *bool // NBSITE_ESCAPE
	KeepGoing *bool // NBSITE_KEEP_GOING
	Workers   int   // NBSITE_WORKERS (workersUnset when absent or invalid)
}

// knownEnvVars lists valid NBSITE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"NBSITE_CONFIG":       true,
	"NBSITE_REGISTRY":     true,
	"NBSITE_AUTHORS":      true,
	"NBSITE_EXAMPLES_DIR": true,
	"NBSITE_WIKI_DIR":     true,
	"NBSITE_OUTPUT_DIR":   true,
	"NBSITE_STYLE":        true,
	"NBSITE_DATE_FORMAT":  true,
	"NBSITE_ESCAPE":       true,
	"NBSITE_WORKERS":      true,
	"NBSITE_KEEP_GOING":   true,
	"NBSITE_METRICS_FILE": true,
}

// envLookup resolves a variable from the process environment first,
// then from values read out of a .env file.
type envLookup struct {
	lookup func(string) (string, bool)
	dotenv map[string]string
}

// newEnvLookup reads the .env file in the working directory, if any.
// The file never overrides variables already set in the process.
func newEnvLookup(env *Environment) (*envLookup, error) {
	l := &envLookup{lookup: env.LookupEnv}
	if !fileutil.FileExists(dotEnvFile) {
		return l, nil
	}
	values, err := godotenv.Read(dotEnvFile)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dotEnvFile, err)
	}
	l.dotenv = values
	return l, nil
}

func (l *envLookup) get(key string) string {
	if l.lookup != nil {
		if v, ok := l.lookup(key); ok {
			return v
		}
	}
	return l.dotenv[key]
}

// names lists every NBSITE_* variable visible through the lookup.
func (l *envLookup) names(environ []string) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if strings.HasPrefix(name, envPrefix) && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, kv := range environ {
		add(strings.SplitN(kv, "=", 2)[0])
	}
	for name := range l.dotenv {
		add(name)
	}
	return names
}

// loadEnvConfig reads every recognized NBSITE_* value.
// Malformed booleans and worker counts are ignored.
func loadEnvConfig(l *envLookup) *envConfig {
	cfg := &envConfig{
		ConfigPath:  l.get("NBSITE_CONFIG"),
		Registry:    l.get("NBSITE_REGISTRY"),
		Authors:     l.get("NBSITE_AUTHORS"),
		ExamplesDir: l.get("NBSITE_EXAMPLES_DIR"),
		WikiDir:     l.get("NBSITE_WIKI_DIR"),
		OutputDir:   l.get("NBSITE_OUTPUT_DIR"),
		Style:       l.get("NBSITE_STYLE"),
		DateFormat:  l.get("NBSITE_DATE_FORMAT"),
		MetricsFile: l.get("NBSITE_METRICS_FILE"),
		Escape:      parseEnvBool(l.get("NBSITE_ESCAPE")),
		KeepGoing:   parseEnvBool(l.get("NBSITE_KEEP_GOING")),
		Workers:     workersUnset,
	}

	if workers := l.get("NBSITE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w >= 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// parseEnvBool returns nil for empty or malformed values.
func parseEnvBool(s string) *bool {
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

// warnUnknownEnvVars logs warnings for unrecognized NBSITE_* variables.
// Helps catch typos like NBSITE_OUTPUT instead of NBSITE_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer, names []string) {
	for _, name := range names {
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the site config file; flags are applied later
// via mergeFlags, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&cfg.Registry, env.Registry)
	setString(&cfg.Authors, env.Authors)
	setString(&cfg.ExamplesDir, env.ExamplesDir)
	setString(&cfg.WikiDir, env.WikiDir)
	setString(&cfg.OutputDir, env.OutputDir)
	setString(&cfg.Style, env.Style)
	setString(&cfg.DateFormat, env.DateFormat)
	setString(&cfg.MetricsFile, env.MetricsFile)

	if env.Escape != nil {
		cfg.Escape = *env.Escape
	}
	if env.KeepGoing != nil {
		cfg.KeepGoing = *env.KeepGoing
	}
	if env.Workers != workersUnset {
		cfg.Workers = env.Workers
	}
}
