package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	flag "github.com/spf13/pflag"

	nbsite "github.com/alnah/go-nbsite"
	"github.com/alnah/go-nbsite/internal/config"
	"github.com/alnah/go-nbsite/internal/fileutil"
)

// Doctor statuses.
const (
	doctorReady    = "ready"
	doctorWarnings = "warnings"
	doctorErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo `json:"config"`
	Entries  entryInfo  `json:"entries"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// configInfo reports the resolved site layout.
type configInfo struct {
	Registry       string `json:"registry"`
	RegistryOK     bool   `json:"registry_ok"`
	Authors        string `json:"authors"`
	AuthorsOK      bool   `json:"authors_ok"`
	ExamplesDir    string `json:"examples_dir"`
	ExamplesExists bool   `json:"examples_exists"`
	WikiDir        string `json:"wiki_dir"`
	WikiExists     bool   `json:"wiki_exists"`
	OutputDir      string `json:"output_dir"`
	OutputWritable bool   `json:"output_writable"`
	Workers        int    `json:"workers"`
}

// entryInfo summarizes how registry entries resolve.
type entryInfo struct {
	Total          int      `json:"total"`
	Ready          int      `json:"ready"`
	NotFound       int      `json:"not_found"`
	Unsupported    int      `json:"unsupported"`
	UnknownAuthors []string `json:"unknown_authors,omitempty"`
	Collisions     int      `json:"collisions"`
}

// systemInfo holds platform details.
type systemInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags or config.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return report(err, env)
	}

	cfg, err := resolveConfig(&flags.common, &flags.site, env)
	if err != nil {
		return report(err, env)
	}

	result := runDoctor(cfg, newLogger(env.Stderr, flags.common.verbose))

	if flags.jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == doctorErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks without writing pages.
func runDoctor(cfg *config.Config, logger *slog.Logger) *doctorResult {
	result := &doctorResult{
		Status: doctorReady,
		Config: configInfo{
			Registry:    cfg.Registry,
			Authors:     cfg.Authors,
			ExamplesDir: cfg.ExamplesDir,
			WikiDir:     cfg.WikiDir,
			OutputDir:   cfg.OutputDir,
		},
		System: systemInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
		},
	}

	checkDirectories(result)

	builder, err := nbsite.NewBuilder(builderOptions(cfg, io.Discard, logger)...)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Config.Workers = builder.Workers()
	}

	reg, err := nbsite.LoadRegistry(cfg.Registry)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Config.RegistryOK = true
	}

	authors, err := nbsite.LoadAuthors(cfg.Authors)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		result.Config.AuthorsOK = true
	}

	if builder != nil && result.Config.RegistryOK {
		checkEntries(result, builder.Plan(reg), authors)
	}

	if len(result.Errors) > 0 {
		result.Status = doctorErrors
	} else if len(result.Warnings) > 0 {
		result.Status = doctorWarnings
	}

	return result
}

// checkDirectories verifies the source directories exist and the output
// directory accepts files. A missing output directory is checked through
// the nearest existing ancestor, since build creates it with its parents.
func checkDirectories(result *doctorResult) {
	c := &result.Config
	c.ExamplesExists = fileutil.DirExists(c.ExamplesDir)
	if !c.ExamplesExists {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Examples directory %s does not exist", c.ExamplesDir))
	}
	c.WikiExists = fileutil.DirExists(c.WikiDir)
	if !c.WikiExists {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Wiki directory %s does not exist", c.WikiDir))
	}

	dir, err := nearestDir(c.OutputDir)
	if err == nil {
		err = fileutil.CheckWritable(dir)
	}
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory %s: %v", c.OutputDir, err))
		return
	}
	c.OutputWritable = true
}

// nearestDir returns path itself when it is a directory, or else the
// closest existing ancestor that build would create it under.
func nearestDir(path string) (string, error) {
	p := filepath.Clean(path)
	for {
		info, err := os.Stat(p)
		switch {
		case err == nil && info.IsDir():
			return p, nil
		case err == nil:
			return "", fmt.Errorf("%s is not a directory", p)
		case !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", fmt.Errorf("no existing parent for %s", path)
		}
		p = parent
	}
}

// checkEntries reports missing sources, unsupported entries, unknown
// author ids and predicted output collisions.
func checkEntries(result *doctorResult, plan *nbsite.Report, authors nbsite.AuthorDirectory) {
	e := &result.Entries
	e.Total = len(plan.Pages)
	e.Ready = plan.Count(nbsite.StatusReady)
	e.NotFound = plan.Count(nbsite.StatusNotFound)
	e.Unsupported = plan.Count(nbsite.StatusUnsupported)
	e.Collisions = len(plan.Collisions)

	unknown := make(map[string]bool)
	for _, p := range plan.Pages {
		switch p.Status {
		case nbsite.StatusNotFound:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Source not found for %s (tried %v)", p.Entry.Path, p.Tried))
		case nbsite.StatusUnsupported:
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Unsupported file type: %s", p.Entry.Path))
		}
		for _, id := range p.Entry.Authors {
			if !authors.Known(id) {
				unknown[id] = true
			}
		}
	}

	for id := range unknown {
		e.UnknownAuthors = append(e.UnknownAuthors, id)
	}
	sort.Strings(e.UnknownAuthors)
	for _, id := range e.UnknownAuthors {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Author %q is not in %s", id, result.Config.Authors))
	}

	for _, c := range plan.Collisions {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s would be written by both %s and %s", c.Output, c.Previous, c.Source))
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "nbsite doctor")
	fmt.Fprintln(w)

	check := func(ok bool, okText, failText string) {
		if ok {
			fmt.Fprintf(w, "  [OK] %s\n", okText)
		} else {
			fmt.Fprintf(w, "  [ERROR] %s\n", failText)
		}
	}

	fmt.Fprintln(w, "Configuration")
	check(r.Config.RegistryOK, "Registry: "+r.Config.Registry, "Registry: "+r.Config.Registry+" unreadable")
	check(r.Config.AuthorsOK, "Authors: "+r.Config.Authors, "Authors: "+r.Config.Authors+" unreadable")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Directories")
	if r.Config.ExamplesExists {
		fmt.Fprintf(w, "  [OK] Examples: %s\n", r.Config.ExamplesDir)
	} else {
		fmt.Fprintf(w, "  [WARN] Examples: %s missing\n", r.Config.ExamplesDir)
	}
	if r.Config.WikiExists {
		fmt.Fprintf(w, "  [OK] Wiki: %s\n", r.Config.WikiDir)
	} else {
		fmt.Fprintf(w, "  [WARN] Wiki: %s missing\n", r.Config.WikiDir)
	}
	check(r.Config.OutputWritable, "Output: "+r.Config.OutputDir, "Output: "+r.Config.OutputDir+" not writable")
	fmt.Fprintln(w)

	if r.Config.RegistryOK {
		fmt.Fprintln(w, "Entries")
		fmt.Fprintf(w, "  [OK] %d of %d ready\n", r.Entries.Ready, r.Entries.Total)
		if r.Entries.NotFound > 0 {
			fmt.Fprintf(w, "  [WARN] %d source(s) not found\n", r.Entries.NotFound)
		}
		if r.Entries.Unsupported > 0 {
			fmt.Fprintf(w, "  [WARN] %d unsupported\n", r.Entries.Unsupported)
		}
		if r.Entries.Collisions > 0 {
			fmt.Fprintf(w, "  [WARN] %d output collision(s)\n", r.Entries.Collisions)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d, workers: %d\n", r.System.GOMAXPROCS, r.Config.Workers)
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case doctorReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case doctorWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case doctorErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
