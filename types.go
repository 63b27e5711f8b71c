package nbsite

import (
	"time"

	"github.com/alnah/go-nbsite/internal/pipeline"
)

// DefaultTitle is used for entries without a title.
const DefaultTitle = "Untitled"

// DefaultWebsite is used for authors without a website.
const DefaultWebsite = pipeline.DefaultWebsite

// Entry is one registry item: a source document and its page metadata.
type Entry struct {
	Path    string
	Title   string
	Date    string
	Authors []string
	Tags    []string
}

// Registry is the ordered list of entries to publish.
type Registry []Entry

// Author holds display metadata for one author.
type Author struct {
	Name    string `yaml:"name"`
	Website string `yaml:"website"`
	Avatar  string `yaml:"avatar"`
}

// AuthorDirectory maps author ids to their records.
type AuthorDirectory map[string]Author

// Lookup returns the record for id with defaults applied.
// Unknown ids and empty names render as the id itself.
func (d AuthorDirectory) Lookup(id string) Author {
	a := d[id]
	if a.Name == "" {
		a.Name = id
	}
	if a.Website == "" {
		a.Website = DefaultWebsite
	}
	return a
}

// Known reports whether id has a record.
func (d AuthorDirectory) Known(id string) bool {
	_, ok := d[id]
	return ok
}

// ResolveAuthor implements pipeline.AuthorResolver.
func (d AuthorDirectory) ResolveAuthor(id string) (name, website, avatar string) {
	a := d.Lookup(id)
	return a.Name, a.Website, a.Avatar
}

// SourceKind identifies how an entry is converted.
type SourceKind string

// Source kinds, chosen by the entry path's extension.
const (
	KindNotebook    SourceKind = "notebook"
	KindMarkdown    SourceKind = "markdown"
	KindUnsupported SourceKind = "unsupported"
)

// PageStatus is the outcome for one entry.
type PageStatus string

// Page statuses.
const (
	StatusReady       PageStatus = "ready" // resolved, not yet built
	StatusGenerated   PageStatus = "generated"
	StatusNotFound    PageStatus = "not_found"
	StatusUnsupported PageStatus = "unsupported"
	StatusFailed      PageStatus = "failed"
)

// PageResult describes what happened to one registry entry.
type PageResult struct {
	Entry  Entry
	Kind   SourceKind
	Status PageStatus
	// Source is the resolved source path, or the last path tried when
	// the source was not found.
	Source string
	// Tried lists every candidate path in resolution order.
	Tried []string
	// Output is the page path under the output directory.
	Output   string
	Duration time.Duration
	Err      error
}

// Collision records a page that overwrote an earlier page in the same run.
type Collision struct {
	Output   string
	Source   string
	Previous string
}

// Report summarizes a build or a plan.
type Report struct {
	Pages      []PageResult
	Collisions []Collision
}

// Count returns the number of pages with the given status.
func (r *Report) Count(status PageStatus) int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == status {
			n++
		}
	}
	return n
}
