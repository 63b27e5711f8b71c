package pipeline

import (
	"fmt"
	"html"
	"strings"

	"github.com/alnah/go-nbsite/internal/dateutil"
)

// pageTemplate is the fixed page skeleton.
// Arguments: title, date, author markup, tags, content.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%[1]s</title>
</head>
<body>
<h1>%[1]s</h1>
<div><strong>Date:</strong> %[2]s</div>
<div><strong>Authors:</strong> %[3]s</div>
<div><strong>Tags:</strong> %[4]s</div>
<hr>
%[5]s
</body>
</html>
`

// authorTemplate renders one author: avatar, website, name.
const authorTemplate = `<div><img src="%s" width="32" style="vertical-align:middle;"> <a href="%s">%s</a></div>`

// DefaultWebsite is used for authors without a website.
const DefaultWebsite = "#"

// AuthorResolver maps an author id to display metadata.
// Implementations fill defaults for unknown ids.
type AuthorResolver interface {
	ResolveAuthor(id string) (name, website, avatar string)
}

// PageData holds the metadata and fragment for one page.
type PageData struct {
	Title   string
	Date    string
	Authors []string
	Tags    []string
	Content string
}

// PageOptions configures a PageRenderer. The zero value renders metadata
// verbatim with no stylesheet.
type PageOptions struct {
	// Escape HTML-escapes title, date, tags and author fields.
	Escape bool
	// DateLayout is a Go time layout applied to YYYY-MM-DD dates.
	// Empty keeps dates as written.
	DateLayout string
	// CSS is injected as a <style> block before </head>.
	CSS string
}

// PageRenderer wraps fragments in the page skeleton.
// Rendering is pure and deterministic.
type PageRenderer struct {
	authors AuthorResolver
	opts    PageOptions
}

// NewPageRenderer creates a PageRenderer. A nil resolver renders every
// author with its id as name and default website.
func NewPageRenderer(authors AuthorResolver, opts PageOptions) *PageRenderer {
	return &PageRenderer{authors: authors, opts: opts}
}

// Render produces the complete HTML document for a page.
func (r *PageRenderer) Render(p PageData) string {
	date := p.Date
	if r.opts.DateLayout != "" {
		date = dateutil.Reformat(date, r.opts.DateLayout)
	}

	tags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		tags[i] = r.text(t)
	}

	doc := fmt.Sprintf(pageTemplate,
		r.text(p.Title),
		r.text(date),
		r.renderAuthors(p.Authors),
		strings.Join(tags, ", "),
		p.Content,
	)
	return withStyle(doc, r.opts.CSS)
}

func (r *PageRenderer) renderAuthors(ids []string) string {
	var b strings.Builder
	for _, id := range ids {
		name, website, avatar := id, DefaultWebsite, ""
		if r.authors != nil {
			name, website, avatar = r.authors.ResolveAuthor(id)
		}
		fmt.Fprintf(&b, authorTemplate, r.text(avatar), r.text(website), r.text(name))
	}
	return b.String()
}

func (r *PageRenderer) text(s string) string {
	if r.opts.Escape {
		return html.EscapeString(s)
	}
	return s
}
